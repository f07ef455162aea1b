package session

import (
	"time"

	"learno_backend/internal/model"
)

// State is the serializable form of a Session.
type State struct {
	ID             string             `json:"id"`
	SelectedTopic  *model.Topic       `json:"selectedTopic"`
	SkillLevel     model.SkillLevel   `json:"skillLevel"`
	CurrentStep    int                `json:"currentStep"`
	Questions      []model.Question   `json:"questions"`
	UserAnswers    []model.UserAnswer `json:"userAnswers"`
	LearningPath   *string            `json:"learningPath"`
	RoadmapWarning string             `json:"roadmapWarning,omitempty"`
	Epoch          int64              `json:"epoch"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

func (s *Session) Snapshot() State {
	st := State{
		ID:             s.id,
		SkillLevel:     s.skillLevel,
		CurrentStep:    s.currentStep,
		Questions:      s.Questions(),
		UserAnswers:    s.Answers(),
		RoadmapWarning: s.roadmapWarning,
		Epoch:          s.epoch,
		UpdatedAt:      s.updatedAt,
	}
	if s.topic != nil {
		t := *s.topic
		st.SelectedTopic = &t
	}
	if s.learningPath != nil {
		p := *s.learningPath
		st.LearningPath = &p
	}
	if st.Questions == nil {
		st.Questions = []model.Question{}
	}
	if st.UserAnswers == nil {
		st.UserAnswers = []model.UserAnswer{}
	}
	return st
}

// Restore rebuilds a Session from a snapshot without re-validating it.
func Restore(st State) *Session {
	s := &Session{
		id:             st.ID,
		skillLevel:     st.SkillLevel,
		currentStep:    st.CurrentStep,
		questions:      cloneQuestions(st.Questions),
		answers:        append([]model.UserAnswer(nil), st.UserAnswers...),
		roadmapWarning: st.RoadmapWarning,
		epoch:          st.Epoch,
		updatedAt:      st.UpdatedAt,
	}
	if st.SelectedTopic != nil {
		t := *st.SelectedTopic
		s.topic = &t
	}
	if st.LearningPath != nil {
		p := *st.LearningPath
		s.learningPath = &p
	}
	return s
}
