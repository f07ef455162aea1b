// Package session holds the in-progress state of one learner walking through
// topic selection, the quiz and the results.
package session

import (
	"fmt"
	"time"

	"learno_backend/internal/model"
)

// Session is mutated only through its methods. It is not safe for concurrent
// use; callers serialize access per session id.
type Session struct {
	id             string
	topic          *model.Topic
	skillLevel     model.SkillLevel
	currentStep    int
	questions      []model.Question
	answers        []model.UserAnswer
	learningPath   *string
	roadmapWarning string
	epoch          int64
	updatedAt      time.Time
}

func New(id string) *Session {
	return &Session{id: id, updatedAt: time.Now()}
}

func (s *Session) touch() { s.updatedAt = time.Now() }

func (s *Session) SetTopic(topic model.Topic) {
	t := topic
	s.topic = &t
	s.touch()
}

func (s *Session) SetSkillLevel(level model.SkillLevel) {
	s.skillLevel = level
	s.touch()
}

// SetQuestions replaces the question set wholesale. Empty or invalid sets are
// rejected and leave the session unchanged.
func (s *Session) SetQuestions(questions []model.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question set is empty")
	}
	seen := make(map[string]bool, len(questions))
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
	}
	s.questions = cloneQuestions(questions)
	s.touch()
	return nil
}

// AddAnswer appends without deduplicating by question id.
func (s *Session) AddAnswer(answer model.UserAnswer) {
	s.answers = append(s.answers, answer)
	s.touch()
}

func (s *Session) NextStep() {
	s.currentStep++
	s.touch()
}

func (s *Session) PreviousStep() {
	s.currentStep--
	s.touch()
}

// SetCurrentStep does not enforce bounds; the wizard maps out-of-range steps.
func (s *Session) SetCurrentStep(step int) {
	s.currentStep = step
	s.touch()
}

// SetLearningPath stores the serialized milestones, overwriting any previous path.
func (s *Session) SetLearningPath(serialized string) {
	p := serialized
	s.learningPath = &p
	s.touch()
}

func (s *Session) ClearLearningPath() {
	s.learningPath = nil
	s.roadmapWarning = ""
	s.touch()
}

func (s *Session) SetRoadmapWarning(warning string) {
	s.roadmapWarning = warning
	s.touch()
}

// Reset returns every field to its initial value and starts a new epoch so
// that work started before the reset can be recognized as stale.
func (s *Session) Reset() {
	*s = Session{id: s.id, epoch: s.epoch + 1}
	s.touch()
}

func (s *Session) ID() string { return s.id }

func (s *Session) Topic() (model.Topic, bool) {
	if s.topic == nil {
		return model.Topic{}, false
	}
	return *s.topic, true
}

func (s *Session) SkillLevel() model.SkillLevel { return s.skillLevel }

func (s *Session) CurrentStep() int { return s.currentStep }

func (s *Session) Questions() []model.Question { return cloneQuestions(s.questions) }

func (s *Session) Answers() []model.UserAnswer {
	return append([]model.UserAnswer(nil), s.answers...)
}

func (s *Session) LearningPath() (string, bool) {
	if s.learningPath == nil {
		return "", false
	}
	return *s.learningPath, true
}

func (s *Session) RoadmapWarning() string { return s.roadmapWarning }

func (s *Session) Epoch() int64 { return s.epoch }

func (s *Session) UpdatedAt() time.Time { return s.updatedAt }

func cloneQuestions(in []model.Question) []model.Question {
	if in == nil {
		return nil
	}
	out := make([]model.Question, len(in))
	for i, q := range in {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
