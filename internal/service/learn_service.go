package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"learno_backend/internal/model"
	"learno_backend/internal/repository"
	"learno_backend/internal/session"
	"learno_backend/internal/util"
	"learno_backend/internal/wizard"
	"learno_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Viewer is who is making the request. An empty Username means anonymous.
type Viewer struct {
	Username string
}

func (v Viewer) Authenticated() bool { return v.Username != "" }

// PublicQuestion is a quiz question without its answer key.
type PublicQuestion struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type SessionView struct {
	ID              string           `json:"id"`
	View            wizard.View      `json:"view"`
	CurrentStep     int              `json:"currentStep"`
	ResultsStep     int              `json:"resultsStep"`
	SelectedTopic   *model.Topic     `json:"selectedTopic,omitempty"`
	SkillLevel      model.SkillLevel `json:"skillLevel,omitempty"`
	QuizPage        int              `json:"quizPage,omitempty"`
	QuizPages       int              `json:"quizPages"`
	Questions       []PublicQuestion `json:"questions,omitempty"`
	TotalQuestions  int              `json:"totalQuestions"`
	AnsweredCount   int              `json:"answeredCount"`
	HasLearningPath bool             `json:"hasLearningPath"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type ResultsView struct {
	Score     Score              `json:"score"`
	Roadmap   *Roadmap           `json:"roadmap"`
	Questions []model.Question   `json:"questions"`
	Answers   []model.UserAnswer `json:"answers"`
}

type LearnService struct {
	sessions repository.SessionRepository
	quiz     *QuizService
	roadmap  *RoadmapService
	courses  *CourseService
	wizard   wizard.Controller
	locks    *keyedMutex
}

func NewLearnService(
	sessions repository.SessionRepository,
	quiz *QuizService,
	roadmap *RoadmapService,
	courses *CourseService,
	wiz wizard.Controller,
) *LearnService {
	return &LearnService{
		sessions: sessions,
		quiz:     quiz,
		roadmap:  roadmap,
		courses:  courses,
		wizard:   wiz,
		locks:    newKeyedMutex(),
	}
}

func (s *LearnService) Create(ctx context.Context) (*SessionView, error) {
	sess := session.New(uuid.NewString())
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	return s.view(sess, Viewer{}), nil
}

func (s *LearnService) Get(ctx context.Context, id string, viewer Viewer) (*SessionView, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(sess, viewer), nil
}

func (s *LearnService) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.sessions.Delete(ctx, id)
}

// mutate loads the session under its lock, applies fn and saves the result
// only when fn succeeds.
func (s *LearnService) mutate(ctx context.Context, id string, fn func(sess *session.Session) error) (*session.Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// expect checks the wizard gate for the session's current step.
func (s *LearnService) expect(sess *session.Session, viewer Viewer, want wizard.View) error {
	got := s.wizard.Resolve(sess.CurrentStep(), viewer.Authenticated())
	if got == wizard.ViewSignIn {
		return util.ErrSignInRequired
	}
	if got != want {
		return fmt.Errorf("%w: expected %s, session is at %s", util.ErrStepOutOfOrder, want, got)
	}
	return nil
}

func (s *LearnService) SetTopic(ctx context.Context, id string, viewer Viewer, name string) (*SessionView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, util.ErrInvalidTopic
	}
	sess, err := s.mutate(ctx, id, func(sess *session.Session) error {
		if err := s.expect(sess, viewer, wizard.ViewTopicSelection); err != nil {
			return err
		}
		sess.SetTopic(model.Topic{ID: util.Slugify(name), Name: name})
		sess.SetCurrentStep(wizard.StepSkillLevel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(sess, viewer), nil
}

// SetSkillLevel generates the quiz and commits level, questions and step
// together. The session lock is not held while the model works; a reset in
// the meantime makes the result stale and it is dropped.
func (s *LearnService) SetSkillLevel(ctx context.Context, id string, viewer Viewer, rawLevel string) (*SessionView, error) {
	level, err := model.ParseSkillLevel(rawLevel)
	if err != nil {
		return nil, util.ErrInvalidSkill
	}

	var (
		topic model.Topic
		epoch int64
	)
	unlock := s.locks.Lock(id)
	sess, err := s.sessions.Get(ctx, id)
	if err == nil {
		err = s.expect(sess, viewer, wizard.ViewSkillLevel)
	}
	if err == nil {
		var ok bool
		if topic, ok = sess.Topic(); !ok {
			err = fmt.Errorf("%w: no topic selected", util.ErrStepOutOfOrder)
		}
		epoch = sess.Epoch()
	}
	unlock()
	if err != nil {
		return nil, err
	}

	set, err := s.quiz.Generate(ctx, topic, level)
	if err != nil {
		return nil, err
	}

	sess, err = s.mutate(ctx, id, func(sess *session.Session) error {
		if sess.Epoch() != epoch || sess.CurrentStep() != wizard.StepSkillLevel {
			logger.Log.Warn("Discarding quiz for a session that moved on",
				zap.String("session", id),
				zap.Int64("epoch", epoch),
				zap.Int64("currentEpoch", sess.Epoch()))
			return util.ErrStaleSession
		}
		if err := sess.SetQuestions(set.Questions); err != nil {
			return err
		}
		sess.SetSkillLevel(level)
		sess.NextStep()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(sess, viewer), nil
}

// SubmitAnswers records answers for the current quiz page and advances.
func (s *LearnService) SubmitAnswers(ctx context.Context, id string, viewer Viewer, answers []model.UserAnswer) (*SessionView, error) {
	sess, err := s.mutate(ctx, id, func(sess *session.Session) error {
		if err := s.expect(sess, viewer, wizard.ViewQuiz); err != nil {
			return err
		}
		byID := make(map[string]model.Question)
		for _, q := range sess.Questions() {
			byID[q.ID] = q
		}
		for _, a := range answers {
			q, ok := byID[a.QuestionID]
			if !ok {
				return fmt.Errorf("%w: unknown question %q", util.ErrInvalidAnswer, a.QuestionID)
			}
			if a.Answer < 0 || a.Answer >= len(q.Options) {
				return fmt.Errorf("%w: option %d out of range for question %q", util.ErrInvalidAnswer, a.Answer, a.QuestionID)
			}
		}
		for _, a := range answers {
			sess.AddAnswer(a)
		}
		sess.NextStep()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(sess, viewer), nil
}

func (s *LearnService) Results(ctx context.Context, id string, viewer Viewer) (*ResultsView, error) {
	return s.results(ctx, id, viewer, false)
}

func (s *LearnService) RegenerateRoadmap(ctx context.Context, id string, viewer Viewer) (*ResultsView, error) {
	return s.results(ctx, id, viewer, true)
}

func (s *LearnService) results(ctx context.Context, id string, viewer Viewer, regenerate bool) (*ResultsView, error) {
	var (
		topic model.Topic
		level model.SkillLevel
		score Score
		epoch int64
	)

	unlock := s.locks.Lock(id)
	sess, err := s.sessions.Get(ctx, id)
	if err == nil {
		err = s.expect(sess, viewer, wizard.ViewResults)
	}
	if err != nil {
		unlock()
		return nil, err
	}
	score = ScoreQuiz(sess.Questions(), sess.Answers())
	if !regenerate {
		if rm, ok := s.roadmap.Stored(sess); ok {
			unlock()
			return resultsView(sess, score, rm), nil
		}
	}
	topic, _ = sess.Topic()
	level = sess.SkillLevel()
	epoch = sess.Epoch()
	unlock()

	rm := s.roadmap.Generate(ctx, topic, level, score)

	sess, err = s.mutate(ctx, id, func(sess *session.Session) error {
		if sess.Epoch() != epoch {
			logger.Log.Warn("Discarding roadmap for a reset session", zap.String("session", id))
			return util.ErrStaleSession
		}
		// 并发请求已生成路线图时沿用已存储的版本
		if stored, ok := s.roadmap.Stored(sess); ok && !regenerate {
			rm = stored
			return nil
		}
		s.roadmap.Apply(sess, rm)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resultsView(sess, score, rm), nil
}

func resultsView(sess *session.Session, score Score, rm *Roadmap) *ResultsView {
	return &ResultsView{
		Score:     score,
		Roadmap:   rm,
		Questions: sess.Questions(),
		Answers:   sess.Answers(),
	}
}

// Save persists the session's roadmap as a course owned by the viewer.
func (s *LearnService) Save(ctx context.Context, id string, viewer Viewer) (*model.Course, error) {
	if !viewer.Authenticated() {
		return nil, util.ErrSignInRequired
	}

	res, err := s.Results(ctx, id, viewer)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	topic, _ := sess.Topic()

	course, err := s.courses.Save(ctx, SaveCourseInput{
		Username:   viewer.Username,
		CourseName: topic.Name,
		SkillLevel: string(sess.SkillLevel()),
		Roadmap:    res.Roadmap.Serialized,
	})
	if err != nil {
		if !errors.Is(err, util.ErrDuplicateCourse) {
			logger.Log.Error("Saving course failed", zap.String("session", id), zap.Error(err))
		}
		return nil, err
	}
	return course, nil
}

func (s *LearnService) Reset(ctx context.Context, id string, viewer Viewer) (*SessionView, error) {
	sess, err := s.mutate(ctx, id, func(sess *session.Session) error {
		sess.Reset()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(sess, viewer), nil
}

func (s *LearnService) view(sess *session.Session, viewer Viewer) *SessionView {
	step := sess.CurrentStep()
	v := &SessionView{
		ID:          sess.ID(),
		View:        s.wizard.Resolve(step, viewer.Authenticated()),
		CurrentStep: step,
		ResultsStep: s.wizard.ResultsStep(),
		SkillLevel:  sess.SkillLevel(),
		QuizPages:   s.wizard.QuizPages,
		UpdatedAt:   sess.UpdatedAt(),
	}
	if topic, ok := sess.Topic(); ok {
		v.SelectedTopic = &topic
	}
	_, v.HasLearningPath = sess.LearningPath()

	questions := sess.Questions()
	v.TotalQuestions = len(questions)
	answered := make(map[string]bool)
	for _, a := range sess.Answers() {
		answered[a.QuestionID] = true
	}
	v.AnsweredCount = len(answered)

	if v.View == wizard.ViewQuiz {
		page, _ := s.wizard.QuizPage(step)
		start, end := s.wizard.PageSlice(page, len(questions))
		v.QuizPage = page
		v.Questions = make([]PublicQuestion, 0, end-start)
		for _, q := range questions[start:end] {
			v.Questions = append(v.Questions, PublicQuestion{ID: q.ID, Text: q.Text, Options: q.Options})
		}
	}
	return v
}
