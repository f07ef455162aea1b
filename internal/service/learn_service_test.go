package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"learno_backend/internal/llm"
	"learno_backend/internal/model"
	"learno_backend/internal/normalize"
	"learno_backend/internal/util"
	"learno_backend/internal/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = Viewer{Username: "alice"}

func TestLearnService_FullFlow(t *testing.T) {
	f := newLearnFixture(t, llm.NewMockProvider(
		llm.MockResponse{Text: quizJSON},
		llm.MockResponse{Text: roadmapJSON},
	), 1)
	ctx := context.Background()

	view, err := f.learn.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, wizard.ViewTopicSelection, view.View)
	assert.Equal(t, 3, view.ResultsStep)
	id := view.ID

	view, err = f.learn.SetTopic(ctx, id, Viewer{}, "Go Programming")
	require.NoError(t, err)
	assert.Equal(t, wizard.ViewSignIn, view.View)
	assert.Equal(t, "go-programming", view.SelectedTopic.ID)

	view, err = f.learn.Get(ctx, id, alice)
	require.NoError(t, err)
	assert.Equal(t, wizard.ViewSkillLevel, view.View)

	view, err = f.learn.SetSkillLevel(ctx, id, alice, "BEGINNER")
	require.NoError(t, err)
	assert.Equal(t, wizard.ViewQuiz, view.View)
	assert.Equal(t, model.Beginner, view.SkillLevel)
	require.Len(t, view.Questions, 2)
	assert.Equal(t, 2, view.TotalQuestions)

	view, err = f.learn.SubmitAnswers(ctx, id, alice, []model.UserAnswer{
		{QuestionID: "1", Answer: 0},
		{QuestionID: "2", Answer: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, wizard.ViewResults, view.View)
	assert.Equal(t, 2, view.AnsweredCount)

	res, err := f.learn.Results(ctx, id, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score.Correct)
	assert.Equal(t, 50.0, res.Score.Percentage)
	require.Len(t, res.Roadmap.Milestones, 2)
	assert.Empty(t, res.Roadmap.Warning)
	assert.Contains(t, f.mock.Calls[1].Messages[0].Content, "The user scored 50%")

	again, err := f.learn.Results(ctx, id, alice)
	require.NoError(t, err)
	assert.Equal(t, res.Roadmap.Graph, again.Roadmap.Graph)
	assert.Equal(t, 2, f.mock.CallCount())

	course, err := f.learn.Save(ctx, id, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", course.Username)
	assert.Equal(t, "Go Programming", course.CourseName)
	assert.Equal(t, "beginner", course.SkillLevel)
	assert.Equal(t, res.Roadmap.Serialized, course.Roadmap)

	_, err = f.learn.Save(ctx, id, alice)
	assert.ErrorIs(t, err, util.ErrDuplicateCourse)

	courses, err := f.courses.List(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}

func TestLearnService_GateRequiresSignIn(t *testing.T) {
	f := newLearnFixture(t, llm.NewMockProvider(llm.MockResponse{Text: quizJSON}), 1)
	ctx := context.Background()

	view, err := f.learn.Create(ctx)
	require.NoError(t, err)
	_, err = f.learn.SetTopic(ctx, view.ID, Viewer{}, "Go")
	require.NoError(t, err)

	_, err = f.learn.SetSkillLevel(ctx, view.ID, Viewer{}, "beginner")
	assert.ErrorIs(t, err, util.ErrSignInRequired)
	assert.Equal(t, 0, f.mock.CallCount())

	_, err = f.learn.Save(ctx, view.ID, Viewer{})
	assert.ErrorIs(t, err, util.ErrSignInRequired)
}

func TestLearnService_StepOrder(t *testing.T) {
	f := newLearnFixture(t, llm.NewMockProvider(), 1)
	ctx := context.Background()

	view, err := f.learn.Create(ctx)
	require.NoError(t, err)

	_, err = f.learn.SubmitAnswers(ctx, view.ID, alice, nil)
	assert.ErrorIs(t, err, util.ErrStepOutOfOrder)

	_, err = f.learn.Results(ctx, view.ID, alice)
	assert.ErrorIs(t, err, util.ErrStepOutOfOrder)

	_, err = f.learn.SetTopic(ctx, view.ID, alice, "  ")
	assert.ErrorIs(t, err, util.ErrInvalidTopic)

	_, err = f.learn.SetTopic(ctx, view.ID, alice, "Go")
	require.NoError(t, err)
	_, err = f.learn.SetTopic(ctx, view.ID, alice, "Rust")
	assert.ErrorIs(t, err, util.ErrStepOutOfOrder)

	_, err = f.learn.SetSkillLevel(ctx, view.ID, alice, "guru")
	assert.ErrorIs(t, err, util.ErrInvalidSkill)

	_, err = f.learn.Get(ctx, "missing", alice)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestLearnService_QuizFailureLeavesStateUnchanged(t *testing.T) {
	f := newLearnFixture(t, llm.NewMockProvider(llm.MockResponse{Text: "sorry"}), 1)
	ctx := context.Background()

	view, err := f.learn.Create(ctx)
	require.NoError(t, err)
	_, err = f.learn.SetTopic(ctx, view.ID, alice, "Go")
	require.NoError(t, err)

	_, err = f.learn.SetSkillLevel(ctx, view.ID, alice, "advanced")
	var perr *normalize.ParseError
	require.True(t, errors.As(err, &perr))

	view, err = f.learn.Get(ctx, view.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, wizard.StepSkillLevel, view.CurrentStep)
	assert.Empty(t, view.SkillLevel)
	assert.Equal(t, 0, view.TotalQuestions)
}

func TestLearnService_SubmitAnswersValidates(t *testing.T) {
	f := newLearnFixture(t, llm.NewMockProvider(llm.MockResponse{Text: quizJSON}), 1)
	ctx := context.Background()
	id := quizSession(t, f)

	_, err := f.learn.SubmitAnswers(ctx, id, alice, []model.UserAnswer{{QuestionID: "7", Answer: 0}})
	assert.ErrorIs(t, err, util.ErrInvalidAnswer)

	_, err = f.learn.SubmitAnswers(ctx, id, alice, []model.UserAnswer{
		{QuestionID: "1", Answer: 0},
		{QuestionID: "2", Answer: 5},
	})
	assert.ErrorIs(t, err, util.ErrInvalidAnswer)

	view, err := f.learn.Get(ctx, id, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, view.AnsweredCount)
	assert.Equal(t, wizard.ViewQuiz, view.View)
}

func TestLearnService_MultiPageQuiz(t *testing.T) {
	f := newLearnFixture(t, llm.NewMockProvider(llm.MockResponse{Text: quizJSON}), 2)
	ctx := context.Background()
	id := quizSession(t, f)

	view, err := f.learn.Get(ctx, id, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, view.QuizPage)
	require.Len(t, view.Questions, 1)
	assert.Equal(t, "1", view.Questions[0].ID)

	view, err = f.learn.SubmitAnswers(ctx, id, alice, []model.UserAnswer{{QuestionID: "1", Answer: 0}})
	require.NoError(t, err)
	assert.Equal(t, wizard.ViewQuiz, view.View)
	assert.Equal(t, 1, view.QuizPage)
	require.Len(t, view.Questions, 1)
	assert.Equal(t, "2", view.Questions[0].ID)

	view, err = f.learn.SubmitAnswers(ctx, id, alice, []model.UserAnswer{{QuestionID: "2", Answer: 0}})
	require.NoError(t, err)
	assert.Equal(t, wizard.ViewResults, view.View)
}

func TestLearnService_ResultsFallBackToDefaultRoadmap(t *testing.T) {
	f := newLearnFixture(t, llm.NewMockProvider(
		llm.MockResponse{Text: quizJSON},
		llm.MockResponse{Text: "not a roadmap"},
		llm.MockResponse{Text: roadmapJSON},
	), 1)
	ctx := context.Background()
	id := quizSession(t, f)
	_, err := f.learn.SubmitAnswers(ctx, id, alice, nil)
	require.NoError(t, err)

	res, err := f.learn.Results(ctx, id, alice)
	require.NoError(t, err)
	assert.Equal(t, DefaultRoadmapWarning, res.Roadmap.Warning)
	assert.Equal(t, 0, res.Score.Attempted)
	require.Len(t, res.Roadmap.Milestones, 3)

	res, err = f.learn.RegenerateRoadmap(ctx, id, alice)
	require.NoError(t, err)
	assert.Empty(t, res.Roadmap.Warning)
	assert.Len(t, res.Roadmap.Milestones, 2)

	res, err = f.learn.Results(ctx, id, alice)
	require.NoError(t, err)
	assert.Len(t, res.Roadmap.Milestones, 2)
	assert.Equal(t, 3, f.mock.CallCount())
}

func TestLearnService_ResetDiscardsInFlightQuiz(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	provider := providerFunc(func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		close(started)
		<-release
		return &llm.Response{Text: quizJSON}, nil
	})
	f := newLearnFixture(t, provider, 1)
	ctx := context.Background()

	view, err := f.learn.Create(ctx)
	require.NoError(t, err)
	id := view.ID
	_, err = f.learn.SetTopic(ctx, id, alice, "Go")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var quizErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, quizErr = f.learn.SetSkillLevel(ctx, id, alice, "beginner")
	}()

	<-started
	view, err = f.learn.Reset(ctx, id, alice)
	require.NoError(t, err)
	assert.Equal(t, wizard.ViewTopicSelection, view.View)
	close(release)
	wg.Wait()

	assert.ErrorIs(t, quizErr, util.ErrStaleSession)
	view, err = f.learn.Get(ctx, id, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, view.CurrentStep)
	assert.Equal(t, 0, view.TotalQuestions)
	assert.Nil(t, view.SelectedTopic)
}

func TestLearnService_ResetDiscardsInFlightRoadmap(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int
	provider := providerFunc(func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		calls++
		if calls == 1 {
			return &llm.Response{Text: quizJSON}, nil
		}
		close(started)
		<-release
		return &llm.Response{Text: roadmapJSON}, nil
	})
	f := newLearnFixture(t, provider, 1)
	ctx := context.Background()

	view, err := f.learn.Create(ctx)
	require.NoError(t, err)
	id := view.ID
	_, err = f.learn.SetTopic(ctx, id, alice, "Go")
	require.NoError(t, err)
	_, err = f.learn.SetSkillLevel(ctx, id, alice, "beginner")
	require.NoError(t, err)
	_, err = f.learn.SubmitAnswers(ctx, id, alice, []model.UserAnswer{{QuestionID: "1", Answer: 0}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var resultsErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, resultsErr = f.learn.Results(ctx, id, alice)
	}()

	<-started
	_, err = f.learn.Reset(ctx, id, alice)
	require.NoError(t, err)
	close(release)
	wg.Wait()

	assert.ErrorIs(t, resultsErr, util.ErrStaleSession)
	view, err = f.learn.Get(ctx, id, alice)
	require.NoError(t, err)
	assert.False(t, view.HasLearningPath)
	assert.Equal(t, 0, view.CurrentStep)
}

func TestLearnService_Delete(t *testing.T) {
	f := newLearnFixture(t, llm.NewMockProvider(), 1)
	ctx := context.Background()

	view, err := f.learn.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, f.learn.Delete(ctx, view.ID))

	_, err = f.learn.Get(ctx, view.ID, alice)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
	assert.Equal(t, 0, f.learn.locks.size())
}

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	k := newKeyedMutex()
	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("a")
			counter++
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, k.size())
}

// quizSession drives a new session to its first quiz page.
func quizSession(t *testing.T, f *learnFixture) string {
	t.Helper()
	ctx := context.Background()
	view, err := f.learn.Create(ctx)
	require.NoError(t, err)
	_, err = f.learn.SetTopic(ctx, view.ID, alice, "Go")
	require.NoError(t, err)
	_, err = f.learn.SetSkillLevel(ctx, view.ID, alice, "beginner")
	require.NoError(t, err)
	return view.ID
}
