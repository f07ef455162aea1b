// Package wizard maps the session step counter to the view a learner sees.
package wizard

type View string

const (
	ViewTopicSelection View = "topic-selection"
	ViewSkillLevel     View = "skill-level"
	ViewQuiz           View = "quiz"
	ViewResults        View = "results"
	ViewSignIn         View = "sign-in"
)

const (
	StepTopicSelection = 0
	StepSkillLevel     = 1
	firstQuizStep      = 2
)

// Controller is the step table: topic, skill level, QuizPages quiz pages,
// then results.
type Controller struct {
	QuizPages int
}

func New(quizPages int) Controller {
	if quizPages < 1 {
		quizPages = 1
	}
	return Controller{QuizPages: quizPages}
}

func (c Controller) pages() int {
	if c.QuizPages < 1 {
		return 1
	}
	return c.QuizPages
}

func (c Controller) ResultsStep() int {
	return firstQuizStep + c.pages()
}

func (c Controller) IsQuizStep(step int) bool {
	return step >= firstQuizStep && step < c.ResultsStep()
}

// QuizPage returns the zero-based quiz page for step.
func (c Controller) QuizPage(step int) (int, bool) {
	if !c.IsQuizStep(step) {
		return 0, false
	}
	return step - firstQuizStep, true
}

// Resolve is evaluated on every request. Anything past the entry step needs
// an authenticated user; unknown steps fall back to topic selection.
func (c Controller) Resolve(step int, authenticated bool) View {
	if step > StepTopicSelection && !authenticated {
		return ViewSignIn
	}
	switch {
	case step == StepTopicSelection:
		return ViewTopicSelection
	case step == StepSkillLevel:
		return ViewSkillLevel
	case c.IsQuizStep(step):
		return ViewQuiz
	case step == c.ResultsStep():
		return ViewResults
	default:
		return ViewTopicSelection
	}
}

// PageSlice returns the [start, end) range of questions shown on quiz page
// page when total questions are spread over the configured pages.
func (c Controller) PageSlice(page, total int) (int, int) {
	per := (total + c.pages() - 1) / c.pages()
	start := page * per
	if start > total {
		start = total
	}
	end := start + per
	if end > total {
		end = total
	}
	return start, end
}
