package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"learno_backend/internal/model"
	"learno_backend/internal/normalize"
	"learno_backend/internal/session"
	"learno_backend/pkg/logger"
	"learno_backend/pkg/monitoring"

	"go.uber.org/zap"
)

const (
	nodeSpacingX = 400
	nodeSpacingY = 300

	DefaultRoadmapWarning = "Could not generate custom learning path. Showing default roadmap."
)

type Score struct {
	Correct    int     `json:"score"`
	Attempted  int     `json:"attempted"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Rounded is the whole-number percentage shown to users and sent to the model.
func (s Score) Rounded() int {
	return int(math.Round(s.Percentage))
}

// ScoreQuiz scores only attempted questions. The last answer recorded for a
// question counts; answers for unknown questions are ignored.
func ScoreQuiz(questions []model.Question, answers []model.UserAnswer) Score {
	byID := make(map[string]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	latest := make(map[string]int, len(answers))
	var order []string
	for _, a := range answers {
		if _, ok := byID[a.QuestionID]; !ok {
			continue
		}
		if _, seen := latest[a.QuestionID]; !seen {
			order = append(order, a.QuestionID)
		}
		latest[a.QuestionID] = a.Answer
	}

	score := Score{Attempted: len(order), Total: len(questions)}
	for _, id := range order {
		if latest[id] == byID[id].CorrectAnswer {
			score.Correct++
		}
	}
	if score.Attempted > 0 {
		score.Percentage = 100 * float64(score.Correct) / float64(score.Attempted)
	}
	return score
}

// BuildGraph lays milestones on a grid rowWidth nodes wide and adds an edge
// per known prerequisite. Unknown prerequisites are skipped.
func BuildGraph(milestones []model.Milestone, rowWidth int) model.RoadmapGraph {
	if rowWidth < 1 {
		rowWidth = 3
	}

	known := make(map[string]bool, len(milestones))
	for _, m := range milestones {
		known[m.ID] = true
	}

	graph := model.RoadmapGraph{
		Nodes: make([]model.RoadmapNode, 0, len(milestones)),
		Edges: []model.RoadmapEdge{},
	}
	for i, m := range milestones {
		graph.Nodes = append(graph.Nodes, model.RoadmapNode{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Duration:    m.Duration,
			Position: model.Position{
				X: nodeSpacingX * (i % rowWidth),
				Y: nodeSpacingY * (i / rowWidth),
			},
		})
		for _, prereq := range m.Prerequisites {
			if !known[prereq] {
				continue
			}
			graph.Edges = append(graph.Edges, model.RoadmapEdge{
				ID:     prereq + "-" + m.ID,
				Source: prereq,
				Target: m.ID,
			})
		}
	}
	return graph
}

type Roadmap struct {
	Milestones []model.Milestone  `json:"milestones"`
	Graph      model.RoadmapGraph `json:"graph"`
	Warning    string             `json:"warning,omitempty"`
	// Serialized is the learning path as stored on the session and in saved courses.
	Serialized string `json:"-"`
}

type RoadmapService struct {
	ai       *AIService
	rowWidth int
}

func NewRoadmapService(ai *AIService, rowWidth int) *RoadmapService {
	return &RoadmapService{ai: ai, rowWidth: rowWidth}
}

// Stored rebuilds the roadmap from the session's learning path without
// calling the model.
func (s *RoadmapService) Stored(sess *session.Session) (*Roadmap, bool) {
	path, ok := sess.LearningPath()
	if !ok {
		return nil, false
	}
	var milestones []model.Milestone
	if err := json.Unmarshal([]byte(path), &milestones); err != nil {
		logger.Log.Warn("Stored learning path is unreadable, regenerating",
			zap.String("session", sess.ID()), zap.Error(err))
		return nil, false
	}
	return &Roadmap{
		Milestones: milestones,
		Graph:      BuildGraph(milestones, s.rowWidth),
		Warning:    sess.RoadmapWarning(),
		Serialized: path,
	}, true
}

// Generate never fails: any generation or parse error yields the default
// roadmap with a warning.
func (s *RoadmapService) Generate(ctx context.Context, topic model.Topic, level model.SkillLevel, score Score) *Roadmap {
	var warning string

	milestones, err := s.generate(ctx, topic, level, score)
	if err != nil {
		logger.Log.Warn("Falling back to default roadmap",
			zap.String("topic", topic.Name),
			zap.String("level", string(level)),
			zap.Error(err))
		monitoring.RoadmapFallbacks.Inc()
		milestones = model.DefaultMilestones()
		warning = DefaultRoadmapWarning
	}

	serialized, _ := json.MarshalIndent(milestones, "", "  ")
	return &Roadmap{
		Milestones: milestones,
		Graph:      BuildGraph(milestones, s.rowWidth),
		Warning:    warning,
		Serialized: string(serialized),
	}
}

func (s *RoadmapService) generate(ctx context.Context, topic model.Topic, level model.SkillLevel, score Score) ([]model.Milestone, error) {
	raw, err := s.ai.Generate(ctx, "roadmap", RoadmapPrompt(topic.Name, level, score.Rounded()))
	if err != nil {
		return nil, fmt.Errorf("generate roadmap: %w", err)
	}
	return normalize.Milestones(raw)
}

// Apply stores a generated roadmap on the session.
func (s *RoadmapService) Apply(sess *session.Session, rm *Roadmap) {
	sess.SetLearningPath(rm.Serialized)
	sess.SetRoadmapWarning(rm.Warning)
}

// Assemble reuses the stored learning path when there is one, so viewing the
// results twice never calls the model twice.
func (s *RoadmapService) Assemble(ctx context.Context, sess *session.Session) *Roadmap {
	if rm, ok := s.Stored(sess); ok {
		return rm
	}
	topic, _ := sess.Topic()
	rm := s.Generate(ctx, topic, sess.SkillLevel(), ScoreQuiz(sess.Questions(), sess.Answers()))
	s.Apply(sess, rm)
	return rm
}

// Regenerate discards the stored learning path and assembles a fresh one.
func (s *RoadmapService) Regenerate(ctx context.Context, sess *session.Session) *Roadmap {
	sess.ClearLearningPath()
	return s.Assemble(ctx, sess)
}
