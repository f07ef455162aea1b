package model

import (
	"fmt"
	"strings"
)

type Topic struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SkillLevel string

const (
	Beginner     SkillLevel = "beginner"
	Intermediate SkillLevel = "intermediate"
	Advanced     SkillLevel = "advanced"
)

var SkillLevels = []SkillLevel{Beginner, Intermediate, Advanced}

func ParseSkillLevel(s string) (SkillLevel, error) {
	level := SkillLevel(strings.ToLower(strings.TrimSpace(s)))
	switch level {
	case Beginner, Intermediate, Advanced:
		return level, nil
	}
	return "", fmt.Errorf("unknown skill level %q", s)
}

func (l SkillLevel) String() string { return string(l) }

// Question is a normalized multiple choice question.
// CorrectAnswer is an index into Options.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("question has no id")
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question %s has no text", q.ID)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question %s has %d options, need at least 2", q.ID, len(q.Options))
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return fmt.Errorf("question %s correct answer %d out of range", q.ID, q.CorrectAnswer)
	}
	return nil
}

type UserAnswer struct {
	QuestionID string `json:"questionId"`
	Answer     int    `json:"answer"`
}
