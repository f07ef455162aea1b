// Package normalize turns free-form model output into validated quiz
// questions and roadmap milestones.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"learno_backend/internal/model"
	"learno_backend/pkg/logger"

	"go.uber.org/zap"
)

// Warning flags a question whose stated correct answer matched no option.
// Index 0 was substituted.
type Warning struct {
	QuestionID string `json:"questionId"`
	Given      string `json:"given"`
}

type QuestionSet struct {
	Questions []model.Question
	Warnings  []Warning
}

var fenceRe = regexp.MustCompile("```[A-Za-z0-9_-]*")

// Questions normalizes a quiz. Any structural problem fails the whole batch.
func Questions(raw string) (*QuestionSet, error) {
	items, err := decodeArray("questions", questionSchema, raw)
	if err != nil {
		return nil, err
	}

	set := &QuestionSet{Questions: make([]model.Question, 0, len(items))}
	seen := make(map[string]bool, len(items))

	for i, item := range items {
		obj := item.(map[string]any)

		id := scalarString(obj["id"])
		if id == "" {
			return nil, newParseError(StageValidate, raw, "question %d has an empty id", i)
		}
		if seen[id] {
			return nil, newParseError(StageValidate, raw, "duplicate question id %q", id)
		}
		seen[id] = true

		text := strings.TrimSpace(obj["text"].(string))
		if text == "" {
			return nil, newParseError(StageValidate, raw, "question %s has empty text", id)
		}

		options := coerceOptions(obj["options"])
		for j, o := range options {
			if o == "" {
				return nil, newParseError(StageValidate, raw, "question %s option %d is blank", id, j)
			}
		}
		if len(options) < 2 {
			return nil, newParseError(StageValidate, raw, "question %s has %d options, need at least 2", id, len(options))
		}

		given := scalarString(obj["correctAnswer"])
		answer := indexOf(options, given)
		if answer < 0 {
			logger.Log.Warn("Correct answer matches no option, using first option",
				zap.String("questionId", id),
				zap.String("given", given),
				zap.Strings("options", options))
			set.Warnings = append(set.Warnings, Warning{QuestionID: id, Given: given})
			answer = 0
		}

		set.Questions = append(set.Questions, model.Question{
			ID:            id,
			Text:          text,
			Options:       options,
			CorrectAnswer: answer,
		})
	}

	return set, nil
}

// Milestones normalizes a roadmap. Fields are taken verbatim; ids must be
// unique and prerequisites acyclic.
func Milestones(raw string) ([]model.Milestone, error) {
	items, err := decodeArray("milestones", milestoneSchema, raw)
	if err != nil {
		return nil, err
	}

	milestones := make([]model.Milestone, 0, len(items))
	seen := make(map[string]bool, len(items))

	for i, item := range items {
		obj := item.(map[string]any)

		id := scalarString(obj["id"])
		if id == "" {
			return nil, newParseError(StageValidate, raw, "milestone %d has an empty id", i)
		}
		if seen[id] {
			return nil, newParseError(StageValidate, raw, "duplicate milestone id %q", id)
		}
		seen[id] = true

		m := model.Milestone{
			ID:            id,
			Title:         obj["title"].(string),
			Description:   optionalString(obj["description"]),
			Duration:      optionalString(obj["duration"]),
			Prerequisites: []string{},
		}
		if prereqs, ok := obj["prerequisites"].([]any); ok {
			for _, p := range prereqs {
				m.Prerequisites = append(m.Prerequisites, scalarString(p))
			}
		}
		milestones = append(milestones, m)
	}

	if cycle := findCycle(milestones); cycle != "" {
		return nil, newParseError(StageValidate, raw, "prerequisite cycle through %q", cycle)
	}
	return milestones, nil
}

// ExtractArray strips code fences and returns the text between the first '['
// and the last ']'.
func ExtractArray(raw string) (string, error) {
	s := fenceRe.ReplaceAllString(raw, "")
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return "", newParseError(StageExtract, raw, "no JSON array found")
	}
	return s[start : end+1], nil
}

// decodeArray runs the two-phase parse: strict decode, then a single repair
// pass, then schema validation.
func decodeArray(name, schema, raw string) ([]any, error) {
	text, err := ExtractArray(raw)
	if err != nil {
		return nil, err
	}

	doc, err := decodeJSON(text)
	if err != nil {
		repaired := repairJSON(text)
		doc, err = decodeJSON(repaired)
		if err != nil {
			return nil, newParseError(StageDecode, text, "%v", err)
		}
		logger.Log.Debug("Repaired malformed AI JSON", zap.String("kind", name))
	}

	if err := validateSchema(name, schema, doc, text); err != nil {
		return nil, err
	}

	items, ok := doc.([]any)
	if !ok {
		return nil, newParseError(StageDecode, text, "expected a JSON array")
	}
	return items, nil
}

func decodeJSON(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON array")
	}
	return doc, nil
}

// coerceOptions accepts an array, a JSON-encoded array string, or a comma
// separated string. Entries are trimmed; blank entries are kept so the
// caller can reject them.
func coerceOptions(v any) []string {
	switch opts := v.(type) {
	case []any:
		out := make([]string, 0, len(opts))
		for _, o := range opts {
			out = append(out, strings.TrimSpace(scalarString(o)))
		}
		return out
	case string:
		var parsed []string
		dec := json.NewDecoder(bytes.NewReader([]byte(opts)))
		if err := dec.Decode(&parsed); err == nil {
			return coerceOptions(toAny(parsed))
		}
		trimmed := strings.TrimSpace(opts)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			trimmed = trimmed[1 : len(trimmed)-1]
		}
		if trimmed == "" {
			return nil
		}
		var out []string
		for _, part := range strings.Split(trimmed, ",") {
			out = append(out, strings.TrimSpace(strings.Trim(strings.TrimSpace(part), `"'`)))
		}
		return out
	}
	return nil
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func optionalString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func indexOf(options []string, want string) int {
	for i, o := range options {
		if o == want {
			return i
		}
	}
	return -1
}

// findCycle returns a milestone id on a prerequisite cycle, or "".
// Prerequisites naming unknown milestones are ignored.
func findCycle(milestones []model.Milestone) string {
	deps := make(map[string][]string, len(milestones))
	for _, m := range milestones {
		deps[m.ID] = m.Prerequisites
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(milestones))

	var visit func(id string) string
	visit = func(id string) string {
		state[id] = visiting
		for _, p := range deps[id] {
			if _, ok := deps[p]; !ok {
				continue
			}
			switch state[p] {
			case visiting:
				return p
			case unvisited:
				if c := visit(p); c != "" {
					return c
				}
			}
		}
		state[id] = done
		return ""
	}

	for _, m := range milestones {
		if state[m.ID] == unvisited {
			if c := visit(m.ID); c != "" {
				return c
			}
		}
	}
	return ""
}
