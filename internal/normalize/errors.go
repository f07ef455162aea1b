package normalize

import "fmt"

// Stages reported by ParseError.
const (
	StageExtract  = "extract"
	StageDecode   = "decode"
	StageSchema   = "schema"
	StageValidate = "validate"
)

// ParseError reports AI output that could not be turned into records.
// Raw holds the text that was being parsed at the failing stage.
type ParseError struct {
	Stage  string
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse AI response (%s): %s", e.Stage, e.Reason)
}

func newParseError(stage, raw, format string, args ...any) *ParseError {
	return &ParseError{Stage: stage, Reason: fmt.Sprintf(format, args...), Raw: raw}
}
