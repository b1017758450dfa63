// Package answer produces explanations for study questions from an ordered
// list of providers, ending with a deterministic template that cannot fail.
package answer

import (
	"fmt"
	"strings"
)

// Tone controls how an explanation is pitched
type Tone string

const (
	ToneSimple    Tone = "simple"
	ToneNormal    Tone = "normal"
	ToneExamReady Tone = "exam-ready"
)

// Detail level bounds for the number of key points
const (
	MinDetailLevel     = 3
	MaxDetailLevel     = 8
	DefaultDetailLevel = 5
)

// ParseTone maps user input to a Tone. Empty input selects ToneNormal.
func ParseTone(s string) (Tone, error) {
	switch Tone(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return ToneNormal, nil
	case ToneSimple:
		return ToneSimple, nil
	case ToneNormal:
		return ToneNormal, nil
	case ToneExamReady:
		return ToneExamReady, nil
	default:
		return "", fmt.Errorf("unknown tone %q", s)
	}
}

// ClampDetail keeps n within MinDetailLevel..MaxDetailLevel. Zero selects the default.
func ClampDetail(n int) int {
	switch {
	case n == 0:
		return DefaultDetailLevel
	case n < MinDetailLevel:
		return MinDetailLevel
	case n > MaxDetailLevel:
		return MaxDetailLevel
	default:
		return n
	}
}

// Question is one request for an explanation
type Question struct {
	Text        string
	DetailLevel int
	Tone        Tone
}

// Normalized returns q with trimmed text, a bounded detail level and a known tone
func (q Question) Normalized() Question {
	q.Text = strings.TrimSpace(q.Text)
	q.DetailLevel = ClampDetail(q.DetailLevel)
	if tone, err := ParseTone(string(q.Tone)); err == nil {
		q.Tone = tone
	} else {
		q.Tone = ToneNormal
	}
	return q
}
