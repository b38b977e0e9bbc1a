package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Label is the two-valued outcome of classification.
type Label string

const (
	LabelAuthentic  Label = "authentic"
	LabelSuspicious Label = "suspicious"
)

// Wire prefixes. Every serialized verdict starts with exactly one of these.
const (
	AuthenticPrefix  = "authentic: "
	SuspiciousPrefix = "suspicious: "
)

// Verdict is a classification result. Construct it with Authentic or
// Suspicious so Label is always one of the two known values.
type Verdict struct {
	Label  Label
	Reason string
}

// Authentic returns an authentic verdict with the given reason.
func Authentic(reason string) Verdict {
	return Verdict{Label: LabelAuthentic, Reason: reason}
}

// Suspicious returns a suspicious verdict with the given reason.
func Suspicious(reason string) Verdict {
	return Verdict{Label: LabelSuspicious, Reason: reason}
}

// IsSuspicious reports whether v carries the suspicious label.
func (v Verdict) IsSuspicious() bool {
	return v.Label == LabelSuspicious
}

// String renders the persisted form, e.g. "suspicious: very short review".
func (v Verdict) String() string {
	if v.Label == LabelSuspicious {
		return SuspiciousPrefix + v.Reason
	}
	return AuthenticPrefix + v.Reason
}

// ParseVerdict parses a line produced by String or by a remote model.
// Leading and trailing whitespace is ignored. The label prefix is
// case-sensitive; anything else is an error.
func ParseVerdict(s string) (Verdict, error) {
	line := strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(line, AuthenticPrefix):
		return Authentic(strings.TrimPrefix(line, AuthenticPrefix)), nil
	case strings.HasPrefix(line, SuspiciousPrefix):
		return Suspicious(strings.TrimPrefix(line, SuspiciousPrefix)), nil
	default:
		return Verdict{}, fmt.Errorf("%w: %q", ErrMalformedVerdict, truncate(line, maxQuotedVerdict))
	}
}

// MarshalJSON encodes the verdict as its wire string.
func (v Verdict) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON decodes a wire string.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseVerdict(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

const maxQuotedVerdict = 80

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
