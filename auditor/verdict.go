package auditor

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/isdmx/nexus/models"
)

// ErrMalformedVerdict is returned when an audit response does not fit the verdict schema
var ErrMalformedVerdict = errors.New("malformed audit verdict")

// defaultRejection is used when the auditor rejects without saying why
const defaultRejection = "The security auditor rejected the code without giving a reason. Review it for injection flaws and hardcoded secrets."

var jsonFence = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

type rawVerdict struct {
	Status   *string `json:"status"`
	Feedback any     `json:"feedback"`
}

// ParseVerdict parses the auditor's structured response.
// Anything outside {"status": "APPROVED"|"REJECTED", "feedback": ...} yields ErrMalformedVerdict.
func ParseVerdict(raw string) (models.Verdict, error) {
	text := strings.TrimSpace(raw)
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	var rv rawVerdict
	if err := json.Unmarshal([]byte(text), &rv); err != nil {
		return models.Verdict{}, fmt.Errorf("%w: %w", ErrMalformedVerdict, err)
	}

	if rv.Status == nil {
		return models.Verdict{}, fmt.Errorf("%w: missing status field", ErrMalformedVerdict)
	}

	feedback := feedbackText(rv.Feedback)

	switch models.VerdictStatus(strings.ToUpper(strings.TrimSpace(*rv.Status))) {
	case models.VerdictApproved:
		return models.Verdict{Status: models.VerdictApproved}, nil
	case models.VerdictRejected:
		if feedback == "" {
			feedback = defaultRejection
		}
		return models.Rejected(feedback), nil
	default:
		return models.Verdict{}, fmt.Errorf("%w: unknown status %q", ErrMalformedVerdict, *rv.Status)
	}
}

// feedbackText flattens the feedback field. Small models sometimes send a list of findings.
func feedbackText(v any) string {
	switch f := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(f)
	case []any:
		parts := make([]string, 0, len(f))
		for _, item := range f {
			if s := feedbackText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		b, err := json.Marshal(f)
		if err != nil {
			return fmt.Sprint(f)
		}
		return string(b)
	}
}
