
package classifier

import (
	"strings"

	"github.com/pkg/errors"

	"khabar-verifier/internal/models"
)

const (
	baseConfidence      = 60
	perMatchConfidence  = 5
	maxConfidence       = 85
	uncertainConfidence = 50
)

// ClassificationError is returned when scoring fails. The message shown to
// users is fixed; Cause is kept for logs.
type ClassificationError struct {
	Cause error
}

func (e *ClassificationError) Error() string { return "تجزیہ میں خرابی آگئی" }

func (e *ClassificationError) Unwrap() error { return e.Cause }

// DefaultKeywords returns a fresh copy of the built-in indicator tables.
func DefaultKeywords() models.KeywordSet {
	return models.KeywordSet{
		Fake: []string{
			"breaking", "urgent", "shocking", "you won't believe",
			"click here", "share now", "viral", "exclusive",
		},
		Real: []string{
			"according to", "sources say", "reported by", "study shows",
			"official", "confirmed", "statement", "research",
		},
	}
}

// Classifier scores text against a fixed KeywordSet. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	fake []string
	real []string
}

func New(ks models.KeywordSet) *Classifier {
	return &Classifier{
		fake: normalize(ks.Fake),
		real: normalize(ks.Real),
	}
}

// normalize lower-cases, trims and de-duplicates phrases so each one
// contributes at most once.
func normalize(phrases []string) []string {
	seen := make(map[string]struct{}, len(phrases))
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Scores returns the number of distinct fake and real phrases found in text.
func (c *Classifier) Scores(text string) (fakeScore, realScore int) {
	lower := strings.ToLower(text)
	return count(lower, c.fake), count(lower, c.real)
}

func count(text string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if strings.Contains(text, p) {
			n++
		}
	}
	return n
}

// Classify returns the verdict for text. Only KindURL inspects text; image
// and video kinds get the canned media response.
func (c *Classifier) Classify(text string, kind models.Kind) (res models.AnalysisResult, err error) {
	if kind == models.KindImage || kind == models.KindVideo {
		return Media(kind), nil
	}
	if kind != models.KindURL {
		return models.AnalysisResult{}, &ClassificationError{Cause: errors.Errorf("unknown kind %q", kind)}
	}

	res, _, _, err = c.Analyze(text)
	return res, err
}

// Analyze scores text once and returns the verdict together with the raw
// counts.
func (c *Classifier) Analyze(text string) (res models.AnalysisResult, fakeScore, realScore int, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, fakeScore, realScore = models.AnalysisResult{}, 0, 0
			err = &ClassificationError{Cause: errors.Errorf("panic during scoring: %v", r)}
		}
	}()

	fakeScore, realScore = c.Scores(text)
	return decide(fakeScore, realScore), fakeScore, realScore, nil
}

func decide(fakeScore, realScore int) models.AnalysisResult {
	switch {
	case realScore > fakeScore:
		return models.AnalysisResult{
			Verdict:    models.VerdictReal,
			Confidence: confidence(realScore),
			Analysis:   trustworthyText,
		}
	case fakeScore > realScore:
		return models.AnalysisResult{
			Verdict:    models.VerdictFake,
			Confidence: confidence(fakeScore),
			Analysis:   suspiciousText,
		}
	default:
		return models.AnalysisResult{
			Verdict:    models.VerdictUncertain,
			Confidence: uncertainConfidence,
			Analysis:   uncertainText,
		}
	}
}

func confidence(score int) int {
	c := baseConfidence + perMatchConfidence*score
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}
