
package models

type Verdict string

const (
	VerdictReal      Verdict = "real"
	VerdictFake      Verdict = "fake"
	VerdictUncertain Verdict = "uncertain"
)

// Kind is what the user submitted.
type Kind string

const (
	KindURL   Kind = "url"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// KeywordSet holds the indicator phrases. Fake and Real are matched as
// case-insensitive substrings, each phrase counting at most once.
type KeywordSet struct {
	Fake []string `json:"fake"`
	Real []string `json:"real"`
}

type AnalysisResult struct {
	Verdict    Verdict `json:"verdict"`
	Confidence int     `json:"confidence"`
	Analysis   string  `json:"analysis"`
}

// BatchRecord is one NDJSON line written by the batch CLI.
type BatchRecord struct {
	URL       string          `json:"url"`
	Title     string          `json:"title,omitempty"`
	FakeScore int             `json:"fakeScore"`
	RealScore int             `json:"realScore"`
	Result    *AnalysisResult `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}
