package optimizer

import "time"

// ProtocolVersion is the version of the request framing sent on the first
// stdin line. The external process rejects versions it does not know.
const ProtocolVersion = 1

// ErrorInsufficientData is the error token the external process prints (with
// exit status 0) when the review history is too small to fit parameters.
const ErrorInsufficientData = "insufficient_data"

// Header is the first stdin line of an optimization request.
type Header struct {
	Version int       `json:"version"`
	Weights []float64 `json:"weights"` // current vector; null when the learner has none
}

// Record is one review event, one JSON line per review after the header.
type Record struct {
	WordID      int64     `json:"word_id"`
	Rating      int       `json:"rating"`
	ReviewedAt  time.Time `json:"reviewed_at"`
	ElapsedDays float64   `json:"elapsed_days"`
}

// Result is the single JSON line the external process writes to stdout:
// either a full replacement weight vector or an error token.
type Result struct {
	Weights []float64 `json:"weights,omitempty"`
	Error   string    `json:"error,omitempty"`
}
