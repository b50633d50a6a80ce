package transfer

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPClient is implemented by http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request describes one GET whose body is appended to Sink on success.
type Request struct {
	URL  string
	Sink string
}

// TransferError is the failure reason recorded for a request. Status is
// zero when the exchange failed below HTTP (DNS, refused, timeout, cancel).
type TransferError struct {
	URL    string
	Status int
	Err    error
}

// ErrContentType marks a 2xx response whose Content-Type was not accepted.
var ErrContentType = errors.New("unexpected content type")

func (e *TransferError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transfer %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("transfer %s: %v", e.URL, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// Outcome is the terminal state of one issued request.
type Outcome struct {
	Request  Request
	Bytes    int64
	Duration time.Duration
	Err      error
}

// OK reports whether the transfer succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Tally aggregates the outcomes of a batch. Ok+Failed always equals Issued.
// Skipped is set when the batch was not run because its sink was cached.
type Tally struct {
	Issued  int
	Ok      int
	Failed  int
	Skipped bool
}

func (t Tally) String() string {
	if t.Skipped {
		return "skipped (cached)"
	}
	return fmt.Sprintf("ok=%d failed=%d", t.Ok, t.Failed)
}

// Options tune a Scheduler. Zero values select the defaults.
type Options struct {
	// MaxInFlight caps simultaneous transfers. Zero or negative means one
	// slot per request in the batch.
	MaxInFlight int
	// PollInterval bounds each wait for completions.
	PollInterval time.Duration
	UserAgent    string
	// Delimiter is written after each successful body appended to a sink.
	Delimiter []byte
	// ContentType, when set, is a prefix the response Content-Type must
	// carry; other bodies fail the transfer and never reach the sink.
	ContentType string
	// SpoolDir holds in-progress bodies; empty selects os.TempDir.
	SpoolDir string
	// Observe, when set, is called from the scheduling goroutine for every
	// outcome in completion order.
	Observe func(Outcome)
}

const (
	DefaultMaxInFlight  = 64
	DefaultPollInterval = time.Second
)
