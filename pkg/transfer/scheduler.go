// Package transfer issues batches of HTTP GETs with a bounded number of
// simultaneous transfers and appends each successful body to a file sink.
//
// A single goroutine owns the batch: it starts transfers while slots are
// free, waits a bounded interval for completions, settles whatever finished
// and repeats until nothing is pending or in flight. A failed request is
// counted and logged; it never stops the batch.
package transfer

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
)

type Scheduler struct {
	client HTTPClient
	opts   Options
	sinks  *sinkSet
}

type completion struct {
	id      int
	outcome Outcome
}

func NewScheduler(client HTTPClient, opts Options) *Scheduler {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Scheduler{client: client, opts: opts, sinks: newSinkSet()}
}

// FetchOnce runs reqs unless sink already exists and is non-empty, in which
// case no request is issued and the returned tally is marked Skipped. The
// check is made once for the whole batch.
func (s *Scheduler) FetchOnce(ctx context.Context, sink string, reqs []Request) (Tally, error) {
	populated, err := SinkPopulated(sink)
	if err != nil {
		return Tally{}, err
	}
	if populated {
		log.Printf("%s already present, skipping %d requests", sink, len(reqs))
		return Tally{Skipped: true}, nil
	}
	return s.Run(ctx, reqs)
}

// Run issues every request and returns once each has succeeded or failed.
// Cancelling ctx aborts in-flight transfers, which are counted as failures,
// and leaves the remaining requests unissued; ctx.Err() is returned with the
// tally so far.
func (s *Scheduler) Run(ctx context.Context, reqs []Request) (Tally, error) {
	var tally Tally
	if len(reqs) == 0 {
		return tally, nil
	}

	limit := s.opts.MaxInFlight
	if limit <= 0 || limit > len(reqs) {
		limit = len(reqs)
	}
	slots := semaphore.NewWeighted(int64(limit))

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan completion, limit)
	active := make(map[int]Request, limit)
	next := 0
	ctxDone := ctx.Done()

	timer := time.NewTimer(s.opts.PollInterval)
	defer timer.Stop()

	settle := func(c completion) {
		delete(active, c.id)
		slots.Release(1)
		if c.outcome.OK() {
			tally.Ok++
		} else {
			tally.Failed++
			log.Printf("Transfer failed: %v", c.outcome.Err)
		}
		if s.opts.Observe != nil {
			s.opts.Observe(c.outcome)
		}
	}

	for next < len(reqs) || len(active) > 0 {
		for next < len(reqs) && loopCtx.Err() == nil && slots.TryAcquire(1) {
			id, req := next, reqs[next]
			next++
			active[id] = req
			tally.Issued++
			go func() {
				done <- completion{id: id, outcome: s.transfer(loopCtx, req)}
			}()
		}
		if len(active) == 0 {
			break
		}

		timer.Reset(s.opts.PollInterval)
		select {
		case c := <-done:
			settle(c)
		case <-ctxDone:
			ctxDone = nil
			cancel()
			log.Printf("Transfer batch cancelled with %d in flight and %d not issued", len(active), len(reqs)-next)
		case <-timer.C:
			log.Printf("Transfers in progress: %d in flight, %d pending", len(active), len(reqs)-next)
		}

	drain:
		for {
			select {
			case c := <-done:
				settle(c)
			default:
				break drain
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return tally, err
	}
	return tally, nil
}

func (s *Scheduler) transfer(ctx context.Context, req Request) Outcome {
	start := time.Now()
	out := Outcome{Request: req}
	out.Bytes, out.Err = s.fetch(ctx, req)
	out.Duration = time.Since(start)
	return out
}

func (s *Scheduler) fetch(ctx context.Context, req Request) (int64, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return 0, &TransferError{URL: req.URL, Err: err}
	}
	if s.opts.UserAgent != "" {
		httpReq.Header.Set("User-Agent", s.opts.UserAgent)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return 0, &TransferError{URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &TransferError{URL: req.URL, Status: resp.StatusCode}
	}
	if want := s.opts.ContentType; want != "" {
		if got := resp.Header.Get("Content-Type"); !strings.HasPrefix(got, want) {
			return 0, &TransferError{URL: req.URL, Err: fmt.Errorf("%w %q, want %s", ErrContentType, got, want)}
		}
	}

	n, err := s.sinks.write(req.Sink, resp.Body, s.opts.SpoolDir, s.opts.Delimiter)
	if err != nil {
		return n, &TransferError{URL: req.URL, Err: err}
	}
	return n, nil
}
