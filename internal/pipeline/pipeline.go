package pipeline

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
)

// StageError identifies the stage whose step failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// Pipeline applies its stages in order to one item at a time.
type Pipeline[T any] struct {
	stages []Stage[T]
}

func NewPipeline[T any](stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: stages}
}

// Run applies every stage to item. All steps of a stage are started together
// and must complete before the next stage begins. The first failing step
// cancels the context of its siblings, and no later stage runs.
func (p *Pipeline[T]) Run(ctx context.Context, item *T) error {
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return &StageError{Stage: stage.name, Err: err}
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, step := range stage.steps {
			g.Go(func() error {
				return step(gctx, item)
			})
		}
		if err := g.Wait(); err != nil {
			log.Printf("Stage %s failed: %v", stage.name, err)
			return &StageError{Stage: stage.name, Err: err}
		}
	}
	return nil
}
