// Package pipeline runs an item through a sequence of stages. Steps within a
// stage run in parallel; stages run one after another.
package pipeline

import (
	"context"
)

// Step is a single operation on an item. Steps sharing a stage run
// concurrently on the same item and must write disjoint fields.
type Step[T any] func(ctx context.Context, item *T) error

// Stage groups steps that are safe to execute in parallel for one item.
type Stage[T any] struct {
	name  string
	steps []Step[T]
}

// NewStage constructs a named Stage from the provided steps.
func NewStage[T any](name string, steps ...Step[T]) Stage[T] {
	return Stage[T]{name: name, steps: steps}
}

// Name returns the stage name used in logs and errors.
func (s Stage[T]) Name() string { return s.name }
