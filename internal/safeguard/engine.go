// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package safeguard

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/examineai/examine-tui/internal/model"
	"github.com/examineai/examine-tui/internal/responder"
)

// DefaultConcurrency bounds the per-principle fan-out so one evaluation
// run does not trip the endpoint's rate limits.
const DefaultConcurrency = 4

// Fetcher is the completion dependency. *responder.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, msgs []*model.Message, modelID string) (*responder.Completion, error)
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine evaluates responses against a principles list. Principle
// evaluations inside one run are independent and execute concurrently;
// the assembled result is keyed by principle description, so collection
// order does not matter.
type Engine struct {
	fetcher     Fetcher
	modelID     string
	concurrency int
	logger      *zap.Logger
}

// NewEngine creates an engine that evaluates with the given model.
func NewEngine(fetcher Fetcher, modelID string) *Engine {
	return &Engine{
		fetcher:     fetcher,
		modelID:     modelID,
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
	}
}

// WithConcurrency bounds the evaluation fan-out.
func (e *Engine) WithConcurrency(n int) *Engine {
	if n > 0 {
		e.concurrency = n
	}
	return e
}

// WithLogger sets the structured logger.
func (e *Engine) WithLogger(logger *zap.Logger) *Engine {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// Evaluate scores a response against every principle and aggregates the
// outcomes. Individual failures (fetch errors, unparsable evaluator
// output) become EvalError records; they never abort the run, so the
// result always covers the full principles list.
func (e *Engine) Evaluate(ctx context.Context, response string, principles []Principle) *Result {
	records := make([]Record, len(principles))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, p := range principles {
		i, p := i, p
		g.Go(func() error {
			rec := e.evaluatePrinciple(ctx, response, p)
			mu.Lock()
			records[i] = rec
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes the fan-in.
	_ = g.Wait()

	result := NewResult(records)
	e.logger.Info("evaluation complete",
		zap.Int("principles", result.Len()),
		zap.Int("numeric", result.CountNumeric),
		zap.Int("not_applicable", result.CountNotApplicable),
		zap.Int("eval_errors", result.CountEvalError),
	)
	return result
}

// evaluatePrinciple runs one principle's assessment end to end.
func (e *Engine) evaluatePrinciple(ctx context.Context, response string, p Principle) Record {
	prompt := model.NewSystemMessage(assessmentPrompt(response, p.Description))

	comp, err := e.fetcher.Fetch(ctx, []*model.Message{prompt}, e.modelID)
	if err != nil {
		e.logger.Warn("principle evaluation fetch failed",
			zap.String("principle", p.Description),
			zap.Error(err),
		)
		return Record{
			Principle:  p.Description,
			Assessment: err.Error(),
			Score:      EvalError,
		}
	}

	score, assessment := ParseEvaluation(comp.Content)
	return Record{
		Principle:  p.Description,
		Assessment: assessment,
		Score:      score,
	}
}
