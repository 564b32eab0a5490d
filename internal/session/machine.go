// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session sequences one conversation: user input, response
// fetch, and safeguard evaluation. At most one fetch and one evaluation
// run are ever in flight, and every transition triggers a render
// notification to the presentation layer.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/examineai/examine-tui/internal/budget"
	"github.com/examineai/examine-tui/internal/model"
	"github.com/examineai/examine-tui/internal/responder"
	"github.com/examineai/examine-tui/internal/safeguard"
)

var (
	// ErrInputDisabled is returned when input arrives while a fetch or
	// evaluation is in flight.
	ErrInputDisabled = errors.New("input is disabled while a request is in flight")

	// ErrEvaluateDisabled is returned when Evaluate is triggered outside
	// the response-received state.
	ErrEvaluateDisabled = errors.New("evaluation is only available after a response")

	// ErrNoResponse is returned when there is no evaluable assistant
	// response in the transcript.
	ErrNoResponse = errors.New("no assistant response available to evaluate")
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// Fetcher fetches completions. *responder.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, msgs []*model.Message, modelID string) (*responder.Completion, error)
}

// Evaluator runs a safeguard pass. *safeguard.Engine satisfies it.
type Evaluator interface {
	Evaluate(ctx context.Context, response string, principles []safeguard.Principle) *safeguard.Result
}

// PrincipleSource supplies the active principles list.
// *safeguard.Source satisfies it.
type PrincipleSource interface {
	Principles() []safeguard.Principle
}

// TranscriptStore persists messages as they are appended.
type TranscriptStore interface {
	Append(sessionID string, msg *model.Message) error
}

// ScoreStore persists evaluation results, overwriting the prior run.
type ScoreStore interface {
	Save(result *safeguard.Result) error
}

// Archiver receives a session's transcript when it is discarded by
// Reset. *archive.Archive satisfies it.
type Archiver interface {
	SaveTranscript(ctx context.Context, t *model.Transcript) error
}

// RenderFunc receives the state after each transition.
type RenderFunc func(state State)

// =============================================================================
// MACHINE
// =============================================================================

// Machine owns the transcript and the current evaluation result. Both
// are mutated only inside its transition handlers (single-writer), so
// collaborators read them through accessors that copy.
type Machine struct {
	mu         sync.Mutex
	state      State
	transcript *model.Transcript
	result     *safeguard.Result

	profile    model.Profile
	budget     *budget.Manager
	fetcher    Fetcher
	evaluator  Evaluator
	principles PrincipleSource

	transcripts TranscriptStore
	scores      ScoreStore
	archiver    Archiver

	onRender []RenderFunc
	logger   *zap.Logger
}

// Config wires a machine's collaborators. Fetcher, Evaluator, Budget
// and Principles are required; the stores are optional.
type Config struct {
	Profile     model.Profile
	Budget      *budget.Manager
	Fetcher     Fetcher
	Evaluator   Evaluator
	Principles  PrincipleSource
	Transcripts TranscriptStore
	Scores      ScoreStore
	Archiver    Archiver
	Logger      *zap.Logger
}

// NewMachine creates a machine in the idle state with an empty
// transcript.
func NewMachine(cfg Config) *Machine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{
		state:       StateIdle,
		transcript:  model.NewTranscript(cfg.Profile.ID),
		profile:     cfg.Profile,
		budget:      cfg.Budget,
		fetcher:     cfg.Fetcher,
		evaluator:   cfg.Evaluator,
		principles:  cfg.Principles,
		transcripts: cfg.Transcripts,
		scores:      cfg.Scores,
		archiver:    cfg.Archiver,
		logger:      logger,
	}
}

// OnRender registers a render notification callback. Callbacks run
// after every transition, outside the machine's lock.
func (m *Machine) OnRender(fn RenderFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRender = append(m.onRender, fn)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Transcript returns a deep copy of the transcript for rendering.
func (m *Machine) Transcript() *model.Transcript {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transcript.Clone()
}

// Result returns the current evaluation result, nil when none exists.
func (m *Machine) Result() *safeguard.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

// Model returns the active model profile.
func (m *Machine) Model() model.Profile {
	return m.profile
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Start marks an idle session as ready for input. The presentation
// layer calls this once its input control is mounted.
func (m *Machine) Start() {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return
	}
	m.state = StateAwaitingUserInput
	m.mu.Unlock()
	m.notify()
}

// Submit runs one full turn: append the user message, trim to budget,
// fetch, and append the assistant entry. Fetch failures and context
// overflow never escape as errors; they are recorded inline as ERR
// messages and the session stays usable. The only error returns are
// input gating violations.
func (m *Machine) Submit(ctx context.Context, input string) (*model.Message, error) {
	m.mu.Lock()
	if !m.state.InputEnabled() {
		m.mu.Unlock()
		return nil, ErrInputDisabled
	}

	userMsg := m.transcript.AppendUser(input)
	m.persistMessage(userMsg)
	outgoing := m.transcript.Messages
	m.state = StateResponsePending
	m.mu.Unlock()
	m.notify()

	reply := m.fetchReply(ctx, outgoing)

	m.mu.Lock()
	m.transcript.Append(reply)
	m.persistMessage(reply)
	m.state = StateResponseReceived
	m.mu.Unlock()
	m.notify()

	return reply, nil
}

// fetchReply trims the history and performs the fetch, converting every
// failure into an inline ERR message.
func (m *Machine) fetchReply(ctx context.Context, history []*model.Message) *model.Message {
	trimmed, err := m.budget.Trim(history, m.profile.ContextWindow)
	if err != nil {
		m.logger.Warn("turn rejected by budget", zap.Error(err))
		return model.NewErrorMessage("Error: the message does not fit into the context of the selected model.")
	}
	if trimmed.Truncated {
		m.logger.Info("history trimmed for request",
			zap.Int("dropped", trimmed.Dropped),
			zap.Int("tokens_kept", trimmed.TokensKept),
		)
	}

	comp, err := m.fetcher.Fetch(ctx, trimmed.Messages, m.profile.ID)
	if err != nil {
		m.logger.Warn("fetch failed",
			zap.String("kind", string(responder.KindOf(err))),
			zap.Error(err),
		)
		var reqErr *responder.RequestError
		if errors.As(err, &reqErr) {
			return model.NewErrorMessage(reqErr.Notice())
		}
		return model.NewErrorMessage("Error: " + err.Error())
	}
	return comp.ToMessage()
}

// Evaluate runs a safeguard pass over the latest usable assistant
// response. The new result fully replaces the previous one.
func (m *Machine) Evaluate(ctx context.Context) (*safeguard.Result, error) {
	m.mu.Lock()
	if !m.state.EvaluateEnabled() {
		m.mu.Unlock()
		return nil, ErrEvaluateDisabled
	}
	target := m.transcript.LastUsableAssistant()
	if target == nil {
		m.mu.Unlock()
		return nil, ErrNoResponse
	}
	m.state = StateEvaluationPending
	m.mu.Unlock()
	m.notify()

	result := m.evaluator.Evaluate(ctx, target.Content, m.principles.Principles())

	m.mu.Lock()
	m.result = result
	if m.scores != nil {
		if err := m.scores.Save(result); err != nil {
			m.logger.Error("failed to persist evaluation result", zap.Error(err))
		}
	}
	m.state = StateEvaluationDisplayed
	m.mu.Unlock()
	m.notify()

	return result, nil
}

// Reset discards the in-memory transcript and evaluation result and
// returns to the idle state. The discarded transcript is handed to the
// archiver first; JSONL records are untouched.
func (m *Machine) Reset() {
	m.mu.Lock()
	if !m.state.InputEnabled() {
		m.mu.Unlock()
		return
	}
	old := m.transcript
	m.transcript = model.NewTranscript(m.profile.ID)
	m.result = nil
	m.state = StateIdle
	m.mu.Unlock()

	if m.archiver != nil && !old.IsEmpty() {
		if err := m.archiver.SaveTranscript(context.Background(), old); err != nil {
			m.logger.Error("failed to archive discarded session",
				zap.String("session", old.ID),
				zap.Error(err),
			)
		}
	}
	m.notify()
}

// =============================================================================
// INTERNAL
// =============================================================================

// persistMessage writes through to the transcript store. Storage
// failures are logged, never fatal to the turn. Caller holds the lock.
func (m *Machine) persistMessage(msg *model.Message) {
	if m.transcripts == nil {
		return
	}
	if err := m.transcripts.Append(m.transcript.ID, msg); err != nil {
		m.logger.Error("failed to persist message",
			zap.String("id", msg.ID),
			zap.Error(err),
		)
	}
}

// notify invokes the render callbacks with the current state.
func (m *Machine) notify() {
	m.mu.Lock()
	state := m.state
	callbacks := make([]RenderFunc, len(m.onRender))
	copy(callbacks, m.onRender)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(state)
	}
}
