package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/windrose-ai/windrose/internal/logging"
	"github.com/windrose-ai/windrose/pkg/domain"
	"github.com/windrose-ai/windrose/pkg/ports"
)

const (
	// maxLoopIterations bounds the router/handler loop within a single turn.
	// A healthy turn needs at most a handful of iterations (route, handle,
	// dispatch tools, format, route again); anything beyond this is a
	// routing bug and the loop bails out rather than spinning.
	maxLoopIterations = 12

	defaultCallTimeout = 30 * time.Second
	defaultMaxRetries  = 1
)

// Engine drives one conversation turn through the router/handler loop. It is
// stateless between calls; all conversation state travels in the TurnState.
type Engine struct {
	llm        ports.LanguageModel
	dispatcher ports.ToolDispatcher
	retriever  ports.Retriever
	analyzer   *Analyzer
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	clock      Clock

	callTimeout time.Duration
	maxRetries  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRetriever wires the retrieval capability used by the Info handler.
func WithRetriever(r ports.Retriever) Option {
	return func(e *Engine) { e.retriever = r }
}

// WithHooks installs lifecycle callbacks for observability.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = hooks }
}

// WithLogger sets the engine logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used in date-sensitive prompts.
func WithClock(clock Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithCallTimeout bounds each individual model or tool call.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.callTimeout = d
		}
	}
}

// WithMaxRetries sets how many times a failed model call is retried.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxRetries = n
		}
	}
}

// NewEngine creates an engine around the given language model and tool
// dispatcher. Both are required; the retriever is optional.
func NewEngine(llm ports.LanguageModel, dispatcher ports.ToolDispatcher, opts ...Option) *Engine {
	e := &Engine{
		llm:         llm,
		dispatcher:  dispatcher,
		logger:      logging.NewNop(),
		clock:       systemClock,
		callTimeout: defaultCallTimeout,
		maxRetries:  defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.analyzer = NewAnalyzer(llm, e.logger)
	return e
}

// TurnResult is what one processed turn hands back to the caller.
type TurnResult struct {
	// AssistantText is the last assistant reply produced during the turn.
	AssistantText string

	// Suggestions are quick-reply hints accumulated during the turn.
	Suggestions []string

	// State is the mutated turn state; the caller persists its Snapshot.
	State *domain.TurnState
}

// ProcessTurn appends the user message to the state and drives the
// router/handler loop until a handler ends the turn. The state is mutated in
// place; on error (including cancellation) the caller must discard it rather
// than persist a partially-applied turn.
func (e *Engine) ProcessTurn(ctx context.Context, state *domain.TurnState, userMessage string) (*TurnResult, error) {
	// Transient per-turn fields.
	state.NextHandler = ""
	state.NeedsUserInput = false
	state.Suggestions = nil

	if userMessage != "" {
		state.Messages = append(state.Messages, domain.NewUserMessage(userMessage))
	}

	if e.shouldCheckEscalation(state) {
		assessment := e.analyzer.Analyze(ctx, state.Messages, state.Travel, state.FailedActions)
		if assessment.ShouldEscalate {
			if err := e.runEscalation(ctx, state, assessment); err != nil {
				return nil, err
			}
			return e.result(state), nil
		}
	}

	for i := 0; i < maxLoopIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, err := e.route(ctx, state)
		if err != nil {
			return nil, err
		}
		state.NextHandler = next

		if next == domain.HandlerEnd {
			return e.result(state), nil
		}

		e.emitHandler(ctx, e.hooks.OnHandlerEnter, domain.EventHandlerEnter, state, next)
		err = e.runHandler(ctx, state, next)
		e.emitHandler(ctx, e.hooks.OnHandlerLeave, domain.EventHandlerLeave, state, next)
		if err != nil {
			return nil, err
		}
	}

	e.logger.Error("turn loop exceeded iteration bound",
		"conversation_id", state.ConversationID,
		"phase", state.CurrentPhase,
	)
	return nil, fmt.Errorf("turn for conversation %s did not converge after %d iterations", state.ConversationID, maxLoopIterations)
}

// runHandler dispatches to the handler named by the router. An unrecognized
// name is a contract violation and aborts the turn.
func (e *Engine) runHandler(ctx context.Context, state *domain.TurnState, name string) error {
	switch name {
	case domain.HandlerSharpener:
		return e.runSharpener(ctx, state)
	case domain.HandlerAction:
		return e.runAction(ctx, state)
	case domain.HandlerInfo:
		return e.runInfo(ctx, state)
	case domain.HandlerEscalation:
		assessment := e.analyzer.Analyze(ctx, state.Messages, state.Travel, state.FailedActions)
		return e.runEscalation(ctx, state, assessment)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownHandler, name)
	}
}

// shouldCheckEscalation gates the per-turn escalation analysis: not on first
// contact, and not once the conversation is already escalated or closed.
func (e *Engine) shouldCheckEscalation(state *domain.TurnState) bool {
	switch state.CurrentPhase {
	case domain.PhaseIdle, domain.PhaseEscalation, domain.PhaseCompleted:
		return false
	}
	return domain.CountUserMessages(state.Messages) >= 2
}

// runEscalation hands the conversation to a human: it appends the handoff
// message, moves the phase to Escalation and fires the escalation hook.
func (e *Engine) runEscalation(ctx context.Context, state *domain.TurnState, assessment Assessment) error {
	state.PreviousPhase = state.CurrentPhase
	state.CurrentPhase = domain.PhaseEscalation
	state.Messages = append(state.Messages, domain.NewAssistantMessage(handoffText(assessment, state.Travel, state.Language)))

	e.logger.Info("conversation escalated",
		"conversation_id", state.ConversationID,
		"score", assessment.Score,
		"urgency", assessment.Urgency,
		"reason", assessment.Reason,
	)

	if e.hooks.OnEscalation != nil {
		e.hooks.OnEscalation(ctx, &domain.EscalationEvent{
			EventBase: e.eventBase(domain.EventEscalation, state),
			Score:     assessment.Score,
			Urgency:   assessment.Urgency,
			Reason:    assessment.Reason,
		})
	}
	return nil
}

// complete calls the language model with the engine's timeout and bounded
// retry. Retries stop immediately once the parent context is done.
func (e *Engine) complete(ctx context.Context, req ports.CompletionRequest) (*ports.Completion, error) {
	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
		resp, err := e.llm.Complete(callCtx, req)
		cancel()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn("model call failed", "attempt", attempt+1, "err", err)
	}
	return nil, lastErr
}

// dispatchToolCalls executes each requested tool call and appends its result
// to the history. A failed dispatch becomes a failure-flavored tool-result
// message and is recorded in FailedActions; it never aborts the turn.
func (e *Engine) dispatchToolCalls(ctx context.Context, state *domain.TurnState, calls []domain.ToolCall) {
	for _, call := range calls {
		if e.hooks.OnToolCall != nil {
			e.hooks.OnToolCall(ctx, &domain.ToolEvent{
				EventBase: e.eventBase(domain.EventToolCall, state),
				ToolName:  call.Name,
			})
		}

		started := e.clock()
		callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
		result, err := e.dispatcher.Dispatch(callCtx, call)
		cancel()
		elapsed := e.clock().Sub(started)

		if err != nil {
			result = domain.ToolResult{
				ID:      call.ID,
				Content: fmt.Sprintf("Tool %s failed: %v", call.Name, err),
				IsError: true,
				Error:   err.Error(),
			}
		}
		if result.IsError {
			state.FailedActions = append(state.FailedActions, call.Name)
			e.logger.Warn("tool dispatch failed", "tool", call.Name, "err", result.Error)
		}

		content := result.Content
		if content == "" && result.IsError {
			content = fmt.Sprintf("Tool %s failed: %s", call.Name, result.Error)
		}
		state.Messages = append(state.Messages, domain.NewToolResultMessage(call.ID, content, result.IsError))

		if e.hooks.OnToolReturn != nil {
			e.hooks.OnToolReturn(ctx, &domain.ToolEvent{
				EventBase: e.eventBase(domain.EventToolReturn, state),
				ToolName:  call.Name,
				Duration:  elapsed,
				IsError:   result.IsError,
			})
		}
	}
}

func (e *Engine) result(state *domain.TurnState) *TurnResult {
	text, _ := domain.LastAssistantText(state.Messages)
	return &TurnResult{
		AssistantText: text,
		Suggestions:   state.Suggestions,
		State:         state,
	}
}

func (e *Engine) emitHandler(ctx context.Context, hook func(context.Context, *domain.HandlerEvent), typ domain.EventType, state *domain.TurnState, handler string) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.HandlerEvent{
		EventBase: e.eventBase(typ, state),
		Handler:   handler,
		Phase:     state.CurrentPhase,
	})
}

func (e *Engine) eventBase(typ domain.EventType, state *domain.TurnState) domain.EventBase {
	return domain.EventBase{
		Timestamp:      e.clock(),
		Type:           typ,
		ConversationID: state.ConversationID,
	}
}
