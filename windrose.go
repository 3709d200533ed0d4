package windrose

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/windrose-ai/windrose/internal/logging"
	"github.com/windrose-ai/windrose/internal/runtime"
	"github.com/windrose-ai/windrose/pkg/adapters/memory"
	"github.com/windrose-ai/windrose/pkg/domain"
	"github.com/windrose-ai/windrose/pkg/ports"
	"github.com/windrose-ai/windrose/pkg/session"
)

// Orchestrator is the high-level entry point for the Windrose library. It
// wraps the internal conversation engine, loads and persists conversation
// state around each turn, and serializes turns per conversation id.
type Orchestrator struct {
	engine   *runtime.Engine
	sessions *session.Manager

	llm        ports.LanguageModel
	dispatcher ports.ToolDispatcher
	retriever  ports.Retriever
	store      ports.StateStore
	locker     ports.DistributedLocker
	hooks      domain.LifecycleHooks
	logger     *slog.Logger

	engineOpts []runtime.Option
}

// Option defines a functional option for configuring the Orchestrator.
type Option func(*Orchestrator)

// WithStateStore injects the conversation state store. Defaults to an
// in-memory store, which is only suitable for tests and single-process use.
func WithStateStore(store ports.StateStore) Option {
	return func(o *Orchestrator) { o.store = store }
}

// WithDistributedLocker serializes turns across processes sharing a store.
func WithDistributedLocker(locker ports.DistributedLocker) Option {
	return func(o *Orchestrator) { o.locker = locker }
}

// WithRetriever wires the retrieval capability used for policy questions.
func WithRetriever(r ports.Retriever) Option {
	return func(o *Orchestrator) { o.retriever = r }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) { o.hooks = hooks }
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEngineOptions forwards options to the underlying engine (timeouts,
// retries, clock).
func WithEngineOptions(opts ...runtime.Option) Option {
	return func(o *Orchestrator) { o.engineOpts = append(o.engineOpts, opts...) }
}

// New initializes an Orchestrator around the given language model and tool
// dispatcher.
func New(llm ports.LanguageModel, dispatcher ports.ToolDispatcher, opts ...Option) (*Orchestrator, error) {
	if llm == nil {
		return nil, fmt.Errorf("a language model is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("a tool dispatcher is required")
	}

	o := &Orchestrator{
		llm:        llm,
		dispatcher: dispatcher,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.store == nil {
		o.store = memory.NewStore()
	}

	sessionOpts := []session.Option{session.WithLogger(o.logger)}
	if o.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(o.locker))
	}
	o.sessions = session.NewManager(o.store, sessionOpts...)

	engineOpts := append([]runtime.Option{
		runtime.WithLogger(o.logger),
		runtime.WithHooks(o.hooks),
	}, o.engineOpts...)
	if o.retriever != nil {
		engineOpts = append(engineOpts, runtime.WithRetriever(o.retriever))
	}
	o.engine = runtime.NewEngine(o.llm, o.dispatcher, engineOpts...)

	return o, nil
}

// TurnRequest identifies one incoming user message.
type TurnRequest struct {
	ConversationID string
	CustomerID     string
	Message        string

	// History is the prior conversation transcript. Message history is owned
	// by the caller; the orchestrator persists only the state snapshot.
	History []domain.Message
}

// TurnResponse is the outcome of one processed turn.
type TurnResponse struct {
	AssistantText string
	Suggestions   []string
	State         *domain.Snapshot
	Messages      []domain.Message
}

// ProcessTurn runs one conversation turn: load the persisted snapshot, drive
// the engine, and persist the updated snapshot. Turns for the same
// conversation id are serialized; state is persisted only when the turn
// completes cleanly.
func (o *Orchestrator) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResponse, error) {
	if req.ConversationID == "" {
		return nil, fmt.Errorf("conversation id is required")
	}

	var resp *TurnResponse
	err := o.sessions.WithLock(ctx, req.ConversationID, func(ctx context.Context) error {
		snap, err := o.sessions.LoadOrNew(ctx, req.ConversationID)
		if err != nil {
			return fmt.Errorf("loading conversation %s: %w", req.ConversationID, err)
		}

		state := domain.Restore(req.ConversationID, req.CustomerID, snap)
		state.Messages = append(state.Messages, req.History...)

		result, err := o.engine.ProcessTurn(ctx, state, req.Message)
		if err != nil {
			return err
		}

		newSnap := state.Snapshot()
		if err := o.sessions.Save(ctx, req.ConversationID, newSnap); err != nil {
			return fmt.Errorf("persisting conversation %s: %w", req.ConversationID, err)
		}

		resp = &TurnResponse{
			AssistantText: result.AssistantText,
			Suggestions:   result.Suggestions,
			State:         newSnap,
			Messages:      state.Messages,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// EndConversation deletes the persisted state for a conversation.
func (o *Orchestrator) EndConversation(ctx context.Context, conversationID string) error {
	return o.sessions.Delete(ctx, conversationID)
}

// State returns the persisted snapshot for a conversation, or
// domain.ErrSessionNotFound when none exists.
func (o *Orchestrator) State(ctx context.Context, conversationID string) (*domain.Snapshot, error) {
	return o.sessions.Load(ctx, conversationID)
}
