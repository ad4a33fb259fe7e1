package bot

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/garyellow/vkbot-go/internal/callback"
	"github.com/garyellow/vkbot-go/internal/ctxutil"
	domerrors "github.com/garyellow/vkbot-go/internal/errors"
	"github.com/garyellow/vkbot-go/internal/event"
	"github.com/garyellow/vkbot-go/internal/logger"
	"github.com/garyellow/vkbot-go/internal/metrics"
)

// Identity is the bot's own verification data, fixed for the process lifetime.
type Identity struct {
	GroupID           int64  // required
	Secret            string // empty disables secret verification
	ConfirmationToken string // answer to the confirmation challenge
}

// Outcome describes how a dispatch ended.
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeMatched   Outcome = "matched"
	OutcomeNoMatch   Outcome = "no_match" // fallback handler ran
	OutcomeIgnored   Outcome = "ignored"  // nothing ran
	OutcomeFailed    Outcome = "error"
)

// Result is what one dispatch produced.
type Result struct {
	Context      *Context
	Outcome      Outcome
	Handler      string
	Confirmation string // set for confirmation challenges only
	Reply        *Reply // nil when nothing should be sent
}

// DispatcherConfig holds the dependencies of a Dispatcher.
type DispatcherConfig struct {
	Registry    *Registry
	Identity    Identity
	Logger      *logger.Logger
	Metrics     *metrics.Metrics // optional
	Middlewares []Middleware     // wrap the built-in middlewares
}

// Dispatcher classifies callbacks and routes them through a frozen Registry.
// It holds no per-call state and is safe for concurrent use.
type Dispatcher struct {
	registry *Registry
	identity Identity
	logger   *logger.Logger
	metrics  *metrics.Metrics
	mws      []Middleware
}

// NewDispatcher validates the identity and freezes the registry.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Registry == nil {
		return nil, errors.New("dispatcher: registry is required")
	}
	if cfg.Identity.GroupID <= 0 {
		return nil, errors.New("dispatcher: group id must be positive")
	}
	if cfg.Logger == nil {
		return nil, errors.New("dispatcher: logger is required")
	}

	cfg.Registry.Freeze()

	mws := make([]Middleware, 0, len(cfg.Middlewares)+3)
	mws = append(mws, cfg.Middlewares...)
	mws = append(mws,
		LoggingMiddleware(cfg.Logger),
		MetricsMiddleware(cfg.Metrics),
		RecoveryMiddleware(cfg.Logger),
	)

	return &Dispatcher{
		registry: cfg.Registry,
		identity: cfg.Identity,
		logger:   cfg.Logger.WithModule("dispatcher"),
		metrics:  cfg.Metrics,
		mws:      mws,
	}, nil
}

// Handle classifies p and dispatches it. Classification failures are
// returned without running any handler.
func (d *Dispatcher) Handle(ctx context.Context, p *callback.Payload) (*Result, error) {
	c, err := d.Classify(p)
	if err != nil {
		return nil, err
	}
	return d.Dispatch(ctx, c)
}

// Classify authenticates p and builds its Context.
//
// A configured secret must match exactly; an absent secret counts as a
// mismatch. A group_id other than the bot's own is rejected as well. Both
// are reported as *errors.AuthenticationError before any Context exists.
// Confirmation challenges need nothing beyond the type.
func (d *Dispatcher) Classify(p *callback.Payload) (*Context, error) {
	if p == nil {
		return nil, domerrors.NewClassificationError("body", "", domerrors.ErrMissingField)
	}

	if d.identity.Secret != "" {
		if subtle.ConstantTimeCompare([]byte(p.SecretValue()), []byte(d.identity.Secret)) != 1 {
			return nil, domerrors.NewAuthenticationError(domerrors.ErrSecretMismatch)
		}
	}
	if p.GroupID != nil && *p.GroupID != d.identity.GroupID {
		return nil, domerrors.NewAuthenticationError(domerrors.ErrGroupMismatch)
	}

	return NewContext(p)
}

// Dispatch runs the handler selected for c.
//
// Confirmation challenges are answered with the configured token and never
// reach the registry. When nothing matches, the no-match fallback runs only
// for incoming user messages: never for message_reply echoes, messages the
// bot's community authored itself, or messages addressed to someone else.
// Handlers registered for echoes still run but their replies are discarded,
// since sending one would produce another echo. A failed handler yields a
// *errors.HandlerError; if a handler_error hook is registered it runs once
// and its reply is returned alongside the error.
func (d *Dispatcher) Dispatch(ctx context.Context, c *Context) (*Result, error) {
	start := time.Now()
	ctx = withTracing(ctx, c)

	if c.Event() == event.Confirmation {
		d.record(c, OutcomeConfirmed, start)
		return &Result{Context: c, Outcome: OutcomeConfirmed, Confirmation: d.identity.ConfirmationToken}, nil
	}

	if m, ok := d.registry.Resolve(c); ok {
		return d.run(ctx, m.Context, m.Name, m.Handler, OutcomeMatched, start)
	}

	if nm := d.registry.noMatch; nm != nil && d.fallbackAllowed(c) {
		if in := d.registry.commandInput(c); in.addressed {
			return d.run(ctx, c.withMatch(nm.name, in.stripped, "", nil), nm.name, nm.handler, OutcomeNoMatch, start)
		}
	}

	d.logger.WithField("event", c.Event().String()).
		WithField("from_self", c.FromSelf()).
		DebugContext(ctx, "No handler for event")
	d.record(c, OutcomeIgnored, start)
	return &Result{Context: c, Outcome: OutcomeIgnored}, nil
}

// fallbackAllowed implements loop prevention for the no-match handler.
func (d *Dispatcher) fallbackAllowed(c *Context) bool {
	if c.Event().IsEcho() || c.FromSelf() {
		return false
	}
	switch c.Event() {
	case event.MessageNew, event.MessageEdit, event.Start:
		return true
	}
	return false
}

func (d *Dispatcher) run(ctx context.Context, c *Context, name string, h HandlerFunc, outcome Outcome, start time.Time) (*Result, error) {
	reply, err := chain(name, h, d.mws...)(ctx, c)
	if err == nil {
		d.record(c, outcome, start)
		return &Result{Context: c, Outcome: outcome, Handler: name, Reply: d.assemble(ctx, c, reply)}, nil
	}

	herr := domerrors.NewHandlerError(name, c.Event().String(), err)
	res := &Result{Context: c, Outcome: OutcomeFailed, Handler: name}

	if hook := d.registry.onError; hook != nil {
		ec := c.withError(hook.name, herr)
		hookReply, hookErr := chain(hook.name, hook.handler, d.mws...)(ctx, ec)
		if hookErr != nil {
			d.logger.WithError(hookErr).WithField("handler", name).
				ErrorContext(ctx, "Handler error hook failed")
		} else {
			res.Reply = d.assemble(ctx, c, hookReply)
		}
	}

	d.record(c, OutcomeFailed, start)
	return res, herr
}

// assemble fills the reply's destination from c. Replies with no
// destination or no content are dropped, as is anything answering the
// bot's own output.
func (d *Dispatcher) assemble(ctx context.Context, c *Context, r *Reply) *Reply {
	if r.IsEmpty() {
		return nil
	}
	if c.Event().IsEcho() || c.FromSelf() {
		d.logger.WithField("event", c.Event().String()).
			WithField("handler", c.Handler()).
			WarnContext(ctx, "Dropping reply to own message")
		return nil
	}
	out := *r
	if out.PeerID == 0 {
		peer, ok := c.PeerID()
		if !ok || peer == 0 {
			d.logger.WithField("event", c.Event().String()).
				WithField("handler", c.Handler()).
				WarnContext(ctx, "Dropping reply without peer")
			return nil
		}
		out.PeerID = peer
	}
	return &out
}

func (d *Dispatcher) record(c *Context, outcome Outcome, start time.Time) {
	if d.metrics != nil {
		d.metrics.RecordDispatch(c.Event().String(), string(outcome), time.Since(start).Seconds())
	}
}

func withTracing(ctx context.Context, c *Context) context.Context {
	if id := c.EventID(); id != "" {
		ctx = ctxutil.WithEventID(ctx, id)
	}
	if peer, ok := c.PeerID(); ok {
		ctx = ctxutil.WithPeerID(ctx, peer)
	}
	if from, ok := c.FromID(); ok {
		ctx = ctxutil.WithFromID(ctx, from)
	}
	return ctx
}
