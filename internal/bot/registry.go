package bot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"

	domerrors "github.com/garyellow/vkbot-go/internal/errors"
	"github.com/garyellow/vkbot-go/internal/event"
	"golang.org/x/text/unicode/norm"
)

// registration pairs a predicate with its handler and event kind.
type registration struct {
	event   event.Event
	pred    Predicate
	handler HandlerFunc
	name    string
}

// Registry holds handler registrations in the order they were added.
// Matching walks them in that order and the first match wins; there is no
// specificity ranking. After Freeze the registry is read-only and safe for
// concurrent use without locking.
type Registry struct {
	entries []registration
	noMatch *registration
	onError *registration
	prefix  string
	frozen  atomic.Bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithCommandPrefix makes exact and prefix predicates require text to start
// with prefix (for example "/"). The prefix is stripped before comparison.
// Regex and payload predicates are unaffected.
func WithCommandPrefix(prefix string) RegistryOption {
	return func(r *Registry) {
		r.prefix = prefix
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{entries: make([]registration, 0)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterOption customizes a single registration.
type RegisterOption func(*registration)

// ForEvent binds the registration to e instead of message_new.
func ForEvent(e event.Event) RegisterOption {
	return func(reg *registration) {
		reg.event = e
	}
}

// Named sets the handler name used in logs and metrics.
func Named(name string) RegisterOption {
	return func(reg *registration) {
		reg.name = name
	}
}

// OnExact registers h for text equal to command.
func (r *Registry) OnExact(command string, h HandlerFunc, opts ...RegisterOption) error {
	if strings.TrimSpace(command) == "" {
		return domerrors.NewRegistrationError("exact", fmt.Errorf("%w: empty command", domerrors.ErrInvalidPredicate))
	}
	return r.add(Predicate{Kind: PredicateExact, Value: norm.NFC.String(command)}, h, opts)
}

// OnPrefix registers h for text starting with prefix. The remainder is
// available as Context.Args.
func (r *Registry) OnPrefix(prefix string, h HandlerFunc, opts ...RegisterOption) error {
	if strings.TrimSpace(prefix) == "" {
		return domerrors.NewRegistrationError("prefix", fmt.Errorf("%w: empty prefix", domerrors.ErrInvalidPredicate))
	}
	return r.add(Predicate{Kind: PredicatePrefix, Value: norm.NFC.String(prefix)}, h, opts)
}

// OnRegex registers h for text matching pattern. The pattern is compiled
// here, so a malformed pattern fails at setup rather than during dispatch.
// Matching is unanchored; use ^ and $ for a full match.
func (r *Registry) OnRegex(pattern string, h HandlerFunc, opts ...RegisterOption) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return domerrors.NewRegistrationError(fmt.Sprintf("regex %q", pattern), errors.Join(domerrors.ErrInvalidPredicate, err))
	}
	return r.add(Predicate{Kind: PredicateRegex, Value: pattern, re: re}, h, opts)
}

// MustOnRegex is like OnRegex but panics on error. It is meant for
// patterns that are constants in the program.
func (r *Registry) MustOnRegex(pattern string, h HandlerFunc, opts ...RegisterOption) {
	if err := r.OnRegex(pattern, h, opts...); err != nil {
		panic(err)
	}
}

// OnPayload registers h for button presses whose payload equals payload.
// Both sides are compared in compact JSON form.
func (r *Registry) OnPayload(payload string, h HandlerFunc, opts ...RegisterOption) error {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(payload)); err != nil {
		return domerrors.NewRegistrationError(fmt.Sprintf("payload %q", payload), errors.Join(domerrors.ErrInvalidPredicate, err))
	}
	return r.add(Predicate{Kind: PredicatePayload, Value: buf.String()}, h, opts)
}

// OnPayloadFunc registers h for button presses whose payload satisfies test.
func (r *Registry) OnPayloadFunc(test func(payload string) bool, h HandlerFunc, opts ...RegisterOption) error {
	if test == nil {
		return domerrors.NewRegistrationError("payload_func", fmt.Errorf("%w: nil test", domerrors.ErrInvalidPredicate))
	}
	return r.add(Predicate{Kind: PredicatePayloadFunc, test: test}, h, opts)
}

// OnEvent registers a catch-all handler for every event of kind e.
func (r *Registry) OnEvent(e event.Event, h HandlerFunc, opts ...RegisterOption) error {
	return r.add(Predicate{Kind: PredicateAny}, h, append([]RegisterOption{ForEvent(e)}, opts...))
}

// OnNoMatch sets the fallback run when no registration matches an incoming
// user message. It never runs for the bot's own messages.
func (r *Registry) OnNoMatch(h HandlerFunc, opts ...RegisterOption) error {
	reg, err := r.special(event.NoMatch, r.noMatch, h, opts)
	if err != nil {
		return err
	}
	r.noMatch = reg
	return nil
}

// OnHandlerError sets the hook run once when a handler fails. The failure
// is available as Context.Err.
func (r *Registry) OnHandlerError(h HandlerFunc, opts ...RegisterOption) error {
	reg, err := r.special(event.HandlerError, r.onError, h, opts)
	if err != nil {
		return err
	}
	r.onError = reg
	return nil
}

// Freeze seals the registry. Later registrations fail with ErrRegistryFrozen.
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Len returns the number of ordered registrations, excluding fallback hooks.
func (r *Registry) Len() int {
	return len(r.entries)
}

// HasNoMatch reports whether a fallback handler is registered.
func (r *Registry) HasNoMatch() bool {
	return r.noMatch != nil
}

func (r *Registry) add(pred Predicate, h HandlerFunc, opts []RegisterOption) error {
	reg := registration{event: event.MessageNew, pred: pred, handler: h}
	for _, opt := range opts {
		opt(&reg)
	}
	if reg.name == "" {
		reg.name = pred.String()
	}

	if err := r.check(reg); err != nil {
		return domerrors.NewRegistrationError(pred.String(), err)
	}
	switch {
	case reg.event == event.Confirmation:
		return domerrors.NewRegistrationError(pred.String(), fmt.Errorf("%w: confirmation is answered without handlers", domerrors.ErrInvalidPredicate))
	case reg.event.IsInternal():
		return domerrors.NewRegistrationError(pred.String(), fmt.Errorf("%w: use OnNoMatch or OnHandlerError for %s", domerrors.ErrInvalidPredicate, reg.event))
	}

	r.entries = append(r.entries, reg)
	return nil
}

func (r *Registry) special(e event.Event, existing *registration, h HandlerFunc, opts []RegisterOption) (*registration, error) {
	reg := &registration{event: e, pred: Predicate{Kind: PredicateAny}, handler: h, name: e.String()}
	for _, opt := range opts {
		opt(reg)
	}
	reg.event = e

	if err := r.check(*reg); err != nil {
		return nil, domerrors.NewRegistrationError(e.String(), err)
	}
	if existing != nil {
		return nil, domerrors.NewRegistrationError(e.String(), fmt.Errorf("%w: already registered", domerrors.ErrInvalidPredicate))
	}
	return reg, nil
}

func (r *Registry) check(reg registration) error {
	if r.frozen.Load() {
		return domerrors.ErrRegistryFrozen
	}
	if reg.handler == nil {
		return fmt.Errorf("%w: nil handler", domerrors.ErrInvalidPredicate)
	}
	if !reg.event.Valid() {
		return fmt.Errorf("%w: event %s", domerrors.ErrUnknownEvent, reg.event)
	}
	return nil
}

// Match is the outcome of a successful Resolve.
type Match struct {
	Name    string
	Handler HandlerFunc
	Context *Context // the input context enriched with command, args and submatches
}

// Resolve finds the first registration for c's event whose predicate
// matches. It returns false when nothing matches; the caller decides
// whether the no-match fallback applies.
//
// Text predicates never match a message that opens with a mention of
// someone other than this bot's community.
func (r *Registry) Resolve(c *Context) (Match, bool) {
	in := r.commandInput(c)

	for _, reg := range r.entries {
		if reg.event != c.event {
			continue
		}
		if !in.addressed && reg.pred.Kind.textual() {
			continue
		}
		text := in.stripped
		if reg.pred.Kind == PredicateRegex {
			text = in.raw
		}
		res, ok := reg.pred.match(c, text, in.hasPrefix)
		if !ok {
			continue
		}
		return Match{
			Name:    reg.name,
			Handler: reg.handler,
			Context: c.withMatch(reg.name, in.stripped, res.args, res.matches),
		}, true
	}
	return Match{}, false
}

// commandInput is the text predicates are tested against.
type commandInput struct {
	raw       string // mention stripped, command prefix kept
	stripped  string // raw without the command prefix
	hasPrefix bool   // always true when no prefix is configured
	addressed bool   // false when a leading mention names someone else
}

// commandInput strips a leading mention only when it addresses this bot's
// own community, then applies the command prefix.
func (r *Registry) commandInput(c *Context) commandInput {
	in := commandInput{hasPrefix: true, addressed: true}

	text := c.text
	if c.event.IsMessage() {
		if rest, m, ok := event.ParseMention(text); ok {
			if m.Targets(c.groupID) {
				text = rest
			} else {
				in.addressed = false
			}
		}
	}
	in.raw = norm.NFC.String(strings.TrimSpace(text))
	in.stripped = in.raw
	if r.prefix != "" {
		in.stripped, in.hasPrefix = strings.CutPrefix(in.raw, r.prefix)
		in.stripped = strings.TrimSpace(in.stripped)
	}
	return in
}
