// Package event defines the closed set of callback event kinds the bot
// understands and the mention syntax that may prefix message text.
package event

import (
	"strconv"

	domerrors "github.com/garyellow/vkbot-go/internal/errors"
)

// Event is the classified kind of an inbound notification.
type Event uint8

// Supported events. The zero value is deliberately not a valid event.
const (
	_ Event = iota
	Confirmation
	MessageNew
	MessageReply
	MessageEdit
	MessageTypingState
	MessageAllow
	MessageDeny
	Start
	ServiceAction
	NoMatch
	HandlerError
)

// tokens is the single source of truth for the canonical token of every event.
var tokens = [...]string{
	Confirmation:       "confirmation",
	MessageNew:         "message_new",
	MessageReply:       "message_reply",
	MessageEdit:        "message_edit",
	MessageTypingState: "message_typing_state",
	MessageAllow:       "message_allow",
	MessageDeny:        "message_deny",
	Start:              "start",
	ServiceAction:      "service_action",
	NoMatch:            "no_match",
	HandlerError:       "handler_error",
}

var byToken = func() map[string]Event {
	m := make(map[string]Event, len(tokens))
	for i, tok := range tokens {
		if tok != "" {
			m[tok] = Event(i)
		}
	}
	return m
}()

// All returns every supported event in declaration order.
func All() []Event {
	out := make([]Event, 0, len(byToken))
	for i, tok := range tokens {
		if tok != "" {
			out = append(out, Event(i))
		}
	}
	return out
}

// Parse resolves a canonical token. Unknown tokens fail with a
// *errors.ClassificationError wrapping errors.ErrUnknownEvent.
func Parse(token string) (Event, error) {
	if e, ok := byToken[token]; ok {
		return e, nil
	}
	return 0, domerrors.NewClassificationError("type", token, domerrors.ErrUnknownEvent)
}

// String returns the canonical token, or "event(N)" for values outside the set.
func (e Event) String() string {
	if e.Valid() {
		return tokens[e]
	}
	return "event(" + strconv.Itoa(int(e)) + ")"
}

// Valid reports whether e is one of the declared events.
func (e Event) Valid() bool {
	return int(e) < len(tokens) && tokens[e] != ""
}

// IsMessage reports whether the event carries a chat message and thus
// takes part in command matching.
func (e Event) IsMessage() bool {
	switch e {
	case MessageNew, MessageReply, MessageEdit, Start, ServiceAction:
		return true
	}
	return false
}

// IsEcho reports whether the event is a notification about the bot's own outgoing message.
func (e Event) IsEcho() bool {
	return e == MessageReply
}

// IsInternal reports whether the event only exists as a registration key.
func (e Event) IsInternal() bool {
	return e == NoMatch || e == HandlerError
}

// IsDerived reports whether the event is derived from message_new rather than sent by the platform.
func (e Event) IsDerived() bool {
	return e == Start || e == ServiceAction
}

// IsCallback reports whether the token may appear as an inbound callback "type".
func (e Event) IsCallback() bool {
	return e.Valid() && !e.IsInternal() && !e.IsDerived()
}

// IsGroupScoped reports whether classification requires the bot's group id.
func (e Event) IsGroupScoped() bool {
	return e.Valid() && e != Confirmation && !e.IsInternal()
}

// MarshalText implements encoding.TextMarshaler.
func (e Event) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, domerrors.NewClassificationError("type", e.String(), domerrors.ErrUnknownEvent)
	}
	return []byte(tokens[e]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Event) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
