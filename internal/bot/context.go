package bot

import (
	"encoding/json"

	"github.com/garyellow/vkbot-go/internal/callback"
	domerrors "github.com/garyellow/vkbot-go/internal/errors"
	"github.com/garyellow/vkbot-go/internal/event"
)

// Context is the read-only view of one inbound callback handed to handlers.
// It is built once per dispatch and never shared between dispatches.
type Context struct {
	event   event.Event
	eventID string
	groupID int64

	text    string
	fromID  int64
	hasFrom bool
	peerID  int64
	hasPeer bool
	userID  int64
	hasUser bool
	payload string
	action  *callback.Action

	// set when a registration matches
	handler string
	command string
	args    string
	matches []string

	// set for the handler_error hook
	err error
}

// startPayload is the button payload VK attaches to the "Start" button.
type startPayload struct {
	Command string `json:"command"`
}

// NewContext classifies p and snapshots the fields handlers need.
// It fails with a *errors.ClassificationError when the type token is unknown
// or when a group-scoped event lacks the outer group_id. The group id is
// never taken from the inner object.
func NewContext(p *callback.Payload) (*Context, error) {
	if p == nil {
		return nil, domerrors.NewClassificationError("body", "", domerrors.ErrMissingField)
	}

	e, err := event.Parse(p.Type)
	if err != nil {
		return nil, err
	}
	if !e.IsCallback() {
		return nil, domerrors.NewClassificationError("type", p.Type, domerrors.ErrUnknownEvent)
	}

	c := &Context{event: e, eventID: p.EventID}
	if p.GroupID != nil {
		c.groupID = *p.GroupID
	}

	if e == event.Confirmation {
		return c, nil
	}

	if e.IsGroupScoped() && c.groupID <= 0 {
		return nil, domerrors.NewClassificationError("group_id", "", domerrors.ErrMissingField)
	}
	if p.Object == nil {
		if e.IsMessage() {
			return nil, domerrors.NewClassificationError("object", "", domerrors.ErrMissingField)
		}
		return c, nil
	}

	if msg := p.Object.Msg(); msg != nil {
		if msg.Text != nil {
			c.text = *msg.Text
		}
		if msg.FromID != nil {
			c.fromID, c.hasFrom = *msg.FromID, true
		}
		if msg.PeerID != nil {
			c.peerID, c.hasPeer = *msg.PeerID, true
		}
		if msg.Payload != nil {
			c.payload = *msg.Payload
		}
		c.action = msg.Action
	}
	if p.Object.UserID != nil {
		c.userID, c.hasUser = *p.Object.UserID, true
		if !c.hasPeer {
			c.peerID, c.hasPeer = c.userID, true
		}
	}

	if e == event.MessageNew {
		c.event = deriveMessageEvent(c)
	}
	return c, nil
}

func deriveMessageEvent(c *Context) event.Event {
	if c.payload != "" {
		var sp startPayload
		if err := json.Unmarshal([]byte(c.payload), &sp); err == nil && sp.Command == "start" {
			return event.Start
		}
	}
	if c.action != nil && c.action.Type != "" {
		return event.ServiceAction
	}
	return event.MessageNew
}

// Event returns the classified event kind.
func (c *Context) Event() event.Event { return c.event }

// EventID returns the callback event_id, empty for old API versions.
func (c *Context) EventID() string { return c.eventID }

// GroupID returns the bot's own community id taken from the outer payload.
func (c *Context) GroupID() int64 { return c.groupID }

// Text returns the raw message text, possibly empty.
func (c *Context) Text() string { return c.text }

// FromID returns the author id. Communities have negative ids.
func (c *Context) FromID() (int64, bool) { return c.fromID, c.hasFrom }

// PeerID returns the conversation the event happened in.
func (c *Context) PeerID() (int64, bool) { return c.peerID, c.hasPeer }

// UserID returns the user of message_allow and message_deny events.
func (c *Context) UserID() (int64, bool) { return c.userID, c.hasUser }

// Payload returns the button payload JSON, empty when none was pressed.
func (c *Context) Payload() string { return c.payload }

// Action returns the service action type, empty when the message has none.
func (c *Context) Action() string {
	if c.action == nil {
		return ""
	}
	return c.action.Type
}

// ActionMemberID returns the member a service action refers to.
func (c *Context) ActionMemberID() (int64, bool) {
	if c.action == nil || c.action.MemberID == nil {
		return 0, false
	}
	return *c.action.MemberID, true
}

// FromSelf reports whether the message was authored by this bot's community.
func (c *Context) FromSelf() bool {
	return c.hasFrom && c.groupID > 0 && c.fromID == -c.groupID
}

// Handler returns the name of the registration that matched.
func (c *Context) Handler() string { return c.handler }

// Command returns the effective command text: the message text with a
// leading mention of this bot removed and the command prefix stripped.
func (c *Context) Command() string { return c.command }

// Args returns the text following a matched prefix, trimmed.
func (c *Context) Args() string { return c.args }

// Matches returns the regular expression submatches, nil for other predicates.
func (c *Context) Matches() []string {
	if c.matches == nil {
		return nil
	}
	out := make([]string, len(c.matches))
	copy(out, c.matches)
	return out
}

// Err returns the handler failure passed to the handler_error hook.
func (c *Context) Err() error { return c.err }

func (c *Context) withMatch(handler, command, args string, matches []string) *Context {
	next := *c
	next.handler = handler
	next.command = command
	next.args = args
	next.matches = matches
	return &next
}

func (c *Context) withError(handler string, err error) *Context {
	next := *c
	next.handler = handler
	next.err = err
	return &next
}
