// Package callback holds the shapes of VK Callback API request bodies.
// Only the fields needed to classify events and reply to them are decoded.
package callback

// Payload is a decoded callback request body.
type Payload struct {
	Type    string  `json:"type" binding:"required"`
	EventID string  `json:"event_id,omitempty"`
	Version string  `json:"v,omitempty"`
	Secret  *string `json:"secret,omitempty"`
	GroupID *int64  `json:"group_id,omitempty"`
	Object  *Object `json:"object,omitempty"`
}

// Object is the "object" member of a callback. message_new uses the nested
// {"message": ..., "client_info": ...} layout; message_reply, message_edit and
// pre-5.103 API versions put message fields directly on the object.
type Object struct {
	Message
	Nested     *Message    `json:"message,omitempty"`
	ClientInfo *ClientInfo `json:"client_info,omitempty"`

	// message_allow, message_deny
	UserID *int64 `json:"user_id,omitempty"`
	Key    string `json:"key,omitempty"`

	// message_typing_state
	State string `json:"state,omitempty"`
	ToID  *int64 `json:"to_id,omitempty"`
}

// Message is a private or community chat message.
type Message struct {
	ID                    int64   `json:"id,omitempty"`
	Date                  int64   `json:"date,omitempty"`
	PeerID                *int64  `json:"peer_id,omitempty"`
	FromID                *int64  `json:"from_id,omitempty"`
	Text                  *string `json:"text,omitempty"`
	Payload               *string `json:"payload,omitempty"`
	Action                *Action `json:"action,omitempty"`
	ConversationMessageID int64   `json:"conversation_message_id,omitempty"`
	Out                   int     `json:"out,omitempty"`
}

// Action is a service action attached to a message, such as a chat member joining.
type Action struct {
	Type     string `json:"type"`
	MemberID *int64 `json:"member_id,omitempty"`
	Text     string `json:"text,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ClientInfo describes what the sender's client supports.
type ClientInfo struct {
	ButtonActions  []string `json:"button_actions,omitempty"`
	Keyboard       bool     `json:"keyboard"`
	InlineKeyboard bool     `json:"inline_keyboard"`
	Carousel       bool     `json:"carousel"`
	LangID         int      `json:"lang_id"`
}

// Msg returns the message carried by the object, preferring the nested layout.
func (o *Object) Msg() *Message {
	if o == nil {
		return nil
	}
	if o.Nested != nil {
		return o.Nested
	}
	return &o.Message
}

// SecretValue returns the secret or "" when absent.
func (p *Payload) SecretValue() string {
	if p.Secret == nil {
		return ""
	}
	return *p.Secret
}
