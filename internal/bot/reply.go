package bot

import (
	"fmt"
	"strings"

	"github.com/garyellow/vkbot-go/internal/keyboard"
)

// Reply is the outbound message a handler produces.
// A zero PeerID is filled in from the dispatch Context.
type Reply struct {
	PeerID      int64
	Text        string
	Keyboard    *keyboard.Keyboard
	Attachments []Attachment
}

// Attachment references media already uploaded to VK.
type Attachment struct {
	Type      string // photo, video, audio, doc, wall, market, poll
	OwnerID   int64
	MediaID   int64
	AccessKey string
}

// String formats the attachment as "{type}{owner_id}_{media_id}[_{access_key}]".
func (a Attachment) String() string {
	if a.AccessKey != "" {
		return fmt.Sprintf("%s%d_%d_%s", a.Type, a.OwnerID, a.MediaID, a.AccessKey)
	}
	return fmt.Sprintf("%s%d_%d", a.Type, a.OwnerID, a.MediaID)
}

// Text creates a plain text reply to the current conversation.
func Text(text string) *Reply {
	return &Reply{Text: text}
}

// WithKeyboard attaches kb and returns r.
func (r *Reply) WithKeyboard(kb *keyboard.Keyboard) *Reply {
	r.Keyboard = kb
	return r
}

// WithAttachments appends attachments and returns r.
func (r *Reply) WithAttachments(attachments ...Attachment) *Reply {
	r.Attachments = append(r.Attachments, attachments...)
	return r
}

// AttachmentList joins attachments in the comma-separated form messages.send expects.
func (r *Reply) AttachmentList() string {
	if len(r.Attachments) == 0 {
		return ""
	}
	parts := make([]string, len(r.Attachments))
	for i, a := range r.Attachments {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}

// IsEmpty reports whether the reply has nothing to send.
func (r *Reply) IsEmpty() bool {
	return r == nil || (r.Text == "" && r.Keyboard == nil && len(r.Attachments) == 0)
}
