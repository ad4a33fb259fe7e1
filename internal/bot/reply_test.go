package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/vkbot-go/internal/keyboard"
)

func TestAttachment_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		att  Attachment
		want string
	}{
		{Attachment{Type: "photo", OwnerID: -123, MediaID: 456}, "photo-123_456"},
		{Attachment{Type: "doc", OwnerID: 42, MediaID: 7, AccessKey: "abc"}, "doc42_7_abc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.att.String())
	}
}

func TestReply_Builders(t *testing.T) {
	t.Parallel()

	kb := keyboard.NewInline().Add(keyboard.NewTextButton("Yes", keyboard.Positive)).MustBuild()
	r := Text("pick one").
		WithKeyboard(kb).
		WithAttachments(Attachment{Type: "photo", OwnerID: 1, MediaID: 2}).
		WithAttachments(Attachment{Type: "wall", OwnerID: -3, MediaID: 4})

	assert.Equal(t, "pick one", r.Text)
	assert.Same(t, kb, r.Keyboard)
	assert.Equal(t, "photo1_2,wall-3_4", r.AttachmentList())
	assert.False(t, r.IsEmpty())
}

func TestReply_IsEmpty(t *testing.T) {
	t.Parallel()

	var nilReply *Reply
	assert.True(t, nilReply.IsEmpty())
	assert.True(t, (&Reply{PeerID: 5}).IsEmpty(), "a destination alone is not content")
	assert.False(t, Text("x").IsEmpty())
	assert.False(t, (&Reply{Attachments: []Attachment{{Type: "photo", OwnerID: 1, MediaID: 1}}}).IsEmpty())
	assert.Empty(t, Text("x").AttachmentList())
}

func TestRespond(t *testing.T) {
	t.Parallel()

	reply, err := Respond("Thanks!")(context.Background(), newContext(t, message(t, "nice")))
	require.NoError(t, err)
	assert.Equal(t, "Thanks!", reply.Text)
	assert.Zero(t, reply.PeerID)
}
