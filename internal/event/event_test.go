package event

import (
	"encoding/json"
	"errors"
	"testing"

	domerrors "github.com/garyellow/vkbot-go/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	all := All()
	require.Len(t, all, 11, "every declared event must have a token")

	for _, e := range all {
		t.Run(e.String(), func(t *testing.T) {
			parsed, err := Parse(e.String())
			require.NoError(t, err)
			assert.Equal(t, e, parsed)
			assert.Equal(t, e.String(), parsed.String())
		})
	}
}

func TestParse_KnownTokens(t *testing.T) {
	t.Parallel()

	tests := map[string]Event{
		"confirmation":         Confirmation,
		"message_new":          MessageNew,
		"message_reply":        MessageReply,
		"message_edit":         MessageEdit,
		"message_typing_state": MessageTypingState,
		"message_allow":        MessageAllow,
		"message_deny":         MessageDeny,
		"start":                Start,
		"service_action":       ServiceAction,
		"no_match":             NoMatch,
		"handler_error":        HandlerError,
	}
	for token, want := range tests {
		got, err := Parse(token)
		require.NoError(t, err, token)
		assert.Equal(t, want, got, token)
	}
}

func TestParse_UnknownToken(t *testing.T) {
	t.Parallel()

	tests := []string{"", "Message_New", "message-new", "wall_post_new", " message_new", "unknown"}
	for _, token := range tests {
		t.Run(token, func(t *testing.T) {
			got, err := Parse(token)
			require.Error(t, err)
			assert.Equal(t, Event(0), got, "no default variant may be returned")
			assert.True(t, domerrors.IsClassification(err))
			assert.True(t, errors.Is(err, domerrors.ErrUnknownEvent))
		})
	}
}

func TestEvent_InvalidString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "event(0)", Event(0).String())
	assert.Equal(t, "event(200)", Event(200).String())
	assert.False(t, Event(0).Valid())
}

func TestEvent_Predicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		event       Event
		message     bool
		echo        bool
		internal    bool
		callback    bool
		groupScoped bool
	}{
		{Confirmation, false, false, false, true, false},
		{MessageNew, true, false, false, true, true},
		{MessageReply, true, true, false, true, true},
		{MessageEdit, true, false, false, true, true},
		{MessageTypingState, false, false, false, true, true},
		{MessageAllow, false, false, false, true, true},
		{MessageDeny, false, false, false, true, true},
		{Start, true, false, false, false, true},
		{ServiceAction, true, false, false, false, true},
		{NoMatch, false, false, true, false, false},
		{HandlerError, false, false, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.event.String(), func(t *testing.T) {
			assert.Equal(t, tt.message, tt.event.IsMessage(), "IsMessage")
			assert.Equal(t, tt.echo, tt.event.IsEcho(), "IsEcho")
			assert.Equal(t, tt.internal, tt.event.IsInternal(), "IsInternal")
			assert.Equal(t, tt.callback, tt.event.IsCallback(), "IsCallback")
			assert.Equal(t, tt.groupScoped, tt.event.IsGroupScoped(), "IsGroupScoped")
		})
	}
}

func TestEvent_JSON(t *testing.T) {
	t.Parallel()

	type envelope struct {
		Type Event `json:"type"`
	}

	data, err := json.Marshal(envelope{Type: MessageReply})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"message_reply"}`, string(data))

	var decoded envelope
	require.NoError(t, json.Unmarshal([]byte(`{"type":"message_edit"}`), &decoded))
	assert.Equal(t, MessageEdit, decoded.Type)

	err = json.Unmarshal([]byte(`{"type":"group_join"}`), &decoded)
	require.Error(t, err)
	assert.True(t, domerrors.IsClassification(err))

	_, err = json.Marshal(envelope{})
	assert.Error(t, err, "zero event must not marshal")
}
