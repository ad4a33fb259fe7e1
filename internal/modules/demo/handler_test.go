package demo

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/vkbot-go/internal/bot"
	"github.com/garyellow/vkbot-go/internal/callback"
	domerrors "github.com/garyellow/vkbot-go/internal/errors"
	"github.com/garyellow/vkbot-go/internal/logger"
)

const groupID int64 = 77

func newDispatcher(t *testing.T, prefix string) *bot.Dispatcher {
	t.Helper()
	log := logger.NewWithWriter("debug", &bytes.Buffer{})

	h, err := NewHandler(log, prefix)
	require.NoError(t, err)
	r := bot.NewRegistry(bot.WithCommandPrefix(prefix))
	require.NoError(t, h.Register(r))

	d, err := bot.NewDispatcher(bot.DispatcherConfig{
		Registry: r,
		Identity: bot.Identity{GroupID: groupID},
		Logger:   log,
	})
	require.NoError(t, err)
	return d
}

func dispatch(t *testing.T, d *bot.Dispatcher, object map[string]any) (*bot.Result, error) {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"type":     "message_new",
		"group_id": groupID,
		"event_id": "e1",
		"object":   map[string]any{"message": object},
	})
	require.NoError(t, err)
	var p callback.Payload
	require.NoError(t, json.Unmarshal(body, &p))
	return d.Handle(context.Background(), &p)
}

func text(s string) map[string]any {
	return map[string]any{"peer_id": 10, "from_id": 10, "text": s}
}

func TestNewHandler(t *testing.T) {
	t.Parallel()

	h, err := NewHandler(logger.NewWithWriter("info", &bytes.Buffer{}), "!")
	require.NoError(t, err)
	assert.Equal(t, ModuleName, h.Name())
	assert.Contains(t, h.help, "!keyboard")
	assert.Equal(t, 2, h.keyboard.Count())
}

func TestRegister_Twice(t *testing.T) {
	t.Parallel()

	h, err := NewHandler(logger.NewWithWriter("info", &bytes.Buffer{}), "")
	require.NoError(t, err)
	r := bot.NewRegistry()
	require.NoError(t, h.Register(r))

	err = h.Register(r)
	require.Error(t, err, "a second no-match handler is rejected")
	assert.True(t, domerrors.IsRegistration(err))
}

func TestHandlers(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "/")

	tests := []struct {
		name    string
		object  map[string]any
		handler string
		want    string
	}{
		{"keyboard command", text("/keyboard"), "demo.keyboard", keyboardText},
		{"keyboard after own mention", text("[club77|Demo] /keyboard"), "demo.keyboard", keyboardText},
		{"help", text("/help"), "demo.help", "Commands:"},
		{"nice anywhere", text("that was nice"), "demo.nice", thanksText},
		{"button B", map[string]any{"peer_id": 10, "from_id": 10, "text": "B", "payload": `{"a":"b"}`}, "demo.button_b", buttonBText},
		{"other payload", map[string]any{"peer_id": 10, "from_id": 10, "text": "C", "payload": `{"x":1}`}, "demo.payload", payloadText},
		{"start button", map[string]any{"peer_id": 10, "from_id": 10, "text": "Start", "payload": `{"command":"start"}`}, "demo.start", "Hi! Press a button or send /help."},
		{"button A has no payload", text("A"), "demo.no_match", noMatchText},
		{"missing prefix", text("keyboard"), "demo.no_match", noMatchText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := dispatch(t, d, tt.object)
			require.NoError(t, err)
			assert.Equal(t, tt.handler, res.Handler)
			require.NotNil(t, res.Reply)
			assert.Contains(t, res.Reply.Text, tt.want)
			assert.Equal(t, int64(10), res.Reply.PeerID)
		})
	}
}

func TestKeyboardReply(t *testing.T) {
	t.Parallel()

	res, err := dispatch(t, newDispatcher(t, ""), text("keyboard"))
	require.NoError(t, err)
	require.NotNil(t, res.Reply.Keyboard)

	raw, err := res.Reply.Keyboard.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"one_time": false,
		"buttons": [[
			{"action": {"type": "text", "label": "A"}, "color": "primary"},
			{"action": {"type": "text", "label": "B", "payload": "{\"a\": \"b\"}"}, "color": "default"}
		]]
	}`, raw)
}

func TestForeignMentionIgnoredByCommands(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "/")

	for _, msg := range []string{"[club999|Other] /keyboard", "[club999|Other] that was nice", "[id5|Ann] roll 2d6"} {
		res, err := dispatch(t, d, text(msg))
		require.NoError(t, err)
		assert.Equal(t, bot.OutcomeIgnored, res.Outcome, msg)
		assert.Nil(t, res.Reply, msg)
	}
}

func TestRoll(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "/")

	res, err := dispatch(t, d, text("roll 3d6"))
	require.NoError(t, err)
	assert.Equal(t, "demo.roll", res.Handler)
	assert.Regexp(t, regexp.MustCompile(`^[1-6] \+ [1-6] \+ [1-6] = \d+$`), res.Reply.Text)
}

func TestRoll_OutOfRange(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "/")

	for _, in := range []string{"roll 50d6", "roll 0d6", "roll 2d1"} {
		res, err := dispatch(t, d, text(in))
		require.Error(t, err, in)
		assert.True(t, domerrors.IsHandler(err))
		assert.Equal(t, bot.OutcomeFailed, res.Outcome)
		require.NotNil(t, res.Reply, "error hook answers")
		assert.Equal(t, "I can roll 1 to 20 dice with 2 to 1000 sides.", res.Reply.Text)
	}
}

func TestServiceActions(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "/")

	tests := []struct {
		name   string
		action map[string]any
		want   string
	}{
		{"member invited", map[string]any{"type": "chat_invite_user", "member_id": 5}, greetMemberText},
		{"joined by link", map[string]any{"type": "chat_invite_user_by_link", "member_id": 6}, greetMemberText},
		{"bot invited", map[string]any{"type": "chat_invite_user", "member_id": -groupID}, "Thanks for adding me."},
		{"title changed", map[string]any{"type": "chat_title_update", "text": "new"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := dispatch(t, d, map[string]any{"peer_id": 2000000001, "from_id": 5, "text": "", "action": tt.action})
			require.NoError(t, err)
			assert.Equal(t, "demo.service_action", res.Handler)
			if tt.want == "" {
				assert.Nil(t, res.Reply)
				return
			}
			require.NotNil(t, res.Reply)
			assert.Contains(t, res.Reply.Text, tt.want)
		})
	}
}
