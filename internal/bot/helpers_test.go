package bot

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/garyellow/vkbot-go/internal/callback"
	"github.com/garyellow/vkbot-go/internal/logger"
)

const testGroupID int64 = 123

// payload decodes a raw callback body the way the webhook does.
func payload(t *testing.T, raw string) *callback.Payload {
	t.Helper()
	var p callback.Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return &p
}

// message builds a message_new payload for the test group.
func message(t *testing.T, text string) *callback.Payload {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"type":     "message_new",
		"event_id": "evt",
		"group_id": testGroupID,
		"object": map[string]any{
			"message": map[string]any{"id": 1, "peer_id": 2000000001, "from_id": 42, "text": text},
		},
	})
	require.NoError(t, err)
	return payload(t, string(body))
}

// newContext classifies raw or fails the test.
func newContext(t *testing.T, p *callback.Payload) *Context {
	t.Helper()
	c, err := NewContext(p)
	require.NoError(t, err)
	return c
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter("debug", &bytes.Buffer{})
}
