package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/garyellow/vkbot-go/internal/errors"
	"github.com/garyellow/vkbot-go/internal/event"
)

func noop(context.Context, *Context) (*Reply, error) { return nil, nil }

func TestRegistry_FirstMatchWins(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.OnPrefix("he", noop, Named("prefix")))
	require.NoError(t, r.OnExact("hello", noop, Named("exact")))
	require.NoError(t, r.OnRegex("^h", noop, Named("regex")))

	m, ok := r.Resolve(newContext(t, message(t, "hello")))
	require.True(t, ok)
	assert.Equal(t, "prefix", m.Name, "registration order decides, not specificity")
	assert.Equal(t, "llo", m.Context.Args())
}

func TestRegistry_PredicateKinds(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.OnExact("ping", noop, Named("exact")))
	require.NoError(t, r.OnPrefix("echo", noop, Named("prefix")))
	require.NoError(t, r.OnRegex(`(?i)n(i)ce`, noop, Named("regex")))
	require.NoError(t, r.OnPayload(`{"a": "b"}`, noop, Named("payload")))
	require.NoError(t, r.OnPayloadFunc(func(p string) bool { return strings.Contains(p, "dyn") }, noop, Named("payload_func")))

	tests := []struct {
		name    string
		raw     string
		want    string
		matched bool
	}{
		{"exact", `{"type":"message_new","group_id":123,"object":{"message":{"peer_id":1,"text":"ping"}}}`, "exact", true},
		{"exact is whole text", `{"type":"message_new","group_id":123,"object":{"message":{"peer_id":1,"text":"ping pong"}}}`, "", false},
		{"prefix", `{"type":"message_new","group_id":123,"object":{"message":{"peer_id":1,"text":"echo  me "}}}`, "prefix", true},
		{"regex partial", `{"type":"message_new","group_id":123,"object":{"message":{"peer_id":1,"text":"very NICE bot"}}}`, "regex", true},
		{"payload compact equality", `{"type":"message_new","group_id":123,"object":{"message":{"peer_id":1,"text":"B","payload":"{\"a\":\"b\"}"}}}`, "payload", true},
		{"payload func", `{"type":"message_new","group_id":123,"object":{"message":{"peer_id":1,"text":"C","payload":"{\"dyn\":1}"}}}`, "payload_func", true},
		{"nothing", `{"type":"message_new","group_id":123,"object":{"message":{"peer_id":1,"text":"what"}}}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, ok := r.Resolve(newContext(t, payload(t, tt.raw)))
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.want, m.Name)
		})
	}
}

func TestRegistry_RegexSubmatches(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.OnRegex(`^roll (\d+)d(\d+)$`, noop))

	m, ok := r.Resolve(newContext(t, message(t, "roll 2d6")))
	require.True(t, ok)
	assert.Equal(t, []string{"roll 2d6", "2", "6"}, m.Context.Matches())
	assert.Equal(t, `regex "^roll (\\d+)d(\\d+)$"`, m.Name)
}

func TestRegistry_Mentions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		matched bool
		command string
	}{
		{"plain", "help", true, "help"},
		{"own club mention", "[club123|Bot] help", true, "help"},
		{"own public mention with comma", "[public123|@bot], help", true, "help"},
		{"foreign club mention", "[club999|Other] help", false, ""},
		{"user mention", "[id123|Someone] help", false, ""},
		{"mention only", "[club123|Bot]", false, ""},
	}

	kinds := []struct {
		name     string
		register func(r *Registry) error
	}{
		{"exact", func(r *Registry) error { return r.OnExact("help", noop, Named("help")) }},
		{"prefix", func(r *Registry) error { return r.OnPrefix("help", noop, Named("help")) }},
		{"regex", func(r *Registry) error { return r.OnRegex("help", noop, Named("help")) }},
	}

	for _, kind := range kinds {
		r := NewRegistry()
		require.NoError(t, kind.register(r))

		for _, tt := range tests {
			t.Run(kind.name+"/"+tt.name, func(t *testing.T) {
				t.Parallel()
				m, ok := r.Resolve(newContext(t, message(t, tt.text)))
				assert.Equal(t, tt.matched, ok)
				if ok {
					assert.Equal(t, tt.command, m.Context.Command())
				}
			})
		}
	}
}

func TestRegistry_ForeignMentionSkipsOnlyTextPredicates(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.OnRegex("cmd", noop, Named("cmd")))
	require.NoError(t, r.OnPayload(`{"a":"b"}`, noop, Named("button")))

	_, ok := r.Resolve(newContext(t, message(t, "[club999|Other] cmd args")))
	assert.False(t, ok)

	p := payload(t, `{"type":"message_new","group_id":123,"object":{"message":{"peer_id":1,"from_id":1,"text":"[club999|Other] cmd","payload":"{\"a\": \"b\"}"}}}`)
	m, ok := r.Resolve(newContext(t, p))
	require.True(t, ok)
	assert.Equal(t, "button", m.Name)
}

func TestRegistry_CommandPrefix(t *testing.T) {
	t.Parallel()

	r := NewRegistry(WithCommandPrefix("/"))
	require.NoError(t, r.OnPrefix("keyboard", noop, Named("keyboard")))
	require.NoError(t, r.OnRegex("nice", noop, Named("nice")))

	tests := []struct {
		text string
		want string
	}{
		{"/keyboard", "keyboard"},
		{"/ keyboard please", "keyboard"},
		{"[club123|Bot] /keyboard", "keyboard"},
		{"keyboard", ""},
		{"nice", "nice"},
		{"/nice", "nice"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			m, _ := r.Resolve(newContext(t, message(t, tt.text)))
			assert.Equal(t, tt.want, m.Name)
		})
	}
}

func TestRegistry_EventFiltering(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.OnExact("hi", noop, Named("edit_hi"), ForEvent(event.MessageEdit)))
	require.NoError(t, r.OnEvent(event.Start, noop, Named("welcome")))

	_, ok := r.Resolve(newContext(t, message(t, "hi")))
	assert.False(t, ok, "edit registration ignores message_new")

	m, ok := r.Resolve(newContext(t, payload(t, `{"type":"message_edit","group_id":123,"object":{"peer_id":1,"text":"hi"}}`)))
	require.True(t, ok)
	assert.Equal(t, "edit_hi", m.Name)

	m, ok = r.Resolve(newContext(t, payload(t, `{"type":"message_new","group_id":123,"object":{"message":{"peer_id":1,"text":"Start","payload":"{\"command\": \"start\"}"}}}`)))
	require.True(t, ok)
	assert.Equal(t, "welcome", m.Name)
}

func TestRegistry_NormalizesUnicode(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	// "café" with a precomposed é
	require.NoError(t, r.OnExact("café", noop, Named("cafe")))

	// same word with e + combining acute accent
	m, ok := r.Resolve(newContext(t, message(t, "café")))
	require.True(t, ok)
	assert.Equal(t, "cafe", m.Name)
}

func TestRegistry_RegistrationErrors(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	tests := []struct {
		name string
		err  error
	}{
		{"empty exact", r.OnExact("  ", noop)},
		{"empty prefix", r.OnPrefix("", noop)},
		{"bad regex", r.OnRegex("(", noop)},
		{"bad payload", r.OnPayload("{not json", noop)},
		{"nil payload func", r.OnPayloadFunc(nil, noop)},
		{"nil handler", r.OnExact("x", nil)},
		{"confirmation", r.OnEvent(event.Confirmation, noop)},
		{"internal event", r.OnEvent(event.NoMatch, noop)},
		{"invalid event", r.OnExact("x", noop, ForEvent(event.Event(200)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.True(t, domerrors.IsRegistration(tt.err), "got %T", tt.err)
		})
	}
	assert.Zero(t, r.Len())

	assert.ErrorIs(t, r.OnRegex("(", noop), domerrors.ErrInvalidPredicate)
}

func TestRegistry_SpecialHandlers(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.OnNoMatch(noop))
	require.NoError(t, r.OnHandlerError(noop))
	assert.True(t, r.HasNoMatch())

	assert.Error(t, r.OnNoMatch(noop), "only one no-match handler")
	assert.Error(t, r.OnHandlerError(noop), "only one error hook")
}

func TestRegistry_Freeze(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.OnExact("a", noop))
	r.Freeze()
	assert.True(t, r.Frozen())

	err := r.OnExact("b", noop)
	assert.ErrorIs(t, err, domerrors.ErrRegistryFrozen)
	assert.ErrorIs(t, r.OnNoMatch(noop), domerrors.ErrRegistryFrozen)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ConcurrentResolve(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.OnExact("ping", noop, Named("ping")))
	r.Freeze()

	c := newContext(t, message(t, "ping"))
	done := make(chan struct{})
	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 100 {
				m, ok := r.Resolve(c)
				if !ok || m.Name != "ping" {
					t.Error("unexpected resolve result")
					return
				}
			}
		}()
	}
	for range 8 {
		<-done
	}
}

func TestRegistry_MustOnRegex(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	assert.NotPanics(t, func() { r.MustOnRegex(`^\d+$`, noop) })
	assert.Panics(t, func() { r.MustOnRegex("(", noop) })
	assert.Equal(t, 1, r.Len())
}
