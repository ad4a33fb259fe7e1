package bot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// PredicateKind selects how a registration tests an incoming event.
type PredicateKind uint8

const (
	PredicateExact PredicateKind = iota + 1
	PredicatePrefix
	PredicateRegex
	PredicatePayload
	PredicatePayloadFunc
	PredicateAny
)

func (k PredicateKind) String() string {
	switch k {
	case PredicateExact:
		return "exact"
	case PredicatePrefix:
		return "prefix"
	case PredicateRegex:
		return "regex"
	case PredicatePayload:
		return "payload"
	case PredicatePayloadFunc:
		return "payload_func"
	case PredicateAny:
		return "any"
	default:
		return "unknown"
	}
}

// textual reports whether the kind inspects the message text.
func (k PredicateKind) textual() bool {
	return k == PredicateExact || k == PredicatePrefix || k == PredicateRegex
}

// Predicate is a tagged union of match rules. Only the fields relevant
// to Kind are set.
type Predicate struct {
	Kind  PredicateKind
	Value string

	re   *regexp.Regexp
	test func(payload string) bool
}

func (p Predicate) String() string {
	switch p.Kind {
	case PredicatePayloadFunc, PredicateAny:
		return p.Kind.String()
	default:
		return fmt.Sprintf("%s %q", p.Kind, p.Value)
	}
}

// matchResult carries what a successful match extracted.
type matchResult struct {
	args    string
	matches []string
}

// match tests the predicate. command is the effective command text after
// mention and prefix handling; hasPrefix reports whether the configured
// command prefix was present (always true when none is configured).
func (p Predicate) match(c *Context, command string, hasPrefix bool) (matchResult, bool) {
	switch p.Kind {
	case PredicateExact:
		if hasPrefix && command == p.Value {
			return matchResult{}, true
		}
	case PredicatePrefix:
		if hasPrefix {
			if rest, ok := strings.CutPrefix(command, p.Value); ok {
				return matchResult{args: strings.TrimSpace(rest)}, true
			}
		}
	case PredicateRegex:
		if m := p.re.FindStringSubmatch(command); m != nil {
			return matchResult{matches: m}, true
		}
	case PredicatePayload:
		if c.payload != "" && compactJSON(c.payload) == p.Value {
			return matchResult{}, true
		}
	case PredicatePayloadFunc:
		if c.payload != "" && p.test(c.payload) {
			return matchResult{}, true
		}
	case PredicateAny:
		return matchResult{}, true
	}
	return matchResult{}, false
}

// compactJSON returns s with insignificant whitespace removed, or s itself
// when it is not valid JSON.
func compactJSON(s string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
