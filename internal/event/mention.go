package event

import (
	"strconv"
	"strings"
)

// MentionKind distinguishes community mentions from user mentions.
type MentionKind uint8

const (
	MentionGroup MentionKind = iota + 1
	MentionUser
)

func (k MentionKind) String() string {
	switch k {
	case MentionGroup:
		return "group"
	case MentionUser:
		return "user"
	default:
		return "unknown"
	}
}

// Mention is a parsed leading "[club123|label]" or "[id456|label]" reference.
type Mention struct {
	Kind  MentionKind
	ID    int64
	Label string
}

// Targets reports whether the mention addresses the community with the given id.
func (m Mention) Targets(groupID int64) bool {
	return m.Kind == MentionGroup && groupID > 0 && m.ID == groupID
}

// Reference prefixes VK uses inside mention brackets.
var mentionPrefixes = []struct {
	prefix string
	kind   MentionKind
}{
	{"public", MentionGroup},
	{"club", MentionGroup},
	{"id", MentionUser},
}

// ParseMention extracts a leading mention from text. On success it returns
// the remaining text with the separating comma and whitespace removed.
// Text without a well-formed leading mention is returned unchanged with ok=false.
func ParseMention(text string) (rest string, m Mention, ok bool) {
	trimmed := strings.TrimLeft(text, " \t")
	if !strings.HasPrefix(trimmed, "[") {
		return text, Mention{}, false
	}

	end := strings.IndexByte(trimmed, ']')
	if end < 0 {
		return text, Mention{}, false
	}
	ref, label, found := strings.Cut(trimmed[1:end], "|")
	if !found {
		return text, Mention{}, false
	}

	for _, p := range mentionPrefixes {
		digits, has := strings.CutPrefix(ref, p.prefix)
		if !has {
			continue
		}
		id, err := parseID(digits)
		if err != nil {
			return text, Mention{}, false
		}
		rest = strings.TrimLeft(trimmed[end+1:], " \t")
		rest = strings.TrimPrefix(rest, ",")
		rest = strings.TrimLeft(rest, " \t")
		return rest, Mention{Kind: p.kind, ID: id, Label: label}, true
	}
	return text, Mention{}, false
}

func parseID(s string) (int64, error) {
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, strconv.ErrSyntax
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}
