// Package keyboard builds VK bot keyboards attached to outgoing messages.
package keyboard

import (
	"fmt"
)

// Color is the visual style of a button.
type Color string

// Button colors. Default is the pre-5.89 name of Secondary and is kept as its
// own enumerant so that every color parses back to itself.
const (
	Primary   Color = "primary"   // blue
	Secondary Color = "secondary" // white
	Negative  Color = "negative"  // red
	Positive  Color = "positive"  // green
	Default   Color = "default"
)

var colors = []Color{Primary, Secondary, Negative, Positive, Default}

// Colors returns all supported colors.
func Colors() []Color {
	out := make([]Color, len(colors))
	copy(out, colors)
	return out
}

// ParseColor resolves a color token.
func ParseColor(s string) (Color, error) {
	for _, c := range colors {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown color: %q", s)
}

func (c Color) String() string {
	return string(c)
}

// Valid reports whether c is one of the supported colors.
func (c Color) Valid() bool {
	_, err := ParseColor(string(c))
	return err == nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown color: %q", string(c))
	}
	return []byte(c), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
