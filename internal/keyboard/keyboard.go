package keyboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	domerrors "github.com/garyellow/vkbot-go/internal/errors"
)

// ActionType is the kind of action a button triggers.
type ActionType string

const (
	ActionText     ActionType = "text"
	ActionCallback ActionType = "callback"
	ActionOpenLink ActionType = "open_link"
)

// Action describes what happens when a button is pressed.
type Action struct {
	Type    ActionType `json:"type"`
	Label   string     `json:"label,omitempty"`
	Payload string     `json:"payload,omitempty"`
	Link    string     `json:"link,omitempty"`
}

// Button is a single keyboard button.
type Button struct {
	Color  Color  `json:"color,omitempty"`
	Action Action `json:"action"`
}

// Keyboard is the keyboard object sent with messages.send.
type Keyboard struct {
	Buttons [][]Button `json:"buttons"`
	OneTime bool       `json:"one_time"`
	Inline  bool       `json:"inline,omitempty"`
}

// NewTextButton creates a button that sends its label as a message.
func NewTextButton(label string, color Color) Button {
	return Button{
		Color:  color,
		Action: Action{Type: ActionText, Label: label},
	}
}

// NewCallbackButton creates a button that delivers payload without posting a message.
func NewCallbackButton(label string, color Color, payload string) Button {
	return Button{
		Color:  color,
		Action: Action{Type: ActionCallback, Label: label, Payload: payload},
	}
}

// NewLinkButton creates a button that opens link. Link buttons carry no color.
func NewLinkButton(label, link string) Button {
	return Button{
		Action: Action{Type: ActionOpenLink, Label: label, Link: link},
	}
}

// WithPayload returns a copy of b carrying the JSON payload.
func (b Button) WithPayload(payload string) Button {
	b.Action.Payload = payload
	return b
}

// Empty returns a keyboard that hides the current one on the client.
func Empty() *Keyboard {
	return &Keyboard{Buttons: [][]Button{}, OneTime: true}
}

// Count returns the total number of buttons.
func (k *Keyboard) Count() int {
	n := 0
	for _, row := range k.Buttons {
		n += len(row)
	}
	return n
}

// Validate checks the keyboard against VK limits and reports every violation.
func (k *Keyboard) Validate() error {
	var errs []error

	maxRows, maxButtons := MaxRows, MaxButtons
	if k.Inline {
		maxRows, maxButtons = MaxInlineRows, MaxInlineButtons
		if k.OneTime {
			errs = append(errs, domerrors.NewValidationError("one_time", "not allowed on inline keyboards"))
		}
	}
	if len(k.Buttons) > maxRows {
		errs = append(errs, domerrors.NewValidationError("buttons", fmt.Sprintf("%d rows exceed limit %d", len(k.Buttons), maxRows)))
	}
	if n := k.Count(); n > maxButtons {
		errs = append(errs, domerrors.NewValidationError("buttons", fmt.Sprintf("%d buttons exceed limit %d", n, maxButtons)))
	}

	for i, row := range k.Buttons {
		if len(row) == 0 {
			errs = append(errs, domerrors.NewValidationError(fmt.Sprintf("buttons[%d]", i), "row is empty"))
		}
		if len(row) > MaxButtonsPerRow {
			errs = append(errs, domerrors.NewValidationError(fmt.Sprintf("buttons[%d]", i), fmt.Sprintf("%d buttons exceed row limit %d", len(row), MaxButtonsPerRow)))
		}
		for j, b := range row {
			if err := b.validate(); err != nil {
				errs = append(errs, fmt.Errorf("buttons[%d][%d]: %w", i, j, err))
			}
		}
	}

	return errors.Join(errs...)
}

func (b Button) validate() error {
	var errs []error

	switch b.Action.Type {
	case ActionText, ActionCallback:
		if b.Color != "" && !b.Color.Valid() {
			errs = append(errs, domerrors.NewValidationError("color", fmt.Sprintf("unknown color %q", string(b.Color))))
		}
	case ActionOpenLink:
		if b.Action.Link == "" {
			errs = append(errs, domerrors.NewValidationError("link", "required for open_link"))
		}
	default:
		errs = append(errs, domerrors.NewValidationError("type", fmt.Sprintf("unsupported action %q", string(b.Action.Type))))
	}

	if b.Action.Label == "" {
		errs = append(errs, domerrors.NewValidationError("label", "must not be empty"))
	}
	if n := utf8.RuneCountInString(b.Action.Label); n > MaxLabelLength {
		errs = append(errs, domerrors.NewValidationError("label", fmt.Sprintf("%d characters exceed limit %d", n, MaxLabelLength)))
	}
	if p := b.Action.Payload; p != "" {
		if len(p) > MaxPayloadLength {
			errs = append(errs, domerrors.NewValidationError("payload", fmt.Sprintf("%d bytes exceed limit %d", len(p), MaxPayloadLength)))
		}
		if !json.Valid([]byte(p)) {
			errs = append(errs, domerrors.NewValidationError("payload", "must be valid JSON"))
		}
	}

	return errors.Join(errs...)
}

// JSON encodes the keyboard in the form messages.send expects.
func (k *Keyboard) JSON() (string, error) {
	if k.Buttons == nil {
		k = &Keyboard{Buttons: [][]Button{}, OneTime: k.OneTime, Inline: k.Inline}
	}
	data, err := json.Marshal(k)
	if err != nil {
		return "", fmt.Errorf("encode keyboard: %w", err)
	}
	return string(data), nil
}
