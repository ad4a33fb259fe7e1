package keyboard

// Builder assembles a keyboard row by row.
//
//	kb, err := keyboard.New().OneTime().
//		Add(keyboard.NewTextButton("1", keyboard.Default), keyboard.NewTextButton("2", keyboard.Default)).
//		Row().
//		Add(keyboard.NewTextButton("Cancel", keyboard.Negative)).
//		Build()
type Builder struct {
	kb      Keyboard
	current []Button
}

// New starts a regular keyboard.
func New() *Builder {
	return &Builder{kb: Keyboard{Buttons: [][]Button{}}}
}

// NewInline starts a keyboard attached to the message itself.
func NewInline() *Builder {
	b := New()
	b.kb.Inline = true
	return b
}

// OneTime hides the keyboard after the first press.
func (b *Builder) OneTime() *Builder {
	b.kb.OneTime = true
	return b
}

// Add appends buttons to the current row.
func (b *Builder) Add(buttons ...Button) *Builder {
	b.current = append(b.current, buttons...)
	return b
}

// Row closes the current row. Empty rows are skipped.
func (b *Builder) Row() *Builder {
	if len(b.current) > 0 {
		b.kb.Buttons = append(b.kb.Buttons, b.current)
		b.current = nil
	}
	return b
}

// Build closes the last row and validates the result.
func (b *Builder) Build() (*Keyboard, error) {
	b.Row()
	kb := b.kb
	if err := kb.Validate(); err != nil {
		return nil, err
	}
	return &kb, nil
}

// MustBuild is like Build but panics on invalid keyboards.
// Use it for keyboards fixed at compile time.
func (b *Builder) MustBuild() *Keyboard {
	kb, err := b.Build()
	if err != nil {
		panic("keyboard: " + err.Error())
	}
	return kb
}
