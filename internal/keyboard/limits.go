package keyboard

// VK keyboard limits.
// References: https://dev.vk.com/en/api/bots/development/keyboard
const (
	MaxRows          = 10 // rows in a regular keyboard
	MaxInlineRows    = 6  // rows in an inline keyboard
	MaxButtonsPerRow = 5
	MaxButtons       = 40 // buttons in a regular keyboard
	MaxInlineButtons = 10 // buttons in an inline keyboard
	MaxLabelLength   = 40 // runes
	MaxPayloadLength = 255
)
