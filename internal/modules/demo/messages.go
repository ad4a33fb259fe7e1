package demo

// Service action types VK reports when someone joins a chat.
const (
	actionInviteUser   = "chat_invite_user"
	actionInviteByLink = "chat_invite_user_by_link"
)

// rollPattern matches "roll 2d6". Digits are bounded so Atoi cannot overflow.
const rollPattern = `^roll (\d{1,4})d(\d{1,4})$`

// {p} in templates is replaced with the command prefix.
const (
	keyboardText    = "Here you go:"
	thanksText      = "Thanks!"
	buttonBText     = "You pressed button B!"
	payloadText     = "Received a payload!"
	noMatchText     = "I don't understand..."
	greetMemberText = "Welcome to the chat!"
	errorText       = "Something went wrong, please try again later."
	rollUsageText   = "Usage: roll NdM, for example roll 2d6."

	welcomeTemplate = "Hi! Press a button or send {p}help."
	joinedText      = "Thanks for adding me.\n\n"

	helpTemplate = "Commands:\n" +
		"{p}keyboard - show the demo keyboard\n" +
		"{p}help - this message\n" +
		"roll NdM - roll N dice with M sides\n" +
		"Say something nice and I will thank you."
)
