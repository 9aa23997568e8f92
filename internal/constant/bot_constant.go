package constant

// Callback payloads of the inline buttons.
const (
	CallbackTrain  = "train"
	CallbackCancel = "cancel"
)

const (
	CommandStart  = "start"
	CommandStatus = "status"
	CommandForget = "forget"
	CommandHelp   = "help"
)

const (
	ButtonTrain  = "Train me"
	ButtonCancel = "Cancel"
)

// Reply texts. %s placeholders are filled by the conversation service.
const (
	TextGreeting        = "Hi %s! I can learn from any web page and answer your questions about it."
	TextPromptURL       = "Please send the URL of the web page you want me to learn from."
	TextTrainingStarted = "I'm learning, please wait..."
	TextTrainingDone    = "Done! I learned %d chunks from %s. Ask me anything starting with '%s'."
	TextTrainingCancel  = "Training cancelled. Back to the main menu."
	TextLoadFailed      = "I could not load that URL (%s). Check the address and try again."
	TextServiceFailed   = "Something went wrong on my side, please try again later."
	TextPrefixReminder  = "Please start your question with '%s' so I can answer."
	TextMemoryCleared   = "I forgot our conversation. What I learned from your pages stays."
	TextMenu            = "What would you like to do?"
	TextHelp            = "Tap \"Train me\" and send a URL to teach me a page. Start a message with '%s' to ask a question. /status shows what I know, /forget clears our conversation."
)
