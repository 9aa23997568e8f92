package dto

// BotRequest is one inbound interaction, independent of the chat platform.
// Exactly one of Command, Callback or Text is set.
type BotRequest struct {
	UserID      string
	DisplayName string
	Command     string
	Callback    string
	Text        string
}

type Button struct {
	Text string
	Data string
}

// BotReply is one outbound message. EditMessage asks the transport to
// replace the message that carried the pressed button.
type BotReply struct {
	Text        string
	Markdown    bool
	Buttons     []Button
	EditMessage bool
}
