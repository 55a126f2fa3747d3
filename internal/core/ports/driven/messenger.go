package driven

import "context"

// MessageLimit is the transport's hard per-message size ceiling in
// characters. Callers must not exceed it.
const MessageLimit = 4096

// Messenger delivers outbound messages to a conversation. Segments for a
// single turn are sent in strict order; implementations must preserve it.
type Messenger interface {
	// SendText delivers one plain text segment.
	SendText(ctx context.Context, sessionID, text string) error

	// SendPrompt delivers text together with quick-reply option rows the
	// transport may render as buttons. An empty options slice clears any
	// previously offered replies.
	SendPrompt(ctx context.Context, sessionID, text string, options [][]string) error
}
