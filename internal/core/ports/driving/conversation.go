package driving

import "context"

// Conversation processes user messages for independent chat sessions.
// Transports feed every incoming message through HandleMessage; replies go
// out via the driven Messenger port.
type Conversation interface {
	// HandleMessage runs one full turn of the state machine for the
	// given session: classify the input, perform any scan-and-emit
	// sequence, and leave the session in a valid, resumable state.
	// Turns within one session must be submitted sequentially.
	HandleMessage(ctx context.Context, sessionID, text string) error
}
