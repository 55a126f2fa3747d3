package domain

import "time"

// ConversationState is the finite-state-machine state a conversation is in.
type ConversationState string

const (
	// StateChoosing is the initial state: the user is picking a search
	// mode or reading about the assistant.
	StateChoosing ConversationState = "choosing"

	// StateNameSearch means the user searches by dish name.
	StateNameSearch ConversationState = "name_search"

	// StateIngredientSearch means the user accumulates ingredient terms
	// and searches with the full selection.
	StateIngredientSearch ConversationState = "ingredient_search"
)

// Session is the per-conversation mutable record. A session is owned by
// exactly one conversation; sessions never share state.
type Session struct {
	// ID is the transport's opaque conversation identifier.
	ID string

	// State is the current conversation state.
	State ConversationState

	// Query is the pending query, or nil when none has been entered.
	Query Query

	// Cursor is the saved scan position for "one more recipe" turns.
	Cursor Cursor

	// Emitted counts recipes shown for the current query. It numbers
	// results across turns and doubles as the "a scan has started" flag.
	Emitted int

	// UpdatedAt is when the session last changed.
	UpdatedAt time.Time
}

// NewSession creates an empty session in the choosing state.
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		State:     StateChoosing,
		UpdatedAt: time.Now(),
	}
}

// ClearQuery drops the pending query and rewinds the scan position.
// The conversation state is left untouched; callers set it explicitly.
func (s *Session) ClearQuery() {
	s.Query = nil
	s.Cursor = Cursor{}
	s.Emitted = 0
}

// Reset returns the session to its initial shape: choosing state, no
// query, zero cursor.
func (s *Session) Reset() {
	s.ClearQuery()
	s.State = StateChoosing
}
