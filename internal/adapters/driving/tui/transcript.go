// Package tui provides a terminal chat client for the conversation,
// following the Elm architecture via Bubbletea.
package tui

import (
	"context"
	"sync"

	"github.com/pantry-labs/gourmet-cli/internal/core/ports/driven"
)

type role int

const (
	roleBot role = iota
	roleUser
)

// entry is one line of the chat transcript.
type entry struct {
	role    role
	text    string
	options [][]string
}

// Transcript is the shared conversation log. The loopback messenger
// writes to it from turn goroutines; the view reads snapshots.
type Transcript struct {
	mu      sync.Mutex
	entries []entry
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) appendBot(text string, options [][]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry{role: roleBot, text: text, options: options})
}

func (t *Transcript) appendUser(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry{role: roleUser, text: text})
}

func (t *Transcript) snapshot() []entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Ensure Loopback implements the interface.
var _ driven.Messenger = (*Loopback)(nil)

// Loopback is the in-process Messenger: conversation output lands in
// the transcript instead of going over a network.
type Loopback struct {
	transcript *Transcript
}

// NewLoopback creates a messenger writing into the given transcript.
func NewLoopback(transcript *Transcript) *Loopback {
	return &Loopback{transcript: transcript}
}

// SendText implements driven.Messenger.
func (l *Loopback) SendText(_ context.Context, _ string, text string) error {
	l.transcript.appendBot(text, nil)
	return nil
}

// SendPrompt implements driven.Messenger.
func (l *Loopback) SendPrompt(_ context.Context, _ string, text string, options [][]string) error {
	l.transcript.appendBot(text, options)
	return nil
}
