package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantry-labs/gourmet-cli/internal/adapters/driven/storage/memory"
	"github.com/pantry-labs/gourmet-cli/internal/core/domain"
)

// sent records one outgoing message.
type sent struct {
	text    string
	options [][]string
	prompt  bool
}

// recordingMessenger captures everything the conversation sends.
type recordingMessenger struct {
	sends   []sent
	failTxt string // fail the send carrying this text
}

func (m *recordingMessenger) SendText(_ context.Context, _ string, text string) error {
	if m.failTxt != "" && strings.Contains(text, m.failTxt) {
		return errors.New("send failed")
	}
	m.sends = append(m.sends, sent{text: text})
	return nil
}

func (m *recordingMessenger) SendPrompt(_ context.Context, _ string, text string, options [][]string) error {
	m.sends = append(m.sends, sent{text: text, options: options, prompt: true})
	return nil
}

func (m *recordingMessenger) texts() []string {
	out := make([]string, len(m.sends))
	for i, s := range m.sends {
		out[i] = s.text
	}
	return out
}

func (m *recordingMessenger) last() sent {
	return m.sends[len(m.sends)-1]
}

func (m *recordingMessenger) reset() {
	m.sends = nil
}

// harness bundles a conversation with its collaborators for one test.
type harness struct {
	conv      *Conversation
	messenger *recordingMessenger
	store     *memory.SessionStore
	source    *fakeSource
}

func newHarness(source *fakeSource, limit int) *harness {
	messenger := &recordingMessenger{}
	store := memory.NewSessionStore()
	return &harness{
		conv:      NewConversation(store, messenger, NewScanner(source), NewFormatter(limit), source, 0),
		messenger: messenger,
		store:     store,
		source:    source,
	}
}

func (h *harness) say(t *testing.T, text string) {
	t.Helper()
	require.NoError(t, h.conv.HandleMessage(context.Background(), "42", text))
}

func (h *harness) session(t *testing.T) *domain.Session {
	t.Helper()
	sess, err := h.store.Get(context.Background(), "42")
	require.NoError(t, err)
	return sess
}

// saladDataset exercises the whole-word name matching: "Greek Salad" and
// "greek Salad Bowl" both match a "greek salad" search, "Greek-style
// Salad" does not.
func saladDataset() *fakeSource {
	return &fakeSource{chunks: [][]domain.Recipe{
		{
			{Title: "Chicken Soup", Ingredients: `["chicken"]`, Directions: `["Boil."]`},
			{Title: "Greek Salad", Ingredients: `["feta", "olives"]`, Directions: `["Chop.", "Toss."]`},
			{Title: "Greek-style Salad", Ingredients: `["feta"]`, Directions: `["Chop."]`},
		},
		{
			{Title: "greek Salad Bowl", Ingredients: `["feta", "rice"]`, Directions: `["Assemble."]`},
		},
	}}
}

func TestConversation_StartGreets(t *testing.T) {
	h := newHarness(saladDataset(), 0)

	h.say(t, "/start")

	require.Len(t, h.messenger.sends, 1)
	assert.Equal(t, msgGreeting, h.messenger.last().text)
	assert.Equal(t, startOptions, h.messenger.last().options)
	assert.Equal(t, domain.StateChoosing, h.session(t).State)
}

func TestConversation_LetsGoOffersChoice(t *testing.T) {
	h := newHarness(saladDataset(), 0)

	h.say(t, "/start")
	h.say(t, ButtonLetsGo)

	assert.Equal(t, msgChoice, h.messenger.last().text)
	assert.Equal(t, choiceOptions, h.messenger.last().options)
}

func TestConversation_AboutFromAnyState(t *testing.T) {
	h := newHarness(saladDataset(), 0)

	h.say(t, ButtonFindByName)
	h.say(t, "/help")

	assert.Equal(t, msgAbout, h.messenger.last().text)
	assert.Equal(t, domain.StateChoosing, h.session(t).State)
}

func TestConversation_FindByNamePrompts(t *testing.T) {
	h := newHarness(saladDataset(), 0)

	h.say(t, ButtonFindByName)

	assert.Equal(t, msgNamePrompt, h.messenger.last().text)
	assert.Equal(t, dishOptions, h.messenger.last().options)
	assert.Equal(t, domain.StateNameSearch, h.session(t).State)
}

func TestConversation_NameSearchOneRecipePerTurn(t *testing.T) {
	h := newHarness(saladDataset(), 0)

	h.say(t, ButtonFindByName)
	h.messenger.reset()
	h.say(t, "greek Salad")

	texts := h.messenger.texts()
	require.Len(t, texts, 6)
	assert.Contains(t, texts[0], `"greek salad"`)
	assert.Contains(t, texts[1], `"greek salad"`)
	assert.Equal(t, "1. Greek Salad", texts[2])
	assert.Contains(t, texts[3], "feta\n olives")
	assert.Contains(t, texts[4], "Follow these steps to prepare Greek Salad:")
	assert.Equal(t, msgWhatThink, texts[5])
	assert.Equal(t, reactionOptions, h.messenger.last().options)

	sess := h.session(t)
	assert.Equal(t, 1, sess.Emitted)
	assert.Equal(t, domain.Cursor{Chunk: 0, Offset: 2}, sess.Cursor)
}

func TestConversation_OneMoreResumesScan(t *testing.T) {
	h := newHarness(saladDataset(), 0)

	h.say(t, ButtonFindByName)
	h.say(t, "greek Salad")
	h.messenger.reset()
	h.say(t, ButtonOneMore)

	texts := h.messenger.texts()
	// No header on resumed pages, and the hyphenated title is skipped.
	require.GreaterOrEqual(t, len(texts), 2)
	assert.Contains(t, texts[0], `"greek salad"`)
	assert.Equal(t, "2. greek Salad Bowl", texts[1])

	h.messenger.reset()
	h.say(t, ButtonOneMore)

	assert.Contains(t, h.messenger.last().text, "That's everything I have")
	assert.Equal(t, choiceOptions, h.messenger.last().options)

	sess := h.session(t)
	assert.Equal(t, domain.StateChoosing, sess.State)
	assert.Nil(t, sess.Query)
}

func TestConversation_ResumeSurvivesRestart(t *testing.T) {
	h := newHarness(saladDataset(), 0)

	h.say(t, ButtonFindByName)
	h.say(t, "greek Salad")

	// A fresh conversation over the same store picks up where it left off.
	resumed := NewConversation(h.store, h.messenger, NewScanner(h.source), NewFormatter(0), h.source, 0)
	h.messenger.reset()
	require.NoError(t, resumed.HandleMessage(context.Background(), "42", ButtonOneMore))

	assert.Equal(t, "2. greek Salad Bowl", h.messenger.texts()[1])
}

func TestConversation_NothingFound(t *testing.T) {
	h := newHarness(saladDataset(), 0)

	h.say(t, ButtonFindByName)
	h.messenger.reset()
	h.say(t, "moussaka")

	assert.Contains(t, h.messenger.last().text, "nothing was found")
	assert.Equal(t, choiceOptions, h.messenger.last().options)
	assert.Equal(t, domain.StateChoosing, h.session(t).State)
}

func TestConversation_BracketInputRejected(t *testing.T) {
	h := newHarness(saladDataset(), 0)

	h.say(t, ButtonFindByName)
	h.messenger.reset()
	h.say(t, "mac[aroni")

	assert.Equal(t, msgBrackets, h.messenger.last().text)
	assert.Equal(t, dishOptions, h.messenger.last().options)

	sess := h.session(t)
	assert.Nil(t, sess.Query, "rejected input must not become a query")
	assert.True(t, sess.Cursor.IsZero())
}

func TestConversation_BracketInputRejectedInIngredientSearch(t *testing.T) {
	h := newHarness(saladDataset(), 0)

	h.say(t, ButtonFindByIngredients)
	h.say(t, "Feta")
	h.say(t, ButtonDone)

	before := h.session(t)
	require.NotZero(t, before.Emitted)

	h.messenger.reset()
	h.say(t, "olive[s")

	assert.Equal(t, msgBrackets, h.messenger.last().text)
	assert.Equal(t, ingredientOptions, h.messenger.last().options)

	after := h.session(t)
	assert.Equal(t, before.Query, after.Query, "rejected input must not change the selection")
	assert.Equal(t, before.Cursor, after.Cursor)
	assert.Equal(t, before.Emitted, after.Emitted)
}

func TestConversation_IngredientAccumulation(t *testing.T) {
	source := &fakeSource{chunks: [][]domain.Recipe{
		{
			{Title: "Shakshuka", Ingredients: `["2 tomatoes", "3 eggs"]`, Directions: `["Simmer."]`},
			{Title: "Tomato Soup", Ingredients: `["tomato", "basil"]`, Directions: `["Blend."]`},
			{Title: "Omelette", Ingredients: `["egg", "butter"]`, Directions: `["Fry."]`},
		},
	}}
	h := newHarness(source, 0)

	h.say(t, ButtonFindByIngredients)
	assert.Equal(t, msgIngredientPrompt, h.messenger.last().text)
	assert.Equal(t, ingredientOptions, h.messenger.last().options)

	h.say(t, "Tomato")
	assert.Contains(t, h.messenger.last().text, "tomato")

	h.say(t, "Egg")
	assert.Contains(t, h.messenger.last().text, "tomato, egg")

	h.messenger.reset()
	h.say(t, ButtonDone)

	texts := h.messenger.texts()
	require.Len(t, texts, 6)
	assert.Equal(t, "1. Shakshuka", texts[2], "only the row holding every term matches")

	h.messenger.reset()
	h.say(t, ButtonOneMore)
	assert.Contains(t, h.messenger.last().text, "That's everything I have")
}

func TestConversation_RepeatedTermKeepsCursor(t *testing.T) {
	h := newHarness(saladDataset(), 0)

	h.say(t, ButtonFindByIngredients)
	h.say(t, "Feta")
	h.say(t, ButtonDone)

	before := h.session(t)
	require.NotZero(t, before.Emitted)

	// Re-adding a term already in the set must not rewind the scan.
	h.say(t, "feta")
	after := h.session(t)
	assert.Equal(t, before.Cursor, after.Cursor)
	assert.Equal(t, before.Emitted, after.Emitted)
}

func TestConversation_CancelLastToEmpty(t *testing.T) {
	h := newHarness(saladDataset(), 0)

	h.say(t, ButtonFindByIngredients)
	h.say(t, "tomato, egg")
	h.messenger.reset()

	h.say(t, ButtonCancelLast)
	assert.Contains(t, h.messenger.last().text, "Here's what I've got: tomato")

	h.say(t, ButtonCancelLast)
	assert.Equal(t, msgRemovedEmpty, h.messenger.last().text)

	h.say(t, ButtonDone)
	assert.Equal(t, msgPickSomething, h.messenger.last().text)
	assert.Equal(t, ingredientOptions, h.messenger.last().options)
}

func TestConversation_CancelLastWithNothingChosen(t *testing.T) {
	h := newHarness(saladDataset(), 0)

	h.say(t, ButtonFindByIngredients)
	h.messenger.reset()
	h.say(t, ButtonCancelLast)

	assert.Equal(t, msgNothingToRemove, h.messenger.last().text)
}

func TestConversation_OversizedOnlyMatchEndsSearch(t *testing.T) {
	source := &fakeSource{chunks: [][]domain.Recipe{
		{
			{Title: "Big", Ingredients: `["salt", "` + strings.Repeat("x", 300) + `"]`, Directions: `["Mix."]`},
			{Title: "Plain", Ingredients: `["pepper"]`, Directions: `["Stir."]`},
		},
	}}
	h := newHarness(source, 120)

	h.say(t, ButtonFindByIngredients)
	h.say(t, "salt")
	h.messenger.reset()
	h.say(t, ButtonDone)

	texts := h.messenger.texts()
	// The only match is oversized: title, sentinel, then the scan runs out
	// within the same turn.
	require.Len(t, texts, 5)
	assert.Equal(t, "1. Big", texts[2])
	assert.Equal(t, msgOversized, texts[3])
	assert.Contains(t, texts[4], "That's everything I have")

	sess := h.session(t)
	assert.Equal(t, domain.StateChoosing, sess.State)
	assert.Nil(t, sess.Query)
}

func TestConversation_OversizedThenCleanRecipe(t *testing.T) {
	source := &fakeSource{chunks: [][]domain.Recipe{
		{
			{Title: "Big", Ingredients: `["salt", "` + strings.Repeat("x", 300) + `"]`, Directions: `["Mix."]`},
			{Title: "Clean", Ingredients: `["salt"]`, Directions: `["Stir."]`},
		},
	}}
	h := newHarness(source, 120)

	h.say(t, ButtonFindByIngredients)
	h.say(t, "salt")
	h.messenger.reset()
	h.say(t, ButtonDone)

	texts := h.messenger.texts()
	require.Len(t, texts, 8)
	assert.Equal(t, "1. Big", texts[2])
	assert.Equal(t, msgOversized, texts[3])
	assert.Equal(t, "2. Clean", texts[4])
	assert.Equal(t, msgWhatThink, texts[7])

	sess := h.session(t)
	assert.Equal(t, 2, sess.Emitted)
	assert.Equal(t, domain.Cursor{Chunk: 0, Offset: 2}, sess.Cursor)
}

func TestConversation_DatasetUnavailable(t *testing.T) {
	source := saladDataset()
	source.notReady = true
	source.ensureErr = domain.ErrDatasetUnavailable
	h := newHarness(source, 0)

	h.say(t, ButtonFindByName)
	h.messenger.reset()
	h.say(t, "greek Salad")

	texts := h.messenger.texts()
	require.Len(t, texts, 2)
	assert.Equal(t, msgDownloading, texts[0])
	assert.Equal(t, msgDatasetDown, texts[1])

	// The failed turn leaves the stored session untouched and retryable.
	sess := h.session(t)
	assert.Equal(t, domain.StateNameSearch, sess.State)
	assert.Nil(t, sess.Query)
	assert.True(t, sess.Cursor.IsZero())
}

func TestConversation_SendFailureLeavesCursorUnchanged(t *testing.T) {
	h := newHarness(saladDataset(), 0)

	h.say(t, ButtonFindByName)
	h.messenger.failTxt = "feta"
	err := h.conv.HandleMessage(context.Background(), "42", "greek Salad")
	require.Error(t, err)

	sess := h.session(t)
	assert.Equal(t, 0, sess.Emitted)
	assert.True(t, sess.Cursor.IsZero(), "a failed delivery must not advance the cursor")
}

func TestConversation_ScanTimeoutAborts(t *testing.T) {
	source := saladDataset()
	messenger := &recordingMessenger{}
	store := memory.NewSessionStore()
	conv := NewConversation(store, messenger, NewScanner(source), NewFormatter(0), source, time.Nanosecond)

	require.NoError(t, conv.HandleMessage(context.Background(), "42", ButtonFindByName))
	messenger.reset()
	require.NoError(t, conv.HandleMessage(context.Background(), "42", "greek Salad"))

	assert.Equal(t, msgScanAborted, messenger.last().text)

	sess, err := store.Get(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, sess.Cursor.IsZero(), "aborted scans stay retryable")
}

func TestConversation_FarewellDeletesSession(t *testing.T) {
	h := newHarness(saladDataset(), 0)

	h.say(t, "/start")
	h.say(t, ButtonThanks)

	assert.Equal(t, msgFarewell, h.messenger.last().text)
	assert.Nil(t, h.messenger.last().options, "farewell clears the keyboard")

	_, err := h.store.Get(context.Background(), "42")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConversation_OneMoreOutsideSearch(t *testing.T) {
	h := newHarness(saladDataset(), 0)

	h.say(t, "/start")
	h.messenger.reset()
	h.say(t, ButtonOneMore)

	assert.Equal(t, msgChoice, h.messenger.last().text)
	assert.Equal(t, choiceOptions, h.messenger.last().options)
}

func TestConversation_FreeTextWhileChoosing(t *testing.T) {
	h := newHarness(saladDataset(), 0)

	h.say(t, "hello there")

	assert.Equal(t, msgChoice, h.messenger.last().text)
}
