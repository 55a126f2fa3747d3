package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pantry-labs/gourmet-cli/internal/core/domain"
	"github.com/pantry-labs/gourmet-cli/internal/core/ports/driven"
	"github.com/pantry-labs/gourmet-cli/internal/core/ports/driving"
	"github.com/pantry-labs/gourmet-cli/internal/logger"
)

// Ensure Conversation implements the interface.
var _ driving.Conversation = (*Conversation)(nil)

// inputKind classifies one incoming message.
type inputKind int

const (
	inputFree inputKind = iota
	inputStart
	inputHelp
	inputStop
	inputThanks
	inputStartOver
	inputLetsGo
	inputFindByName
	inputFindByIngredients
	inputOneMore
	inputDone
	inputCancelLast
)

// classify maps message text to a control input. Button labels are matched
// case-insensitively; anything unrecognised is free text for the current
// state to interpret.
func classify(text string) inputKind {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "/start":
		return inputStart
	case "/help", strings.ToLower(ButtonAbout):
		return inputHelp
	case "/stop", strings.ToLower(ButtonStop), strings.ToLower(ButtonStopBot):
		return inputStop
	case strings.ToLower(ButtonThanks):
		return inputThanks
	case strings.ToLower(ButtonStartOver):
		return inputStartOver
	case strings.ToLower(ButtonLetsGo):
		return inputLetsGo
	case strings.ToLower(ButtonFindByName):
		return inputFindByName
	case strings.ToLower(ButtonFindByIngredients):
		return inputFindByIngredients
	case strings.ToLower(ButtonOneMore):
		return inputOneMore
	case strings.ToLower(ButtonDone):
		return inputDone
	case strings.ToLower(ButtonCancelLast):
		return inputCancelLast
	default:
		return inputFree
	}
}

// Conversation is the finite-state controller mapping (state, input) to
// side effects and the next state. Each session is owned by exactly one
// conversation; turns within a session run strictly sequentially.
type Conversation struct {
	sessions  driven.SessionStore
	messenger driven.Messenger
	scanner   *Scanner
	formatter *Formatter
	source    driven.DatasetSource

	// scanTimeout bounds one scan-and-emit sequence. Zero disables the
	// bound. An aborted scan leaves the cursor untouched, so the turn is
	// safe to retry.
	scanTimeout time.Duration
}

// NewConversation wires the state machine to its collaborators.
func NewConversation(
	sessions driven.SessionStore,
	messenger driven.Messenger,
	scanner *Scanner,
	formatter *Formatter,
	source driven.DatasetSource,
	scanTimeout time.Duration,
) *Conversation {
	return &Conversation{
		sessions:    sessions,
		messenger:   messenger,
		scanner:     scanner,
		formatter:   formatter,
		source:      source,
		scanTimeout: scanTimeout,
	}
}

// HandleMessage implements driving.Conversation.
func (c *Conversation) HandleMessage(ctx context.Context, sessionID, text string) error {
	sess, err := c.loadOrCreate(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	logger.Debug("Session %s state=%s input=%q", sess.ID, sess.State, text)

	switch classify(text) {
	case inputStart:
		return c.greet(ctx, sess)

	case inputHelp:
		return c.about(ctx, sess)

	case inputStop, inputThanks:
		return c.farewell(ctx, sess)

	case inputStartOver, inputLetsGo:
		return c.chooseMode(ctx, sess)

	case inputFindByName:
		sess.ClearQuery()
		sess.State = domain.StateNameSearch
		if err := c.save(ctx, sess); err != nil {
			return err
		}
		return c.messenger.SendPrompt(ctx, sess.ID, msgNamePrompt, dishOptions)

	case inputFindByIngredients:
		sess.ClearQuery()
		sess.State = domain.StateIngredientSearch
		if err := c.save(ctx, sess); err != nil {
			return err
		}
		return c.messenger.SendPrompt(ctx, sess.ID, msgIngredientPrompt, ingredientOptions)

	case inputOneMore, inputDone:
		switch sess.State {
		case domain.StateNameSearch, domain.StateIngredientSearch:
			return c.runSearch(ctx, sess)
		default:
			return c.messenger.SendPrompt(ctx, sess.ID, msgChoice, choiceOptions)
		}

	case inputCancelLast:
		if sess.State == domain.StateIngredientSearch {
			return c.cancelLast(ctx, sess)
		}
		return c.handleFree(ctx, sess, text)

	default:
		return c.handleFree(ctx, sess, text)
	}
}

// handleFree interprets free text according to the current state.
func (c *Conversation) handleFree(ctx context.Context, sess *domain.Session, text string) error {
	switch sess.State {
	case domain.StateNameSearch:
		name, err := NormalizeName(text)
		if err != nil {
			// Rejected input: re-prompt in place, no cursor change.
			return c.messenger.SendPrompt(ctx, sess.ID, msgBrackets, dishOptions)
		}
		if name == "" {
			return c.messenger.SendPrompt(ctx, sess.ID, msgNamePrompt, dishOptions)
		}
		sess.Query = domain.NameQuery{Text: name}
		sess.Cursor = domain.Cursor{}
		sess.Emitted = 0
		return c.runSearch(ctx, sess)

	case domain.StateIngredientSearch:
		incoming, err := SplitTerms(text)
		if err != nil {
			return c.messenger.SendPrompt(ctx, sess.ID, msgBrackets, ingredientOptions)
		}

		existing := currentTerms(sess)
		merged, changed := MergeTerms(existing, incoming)
		if changed {
			// Changing the term set rewinds the scan.
			sess.Query = domain.IngredientQuery{Terms: merged}
			sess.Cursor = domain.Cursor{}
			sess.Emitted = 0
			if err := c.save(ctx, sess); err != nil {
				return err
			}
		}
		echo := fmt.Sprintf(msgHaveSoFarFmt, domain.IngredientQuery{Terms: merged}.Describe())
		return c.messenger.SendPrompt(ctx, sess.ID, echo, ingredientOptions)

	default:
		return c.messenger.SendPrompt(ctx, sess.ID, msgChoice, choiceOptions)
	}
}

// cancelLast removes the most recently added ingredient term.
func (c *Conversation) cancelLast(ctx context.Context, sess *domain.Session) error {
	terms := currentTerms(sess)
	if len(terms) == 0 {
		return c.messenger.SendPrompt(ctx, sess.ID, msgNothingToRemove, ingredientOptions)
	}

	remaining := PopLastTerm(terms)
	sess.Query = domain.IngredientQuery{Terms: remaining}
	sess.Cursor = domain.Cursor{}
	sess.Emitted = 0
	if err := c.save(ctx, sess); err != nil {
		return err
	}

	if len(remaining) > 0 {
		echo := fmt.Sprintf(msgRemovedLeftFmt, domain.IngredientQuery{Terms: remaining}.Describe())
		return c.messenger.SendPrompt(ctx, sess.ID, echo, ingredientOptions)
	}
	return c.messenger.SendPrompt(ctx, sess.ID, msgRemovedEmpty, ingredientOptions)
}

// runSearch performs one scan-and-emit sequence: at most one fully
// formatted recipe per turn, advancing past any oversized rows with a
// sentinel in between. Segments go out in strict order: title, then
// ingredients, then directions, then the reaction prompt.
//
//nolint:gocyclo // One turn of the state machine is inherently sequential
func (c *Conversation) runSearch(ctx context.Context, sess *domain.Session) error {
	if sess.State == domain.StateIngredientSearch {
		if len(currentTerms(sess)) == 0 {
			logger.Debug("Session %s: %v", sess.ID, domain.ErrNoIngredients)
			return c.messenger.SendPrompt(ctx, sess.ID, msgPickSomething, ingredientOptions)
		}
	}
	if sess.Query == nil {
		return c.messenger.SendPrompt(ctx, sess.ID, msgNamePrompt, dishOptions)
	}

	if !c.source.Ready() {
		if err := c.messenger.SendText(ctx, sess.ID, msgDownloading); err != nil {
			return err
		}
	}
	if err := c.source.Ensure(ctx); err != nil {
		// Fatal to this turn only; the session stays resumable.
		logger.Warn("Dataset unavailable: %v", err)
		return c.messenger.SendText(ctx, sess.ID, msgDatasetDown)
	}

	desc := sess.Query.Describe()
	if err := c.messenger.SendText(ctx, sess.ID, fmt.Sprintf(msgLookingFmt, desc)); err != nil {
		return err
	}

	scanCtx := ctx
	if c.scanTimeout > 0 {
		var cancel context.CancelFunc
		scanCtx, cancel = context.WithTimeout(ctx, c.scanTimeout)
		defer cancel()
	}

	emitted := sess.Emitted
	cursor := sess.Cursor
	headerSent := false
	shown := false

	_, _, err := c.scanner.Scan(scanCtx, sess.Query, cursor, func(row domain.Recipe, next domain.Cursor) (bool, error) {
		if emitted == 0 && !headerSent {
			if err := c.messenger.SendText(ctx, sess.ID, fmt.Sprintf(msgHeaderFmt, desc)); err != nil {
				return false, err
			}
			headerSent = true
		}

		if err := c.messenger.SendText(ctx, sess.ID, c.formatter.Title(emitted+1, row)); err != nil {
			return false, err
		}

		ingredients, ferr := c.formatter.Ingredients(row)
		if errors.Is(ferr, domain.ErrOversized) {
			return c.skipOversized(ctx, sess.ID, next, &emitted, &cursor)
		}
		if err := c.messenger.SendText(ctx, sess.ID, ingredients); err != nil {
			return false, err
		}

		directions, ferr := c.formatter.Directions(row)
		if errors.Is(ferr, domain.ErrOversized) {
			return c.skipOversized(ctx, sess.ID, next, &emitted, &cursor)
		}
		if err := c.messenger.SendText(ctx, sess.ID, directions); err != nil {
			return false, err
		}

		emitted++
		cursor = next
		shown = true
		return false, nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			logger.Warn("Scan aborted for session %s: %v", sess.ID, err)
			return c.messenger.SendText(ctx, sess.ID, msgScanAborted)
		}
		return fmt.Errorf("scan: %w", err)
	}

	if shown {
		sess.Cursor = cursor
		sess.Emitted = emitted
		if err := c.save(ctx, sess); err != nil {
			return err
		}
		return c.messenger.SendPrompt(ctx, sess.ID, msgWhatThink, reactionOptions)
	}

	// Exhausted without completing a recipe this turn.
	hadAny := emitted > 0
	sess.ClearQuery()
	sess.State = domain.StateChoosing
	if err := c.save(ctx, sess); err != nil {
		return err
	}
	if hadAny {
		return c.messenger.SendPrompt(ctx, sess.ID, fmt.Sprintf(msgNoMoreFmt, desc), choiceOptions)
	}
	return c.messenger.SendPrompt(ctx, sess.ID, fmt.Sprintf(msgNothingFoundFmt, desc), choiceOptions)
}

// skipOversized substitutes the sentinel for an oversized segment and
// advances past the row by exactly one, so the same row is never retried.
func (c *Conversation) skipOversized(ctx context.Context, sessionID string, next domain.Cursor, emitted *int, cursor *domain.Cursor) (bool, error) {
	if err := c.messenger.SendText(ctx, sessionID, msgOversized); err != nil {
		return false, err
	}
	*emitted++
	*cursor = next
	return true, nil
}

func (c *Conversation) greet(ctx context.Context, sess *domain.Session) error {
	sess.Reset()
	if err := c.save(ctx, sess); err != nil {
		return err
	}
	return c.messenger.SendPrompt(ctx, sess.ID, msgGreeting, startOptions)
}

func (c *Conversation) about(ctx context.Context, sess *domain.Session) error {
	sess.State = domain.StateChoosing
	if err := c.save(ctx, sess); err != nil {
		return err
	}
	return c.messenger.SendPrompt(ctx, sess.ID, msgAbout, startOptions)
}

func (c *Conversation) chooseMode(ctx context.Context, sess *domain.Session) error {
	sess.Reset()
	if err := c.save(ctx, sess); err != nil {
		return err
	}
	return c.messenger.SendPrompt(ctx, sess.ID, msgChoice, choiceOptions)
}

// farewell ends the conversation. Only the session resets; the process
// stays alive for the next /start.
func (c *Conversation) farewell(ctx context.Context, sess *domain.Session) error {
	if err := c.sessions.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return c.messenger.SendPrompt(ctx, sess.ID, msgFarewell, nil)
}

func (c *Conversation) loadOrCreate(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := c.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewSession(sessionID), nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (c *Conversation) save(ctx context.Context, sess *domain.Session) error {
	sess.UpdatedAt = time.Now()
	if err := c.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// currentTerms returns the accumulated ingredient selection, or nil when
// the session has no ingredient query yet.
func currentTerms(sess *domain.Session) []string {
	iq, ok := sess.Query.(domain.IngredientQuery)
	if !ok {
		return nil
	}
	return iq.Terms
}
