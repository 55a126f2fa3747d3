package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pantry-labs/gourmet-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/pantry-labs/gourmet-cli/internal/core/domain"
	"github.com/pantry-labs/gourmet-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SessionStore = (*Store)(nil)

// Store is a SQLite-backed implementation of driven.SessionStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite session store at the specified data directory.
// If dataDir is empty, defaults to ~/.gourmet/data/sessions.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".gourmet", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "sessions.db")

	// WAL mode keeps concurrent session saves cheap
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies embedded migrations in lexical order, tracking the
// applied set in schema_migrations.
func (s *Store) migrate(fsys fs.FS) error {
	if _, err := s.db.Exec(
		`CREATE TABLE IF NOT EXISTS schema_migrations (name TEXT PRIMARY KEY)`,
	); err != nil {
		return err
	}

	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		var applied int
		err := s.db.QueryRow(
			`SELECT COUNT(*) FROM schema_migrations WHERE name = ?`, name,
		).Scan(&applied)
		if err != nil {
			return err
		}
		if applied > 0 {
			continue
		}

		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(string(script)); err != nil {
			return fmt.Errorf("applying %s: %w", name, err)
		}
		if _, err := s.db.Exec(
			`INSERT INTO schema_migrations (name) VALUES (?)`, name,
		); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a session by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT state, query_kind, query_name, query_terms,
		       chunk_index, offset_in_chunk, emitted, updated_at
		FROM sessions WHERE id = ?`, id)

	var (
		state, kind, name, termsJSON string
		sess                         domain.Session
	)
	sess.ID = id
	err := row.Scan(&state, &kind, &name, &termsJSON,
		&sess.Cursor.Chunk, &sess.Cursor.Offset, &sess.Emitted, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	sess.State = domain.ConversationState(state)
	sess.Query, err = decodeQuery(domain.QueryKind(kind), name, termsJSON)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// Save stores or updates a session.
func (s *Store) Save(ctx context.Context, session *domain.Session) error {
	kind, name, termsJSON, err := encodeQuery(session.Query)
	if err != nil {
		return err
	}

	updatedAt := session.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions
			(id, state, query_kind, query_name, query_terms,
			 chunk_index, offset_in_chunk, emitted, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			query_kind = excluded.query_kind,
			query_name = excluded.query_name,
			query_terms = excluded.query_terms,
			chunk_index = excluded.chunk_index,
			offset_in_chunk = excluded.offset_in_chunk,
			emitted = excluded.emitted,
			updated_at = excluded.updated_at`,
		session.ID, string(session.State), string(kind), name, termsJSON,
		session.Cursor.Chunk, session.Cursor.Offset, session.Emitted, updatedAt)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Delete removes a session. Deleting a missing session is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func encodeQuery(q domain.Query) (domain.QueryKind, string, string, error) {
	switch query := q.(type) {
	case nil:
		return "", "", "[]", nil
	case domain.NameQuery:
		return domain.QueryByName, query.Text, "[]", nil
	case domain.IngredientQuery:
		data, err := json.Marshal(query.Terms)
		if err != nil {
			return "", "", "", fmt.Errorf("encoding terms: %w", err)
		}
		return domain.QueryByIngredients, "", string(data), nil
	default:
		return "", "", "", fmt.Errorf("unknown query kind %q", q.Kind())
	}
}

func decodeQuery(kind domain.QueryKind, name, termsJSON string) (domain.Query, error) {
	switch kind {
	case "":
		return nil, nil
	case domain.QueryByName:
		return domain.NameQuery{Text: name}, nil
	case domain.QueryByIngredients:
		var terms []string
		if err := json.Unmarshal([]byte(termsJSON), &terms); err != nil {
			return nil, fmt.Errorf("decoding terms: %w", err)
		}
		return domain.IngredientQuery{Terms: terms}, nil
	default:
		return nil, fmt.Errorf("unknown query kind %q", kind)
	}
}
