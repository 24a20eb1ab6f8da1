// ABOUTME: SQLite audit trail for administrative content edits
// ABOUTME: Records who changed which section or subsection, and when

package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Action identifies the kind of content mutation being audited.
type Action string

const (
	ActionSetText       Action = "set_text"
	ActionSetTitle      Action = "set_title"
	ActionAddSubsection Action = "add_subsection"
	ActionEditSub       Action = "edit_subsection"
	ActionDeleteSub     Action = "delete_subsection"
)

// Entry is one audit record. ID and Timestamp are generated when left unset.
type Entry struct {
	ID         string
	Actor      int64 // identity of the admin who performed the edit
	Action     Action
	Section    int
	Subsection int // 0 for section-level edits
	Detail     string
	Timestamp  time.Time
}

// Store persists audit entries in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates the audit store at path, creating parent directories and the
// schema as needed.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS audit_log (
			audit_id TEXT PRIMARY KEY,
			actor INTEGER NOT NULL,
			action TEXT NOT NULL,
			section INTEGER NOT NULL,
			subsection INTEGER NOT NULL DEFAULT 0,
			detail TEXT,
			ts DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_audit_ts ON audit_log(ts);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}

	s := &Store{db: db, logger: logger.With("component", "audit")}
	s.logger.Info("audit store initialized", "path", path)
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append writes a new audit entry, generating ID and Timestamp if unset.
func (s *Store) Append(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (audit_id, actor, action, section, subsection, detail, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Actor, string(e.Action), e.Section, e.Subsection, e.Detail,
		e.Timestamp.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	s.logger.Debug("appended audit entry",
		"actor", e.Actor,
		"action", e.Action,
		"section", e.Section,
		"subsection", e.Subsection,
	)
	return nil
}

// normalizeLimit applies default (20) and cap (200) to listing limits.
func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > 200:
		return 200
	default:
		return limit
	}
}

// Recent returns the newest entries first, up to limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT audit_id, actor, action, section, subsection, detail, ts
		FROM audit_log
		ORDER BY ts DESC, audit_id DESC
		LIMIT ?
	`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var actionStr, tsStr string
		var detail sql.NullString
		if err := rows.Scan(&e.ID, &e.Actor, &actionStr, &e.Section, &e.Subsection, &detail, &tsStr); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		e.Action = Action(actionStr)
		e.Detail = detail.String
		e.Timestamp, err = time.Parse(time.RFC3339, tsStr)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}

	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
