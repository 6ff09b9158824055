package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"privid/internal/eventlog/models"
	id "privid/pkg/domain"
	"privid/pkg/platform/tx"
)

// appendLockKey names the advisory lock that serializes appends.
const appendLockKey int64 = 0x70726976_6c6f67 // "privlog"

// PostgresStore persists the event log in PostgreSQL. Appends join the
// caller's transaction so an event commits with the change it records.
//
// Each append takes a transaction-scoped advisory lock before drawing its seq,
// so no seq is drawn while a lower one is uncommitted. A reader that sees seq
// N+1 therefore sees N unless N was rolled back.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed event store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, e *models.Event) error {
	attrs, err := json.Marshal(e.Attributes)
	if err != nil {
		return fmt.Errorf("marshal event attributes: %w", err)
	}
	if e.Attributes == nil {
		attrs = []byte("{}")
	}
	query := `
		WITH serialized AS (SELECT pg_advisory_xact_lock($6))
		INSERT INTO event_log (event_type, entity_id, principal, attributes, occurred_at)
		SELECT $1::text, $2::text, $3::text, $4::jsonb, $5::timestamptz
		FROM serialized
		RETURNING seq
	`
	var seq int64
	err = tx.Exec(ctx, s.db).QueryRowContext(ctx, query,
		string(e.Type), e.EntityID, e.Principal.String(), attrs, e.OccurredAt, appendLockKey,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	e.Seq = uint64(seq)
	return nil
}

func (s *PostgresStore) List(ctx context.Context, after uint64, limit int) ([]models.Event, error) {
	query := `
		SELECT seq, event_type, entity_id, principal, attributes, occurred_at
		FROM event_log
		WHERE seq > $1
		ORDER BY seq
		LIMIT $2
	`
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query, int64(after), limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		var (
			e         models.Event
			seq       int64
			eventType string
			principal string
			attrs     []byte
		)
		if err := rows.Scan(&seq, &eventType, &e.EntityID, &principal, &attrs, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Seq = uint64(seq)
		e.Type = models.Type(eventType)
		if e.Principal, err = id.ParsePrincipal(principal); err != nil {
			return nil, fmt.Errorf("scan event principal: %w", err)
		}
		if len(attrs) > 0 && string(attrs) != "{}" {
			if err := json.Unmarshal(attrs, &e.Attributes); err != nil {
				return nil, fmt.Errorf("decode event attributes: %w", err)
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) LastSeq(ctx context.Context) (uint64, error) {
	var seq int64
	if err := tx.Exec(ctx, s.db).QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM event_log`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last event seq: %w", err)
	}
	return uint64(seq), nil
}

func (s *PostgresStore) Cursor(ctx context.Context, sink string) (uint64, error) {
	var seq int64
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx, `SELECT last_seq FROM event_cursors WHERE sink = $1`, sink).Scan(&seq)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cursor: %w", err)
	}
	return uint64(seq), nil
}

func (s *PostgresStore) SaveCursor(ctx context.Context, sink string, seq uint64, now time.Time) error {
	query := `
		INSERT INTO event_cursors (sink, last_seq, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (sink) DO UPDATE
		SET last_seq = GREATEST(event_cursors.last_seq, EXCLUDED.last_seq),
		    updated_at = EXCLUDED.updated_at
	`
	if _, err := tx.Exec(ctx, s.db).ExecContext(ctx, query, sink, int64(seq), now); err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}
