package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"betboard/internal/domain"
)

// Writer appends audit events to the workspace database.
type Writer struct {
	DB  *sql.DB
	Now func() time.Time
}

type Payload map[string]any

// Append records one store mutation. Callers treat failures as non-fatal.
func (w Writer) Append(ctx context.Context, evtType, betID, actor string, payload Payload) error {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	ts := now().UTC().Format(time.RFC3339)
	if payload == nil {
		payload = Payload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = w.DB.ExecContext(ctx, `INSERT INTO events(ts,type,bet_id,actor,payload_json) VALUES (?,?,?,?,?)`,
		ts, evtType, nullable(betID), actor, string(data))
	return err
}

// Latest returns the most recent events, newest first, optionally filtered
// by type and bet id.
func (w Writer) Latest(ctx context.Context, limit int, evtType, betID string) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id,ts,type,bet_id,actor,payload_json FROM events WHERE 1=1`
	var args []any
	if evtType != "" {
		query += ` AND type=?`
		args = append(args, evtType)
	}
	if betID != "" {
		query += ` AND bet_id=?`
		args = append(args, betID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)
	rows, err := w.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Event
	for rows.Next() {
		var e domain.Event
		var betID sql.NullString
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &betID, &e.Actor, &e.Payload); err != nil {
			return nil, err
		}
		if betID.Valid {
			e.BetID = betID.String
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
