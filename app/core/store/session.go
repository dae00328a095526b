package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"slicebot/app/pkg/types"
)

// GetSession loads the user's dialogue session. A user without one gets a
// fresh idle session.
func (s *Store) GetSession(ctx context.Context, userID string) (*types.Session, error) {
	var (
		state      string
		pending    sql.NullString
		suggestion sql.NullString
		updatedAt  int64
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT state, pending_action, pending_suggestion, updated_at FROM sessions WHERE user_id = ?`,
		userID).Scan(&state, &pending, &suggestion, &updatedAt)
	if err == sql.ErrNoRows {
		return &types.Session{UserID: userID, State: types.StateIdle}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	sess := &types.Session{
		UserID:    userID,
		State:     types.DialogueState(state),
		UpdatedAt: updatedAt,
	}
	if pending.Valid && pending.String != "" {
		var pa types.PendingAction
		if err := json.Unmarshal([]byte(pending.String), &pa); err != nil {
			return nil, fmt.Errorf("decode pending action: %w", err)
		}
		sess.Pending = &pa
	}
	if suggestion.Valid && suggestion.String != "" {
		var ps types.PendingSuggestion
		if err := json.Unmarshal([]byte(suggestion.String), &ps); err != nil {
			return nil, fmt.Errorf("decode pending suggestion: %w", err)
		}
		sess.Suggestion = &ps
	}
	return sess, nil
}

// SaveSession writes the session back, replacing whatever was there.
func (s *Store) SaveSession(ctx context.Context, sess *types.Session) error {
	var pending, suggestion interface{}
	if sess.Pending != nil {
		data, err := json.Marshal(sess.Pending)
		if err != nil {
			return fmt.Errorf("encode pending action: %w", err)
		}
		pending = string(data)
	}
	if sess.Suggestion != nil {
		data, err := json.Marshal(sess.Suggestion)
		if err != nil {
			return fmt.Errorf("encode pending suggestion: %w", err)
		}
		suggestion = string(data)
	}

	state := sess.State
	if state == "" {
		state = types.StateIdle
	}

	_, err := s.conn.ExecContext(ctx, `
INSERT INTO sessions (user_id, state, pending_action, pending_suggestion, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	state = excluded.state,
	pending_action = excluded.pending_action,
	pending_suggestion = excluded.pending_suggestion,
	updated_at = excluded.updated_at`,
		sess.UserID, string(state), pending, suggestion, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
