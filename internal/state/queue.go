package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	dbutil "github.com/llehouerou/essai/internal/db"
	"github.com/llehouerou/essai/internal/playlist"
)

// QueueState represents the saved queue state.
type QueueState struct {
	CurrentIndex int
	Tracks       []playlist.Track
	SavedAt      time.Time
}

// GetQueue returns the last saved queue, or an empty state.
func (m *Manager) GetQueue(ctx context.Context) (*QueueState, error) {
	return getQueue(ctx, m.db)
}

// SaveQueue replaces the saved queue.
func (m *Manager) SaveQueue(ctx context.Context, state QueueState) error {
	return saveQueue(ctx, m.db, state)
}

func getQueue(ctx context.Context, db *sql.DB) (*QueueState, error) {
	var (
		currentIndex int
		savedAt      int64
	)
	row := db.QueryRowContext(ctx, `SELECT current_index, saved_at FROM queue_state WHERE id = 1`)
	err := row.Scan(&currentIndex, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &QueueState{CurrentIndex: -1}, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT track_json
		FROM queue_tracks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []playlist.Track
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var t playlist.Track
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if currentIndex >= len(tracks) {
		currentIndex = len(tracks) - 1
	}
	return &QueueState{
		CurrentIndex: currentIndex,
		Tracks:       tracks,
		SavedAt:      dbutil.UnixTime(savedAt),
	}, nil
}

func saveQueue(ctx context.Context, sqlDB *sql.DB, state QueueState) error {
	return dbutil.WithTx(ctx, sqlDB, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM queue_tracks`); err != nil {
			return err
		}

		savedAt := state.SavedAt
		if savedAt.IsZero() {
			savedAt = time.Now()
		}
		_, err := tx.Exec(`
			INSERT INTO queue_state (id, current_index, saved_at)
			VALUES (1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_index = excluded.current_index,
				saved_at = excluded.saved_at
		`, state.CurrentIndex, savedAt.Unix())
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO queue_tracks (position, track_id, track_json)
			VALUES (?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range state.Tracks {
			raw, err := json.Marshal(t)
			if err != nil {
				return err
			}
			if _, err := stmt.Exec(i, t.ID, string(raw)); err != nil {
				return err
			}
		}
		return nil
	})
}
