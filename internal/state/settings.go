package state

import (
	"database/sql"
	"errors"

	"github.com/llehouerou/essai/internal/playback"
)

func defaultSettings() playback.Settings {
	return playback.Settings{Volume: 1}
}

func getSettings(db *sql.DB) (playback.Settings, error) {
	var (
		s      playback.Settings
		repeat int
	)
	row := db.QueryRow(`SELECT volume, muted, repeat_mode, shuffle FROM player_settings WHERE id = 1`)
	err := row.Scan(&s.Volume, &s.Muted, &repeat, &s.Shuffle)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultSettings(), nil
	}
	if err != nil {
		return playback.Settings{}, err
	}

	s.Volume = max(0, min(1, s.Volume))
	s.Repeat = playback.RepeatMode(repeat)
	if s.Repeat < playback.RepeatOff || s.Repeat > playback.RepeatOne {
		s.Repeat = playback.RepeatOff
	}
	return s, nil
}

func saveSettings(db *sql.DB, s playback.Settings) error {
	_, err := db.Exec(`
		INSERT INTO player_settings (id, volume, muted, repeat_mode, shuffle)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			muted = excluded.muted,
			repeat_mode = excluded.repeat_mode,
			shuffle = excluded.shuffle
	`, s.Volume, s.Muted, int(s.Repeat), s.Shuffle)
	return err
}
