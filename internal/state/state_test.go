package state

import (
	"context"
	"database/sql"
	"testing"
	"testing/synctest"
	"time"

	_ "modernc.org/sqlite"

	"github.com/llehouerou/essai/internal/playback"
	"github.com/llehouerou/essai/internal/playlist"
)

// setupTestDB creates an in-memory SQLite database with the schema initialized.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		t.Fatalf("failed to init schema: %v", err)
	}
	return db
}

func openTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestInitSchema_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := initSchema(db); err != nil {
		t.Fatalf("second initSchema failed: %v", err)
	}
	var version int
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != currentSchemaVersion {
		t.Errorf("version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestPosition_RoundTrip(t *testing.T) {
	m := openTestManager(t)
	ctx := context.Background()

	if _, ok, err := m.LoadPosition(ctx); err != nil || ok {
		t.Fatalf("LoadPosition on empty db = ok %v, err %v; want false, nil", ok, err)
	}

	want := playback.SavedPosition{TrackID: "A", Position: 42 * time.Second}
	if err := m.SavePosition(ctx, want); err != nil {
		t.Fatalf("SavePosition failed: %v", err)
	}
	got, ok, err := m.LoadPosition(ctx)
	if err != nil || !ok {
		t.Fatalf("LoadPosition = ok %v, err %v", ok, err)
	}
	if got != want {
		t.Errorf("LoadPosition = %+v, want %+v", got, want)
	}

	// Overwritten, never accumulated.
	_ = m.SavePosition(ctx, playback.SavedPosition{TrackID: "B", Position: 1500 * time.Millisecond})
	got, _, _ = m.LoadPosition(ctx)
	if got.TrackID != "B" || got.Position != 1500*time.Millisecond {
		t.Errorf("LoadPosition after overwrite = %+v", got)
	}
	var rows int
	_ = m.DB().QueryRow(`SELECT COUNT(*) FROM kv_store WHERE key = ?`, PositionKey).Scan(&rows)
	if rows != 1 {
		t.Errorf("rows = %d, want 1", rows)
	}
}

func TestPosition_StoredFormat(t *testing.T) {
	s, err := EncodePosition(playback.SavedPosition{TrackID: "7", Position: 12500 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"trackId":"7","position":12.5}`; s != want {
		t.Errorf("EncodePosition = %s, want %s", s, want)
	}

	p, err := DecodePosition(`{"trackId":"x","position":3}`)
	if err != nil {
		t.Fatal(err)
	}
	if p.TrackID != "x" || p.Position != 3*time.Second {
		t.Errorf("DecodePosition = %+v", p)
	}

	if _, err := DecodePosition("not json"); err == nil {
		t.Error("DecodePosition(garbage) succeeded")
	}
}

func TestSettings_Defaults(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	s, err := getSettings(db)
	if err != nil {
		t.Fatal(err)
	}
	if s != (playback.Settings{Volume: 1}) {
		t.Errorf("default settings = %+v", s)
	}
}

func TestSettings_RoundTripAndClamp(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	want := playback.Settings{Volume: 0.4, Muted: true, Repeat: playback.RepeatAll, Shuffle: true}
	if err := saveSettings(db, want); err != nil {
		t.Fatal(err)
	}
	got, err := getSettings(db)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("getSettings = %+v, want %+v", got, want)
	}

	_, _ = db.Exec(`UPDATE player_settings SET volume = 3, repeat_mode = 9`)
	got, _ = getSettings(db)
	if got.Volume != 1 || got.Repeat != playback.RepeatOff {
		t.Errorf("out-of-range settings = %+v, want volume 1 and repeat off", got)
	}
}

func TestSaveSettings_Debounced(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := openTestManager(t)

		m.SaveSettings(playback.Settings{Volume: 0.2})
		m.SaveSettings(playback.Settings{Volume: 0.3, Muted: true})

		// Pending settings are visible before the write.
		if got, _ := m.Settings(); got.Volume != 0.3 {
			t.Errorf("Settings() = %+v, want pending value", got)
		}
		if got, _ := getSettings(m.db); got.Volume != 1 {
			t.Errorf("written before debounce: %+v", got)
		}

		time.Sleep(saveDebounce + time.Millisecond)
		synctest.Wait()

		got, err := getSettings(m.db)
		if err != nil {
			t.Fatal(err)
		}
		if got.Volume != 0.3 || !got.Muted {
			t.Errorf("getSettings = %+v, want volume 0.3 muted", got)
		}
	})
}

func TestClose_FlushesPendingSettings(t *testing.T) {
	path := t.TempDir() + "/essai.db"
	m, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	m.SaveSettings(playback.Settings{Volume: 0.6, Shuffle: true})
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}

	m, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()
	got, err := m.Settings()
	if err != nil {
		t.Fatal(err)
	}
	if got.Volume != 0.6 || !got.Shuffle {
		t.Errorf("Settings after reopen = %+v", got)
	}
}

func TestToken(t *testing.T) {
	m := openTestManager(t)

	if tok, err := m.Token(); err != nil || tok != "" {
		t.Fatalf("Token() = %q, %v; want empty", tok, err)
	}
	if err := m.SaveToken("abc"); err != nil {
		t.Fatal(err)
	}
	if tok, _ := m.Token(); tok != "abc" {
		t.Errorf("Token() = %q, want abc", tok)
	}
	if err := m.DeleteToken(); err != nil {
		t.Fatal(err)
	}
	if tok, _ := m.Token(); tok != "" {
		t.Errorf("Token() after delete = %q", tok)
	}
}

func TestQueue_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	q, err := getQueue(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	if q.CurrentIndex != -1 || len(q.Tracks) != 0 {
		t.Errorf("empty queue = %+v", q)
	}

	want := QueueState{
		CurrentIndex: 1,
		Tracks: []playlist.Track{
			{ID: "1", Title: "One", AudioURL: "https://cdn.example/1.mp3", Duration: 90 * time.Second},
			{ID: "2", Title: "Two", Artist: "B", VideoID: "dQw4w9WgXcQ"},
		},
		SavedAt: time.Unix(1700000000, 0),
	}
	if err := saveQueue(ctx, db, want); err != nil {
		t.Fatal(err)
	}
	got, err := getQueue(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentIndex != 1 || !got.SavedAt.Equal(want.SavedAt) {
		t.Errorf("got index %d saved %v", got.CurrentIndex, got.SavedAt)
	}
	if len(got.Tracks) != 2 || got.Tracks[0] != want.Tracks[0] || got.Tracks[1] != want.Tracks[1] {
		t.Errorf("tracks = %+v, want %+v", got.Tracks, want.Tracks)
	}

	// Replaced, not appended.
	_ = saveQueue(ctx, db, QueueState{CurrentIndex: 0, Tracks: want.Tracks[:1]})
	got, _ = getQueue(ctx, db)
	if len(got.Tracks) != 1 {
		t.Errorf("len = %d after replace, want 1", len(got.Tracks))
	}
}

func TestLastfmSession(t *testing.T) {
	m := openTestManager(t)

	s, err := m.GetLastfmSession()
	if err != nil || s != nil {
		t.Fatalf("GetLastfmSession on empty db = %+v, %v", s, err)
	}
	if err := m.SaveLastfmSession("alice", "key1"); err != nil {
		t.Fatal(err)
	}
	s, _ = m.GetLastfmSession()
	if s == nil || s.Username != "alice" || s.SessionKey != "key1" {
		t.Errorf("GetLastfmSession = %+v", s)
	}
	_ = m.DeleteLastfmSession()
	if s, _ := m.GetLastfmSession(); s != nil {
		t.Errorf("session after delete = %+v", s)
	}
}

func TestPendingScrobbles(t *testing.T) {
	m := openTestManager(t)
	ts := time.Unix(1700000000, 0)

	for _, name := range []string{"first", "second"} {
		err := m.AddPendingScrobble(PendingScrobble{Artist: "A", Track: name, DurationSecs: 200, Timestamp: ts})
		if err != nil {
			t.Fatal(err)
		}
	}
	pending, err := m.GetPendingScrobbles()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 || pending[0].Track != "first" || !pending[0].Timestamp.Equal(ts) {
		t.Fatalf("pending = %+v", pending)
	}

	if err := m.UpdatePendingScrobbleAttempt(pending[0].ID, "offline"); err != nil {
		t.Fatal(err)
	}
	if err := m.DeletePendingScrobble(pending[1].ID); err != nil {
		t.Fatal(err)
	}
	pending, _ = m.GetPendingScrobbles()
	if len(pending) != 1 || pending[0].Attempts != 1 || pending[0].LastError != "offline" {
		t.Errorf("pending after update = %+v", pending)
	}

	if err := m.DeleteOldPendingScrobbles(-time.Hour); err != nil {
		t.Fatal(err)
	}
	if pending, _ = m.GetPendingScrobbles(); len(pending) != 0 {
		t.Errorf("pending after prune = %+v", pending)
	}
}

func TestMock_ImplementsStore(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	_ = m.SavePosition(ctx, playback.SavedPosition{TrackID: "A", Position: time.Second})
	p, ok, _ := m.LoadPosition(ctx)
	if !ok || p.TrackID != "A" || m.PositionSaves() != 1 {
		t.Errorf("mock position = %+v ok %v", p, ok)
	}
	if s, _ := m.Settings(); s.Volume != 1 {
		t.Errorf("mock default volume = %v", s.Volume)
	}
}
