package player

import (
	"bytes"
	"encoding/binary"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testWAV builds a 16-bit stereo PCM WAV file of silence.
func testWAV(rate, frames int) []byte {
	dataLen := frames * 4
	var b bytes.Buffer
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, uint32(36+dataLen))
	b.WriteString("WAVEfmt ")
	_ = binary.Write(&b, binary.LittleEndian, uint32(16))
	_ = binary.Write(&b, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&b, binary.LittleEndian, uint16(2))
	_ = binary.Write(&b, binary.LittleEndian, uint32(rate))
	_ = binary.Write(&b, binary.LittleEndian, uint32(rate*4))
	_ = binary.Write(&b, binary.LittleEndian, uint16(4))
	_ = binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	_ = binary.Write(&b, binary.LittleEndian, uint32(dataLen))
	b.Write(make([]byte, dataLen))
	return b.Bytes()
}

func nextEvent(t *testing.T, p *Player) Event {
	t.Helper()
	for {
		select {
		case e := <-p.Events():
			if e.Type == EventTime {
				continue
			}
			return e
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for player event")
			return Event{}
		}
	}
}

func serveBytes(data []byte, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		_, _ = w.Write(data)
	}
}

func TestPlayer_LoadReady(t *testing.T) {
	srv := httptest.NewServer(serveBytes(testWAV(44100, 44100), "audio/wav"))
	defer srv.Close()

	p := New()
	defer p.Close()

	gen := p.Load(srv.URL + "/track")
	if got := p.State(); got != Loading {
		t.Errorf("State() after Load = %v, want Loading", got)
	}

	e := nextEvent(t, p)
	if e.Type != EventReady {
		t.Fatalf("event = %v (err %v), want EventReady", e.Type, e.Err)
	}
	if e.Gen != gen {
		t.Errorf("Gen = %d, want %d", e.Gen, gen)
	}
	if e.Duration != time.Second {
		t.Errorf("Duration = %v, want 1s", e.Duration)
	}
	if got := p.State(); got != Ready {
		t.Errorf("State() = %v, want Ready", got)
	}
	if got := p.Duration(); got != time.Second {
		t.Errorf("Duration() = %v, want 1s", got)
	}
}

func TestPlayer_LoadLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wav")
	if err := os.WriteFile(path, testWAV(22050, 11025), 0o600); err != nil {
		t.Fatal(err)
	}

	p := New()
	defer p.Close()

	p.Load("file://" + path)
	e := nextEvent(t, p)
	if e.Type != EventReady {
		t.Fatalf("event = %v (err %v), want EventReady", e.Type, e.Err)
	}
	if e.Duration != 500*time.Millisecond {
		t.Errorf("Duration = %v, want 500ms", e.Duration)
	}
}

func TestPlayer_LoadFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/missing", http.NotFound)
	mux.HandleFunc("/text.txt", serveBytes([]byte("hello world"), "text/plain"))
	mux.HandleFunc("/big.wav", serveBytes(testWAV(44100, 44100), "audio/wav"))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tests := []struct {
		name   string
		path   string
		target error
	}{
		{"not found", "/missing", nil},
		{"unsupported", "/text.txt", ErrUnsupportedFormat},
		{"too large", "/big.wav", ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(WithMaxBytes(1024))
			defer p.Close()

			gen := p.Load(srv.URL + tt.path)
			e := nextEvent(t, p)
			if e.Type != EventFailed || e.Gen != gen {
				t.Fatalf("event = %+v, want EventFailed for gen %d", e, gen)
			}
			if e.Err == nil {
				t.Fatal("Err = nil")
			}
			if tt.target != nil && !errors.Is(e.Err, tt.target) {
				t.Errorf("Err = %v, want %v", e.Err, tt.target)
			}
			if got := p.State(); got != Stopped {
				t.Errorf("State() = %v, want Stopped", got)
			}
		})
	}
}

func TestPlayer_LoadSupersedesPrevious(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/slow", func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	mux.HandleFunc("/fast", serveBytes(testWAV(44100, 4410), "audio/wav"))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := New()
	defer p.Close()

	first := p.Load(srv.URL + "/slow")
	second := p.Load(srv.URL + "/fast")
	if second <= first {
		t.Fatalf("generations not increasing: %d then %d", first, second)
	}

	e := nextEvent(t, p)
	if e.Gen != second || e.Type != EventReady {
		t.Errorf("event = %+v, want EventReady for gen %d", e, second)
	}
}

func TestPlayer_SeekWhileLoadingIsApplied(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write(testWAV(44100, 44100))
	}))
	defer srv.Close()

	p := New()
	defer p.Close()

	p.Load(srv.URL)
	p.SeekTo(500 * time.Millisecond)
	close(release)

	if e := nextEvent(t, p); e.Type != EventReady {
		t.Fatalf("event = %v, want EventReady", e.Type)
	}
	if got := p.Position(); got != 500*time.Millisecond {
		t.Errorf("Position() = %v, want 500ms", got)
	}

	p.SeekTo(2 * time.Second)
	if got := p.Position(); got != time.Second {
		t.Errorf("Position() after seek past end = %v, want 1s", got)
	}
}

func TestPlayer_PlayWithoutMedia(t *testing.T) {
	p := New()
	defer p.Close()

	if err := p.Play(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Play() error = %v, want ErrNotLoaded", err)
	}
	p.Pause()
	if got := p.State(); got != Stopped {
		t.Errorf("State() = %v, want Stopped", got)
	}
}

func TestPlayer_StopUnloads(t *testing.T) {
	srv := httptest.NewServer(serveBytes(testWAV(44100, 4410), "audio/wav"))
	defer srv.Close()

	p := New()
	defer p.Close()

	p.Load(srv.URL)
	if e := nextEvent(t, p); e.Type != EventReady {
		t.Fatalf("event = %v, want EventReady", e.Type)
	}
	p.Stop()
	if got := p.State(); got != Stopped {
		t.Errorf("State() = %v, want Stopped", got)
	}
	if got := p.Duration(); got != 0 {
		t.Errorf("Duration() = %v, want 0", got)
	}
}

func TestPlayer_CloseClosesEvents(t *testing.T) {
	p := New()
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if _, ok := <-p.Events(); ok {
		t.Error("events channel still open after Close")
	}
}
