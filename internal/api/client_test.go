package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   string
	Header http.Header
}

type testServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recorded
}

// newTestServer serves routes keyed by "METHOD /path".
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) *testServer {
	t.Helper()
	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ts.mu.Lock()
		ts.requests = append(ts.requests, recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
			Header: r.Header.Clone(),
		})
		ts.mu.Unlock()

		if h, ok := routes[r.Method+" "+r.URL.Path]; ok {
			h(w, r)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) last(t *testing.T) recorded {
	t.Helper()
	ts.mu.Lock()
	defer ts.mu.Unlock()
	require.NotEmpty(t, ts.requests)
	return ts.requests[len(ts.requests)-1]
}

func (ts *testServer) count() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.requests)
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func newTestClient(ts *testServer, opts ...Option) *Client {
	opts = append([]Option{WithRateLimit(1000)}, opts...)
	return NewClient(ts.URL+"/api/", opts...)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func TestClient_HeadersAndAuth(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/tracks/featured": jsonHandler(http.StatusOK, `[{"id":1,"title":"A","audio_url":"http://x/a.mp3"}]`),
	})
	c := newTestClient(ts, WithToken("opaque-token"))

	tracks, err := c.Featured(context.Background())
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "1", tracks[0].ID)
	assert.Equal(t, "A", tracks[0].Title)

	req := ts.last(t)
	assert.Equal(t, "Bearer opaque-token", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	_, err = uuid.Parse(req.Header.Get(RequestIDHeader))
	assert.NoError(t, err, "request id should be a uuid")
}

func TestClient_RequestIDPerCall(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/tracks/genres": jsonHandler(http.StatusOK, `["rock","jazz"]`),
	})
	c := newTestClient(ts)

	genres, err := c.Genres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"rock", "jazz"}, genres)
	first := ts.last(t).Header.Get(RequestIDHeader)

	_, err = c.Genres(context.Background())
	require.NoError(t, err)
	second := ts.last(t).Header.Get(RequestIDHeader)

	assert.NotEqual(t, first, second)
	assert.Empty(t, ts.last(t).Header.Get("Authorization"), "anonymous calls carry no token")
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad token"}`, ErrUnauthorized, "bad token"},
		{"forbidden", http.StatusForbidden, `{"message":"nope"}`, ErrUnauthorized, "nope"},
		{"not found", http.StatusNotFound, `{"detail":"no track"}`, ErrNotFound, "no track"},
		{"conflict", http.StatusConflict, `plain text`, nil, "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, map[string]http.HandlerFunc{
				"GET /api/tracks/7": jsonHandler(tt.status, tt.body),
			})
			c := newTestClient(ts)

			_, err := c.Track(context.Background(), "7")
			require.Error(t, err)

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.message, se.Message)
			assert.Equal(t, "/tracks/7", se.Path)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			} else {
				assert.NotErrorIs(t, err, ErrUnauthorized)
				assert.NotErrorIs(t, err, ErrNotFound)
			}
		})
	}
}

func TestClient_ExpiredTokenNotSent(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/auth/me": jsonHandler(http.StatusOK, `{"id":"u1","email":"a@b.c"}`),
	})
	c := newTestClient(ts, WithToken(signedToken(t, time.Now().Add(-time.Minute))))

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, IsAuthError(err))
	assert.Equal(t, 0, ts.count(), "no request should reach the server")

	c.SetToken(signedToken(t, time.Now().Add(time.Hour)))
	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ID("u1"), u.ID)
	assert.Equal(t, "a@b.c", u.Email)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, ok := TokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, ok = TokenExpiry("not-a-jwt")
	assert.False(t, ok)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok = TokenExpiry(noExp)
	assert.False(t, ok)
}

func TestClient_Login(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/auth/login": jsonHandler(http.StatusOK, `{"access_token":"tok","user":{"id":3,"email":"a@b.c"}}`),
	})
	c := newTestClient(ts)

	s, err := c.Login(context.Background(), Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tok", s.AccessToken)
	assert.Equal(t, ID("3"), s.User.ID)

	req := ts.last(t)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"email":"a@b.c","password":"pw"}`, req.Body)
	assert.False(t, c.HasToken(), "login does not apply the token")
}

func TestClient_LoginWithoutToken(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/auth/login": jsonHandler(http.StatusOK, `{"user":{"id":3}}`),
	})
	_, err := newTestClient(ts).Login(context.Background(), Credentials{})
	assert.Error(t, err)
}

func TestClient_Endpoints(t *testing.T) {
	ok := jsonHandler(http.StatusOK, `{}`)
	list := jsonHandler(http.StatusOK, `[]`)
	noContent := jsonHandler(http.StatusNoContent, ``)
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/auth/register":            ok,
		"POST /api/auth/logout":              noContent,
		"GET /api/tracks":                    list,
		"POST /api/tracks/search":            list,
		"POST /api/tracks/t 1/play":          noContent,
		"GET /api/playlists":                 list,
		"GET /api/playlists/p1":              ok,
		"POST /api/playlists":                ok,
		"PUT /api/playlists/p1":              ok,
		"DELETE /api/playlists/p1":           noContent,
		"POST /api/playlists/p1/tracks":      noContent,
		"DELETE /api/playlists/p1/tracks/t2": noContent,
		"GET /api/user/favorites":            list,
		"POST /api/user/favorites/t3":        noContent,
		"DELETE /api/user/favorites/t3":      noContent,
		"GET /api/user/recently-played":      list,
		"POST /api/user/recently-played":     noContent,
	})
	c := newTestClient(ts, WithToken("tok"))
	ctx := context.Background()

	calls := []struct {
		name   string
		call   func() error
		method string
		path   string
		query  string
		body   string
	}{
		{"register", func() error { _, err := c.Register(ctx, Registration{Email: "e", Password: "p"}); return err },
			"POST", "/api/auth/register", "", `{"email":"e","password":"p"}`},
		{"logout", func() error { return c.Logout(ctx) }, "POST", "/api/auth/logout", "", ""},
		{"tracks by genre", func() error { _, err := c.Tracks(ctx, "hip hop"); return err },
			"GET", "/api/tracks", "genre=hip+hop", ""},
		{"all tracks", func() error { _, err := c.Tracks(ctx, ""); return err }, "GET", "/api/tracks", "", ""},
		{"search", func() error { _, err := c.Search(ctx, "blue"); return err },
			"POST", "/api/tracks/search", "", `{"query":"blue"}`},
		{"increment play", func() error { return c.IncrementPlay(ctx, "t 1") }, "POST", "/api/tracks/t 1/play", "", ""},
		{"playlists", func() error { _, err := c.Playlists(ctx); return err }, "GET", "/api/playlists", "", ""},
		{"playlist", func() error { _, err := c.Playlist(ctx, "p1"); return err }, "GET", "/api/playlists/p1", "", ""},
		{"create playlist", func() error { _, err := c.CreatePlaylist(ctx, PlaylistInput{Name: "Mix"}); return err },
			"POST", "/api/playlists", "", `{"name":"Mix"}`},
		{"update playlist", func() error {
			_, err := c.UpdatePlaylist(ctx, "p1", PlaylistInput{Name: "Mix", Description: "d"})
			return err
		}, "PUT", "/api/playlists/p1", "", `{"name":"Mix","description":"d"}`},
		{"delete playlist", func() error { return c.DeletePlaylist(ctx, "p1") }, "DELETE", "/api/playlists/p1", "", ""},
		{"add to playlist", func() error { return c.AddToPlaylist(ctx, "p1", "t2") },
			"POST", "/api/playlists/p1/tracks", "", `{"trackId":"t2"}`},
		{"remove from playlist", func() error { return c.RemoveFromPlaylist(ctx, "p1", "t2") },
			"DELETE", "/api/playlists/p1/tracks/t2", "", ""},
		{"favorites", func() error { _, err := c.Favorites(ctx); return err }, "GET", "/api/user/favorites", "", ""},
		{"add favorite", func() error { return c.AddFavorite(ctx, "t3") }, "POST", "/api/user/favorites/t3", "", ""},
		{"remove favorite", func() error { return c.RemoveFavorite(ctx, "t3") }, "DELETE", "/api/user/favorites/t3", "", ""},
		{"recently played", func() error { _, err := c.RecentlyPlayed(ctx); return err },
			"GET", "/api/user/recently-played", "", ""},
		{"add recently played", func() error { return c.AddRecentlyPlayed(ctx, "t3") },
			"POST", "/api/user/recently-played", "", `{"trackId":"t3"}`},
	}

	for _, tt := range calls {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.call())
			req := ts.last(t)
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.path, req.Path)
			assert.Equal(t, tt.query, req.Query)
			if tt.body == "" {
				assert.Empty(t, req.Body)
			} else {
				assert.JSONEq(t, tt.body, req.Body)
			}
		})
	}
}

func TestClient_PlaylistDecode(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/playlists/9": jsonHandler(http.StatusOK, `{
			"id": 9, "name": "Road", "description": "trip",
			"tracks": [
				{"id": "a", "title": "One", "youtube_id": "vid1", "duration": 61.5},
				{"id": "b", "title": "Two", "audio_url": "http://x/b.mp3"}
			]
		}`),
	})

	p, err := newTestClient(ts).Playlist(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, ID("9"), p.ID)
	assert.Equal(t, "Road", p.Name)
	require.Len(t, p.Tracks, 2)
	assert.Equal(t, "vid1", p.Tracks[0].VideoID)
	assert.Equal(t, 61500*time.Millisecond, p.Tracks[0].Duration)
	assert.Equal(t, "http://x/b.mp3", p.Tracks[1].AudioURL)
}

func TestClient_RecentlyPlayedDecode(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/user/recently-played": jsonHandler(http.StatusOK, `[
			{"id": "a", "title": "One", "played_at": "2026-03-01T10:00:00Z"},
			{"id": "b", "title": "Two", "played_at": "2026-03-01 09:00:00"},
			{"id": "c", "title": "Three"}
		]`),
	})

	got, err := newTestClient(ts).RecentlyPlayed(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "One", got[0].Title)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), got[0].PlayedAt)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), got[1].PlayedAt)
	assert.True(t, got[2].PlayedAt.IsZero())
}

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{`"abc"`, "abc", false},
		{`42`, "42", false},
		{`true`, "", true},
	}
	for _, tt := range tests {
		var id ID
		err := json.Unmarshal([]byte(tt.in), &id)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, id)
	}
}

func TestClient_RecordPlay(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/user/recently-played": jsonHandler(http.StatusNoContent, ``),
		"POST /api/tracks/t1/play":       jsonHandler(http.StatusInternalServerError, `{"error":"db down"}`),
	})
	c := newTestClient(ts, WithToken("tok"))

	err := c.RecordPlay(context.Background(), Track{ID: "t1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Equal(t, 2, ts.count(), "both calls are attempted")

	anon := newTestClient(ts)
	_ = anon.RecordPlay(context.Background(), Track{ID: "t1"})
	assert.Equal(t, "/api/tracks/t1/play", ts.last(t).Path)
	assert.Equal(t, 3, ts.count(), "anonymous sessions skip the history")
}

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestClient_RateLimit(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return respond(http.StatusOK, `[]`), nil
		})}
		c := NewClient("http://api.test", WithHTTPClient(hc), WithRateLimit(2))

		start := time.Now()
		for range 5 {
			_, err := c.Genres(context.Background())
			require.NoError(t, err)
		}
		elapsed := time.Since(start)

		// First call is free, then one every 500ms
		if elapsed < 2*time.Second {
			t.Errorf("5 requests took %v, expected at least 2s", elapsed)
		}
	})
}

func TestClient_RetriesGetOn5xx(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls int
		hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return respond(http.StatusBadGateway, ``), nil
			}
			return respond(http.StatusOK, `["rock"]`), nil
		})}
		c := NewClient("http://api.test", WithHTTPClient(hc), WithRateLimit(1000))

		start := time.Now()
		genres, err := c.Genres(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"rock"}, genres)
		assert.Equal(t, 3, calls)
		if elapsed := time.Since(start); elapsed < 1500*time.Millisecond {
			t.Errorf("elapsed = %v, expected backoff of 500ms + 1s", elapsed)
		}
	})
}

func TestClient_RetryExhausted(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls int
		hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			calls++
			return respond(http.StatusServiceUnavailable, `{"error":"busy"}`), nil
		})}
		c := NewClient("http://api.test", WithHTTPClient(hc))

		_, err := c.Genres(context.Background())
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
		assert.Equal(t, maxRetries+1, calls)
	})
}

func TestClient_NoRetryForPost(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls int
		hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			calls++
			return nil, errors.New("connection reset")
		})}
		c := NewClient("http://api.test", WithHTTPClient(hc))

		err := c.IncrementPlay(context.Background(), "t1")
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestClient_ContextCancelledDuringBackoff(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return respond(http.StatusInternalServerError, ``), nil
		})}
		c := NewClient("http://api.test", WithHTTPClient(hc))

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_, err := c.Genres(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
