package lastfm

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"
)

// ErrNoToken is returned when the callback arrives without a token.
var ErrNoToken = errors.New("no token in callback")

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><title>essai - Last.fm</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
{{if .}}<h1>Account linked</h1>
<p>You can close this window and return to your terminal.</p>
{{else}}<h1>Authorization failed</h1>
<p>Last.fm did not send a token. Run the command again.</p>
{{end}}</body>
</html>`))

// Callback receives the token Last.fm sends back after the user
// authorizes the application.
type Callback struct {
	server   *http.Server
	listener net.Listener
	tokens   chan string
	done     chan struct{}
}

// ListenCallback serves the callback on addr. Use "127.0.0.1:0" for a
// free port.
func ListenCallback(addr string) (*Callback, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	cb := &Callback{
		listener: listener,
		tokens:   make(chan string, 1),
		done:     make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", cb.handle)
	cb.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		_ = cb.server.Serve(listener)
		close(cb.done)
	}()
	return cb, nil
}

func (cb *Callback) handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = callbackPage.Execute(w, token != "")

	// First callback wins.
	select {
	case cb.tokens <- token:
	default:
	}
}

// URL is the callback address to hand to AuthURL.
func (cb *Callback) URL() string {
	return "http://" + cb.listener.Addr().String() + "/callback"
}

// Wait returns the token of the first callback. It fails when ctx is done
// or the callback carries no token.
func (cb *Callback) Wait(ctx context.Context) (string, error) {
	select {
	case token := <-cb.tokens:
		if token == "" {
			return "", ErrNoToken
		}
		return token, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the server.
func (cb *Callback) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = cb.server.Shutdown(ctx)
	<-cb.done
}

// OpenBrowser opens url in the desktop browser.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
