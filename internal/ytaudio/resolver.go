package ytaudio

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// DefaultFormat selects audio the player can decode.
const DefaultFormat = "bestaudio[ext=m4a]/bestaudio[acodec^=mp4a]/bestaudio[ext=mp3]"

const watchURL = "https://www.youtube.com/watch?v="

// ErrNoStream is returned when yt-dlp prints no media URL.
var ErrNoStream = errors.New("no audio stream for video")

// Resolver turns a video id into a direct media URL.
type Resolver interface {
	// Ready reports whether the resolver can be used.
	Ready(ctx context.Context) error
	Resolve(ctx context.Context, videoID string) (string, error)
}

// YtdlpResolver resolves video ids with the yt-dlp binary.
type YtdlpResolver struct {
	Format  string
	Proxy   string
	Timeout time.Duration
}

// Ready checks that yt-dlp is installed.
func (r YtdlpResolver) Ready(context.Context) error {
	if _, err := exec.LookPath("yt-dlp"); err != nil {
		return fmt.Errorf("yt-dlp not found: %w", err)
	}
	return nil
}

// Resolve prints the URL of the selected audio format.
func (r YtdlpResolver) Resolve(ctx context.Context, videoID string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	format := r.Format
	if format == "" {
		format = DefaultFormat
	}
	cmd := ytdlp.New().
		Quiet().
		NoWarnings().
		NoPlaylist().
		IgnoreConfig().
		Format(format).
		Print("%(url)s")
	if r.Proxy != "" {
		cmd.Proxy(r.Proxy)
	}

	res, err := cmd.Run(ctx, watchURL+videoID)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", videoID, err)
	}
	return firstURL(res.Stdout)
}

func firstURL(out string) (string, error) {
	for line := range strings.Lines(out) {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			return line, nil
		}
	}
	return "", ErrNoStream
}
