package notify

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg" // cover decoder
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/nfnt/resize"
)

const (
	maxCoverBytes = 5 << 20
	iconSize      = 128 // pixels, larger covers are scaled down
)

// CoverCache downloads remote cover images to disk, since notification
// servers only accept local paths.
type CoverCache struct {
	dir        string
	httpClient *http.Client
}

// NewCoverCache stores covers under dir. An empty dir uses the XDG cache.
func NewCoverCache(dir string) (*CoverCache, error) {
	if dir == "" {
		p, err := xdg.CacheFile(filepath.Join("essai", "covers", "x"))
		if err != nil {
			return nil, err
		}
		dir = filepath.Dir(p)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &CoverCache{
		dir:        dir,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Path returns the local file for coverURL, downloading it on first use.
// Empty and non-HTTP URLs return "".
func (c *CoverCache) Path(ctx context.Context, coverURL string) (string, error) {
	if !strings.HasPrefix(coverURL, "http://") && !strings.HasPrefix(coverURL, "https://") {
		return "", nil
	}

	sum := sha256.Sum256([]byte(coverURL))
	path := filepath.Join(c.dir, hex.EncodeToString(sum[:16]))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch cover: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch cover: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes+1))
	if err != nil {
		return "", fmt.Errorf("fetch cover: %w", err)
	}
	if len(data) > maxCoverBytes {
		return "", fmt.Errorf("cover exceeds %d bytes", maxCoverBytes)
	}

	tmp, err := os.CreateTemp(c.dir, "cover-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(shrinkCover(data))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write cover: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}

// shrinkCover scales decodable images down to an icon-sized PNG.
// Anything else is returned unchanged for the notification server to try.
func shrinkCover(data []byte) []byte {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	b := img.Bounds()
	if b.Dx() <= iconSize && b.Dy() <= iconSize {
		return data
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, resize.Thumbnail(iconSize, iconSize, img, resize.Lanczos3)); err != nil {
		return data
	}
	return buf.Bytes()
}
