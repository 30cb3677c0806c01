package player

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/wav"
)

// Format is a container/codec family the player can decode.
type Format int

const (
	FormatUnknown Format = iota
	FormatMP3
	FormatFLAC
	FormatWAV
	FormatOgg
	FormatM4A
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatMP3:
		return "mp3"
	case FormatFLAC:
		return "flac"
	case FormatWAV:
		return "wav"
	case FormatOgg:
		return "ogg"
	case FormatM4A:
		return "m4a"
	default:
		return "unknown"
	}
}

// DetectFormat identifies media from its leading bytes, falling back to the
// Content-Type header and then to the URL extension.
func DetectFormat(data []byte, contentType, rawURL string) Format {
	if f := sniffFormat(data); f != FormatUnknown {
		return f
	}
	if f := formatFromContentType(contentType); f != FormatUnknown {
		return f
	}
	return formatFromURL(rawURL)
}

func sniffFormat(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte("ID3")):
		return FormatMP3
	case bytes.HasPrefix(data, []byte("fLaC")):
		return FormatFLAC
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV
	case bytes.HasPrefix(data, []byte("OggS")):
		return FormatOgg
	case len(data) >= 8 && string(data[4:8]) == "ftyp":
		return FormatM4A
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0 && data[1]&0x06 != 0:
		// MPEG audio frame sync; layer bits 00 would be ADTS AAC.
		return FormatMP3
	}
	return FormatUnknown
}

func formatFromContentType(ct string) Format {
	mediaType, _, _ := strings.Cut(ct, ";")
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "audio/mpeg", "audio/mp3", "audio/mpeg3":
		return FormatMP3
	case "audio/flac", "audio/x-flac":
		return FormatFLAC
	case "audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave":
		return FormatWAV
	case "audio/ogg", "application/ogg", "audio/opus", "audio/vorbis":
		return FormatOgg
	case "audio/mp4", "audio/x-m4a", "audio/m4a":
		return FormatM4A
	}
	return FormatUnknown
}

func formatFromURL(rawURL string) Format {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".mp3":
		return FormatMP3
	case ".flac":
		return FormatFLAC
	case ".wav":
		return FormatWAV
	case ".ogg", ".oga", ".opus":
		return FormatOgg
	case ".m4a", ".mp4":
		return FormatM4A
	}
	return FormatUnknown
}

// memFile is an in-memory io.ReadSeekCloser.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

// decode opens data with the decoder for f.
func decode(data []byte, f Format) (beep.StreamSeekCloser, beep.Format, error) {
	r := memFile{bytes.NewReader(data)}
	var (
		s      beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch f {
	case FormatMP3:
		s, format, err = decodeGoMP3(r)
	case FormatFLAC:
		s, format, err = flac.Decode(r)
	case FormatWAV:
		s, format, err = wav.Decode(r)
	case FormatOgg:
		s, format, err = decodeOgg(data)
	case FormatM4A:
		s, format, err = decodeM4A(r)
	default:
		return nil, beep.Format{}, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decoding %s: %w", f, err)
	}
	return s, format, nil
}
