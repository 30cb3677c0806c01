package player

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/go-mp3"
)

// goMP3Decoder adapts llehouerou/go-mp3 to beep.StreamSeekCloser. The
// decoder gives sample-accurate seeking, which beep's own mp3 package
// lacks.
type goMP3Decoder struct {
	decoder *mp3.Decoder
	closer  io.Closer
	err     error
	buf     []byte
}

// decodeGoMP3 opens an MP3 stream. go-mp3 always outputs 16-bit stereo.
func decodeGoMP3(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	decoder, err := mp3.NewDecoder(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}
	rate := decoder.SampleRate()
	if rate == 0 {
		return nil, beep.Format{}, errors.New("mp3: invalid sample rate")
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(rate),
		NumChannels: 2,
		Precision:   2,
	}
	return &goMP3Decoder{decoder: decoder, closer: rc, buf: make([]byte, 8192)}, format, nil
}

// Stream fills samples with decoded stereo frames.
func (d *goMP3Decoder) Stream(samples [][2]float64) (n int, ok bool) {
	if d.err != nil {
		return 0, false
	}
	need := len(samples) * 4
	if len(d.buf) < need {
		d.buf = make([]byte, need)
	}
	read, err := io.ReadFull(d.decoder, d.buf[:need])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		d.err = err
		return 0, false
	}
	n = read / 4
	for i := range n {
		samples[i][0] = pcm16(d.buf[i*4:])
		samples[i][1] = pcm16(d.buf[i*4+2:])
	}
	return n, n > 0
}

// pcm16 converts a little-endian signed 16-bit sample to [-1, 1).
func pcm16(b []byte) float64 {
	return float64(int16(binary.LittleEndian.Uint16(b))) / 32768.0 //nolint:gosec // audio samples
}

func (d *goMP3Decoder) Err() error { return d.err }

func (d *goMP3Decoder) Len() int {
	return int(max(d.decoder.SampleCount(), 0))
}

func (d *goMP3Decoder) Position() int {
	return int(d.decoder.SamplePosition())
}

func (d *goMP3Decoder) Seek(p int) error {
	p = max(0, min(p, d.Len()))
	if err := d.decoder.SeekToSample(int64(p)); err != nil {
		return err
	}
	d.err = nil
	return nil
}

func (d *goMP3Decoder) Close() error {
	return d.closer.Close()
}
