package player

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/alac"
	"github.com/llehouerou/go-faad2"
	"github.com/llehouerou/go-m4a"
)

// m4aDecoder reads an MP4 audio container and decodes its AAC or ALAC
// samples. Video platforms serve their audio tracks as AAC in this
// container.
type m4aDecoder struct {
	container *m4a.Reader
	closer    io.Closer
	codec     m4a.CodecType
	channels  int
	bits      int
	rate      int
	total     int
	idx       int // next container sample
	err       error

	aac  *faad2.Decoder
	alac *alac.Alac

	pcm    [][2]float64
	pcmPos int
}

func decodeM4A(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	container, err := m4a.Open(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}

	rate := int(container.SampleRate())
	d := &m4aDecoder{
		container: container,
		closer:    rc,
		codec:     container.Codec(),
		channels:  int(container.Channels()),
		bits:      int(container.SampleSize()),
		rate:      rate,
		total:     int(container.Duration().Seconds() * float64(rate)),
	}
	precision := 2
	ctx := context.Background()

	switch d.codec {
	case m4a.CodecAAC:
		dec, err := faad2.NewDecoder(ctx)
		if err != nil {
			return nil, beep.Format{}, err
		}
		if err := dec.Init(ctx, container.CodecConfig()); err != nil {
			dec.Close(ctx)
			return nil, beep.Format{}, err
		}
		d.aac = dec
	case m4a.CodecALAC:
		dec, err := alac.NewWithConfig(alac.Config{
			SampleRate:  rate,
			SampleSize:  d.bits,
			NumChannels: d.channels,
			FrameSize:   4096,
		})
		if err != nil {
			return nil, beep.Format{}, err
		}
		d.alac = dec
		if d.bits == 24 {
			precision = 3
		}
	default:
		return nil, beep.Format{}, ErrUnsupportedFormat
	}

	format := beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: 2, Precision: precision}
	return d, format, nil
}

// Stream fills samples, decoding container samples as needed.
func (d *m4aDecoder) Stream(samples [][2]float64) (n int, ok bool) {
	if d.err != nil {
		return 0, false
	}
	for n < len(samples) {
		if d.pcmPos < len(d.pcm) {
			c := copy(samples[n:], d.pcm[d.pcmPos:])
			n += c
			d.pcmPos += c
			continue
		}
		if d.idx >= d.container.SampleCount() {
			return n, n > 0
		}
		if err := d.decodeNext(); err != nil {
			d.err = err
			return n, n > 0
		}
	}
	return n, true
}

func (d *m4aDecoder) decodeNext() error {
	data, err := d.container.ReadSample(d.idx)
	if err != nil {
		return err
	}
	d.idx++
	d.pcmPos = 0

	switch d.codec {
	case m4a.CodecAAC:
		pcm, err := d.aac.Decode(context.Background(), data)
		if err != nil {
			return err
		}
		d.pcm = interleavedToStereo(pcm, d.channels)
	case m4a.CodecALAC:
		d.pcm = alacToStereo(d.alac.Decode(data), d.bits, d.channels)
	default:
		return errors.New("m4a: unsupported codec")
	}
	return nil
}

// interleavedToStereo converts interleaved int16 PCM to stereo frames,
// duplicating mono.
func interleavedToStereo(pcm []int16, channels int) [][2]float64 {
	if channels < 1 {
		return nil
	}
	frames := make([][2]float64, len(pcm)/channels)
	for i := range frames {
		l := float64(pcm[i*channels]) / 32768.0
		r := l
		if channels > 1 {
			r = float64(pcm[i*channels+1]) / 32768.0
		}
		frames[i] = [2]float64{l, r}
	}
	return frames
}

// alacToStereo converts little-endian 16 or 24-bit ALAC output to stereo
// frames.
func alacToStereo(data []byte, bits, channels int) [][2]float64 {
	width := 2
	scale := 32768.0
	if bits == 24 {
		width = 3
		scale = 8388608.0
	}
	frame := width * channels
	if frame == 0 {
		return nil
	}
	sample := func(b []byte) float64 {
		if width == 2 {
			return pcm16(b)
		}
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if v&0x800000 != 0 {
			v |= ^0xFFFFFF
		}
		return float64(v) / scale
	}

	frames := make([][2]float64, len(data)/frame)
	for i := range frames {
		off := i * frame
		l := sample(data[off:])
		r := l
		if channels > 1 {
			r = sample(data[off+width:])
		}
		frames[i] = [2]float64{l, r}
	}
	return frames
}

func (d *m4aDecoder) Err() error { return d.err }

func (d *m4aDecoder) Len() int { return d.total }

func (d *m4aDecoder) Position() int {
	return int(d.container.SampleTime(d.idx).Seconds() * float64(d.rate))
}

func (d *m4aDecoder) Seek(p int) error {
	p = max(0, min(p, d.total))
	pos := time.Duration(float64(p) / float64(d.rate) * float64(time.Second))
	d.idx = d.container.SeekToTime(pos)
	d.pcm = nil
	d.pcmPos = 0
	d.err = nil
	return nil
}

func (d *m4aDecoder) Close() error {
	if d.aac != nil {
		d.aac.Close(context.Background())
	}
	return d.closer.Close()
}
