package player

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/jfreymuth/vorbis"
	"github.com/jj11hh/opus"
)

var (
	errInvalidOgg      = errors.New("ogg: invalid page")
	errUnknownOggCodec = errors.New("ogg: unknown codec")
)

const (
	opusSampleRate = 48000
	opusMaxFrame   = 5760 // 120ms at 48kHz
	opusPreroll    = 3840 // 80ms decoded before a seek target
)

// oggPacket is one codec packet. granule is the granule position of the
// page on which the packet completes when it is the last to do so, -1
// otherwise.
type oggPacket struct {
	data    []byte
	granule int64
}

// demuxOgg splits the first logical stream of an in-memory Ogg file into
// packets.
func demuxOgg(data []byte) ([]oggPacket, error) {
	var (
		packets []oggPacket
		partial []byte
		serial  uint32
		first   = true
	)
	for off := 0; off < len(data); {
		if len(data)-off < 27 || !bytes.Equal(data[off:off+4], []byte("OggS")) {
			if off == 0 {
				return nil, errInvalidOgg
			}
			break // trailing garbage
		}
		if data[off+4] != 0 {
			return nil, errInvalidOgg
		}
		granule := int64(binary.LittleEndian.Uint64(data[off+6:])) //nolint:gosec // granule is signed
		pageSerial := binary.LittleEndian.Uint32(data[off+14:])
		nseg := int(data[off+26])
		body := off + 27 + nseg
		if body > len(data) {
			return nil, io.ErrUnexpectedEOF
		}
		segs := data[off+27 : body]
		size := 0
		for _, s := range segs {
			size += int(s)
		}
		if body+size > len(data) {
			return nil, io.ErrUnexpectedEOF
		}
		if first {
			serial, first = pageSerial, false
		}
		if pageSerial != serial {
			off = body + size
			continue
		}

		pos, last := body, -1
		for _, s := range segs {
			partial = append(partial, data[pos:pos+int(s)]...)
			pos += int(s)
			if s < 255 {
				packets = append(packets, oggPacket{data: partial, granule: -1})
				partial = nil
				last = len(packets) - 1
			}
		}
		if last >= 0 {
			packets[last].granule = granule
		}
		off = body + size
	}
	return packets, nil
}

// oggCodec decodes the audio packets of one Ogg codec to interleaved PCM.
type oggCodec interface {
	decode(packet []byte) ([]float32, error)
	reset()
	channels() int
	rate() int
	preSkip() int
	preroll() int
}

// newOggCodec identifies the codec and consumes its header packets.
// Returns the number of header packets.
func newOggCodec(packets []oggPacket) (oggCodec, int, error) {
	head := packets[0].data
	switch {
	case bytes.HasPrefix(head, []byte("OpusHead")):
		c, err := newOpusCodec(head)
		return c, 2, err
	case len(head) > 7 && head[0] == 1 && string(head[1:7]) == "vorbis":
		if len(packets) < 3 {
			return nil, 0, io.ErrUnexpectedEOF
		}
		c, err := newVorbisCodec(head, packets[1].data, packets[2].data)
		return c, 3, err
	}
	return nil, 0, errUnknownOggCodec
}

type opusCodec struct {
	dec  *opus.Decoder
	ch   int
	skip int
	buf  []float32
}

func newOpusCodec(head []byte) (*opusCodec, error) {
	if len(head) < 19 || head[8]>>4 != 0 {
		return nil, errors.New("opus: unsupported header")
	}
	ch := int(head[9])
	dec, err := opus.NewDecoder(opusSampleRate, ch)
	if err != nil {
		return nil, err
	}
	return &opusCodec{
		dec:  dec,
		ch:   ch,
		skip: int(binary.LittleEndian.Uint16(head[10:12])),
		buf:  make([]float32, opusMaxFrame*ch),
	}, nil
}

func (c *opusCodec) decode(packet []byte) ([]float32, error) {
	n, err := c.dec.DecodeFloat32(packet, c.buf)
	if err != nil {
		return nil, err
	}
	return c.buf[:n*c.ch], nil
}

// reset is a no-op: the Opus decoder converges within the preroll.
func (c *opusCodec) reset()         {}
func (c *opusCodec) channels() int { return c.ch }
func (c *opusCodec) rate() int     { return opusSampleRate }
func (c *opusCodec) preSkip() int  { return c.skip }
func (c *opusCodec) preroll() int  { return opusPreroll }

type vorbisCodec struct {
	dec  vorbis.Decoder
	ch   int
	sr   int
	out  []float32
}

func newVorbisCodec(ident, comment, setup []byte) (*vorbisCodec, error) {
	if len(ident) < 16 || binary.LittleEndian.Uint32(ident[7:11]) != 0 {
		return nil, errors.New("vorbis: invalid identification header")
	}
	c := &vorbisCodec{
		ch: int(ident[11]),
		sr: int(binary.LittleEndian.Uint32(ident[12:16])),
	}
	for _, h := range [][]byte{ident, comment, setup} {
		if err := c.dec.ReadHeader(h); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *vorbisCodec) decode(packet []byte) ([]float32, error) {
	out, err := c.dec.Decode(packet)
	if err != nil {
		return nil, err
	}
	// The decoder reuses its buffer between calls.
	c.out = append(c.out[:0], out...)
	return c.out, nil
}

func (c *vorbisCodec) reset()         { c.dec.Clear() }
func (c *vorbisCodec) channels() int { return c.ch }
func (c *vorbisCodec) rate() int     { return c.sr }
func (c *vorbisCodec) preSkip() int  { return 0 }
func (c *vorbisCodec) preroll() int  { return 0 }

// oggDecoder streams decoded Ogg audio. Seeking restarts decoding at the
// last page boundary before the target and discards up to it.
type oggDecoder struct {
	codec   oggCodec
	packets []oggPacket // audio packets, headers removed
	next    int
	pcm     []float32
	pcmPos  int
	skip    int // frames to discard before output
	pos     int
	total   int
	err     error
}

func decodeOgg(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	packets, err := demuxOgg(data)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if len(packets) == 0 {
		return nil, beep.Format{}, errInvalidOgg
	}
	codec, headers, err := newOggCodec(packets)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if codec.channels() < 1 || codec.rate() <= 0 {
		return nil, beep.Format{}, errInvalidOgg
	}

	audio := packets[headers:]
	var last int64
	for _, p := range audio {
		last = max(last, p.granule)
	}

	d := &oggDecoder{
		codec:   codec,
		packets: audio,
		skip:    codec.preSkip(),
		total:   max(int(last)-codec.preSkip(), 0),
	}
	format := beep.Format{SampleRate: beep.SampleRate(codec.rate()), NumChannels: 2, Precision: 2}
	return d, format, nil
}

func (d *oggDecoder) Stream(samples [][2]float64) (n int, ok bool) {
	if d.err != nil {
		return 0, false
	}
	ch := d.codec.channels()
	for n < len(samples) {
		if d.pcmPos+ch <= len(d.pcm) {
			frame := d.pcm[d.pcmPos : d.pcmPos+ch]
			d.pcmPos += ch
			if d.skip > 0 {
				d.skip--
				continue
			}
			l := float64(frame[0])
			r := l
			if ch > 1 {
				r = float64(frame[1])
			}
			samples[n] = [2]float64{l, r}
			n++
			d.pos++
			continue
		}
		if d.next >= len(d.packets) {
			return n, n > 0
		}
		pcm, err := d.codec.decode(d.packets[d.next].data)
		d.next++
		if err != nil {
			// Corrupt packets are skipped.
			continue
		}
		d.pcm, d.pcmPos = pcm, 0
	}
	return n, true
}

func (d *oggDecoder) Err() error { return d.err }

func (d *oggDecoder) Len() int { return d.total }

func (d *oggDecoder) Position() int { return d.pos }

func (d *oggDecoder) Seek(p int) error {
	p = max(0, min(p, d.total))
	target := int64(p + d.codec.preSkip())
	limit := target - int64(d.codec.preroll())

	start, base := 0, int64(0)
	for i, pk := range d.packets {
		if pk.granule < 0 {
			continue
		}
		if pk.granule > limit {
			break
		}
		start, base = i+1, pk.granule
	}

	d.codec.reset()
	d.next = start
	d.pcm, d.pcmPos = nil, 0
	d.skip = int(target - base)
	d.pos = p
	d.err = nil
	return nil
}

func (d *oggDecoder) Close() error { return nil }
