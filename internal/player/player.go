package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

var (
	// ErrNotLoaded is returned by Play when no media is decoded.
	ErrNotLoaded = errors.New("no media loaded")
	// ErrUnsupportedFormat is reported when the media cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrTooLarge is reported when the media exceeds the download cap.
	ErrTooLarge = errors.New("media exceeds size limit")
)

const (
	outputSampleRate = beep.SampleRate(44100)
	resampleQuality  = 4
	eventBufferSize  = 64

	defaultMaxBytes     = 100 << 20
	defaultTickInterval = 250 * time.Millisecond
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// initSpeaker opens the audio device once per process. Every Player mixes
// into it.
func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(outputSampleRate, outputSampleRate.N(time.Second/10))
	})
	return speakerErr
}

// Player is a media element: it fetches a URL, decodes it in memory and
// plays it through the shared speaker.
type Player struct {
	mu sync.Mutex

	client       *http.Client
	maxBytes     int64
	tickInterval time.Duration
	log          *log.Logger

	gen         uint64
	state       State
	cancel      context.CancelFunc
	streamer    beep.StreamSeekCloser
	format      beep.Format
	ctrl        *beep.Ctrl
	volume      *effects.Volume
	pipeline    uint64 // id of the current speaker pipeline
	pendingSeek time.Duration
	level       float64
	muted       bool

	events    chan Event
	finished  chan uint64
	done      chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once
	emitMu    sync.Mutex
	closed    bool
}

// Option configures a Player.
type Option func(*Player)

// WithHTTPClient sets the client used to fetch media.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Player) {
		if c != nil {
			p.client = c
		}
	}
}

// WithMaxBytes caps the size of fetched media.
func WithMaxBytes(n int64) Option {
	return func(p *Player) {
		if n > 0 {
			p.maxBytes = n
		}
	}
}

// WithTickInterval sets the period of EventTime while playing.
func WithTickInterval(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.tickInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Player) {
		if l != nil {
			p.log = l
		}
	}
}

// New creates a player and starts its event goroutine.
func New(opts ...Option) *Player {
	p := &Player{
		client:       http.DefaultClient,
		maxBytes:     defaultMaxBytes,
		tickInterval: defaultTickInterval,
		log:          log.New(io.Discard),
		state:        Stopped,
		level:        1,
		events:       make(chan Event, eventBufferSize),
		finished:     make(chan uint64, 8),
		done:         make(chan struct{}),
		loopDone:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.loop()
	return p
}

// Load unloads the current media and starts fetching url.
func (p *Player) Load(url string) uint64 {
	p.mu.Lock()
	p.unloadLocked()
	p.gen++
	gen := p.gen
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.state = Loading
	p.mu.Unlock()

	go p.fetch(ctx, gen, url)
	return gen
}

func (p *Player) fetch(ctx context.Context, gen uint64, url string) {
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	data, contentType, err := p.download(ctx, url)
	if err == nil {
		streamer, format, err = decode(data, DetectFormat(data, contentType, url))
	}

	p.mu.Lock()
	if gen != p.gen || p.state != Loading {
		p.mu.Unlock()
		if streamer != nil {
			_ = streamer.Close()
		}
		return
	}
	if err != nil {
		p.state = Stopped
		p.cancel = nil
		p.mu.Unlock()
		p.log.Warn("load failed", "url", url, "err", err)
		p.emit(Event{Gen: gen, Type: EventFailed, Err: err}, false)
		return
	}

	p.streamer, p.format = streamer, format
	p.state = Ready
	p.cancel = nil
	if p.pendingSeek > 0 {
		p.seekLocked(p.pendingSeek)
		p.pendingSeek = 0
	}
	dur := format.SampleRate.D(streamer.Len())
	p.mu.Unlock()

	p.log.Debug("media ready", "url", url, "duration", dur, "rate", format.SampleRate)
	p.emit(Event{Gen: gen, Type: EventReady, Duration: dur}, false)
}

// download reads the whole media into memory. Plain paths and file://
// URLs are read from disk.
func (p *Player) download(ctx context.Context, url string) ([]byte, string, error) {
	if path, ok := localPath(url); ok {
		data, err := os.ReadFile(path)
		return data, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("building request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetching media: %s", resp.Status)
	}
	if resp.ContentLength > p.maxBytes {
		return nil, "", ErrTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading media: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, "", ErrTooLarge
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func localPath(url string) (string, bool) {
	if after, ok := strings.CutPrefix(url, "file://"); ok {
		return after, true
	}
	if strings.Contains(url, "://") {
		return "", false
	}
	return url, true
}

// Play starts or resumes output.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case Playing:
		return nil
	case Paused:
		speaker.Lock()
		p.ctrl.Paused = false
		speaker.Unlock()
		p.state = Playing
		return nil
	case Ready:
		if err := initSpeaker(); err != nil {
			return fmt.Errorf("opening audio device: %w", err)
		}
		p.pipeline++
		id := p.pipeline
		p.ctrl = &beep.Ctrl{Streamer: p.streamer}
		resampled := beep.Resample(resampleQuality, p.format.SampleRate, outputSampleRate, p.ctrl)
		p.volume = &effects.Volume{
			Streamer: resampled,
			Base:     2,
			Volume:   levelToVolume(p.level),
			Silent:   p.silent(),
		}
		// The callback runs under the speaker lock; it only signals.
		speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
			select {
			case p.finished <- id:
			default:
			}
		})))
		p.state = Playing
		return nil
	default:
		return ErrNotLoaded
	}
}

// Pause suspends output, keeping the position.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Playing || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = Paused
}

// Stop halts output and releases the media.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unloadLocked()
}

// unloadLocked detaches the pipeline from the speaker and frees the
// decoder. Other players sharing the speaker are not affected.
func (p *Player) unloadLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Streamer = nil
		speaker.Unlock()
		p.ctrl = nil
	}
	p.volume = nil
	if p.streamer != nil {
		if err := p.streamer.Close(); err != nil {
			p.log.Debug("closing decoder", "err", err)
		}
		p.streamer = nil
	}
	p.pendingSeek = 0
	p.state = Stopped
}

// SeekTo moves the position. A seek issued while loading is applied once
// the media is decoded.
func (p *Player) SeekTo(pos time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.state == Loading:
		p.pendingSeek = max(pos, 0)
	case p.state.IsLoaded():
		p.seekLocked(pos)
	}
}

func (p *Player) seekLocked(pos time.Duration) {
	n := p.format.SampleRate.N(max(pos, 0))
	n = min(n, p.streamer.Len())
	speaker.Lock()
	err := p.streamer.Seek(n)
	speaker.Unlock()
	if err != nil {
		p.log.Warn("seek failed", "position", pos, "err", err)
	}
}

// State returns the current state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *Player) positionLocked() time.Duration {
	if p.streamer == nil {
		return 0
	}
	speaker.Lock()
	n := p.streamer.Position()
	speaker.Unlock()
	return p.format.SampleRate.D(n)
}

// Duration returns the length of the loaded media.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

// Events returns the event channel. It is closed by Close.
func (p *Player) Events() <-chan Event {
	return p.events
}

// Close stops playback and the event goroutine.
func (p *Player) Close() error {
	p.closeOnce.Do(func() {
		p.Stop()
		close(p.done)
		<-p.loopDone

		p.emitMu.Lock()
		p.closed = true
		close(p.events)
		p.emitMu.Unlock()
	})
	return nil
}

// loop turns speaker callbacks into events and reports the position while
// playing.
func (p *Player) loop() {
	defer close(p.loopDone)
	ticker := time.NewTicker(p.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case id := <-p.finished:
			p.handleFinished(id)
		case <-ticker.C:
			p.tick()
		case <-p.done:
			return
		}
	}
}

func (p *Player) handleFinished(id uint64) {
	p.mu.Lock()
	if id != p.pipeline || p.state != Playing || p.streamer == nil {
		p.mu.Unlock()
		return
	}
	gen := p.gen
	err := p.streamer.Err()
	p.ctrl = nil
	p.volume = nil
	if err != nil {
		p.unloadLocked()
		p.mu.Unlock()
		p.emit(Event{Gen: gen, Type: EventFailed, Err: fmt.Errorf("decoding: %w", err)}, false)
		return
	}
	p.state = Ready
	p.mu.Unlock()
	p.emit(Event{Gen: gen, Type: EventEnded}, false)
}

func (p *Player) tick() {
	p.mu.Lock()
	if p.state != Playing {
		p.mu.Unlock()
		return
	}
	e := Event{Gen: p.gen, Type: EventTime, Position: p.positionLocked()}
	p.mu.Unlock()
	p.emit(e, true)
}

// emit delivers e. Droppable events are discarded when the buffer is full.
func (p *Player) emit(e Event, droppable bool) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	if p.closed {
		return
	}
	if droppable {
		select {
		case p.events <- e:
		default:
		}
		return
	}
	select {
	case p.events <- e:
	case <-p.done:
	}
}
