package media

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodcrowd/internal/models"
	"github.com/desertthunder/moodcrowd/internal/session"
	"github.com/desertthunder/moodcrowd/internal/shared"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

const resampleQuality = 4

var errTrackClosed = errors.New("track already closed")

// Speaker is the beep-backed [session.Media].
type Speaker struct {
	once       sync.Once
	initErr    error
	sampleRate beep.SampleRate
	logger     *log.Logger
}

// NewSpeaker creates a speaker; the audio device is opened on the first Start.
func NewSpeaker(logger *log.Logger) *Speaker {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Speaker{logger: logger}
}

func (s *Speaker) SetLogger(l *log.Logger) { s.logger = l }

func (s *Speaker) init(format beep.Format) error {
	s.once.Do(func() {
		s.sampleRate = format.SampleRate
		s.initErr = speaker.Init(s.sampleRate, s.sampleRate.N(time.Second/10))
		if s.initErr != nil {
			s.logger.Error("speaker init failed", "error", s.initErr)
		}
	})
	return s.initErr
}

// Load opens and decodes file. onEnded fires on its own goroutine when the stream runs out.
func (s *Speaker) Load(file models.FileHandle, onEnded func()) (session.Resource, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Name, err)
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", file.Name, err)
	}

	return &track{
		speaker:  s,
		name:     file.Name,
		streamer: streamer,
		format:   format,
		onEnded:  onEnded,
	}, nil
}

// track is one decoded file bound to the mixer.
type track struct {
	speaker  *Speaker
	name     string
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	onEnded  func()

	mu     sync.Mutex
	closed bool
}

// Start attaches the stream to the mixer.
func (t *track) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errTrackClosed
	}

	if err := t.speaker.init(t.format); err != nil {
		return fmt.Errorf("audio device unavailable: %w", err)
	}

	var stream beep.Streamer = t.streamer
	if t.format.SampleRate != t.speaker.sampleRate {
		stream = beep.Resample(resampleQuality, t.format.SampleRate, t.speaker.sampleRate, stream)
	}

	// The callback runs with the speaker lock held, so the handler must not run inline.
	done := beep.Callback(func() {
		if t.onEnded != nil {
			go t.onEnded()
		}
	})
	t.ctrl = &beep.Ctrl{Streamer: beep.Seq(stream, done)}
	speaker.Play(t.ctrl)
	t.speaker.logger.Debug("track started", "file", t.name, "rate", t.format.SampleRate)
	return nil
}

// Close detaches the stream and releases the decoder and file.
func (t *track) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true

	if t.ctrl != nil {
		speaker.Lock()
		t.ctrl.Streamer = nil
		speaker.Unlock()
	}
	return t.streamer.Close()
}

// TogglePause pauses or resumes the track and reports whether it is now paused.
func (t *track) TogglePause() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ctrl == nil || t.closed {
		return false
	}
	speaker.Lock()
	defer speaker.Unlock()
	t.ctrl.Paused = !t.ctrl.Paused
	return t.ctrl.Paused
}

// Progress reports the position and length of the track.
func (t *track) Progress() (time.Duration, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return t.format.SampleRate.D(t.streamer.Position()), t.format.SampleRate.D(t.streamer.Len())
}
