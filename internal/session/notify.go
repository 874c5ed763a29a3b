package session

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Level is the kind of notice.
type Level int

const (
	LevelSuccess Level = iota
	LevelInfo
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelInfo:
		return "info"
	default:
		return "success"
	}
}

// Notice is a transient message for the user.
type Notice struct {
	Level   Level
	Message string
	At      time.Time
}

// Notifier shows notices.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Notifiers fans a notice out to several sinks.
type Notifiers []Notifier

func (ns Notifiers) Notify(n Notice) {
	for _, x := range ns {
		if x != nil {
			x.Notify(n)
		}
	}
}

// NoticeBoard keeps the latest notice until its TTL runs out. A new notice replaces the old one.
type NoticeBoard struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	current *Notice
}

// NewNoticeBoard creates a board; ttl <= 0 defaults to three seconds.
func NewNoticeBoard(ttl time.Duration) *NoticeBoard {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &NoticeBoard{ttl: ttl, now: time.Now}
}

func (b *NoticeBoard) Notify(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n.At.IsZero() {
		n.At = b.now()
	}
	b.current = &n
}

// Current returns the live notice, if any.
func (b *NoticeBoard) Current() (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Notice{}, false
	}
	if b.now().Sub(b.current.At) >= b.ttl {
		b.current = nil
		return Notice{}, false
	}
	return *b.current, true
}

// TTL is how long a notice stays up.
func (b *NoticeBoard) TTL() time.Duration { return b.ttl }

// LogNotifier writes notices to a logger, for the CLI.
type LogNotifier struct {
	Logger *log.Logger
}

func (l LogNotifier) Notify(n Notice) {
	if l.Logger == nil {
		return
	}
	switch n.Level {
	case LevelError:
		l.Logger.Error(n.Message)
	case LevelInfo:
		l.Logger.Info(n.Message)
	default:
		l.Logger.Info(n.Message, "status", "ok")
	}
}
