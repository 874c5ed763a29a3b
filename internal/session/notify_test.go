package session

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/moodcrowd/internal/shared"
)

func TestNoticeBoard(t *testing.T) {
	t.Run("Expires after ttl", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		b := NewNoticeBoard(3 * time.Second)
		b.now = func() time.Time { return now }

		b.Notify(Notice{Message: "saved"})
		if n, ok := b.Current(); !ok || n.Message != "saved" {
			t.Fatalf("expected live notice, got %v %v", n, ok)
		}

		now = now.Add(3 * time.Second)
		if _, ok := b.Current(); ok {
			t.Error("expected notice to expire")
		}
	})

	t.Run("New notice replaces old", func(t *testing.T) {
		b := NewNoticeBoard(time.Minute)
		b.Notify(Notice{Message: "first"})
		b.Notify(Notice{Level: LevelError, Message: "second"})

		n, ok := b.Current()
		if !ok || n.Message != "second" || n.Level != LevelError {
			t.Errorf("unexpected notice %+v", n)
		}
	})

	t.Run("Default ttl", func(t *testing.T) {
		if NewNoticeBoard(0).TTL() != 3*time.Second {
			t.Error("expected three second default")
		}
	})
}

func TestNotifiers(t *testing.T) {
	var buf bytes.Buffer
	rec := &recordingNotifier{}
	ns := Notifiers{LogNotifier{Logger: shared.NewLogger(&buf)}, rec, nil}

	ns.Notify(Notice{Level: LevelError, Message: "analysis failed"})
	ns.Notify(Notice{Level: LevelSuccess, Message: "saved"})

	if len(rec.all()) != 2 {
		t.Errorf("expected 2 recorded notices, got %d", len(rec.all()))
	}
	out := buf.String()
	if !strings.Contains(out, "analysis failed") || !strings.Contains(out, "saved") {
		t.Errorf("expected notices in log output, got %q", out)
	}

	var called bool
	NotifierFunc(func(Notice) { called = true }).Notify(Notice{})
	if !called {
		t.Error("expected NotifierFunc to be called")
	}
}
