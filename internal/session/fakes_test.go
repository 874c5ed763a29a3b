package session

import (
	"errors"
	"sync"
	"time"

	"github.com/desertthunder/moodcrowd/internal/models"
)

type fakeResource struct {
	name     string
	startErr error
	media    *fakeMedia

	mu      sync.Mutex
	started bool
	closed  int
	paused  bool
}

func (r *fakeResource) TogglePause() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = !r.paused
	return r.paused
}

func (r *fakeResource) Progress() (time.Duration, time.Duration) {
	return 30 * time.Second, 3 * time.Minute
}

func (r *fakeResource) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startErr != nil {
		return r.startErr
	}
	r.started = true
	return nil
}

func (r *fakeResource) Close() error {
	r.mu.Lock()
	r.closed++
	r.mu.Unlock()
	r.media.release(r)
	return nil
}

func (r *fakeResource) closeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// fakeMedia hands out resources and tracks how many are bound at once.
type fakeMedia struct {
	mu        sync.Mutex
	loadErr   error
	rejectAll bool
	reject    map[string]bool
	resources []*fakeResource
	ended     []func()
	bound     int
	maxBound  int
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{reject: map[string]bool{}}
}

func (m *fakeMedia) Load(file models.FileHandle, onEnded func()) (Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}

	r := &fakeResource{name: file.Name, media: m}
	if m.rejectAll || m.reject[file.Name] {
		r.startErr = errors.New("autoplay blocked")
	}
	m.resources = append(m.resources, r)
	m.ended = append(m.ended, onEnded)
	m.bound++
	if m.bound > m.maxBound {
		m.maxBound = m.bound
	}
	return r, nil
}

func (m *fakeMedia) release(*fakeResource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bound--
}

// finish fires the completion callback of the i-th loaded resource.
func (m *fakeMedia) finish(i int) {
	m.mu.Lock()
	fn := m.ended[i]
	m.mu.Unlock()
	fn()
}

func (m *fakeMedia) last() (*fakeResource, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := len(m.resources) - 1
	return m.resources[i], i
}

func (m *fakeMedia) loads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.resources))
	for _, r := range m.resources {
		out = append(out, r.name)
	}
	return out
}

func (m *fakeMedia) boundNow() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bound
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recordingNotifier) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) all() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

func (r *recordingNotifier) lastLevel() (Level, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return 0, false
	}
	return r.notices[len(r.notices)-1].Level, true
}

func (r *recordingNotifier) count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.notices {
		if x.Level == level {
			n++
		}
	}
	return n
}
