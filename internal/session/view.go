package session

import (
	"context"
	"sync"
)

// Screen identifies one logical screen of the client.
type Screen int

const (
	ScreenNone Screen = iota // nothing visible, only during a transition
	ScreenAuth
	ScreenUpload
	ScreenResults
	ScreenPlaylists
	ScreenPlayer
)

// Screens lists every real screen in display order.
var Screens = []Screen{ScreenAuth, ScreenUpload, ScreenResults, ScreenPlaylists, ScreenPlayer}

func (s Screen) String() string {
	switch s {
	case ScreenAuth:
		return "auth"
	case ScreenUpload:
		return "upload"
	case ScreenResults:
		return "results"
	case ScreenPlaylists:
		return "playlists"
	case ScreenPlayer:
		return "player"
	default:
		return "none"
	}
}

// AuthMode selects the form shown on [ScreenAuth].
type AuthMode int

const (
	AuthLogin AuthMode = iota
	AuthRegister
)

// Surface is whatever renders screens. A surface may not implement every screen.
type Surface interface {
	Has(s Screen) bool
	SetVisible(s Screen, visible bool)
}

// ViewCoordinator keeps at most one screen visible.
type ViewCoordinator struct {
	mu      sync.RWMutex
	surface Surface
	visible Screen
	mode    AuthMode
}

// NewViewCoordinator wraps surface. A nil surface gets a [MemorySurface] with every screen.
func NewViewCoordinator(surface Surface) *ViewCoordinator {
	if surface == nil {
		surface = NewMemorySurface(Screens...)
	}
	return &ViewCoordinator{surface: surface}
}

// ShowOnly hides every screen, then reveals s.
//
// Screens the surface lacks are skipped. If s itself is missing nothing is visible afterwards.
func (v *ViewCoordinator) ShowOnly(s Screen) Screen {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, screen := range Screens {
		if v.surface.Has(screen) {
			v.surface.SetVisible(screen, false)
		}
	}
	v.visible = ScreenNone

	if s != ScreenNone && v.surface.Has(s) {
		v.surface.SetVisible(s, true)
		v.visible = s
	}
	return v.visible
}

// Visible reports the active screen.
func (v *ViewCoordinator) Visible() Screen {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.visible
}

// Start picks the initial screen: Auth when probe fails, Upload otherwise.
func (v *ViewCoordinator) Start(ctx context.Context, probe func(context.Context) error) Screen {
	if probe == nil || probe(ctx) != nil {
		v.SetAuthMode(AuthLogin)
		return v.ShowOnly(ScreenAuth)
	}
	return v.ShowOnly(ScreenUpload)
}

// SetAuthMode switches between the login and register forms.
func (v *ViewCoordinator) SetAuthMode(m AuthMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode = m
}

func (v *ViewCoordinator) AuthMode() AuthMode {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.mode
}

// MemorySurface is a [Surface] that records visibility in a map.
type MemorySurface struct {
	mu      sync.Mutex
	present map[Screen]bool
	shown   map[Screen]bool
}

// NewMemorySurface creates a surface implementing only the given screens.
func NewMemorySurface(screens ...Screen) *MemorySurface {
	m := &MemorySurface{present: map[Screen]bool{}, shown: map[Screen]bool{}}
	for _, s := range screens {
		m.present[s] = true
	}
	return m
}

func (m *MemorySurface) Has(s Screen) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.present[s]
}

func (m *MemorySurface) SetVisible(s Screen, visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.present[s] {
		m.shown[s] = visible
	}
}

// Shown returns the screens currently marked visible.
func (m *MemorySurface) Shown() []Screen {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Screen
	for _, s := range Screens {
		if m.shown[s] {
			out = append(out, s)
		}
	}
	return out
}
