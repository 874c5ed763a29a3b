package session

import (
	"context"
	"errors"
	"math/rand"
	"testing"
)

func TestViewCoordinator(t *testing.T) {
	t.Run("ShowOnly keeps at most one screen visible", func(t *testing.T) {
		surface := NewMemorySurface(Screens...)
		v := NewViewCoordinator(surface)
		r := rand.New(rand.NewSource(42))

		candidates := append([]Screen{ScreenNone}, Screens...)
		for i := 0; i < 500; i++ {
			want := candidates[r.Intn(len(candidates))]
			got := v.ShowOnly(want)

			shown := surface.Shown()
			if len(shown) > 1 {
				t.Fatalf("step %d: %d screens visible: %v", i, len(shown), shown)
			}
			if got != want || v.Visible() != want {
				t.Fatalf("step %d: expected %v visible, got %v", i, want, got)
			}
			if want != ScreenNone && (len(shown) != 1 || shown[0] != want) {
				t.Fatalf("step %d: surface shows %v, want %v", i, shown, want)
			}
		}
	})

	t.Run("Missing screens are skipped", func(t *testing.T) {
		surface := NewMemorySurface(ScreenAuth, ScreenUpload)
		v := NewViewCoordinator(surface)

		v.ShowOnly(ScreenUpload)
		if got := v.ShowOnly(ScreenPlayer); got != ScreenNone {
			t.Errorf("expected no screen for a missing player, got %v", got)
		}
		if len(surface.Shown()) != 0 {
			t.Errorf("expected every screen hidden, got %v", surface.Shown())
		}
	})

	t.Run("Start", func(t *testing.T) {
		tt := []struct {
			name  string
			probe func(context.Context) error
			want  Screen
		}{
			{name: "authenticated", probe: func(context.Context) error { return nil }, want: ScreenUpload},
			{name: "unauthenticated", probe: func(context.Context) error { return errors.New("401") }, want: ScreenAuth},
			{name: "no probe", probe: nil, want: ScreenAuth},
		}
		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				v := NewViewCoordinator(nil)
				if got := v.Start(context.Background(), tc.probe); got != tc.want {
					t.Errorf("expected %v, got %v", tc.want, got)
				}
			})
		}
	})

	t.Run("Auth mode", func(t *testing.T) {
		v := NewViewCoordinator(nil)
		if v.AuthMode() != AuthLogin {
			t.Error("expected login form by default")
		}
		v.SetAuthMode(AuthRegister)
		if v.AuthMode() != AuthRegister {
			t.Error("expected register form")
		}
	})

	t.Run("Screen names", func(t *testing.T) {
		if ScreenPlaylists.String() != "playlists" || ScreenNone.String() != "none" {
			t.Errorf("unexpected names %s %s", ScreenPlaylists, ScreenNone)
		}
	})
}
