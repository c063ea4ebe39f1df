package main

import (
	"math"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/penumbra/pkg/config"
	"github.com/taigrr/penumbra/pkg/logging"
	"github.com/taigrr/penumbra/pkg/math3d"
	"github.com/taigrr/penumbra/pkg/render"
)

func near(a, b math3d.Vec3) bool {
	return a.Sub(b).Len() < 1e-9
}

func TestOrbitStartsAtCameraPosition(t *testing.T) {
	pos := math3d.V3(0, 6, 8)
	target := math3d.V3(0, 1, 0)
	o := newOrbit(30, pos, target)

	cam := config.NewCamera(config.Default(), 40, 30)
	o.Update(cam)
	if got := cam.Position(); !near(got, pos) {
		t.Errorf("camera at %v, want %v", got, pos)
	}
	if fwd, want := cam.Forward(), target.Sub(pos).Normalize(); !near(fwd, want) {
		t.Errorf("camera forward %v, want %v", fwd, want)
	}
}

func TestOrbitLimits(t *testing.T) {
	o := newOrbit(30, math3d.V3(0, 0, 5), math3d.Vec3{})
	o.turn(0, 10)
	if o.Pitch.Target != 1.5 {
		t.Errorf("pitch target = %v, want clamped to 1.5", o.Pitch.Target)
	}
	o.zoom(-100)
	if o.Distance.Target != 1 {
		t.Errorf("distance target = %v, want clamped to 1", o.Distance.Target)
	}
	o.recenter()
	if o.Pitch.Target != 0 || math.Abs(o.Distance.Target-5) > 1e-12 {
		t.Errorf("recenter gave pitch %v distance %v", o.Pitch.Target, o.Distance.Target)
	}
}

func TestViewerHandle(t *testing.T) {
	v := &viewer{logger: logging.Discard(), fps: 30, cols: 20, rows: 10}
	if err := v.load(config.Default()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if v.rt.Width != 20 || v.rt.Height != 20 {
		t.Fatalf("target = %dx%d, want 20x20", v.rt.Width, v.rt.Height)
	}

	yaw := v.orbit.Yaw.Target
	if !v.handle(uv.KeyPressEvent{Code: uv.KeyRight}) {
		t.Fatal("right arrow quit the viewer")
	}
	if v.orbit.Yaw.Target <= yaw {
		t.Errorf("yaw target %v, want above %v", v.orbit.Yaw.Target, yaw)
	}

	if !v.handle(uv.WindowSizeEvent{Width: 30, Height: 12}) {
		t.Fatal("resize quit the viewer")
	}
	if v.rt.Width != 30 || v.rt.Height != 24 || !v.dirty {
		t.Errorf("after resize target %dx%d dirty %v", v.rt.Width, v.rt.Height, v.dirty)
	}
	if got := v.scene.Camera.AspectRatio; math.Abs(got-30.0/24) > 1e-12 {
		t.Errorf("aspect = %v, want %v", got, 30.0/24)
	}

	if v.handle(uv.KeyPressEvent{Code: uv.KeyEscape}) {
		t.Error("escape did not quit")
	}
}

func TestViewerBufferViews(t *testing.T) {
	cfg := config.Default()
	cfg.Render.ShadowSize = 32
	v := &viewer{logger: logging.Discard(), fps: 30, cols: 20, rows: 10}
	if err := v.load(cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	v.rt.RenderFrame(v.scene)

	tests := []struct {
		key        rune
		want       viewMode
		wantWidth  int
		wantHeight int
	}{
		{'f', modeDepth, 20, 20},
		{'g', modeShadow, 32, 32},
		{'g', modeColor, 20, 20},
		{'f', modeDepth, 20, 20},
		{'f', modeColor, 20, 20},
	}
	for _, tc := range tests {
		v.dirty = false
		if !v.handle(uv.KeyPressEvent{Code: tc.key, Text: string(tc.key)}) {
			t.Fatalf("%c quit the viewer", tc.key)
		}
		if v.mode != tc.want || !v.dirty {
			t.Errorf("after %c mode %v dirty %v, want %v", tc.key, v.mode, v.dirty, tc.want)
		}
		b := v.frame().Bounds()
		if b.Dx() != tc.wantWidth || b.Dy() != tc.wantHeight {
			t.Errorf("%v frame = %dx%d, want %dx%d", tc.want, b.Dx(), b.Dy(), tc.wantWidth, tc.wantHeight)
		}
	}
}

func TestViewerShadowViewWithoutLights(t *testing.T) {
	v := &viewer{logger: logging.Discard(), fps: 30, cols: 20, rows: 10}
	if err := v.load(config.Default()); err != nil {
		t.Fatalf("load: %v", err)
	}
	v.scene = render.NewScene(v.scene.Camera)
	v.toggle(modeShadow)
	if b := v.frame().Bounds(); b.Dx() != 20 || b.Dy() != 20 {
		t.Errorf("frame = %dx%d, want the 20x20 color buffer", b.Dx(), b.Dy())
	}
}
