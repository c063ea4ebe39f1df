package main

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/log"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/penumbra/pkg/config"
	"github.com/taigrr/penumbra/pkg/math3d"
	"github.com/taigrr/penumbra/pkg/render"
)

func viewCmd() *cobra.Command {
	var (
		fps   int
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "view [scene.toml]",
		Short: "Render the scene live in the terminal",
		Long: `Render the scene live in the terminal.

Controls:
  Arrows/WASD - Orbit the camera
  +/-         - Zoom
  R           - Reset view
  F           - Toggle depth buffer view
  G           - Toggle shadow map view
  ?           - Toggle HUD
  Esc         - Quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			cfg, err := loadScene(args)
			if err != nil {
				return err
			}
			if watch && len(args) == 0 {
				return fmt.Errorf("--watch needs a scene file")
			}
			path := ""
			if watch {
				path = args[0]
			}
			return view(cmd.Context(), cfg, path, fps, logger)
		},
	}
	cmd.Flags().IntVar(&fps, "fps", 30, "target frames per second")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the scene file when it changes")
	return cmd
}

// springAxis eases a value toward a target.
type springAxis struct {
	Value, Target float64
	vel           float64
	spring        harmonica.Spring
}

func newSpringAxis(fps int, v float64) springAxis {
	return springAxis{
		Value:  v,
		Target: v,
		// Critically damped so the camera never overshoots
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

func (a *springAxis) Update() {
	a.Value, a.vel = a.spring.Update(a.Value, a.vel, a.Target)
}

// orbit is a camera circling a target point.
type orbit struct {
	Yaw, Pitch, Distance springAxis
	target               math3d.Vec3
	fps                  int
	home                 [3]float64
}

func newOrbit(fps int, position, target math3d.Vec3) *orbit {
	o := &orbit{target: target, fps: fps}
	o.reset(position)
	return o
}

// reset places the orbit so the camera sits at position.
func (o *orbit) reset(position math3d.Vec3) {
	d := position.Sub(o.target)
	dist := math.Max(d.Len(), 0.1)
	yaw := math.Atan2(d.X, d.Z)
	pitch := math.Asin(math3d.Clamp(d.Y/dist, -1, 1))
	o.home = [3]float64{yaw, pitch, dist}
	o.Yaw = newSpringAxis(o.fps, yaw)
	o.Pitch = newSpringAxis(o.fps, pitch)
	o.Distance = newSpringAxis(o.fps, dist)
}

// recenter eases back to the starting view.
func (o *orbit) recenter() {
	o.Yaw.Target, o.Pitch.Target, o.Distance.Target = o.home[0], o.home[1], o.home[2]
}

func (o *orbit) turn(yaw, pitch float64) {
	o.Yaw.Target += yaw
	o.Pitch.Target = math3d.Clamp(o.Pitch.Target+pitch, -1.5, 1.5)
}

func (o *orbit) zoom(d float64) {
	o.Distance.Target = math3d.Clamp(o.Distance.Target+d, 1, 60)
}

// Update steps the springs and aims the camera.
func (o *orbit) Update(c *render.Camera) {
	o.Yaw.Update()
	o.Pitch.Update()
	o.Distance.Update()

	cp := math.Cos(o.Pitch.Value)
	offset := math3d.V3(
		math.Sin(o.Yaw.Value)*cp,
		math.Sin(o.Pitch.Value),
		math.Cos(o.Yaw.Value)*cp,
	).Scale(o.Distance.Value)
	c.SetPosition(o.target.Add(offset))
	c.LookAt(o.target)
}

// viewMode selects which buffer the viewer shows.
type viewMode int

const (
	modeColor viewMode = iota
	modeDepth
	modeShadow
)

func (m viewMode) String() string {
	switch m {
	case modeDepth:
		return "depth"
	case modeShadow:
		return "shadow"
	default:
		return "color"
	}
}

// viewer holds the live scene and its terminal-sized target.
type viewer struct {
	cfg    *config.Config
	scene  *render.Scene
	rt     *render.RenderTarget
	orbit  *orbit
	logger *log.Logger

	cols, rows int
	showHUD    bool
	mode       viewMode
	fps        int
	dirty      bool // Screen needs a full redraw
}

// load builds cfg and replaces the live scene.
func (v *viewer) load(cfg *config.Config) error {
	scene, _, err := config.Build(cfg, v.logger)
	if err != nil {
		return err
	}
	v.cfg, v.scene = cfg, scene
	v.orbit = newOrbit(v.fps, scene.Camera.Position(), vec3(cfg.Camera.Target))
	v.resize(v.cols, v.rows)
	return nil
}

func (v *viewer) resize(cols, rows int) {
	v.cols, v.rows = cols, rows
	w, h := render.TerminalSize(cols, rows)
	w, h = max(w, 1), max(h, 1)
	if v.rt == nil {
		v.rt = render.NewRenderTarget(w, h)
	} else {
		v.rt.Resize(w, h)
	}
	if v.scene != nil {
		pos := v.scene.Camera.Transform
		v.scene.Camera = config.NewCamera(v.cfg, w, h)
		v.scene.Camera.Transform = pos
	}
}

func vec3(a [3]float64) math3d.Vec3 {
	return math3d.V3(a[0], a[1], a[2])
}

// handle applies one terminal event. It reports false when the viewer
// should quit.
func (v *viewer) handle(ev uv.Event) bool {
	const step = 0.15
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.resize(ev.Width, ev.Height)
		v.dirty = true
	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape", "ctrl+c"):
			return false
		case ev.MatchString("a", "left"):
			v.orbit.turn(-step, 0)
		case ev.MatchString("d", "right"):
			v.orbit.turn(step, 0)
		case ev.MatchString("w", "up"):
			v.orbit.turn(0, step)
		case ev.MatchString("s", "down"):
			v.orbit.turn(0, -step)
		case ev.MatchString("+", "="):
			v.orbit.zoom(-0.5)
		case ev.MatchString("-", "_"):
			v.orbit.zoom(0.5)
		case ev.MatchString("r"):
			v.orbit.recenter()
		case ev.MatchString("f"):
			v.toggle(modeDepth)
		case ev.MatchString("g"):
			v.toggle(modeShadow)
		case ev.MatchString("?", "shift+/"):
			v.showHUD = !v.showHUD
			v.dirty = !v.showHUD
		}
	}
	return true
}

// toggle switches to mode, or back to color when mode is already shown.
func (v *viewer) toggle(mode viewMode) {
	if v.mode == mode {
		mode = modeColor
	}
	v.mode = mode
	// The shadow map is square and may not cover the previous picture
	v.dirty = true
}

// frame returns the image for the current mode. The shadow view falls
// back to color when the scene has no lights.
func (v *viewer) frame() *image.RGBA {
	switch v.mode {
	case modeDepth:
		cam := v.scene.Camera
		return v.rt.DepthImage(cam.Near, cam.Far, true)
	case modeShadow:
		if lights := v.scene.Lights(); len(lights) > 0 {
			return render.ShadowMapImage(lights[0], true)
		}
	}
	return v.rt.Image()
}

func view(ctx context.Context, cfg *config.Config, watchPath string, fps int, logger *log.Logger) error {
	if fps <= 0 {
		fps = 30
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	term := uv.DefaultTerminal()
	cols, rows, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	// Log lines would tear the picture; keep only errors
	logger.SetLevel(log.ErrorLevel)

	v := &viewer{logger: logger, fps: fps, cols: cols, rows: rows}
	if err := v.load(cfg); err != nil {
		return err
	}

	reloads := make(chan *config.Config, 1)
	if watchPath != "" {
		go func() {
			err := config.Watch(ctx, watchPath, func(c *config.Config, err error) {
				if err != nil {
					logger.Error("reload", "err", err)
					return
				}
				select {
				case reloads <- c:
				default:
				}
			})
			if err != nil {
				logger.Error("watch", "err", err)
			}
		}()
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(cols, rows)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	frame := time.Second / time.Duration(fps)
	ticker := time.NewTicker(frame)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-term.Events():
			if !v.handle(ev) {
				return nil
			}
			if v.dirty {
				term.Erase()
				term.Resize(v.cols, v.rows)
				v.dirty = false
			}
		case c := <-reloads:
			if err := v.load(c); err != nil {
				logger.Error("reload", "err", err)
			}
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now

			v.cfg.Animate(v.scene, dt)
			v.orbit.Update(v.scene.Camera)
			v.rt.RenderFrame(v.scene)

			render.DrawImage(term, uv.Rect(0, 0, v.cols, v.rows), v.frame())
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}

			v.scene.Timing.Tick(dt)
			v.drawHUD()
		}
	}
}

// drawHUD overlays frame rate and triangle counts on the top row.
func (v *viewer) drawHUD() {
	const (
		reset     = "\x1b[0m"
		bgBlack   = "\x1b[40m"
		fgGreen   = "\x1b[92m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)
	if !v.showHUD {
		return
	}
	fmt.Fprint(os.Stdout, "\x1b[1;1H"+clearLine)
	s := v.rt.Stats
	fmt.Fprintf(os.Stdout, "%s%s %.0f FPS %s", bgBlack, fgGreen, v.scene.Timing.FPS, reset)
	fmt.Fprintf(os.Stdout, "%s%s %d tris, %d drawn, %d back, %s %s",
		bgBlack, fgCyan, s.Triangles, s.Rasterized, s.BackFacing, v.mode, reset)
}
