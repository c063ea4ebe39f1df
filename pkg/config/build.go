package config

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/taigrr/penumbra/pkg/math3d"
	"github.com/taigrr/penumbra/pkg/models"
	"github.com/taigrr/penumbra/pkg/render"
)

const maxTextureSize = 1024

func vec(a [3]float64) math3d.Vec3 {
	return math3d.V3(a[0], a[1], a[2])
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Build creates the scene and a matching render target.
func Build(cfg *Config, logger *log.Logger) (*render.Scene, *render.RenderTarget, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	rt := render.NewRenderTarget(cfg.Render.Width, cfg.Render.Height)
	scene := render.NewScene(NewCamera(cfg, rt.Width, rt.Height))
	scene.Background = vec(cfg.Render.Background)

	l := cfg.Light
	lightID := scene.AddLight(render.NewSpotLight(
		vec(l.Color), vec(l.Position), vec(l.Target), radians(l.HalfAngle),
		render.SpotLightOptions{
			ShadowSize: cfg.Render.ShadowSize,
			Near:       -l.Near,
			Far:        -l.Far,
		},
	))
	pcf := render.NewPCF(cfg.Render.Bias, cfg.Render.Jitter, cfg.Render.Seed)

	cfg.spins = make(map[uuid.UUID]float64)
	for i, mc := range cfg.Models {
		m, err := cfg.buildModel(mc, lightID, pcf, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("model %d (%q): %w", i, mc.Name, err)
		}
		scene.AddModel(m)
		if mc.Spin != 0 {
			cfg.spins[m.ID] = radians(mc.Spin)
		}
	}

	logger.Info("scene built",
		"models", len(scene.Models),
		"triangles", scene.TriangleCount(),
		"size", fmt.Sprintf("%dx%d", rt.Width, rt.Height),
	)
	return scene, rt, nil
}

// NewCamera creates the scene camera for a width x height target.
func NewCamera(cfg *Config, width, height int) *render.Camera {
	c := cfg.Camera
	camera := render.NewCameraFOV(radians(c.FOV), float64(width)/float64(height), -c.Near, -c.Far)
	camera.SetPosition(vec(c.Position))
	camera.LookAt(vec(c.Target))
	return camera
}

func (c *Config) buildModel(mc ModelConfig, lightID render.LightID, pcf *render.PCF, logger *log.Logger) (*render.Model, error) {
	mesh, err := c.loadMesh(mc, logger)
	if err != nil {
		return nil, err
	}
	if mc.Simplify > 0 && mc.Simplify < 1 {
		before := mesh.TriangleCount()
		mesh = mesh.Simplify(mc.Simplify)
		logger.Debug("simplified", "model", mc.Name, "from", before, "to", mesh.TriangleCount())
	}
	if mc.Fit {
		mesh.FitUnit()
	}

	albedo := vec(mc.Color)
	var texture *render.Texture[math3d.Vec3]
	if mat := mesh.GetMaterial(0); mat != nil {
		if albedo == (math3d.Vec3{}) {
			albedo = mat.BaseColor
		}
		texture = mat.BaseMap
	}
	if albedo == (math3d.Vec3{}) {
		albedo = math3d.V3(1, 1, 1)
	}

	switch mc.Texture {
	case "":
	case "checker":
		texture = render.NewCheckerTexture(64, 64, 8, math3d.V3(1, 1, 1), math3d.V3(0.3, 0.3, 0.3))
	default:
		texture, err = render.LoadTexture(c.resolve(mc.Texture), maxTextureSize)
		if err != nil {
			return nil, err
		}
	}

	shader, err := c.shader(mc.Shader, albedo, texture, lightID, pcf)
	if err != nil {
		return nil, err
	}

	model := mesh.ToModel(shader)
	if mc.Name != "" {
		model.Name = mc.Name
	}
	model.Transform.Position = vec(mc.Position)
	model.Transform.Yaw = radians(mc.Rotation[0])
	model.Transform.Pitch = radians(mc.Rotation[1])
	model.Transform.Roll = radians(mc.Rotation[2])
	if mc.Scale != ([3]float64{}) {
		model.Transform.Scale = vec(mc.Scale)
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}
	return model, nil
}

func (c *Config) loadMesh(mc ModelConfig, logger *log.Logger) (*models.Mesh, error) {
	if mc.Path != "" {
		return models.Load(c.resolve(mc.Path), logger)
	}

	size := mc.Size
	if size <= 0 {
		size = 1
	}
	switch mc.Primitive {
	case "cube":
		return models.Cube(size), nil
	case "plane":
		return models.Plane(size), nil
	default:
		return nil, fmt.Errorf("%q: %w", mc.Primitive, ErrUnknownPrimitive)
	}
}

func (c *Config) shader(name string, albedo math3d.Vec3, tex *render.Texture[math3d.Vec3], lightID render.LightID, pcf *render.PCF) (render.PixelShader, error) {
	l := c.Light
	switch name {
	case "", "spotlight":
		return &render.SpotlightShader{
			Albedo:         albedo,
			Texture:        tex,
			Ambient:        math3d.Splat3(l.Ambient),
			Directional:    vec(l.Directional),
			DirectionalDir: vec(l.DirectionalDir),
			Light:          lightID,
			Shadow:         pcf,
		}, nil
	case "diffuse":
		dir := vec(l.DirectionalDir)
		if dir == (math3d.Vec3{}) {
			dir = vec(l.Position).Sub(vec(l.Target))
		}
		return &render.DiffuseShader{Albedo: albedo, LightDir: dir, Ambient: l.Ambient}, nil
	case "texture":
		if tex == nil {
			return nil, fmt.Errorf("texture shader without a texture: %w", ErrInvalid)
		}
		return &render.TextureShader{Texture: tex}, nil
	case "normal":
		return render.NormalShader{}, nil
	case "none":
		// Casts shadows but is not drawn
		return nil, nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownShader)
	}
}

// Animate advances the spin of every model Build gave a spin rate.
func (c *Config) Animate(scene *render.Scene, dt time.Duration) {
	for id, rate := range c.spins {
		if m := scene.ModelByID(id); m != nil {
			m.Transform.Yaw += rate * dt.Seconds()
		}
	}
}
