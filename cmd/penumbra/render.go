package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taigrr/penumbra/pkg/config"
	"github.com/taigrr/penumbra/pkg/render"
)

func renderCmd() *cobra.Command {
	var (
		out, depthOut, shadowOut string
		linear                   bool
		width, height            int
	)
	cmd := &cobra.Command{
		Use:   "render [scene.toml]",
		Short: "Render one frame to PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			cfg, err := loadScene(args)
			if err != nil {
				return err
			}
			if width > 0 {
				cfg.Render.Width = width
			}
			if height > 0 {
				cfg.Render.Height = height
			}

			scene, rt, err := config.Build(cfg, logger)
			if err != nil {
				return err
			}

			start := time.Now()
			rt.RenderFrame(scene)
			logger.Info("rendered",
				"elapsed", time.Since(start).Round(time.Microsecond),
				"triangles", rt.Stats.Triangles,
				"rasterized", rt.Stats.Rasterized,
				"backfacing", rt.Stats.BackFacing,
				"culled", rt.Stats.ModelsCulled,
			)

			if err := render.SavePNG(out, rt.Image()); err != nil {
				return err
			}
			logger.Info("wrote color", "path", out)

			if depthOut != "" {
				cam := scene.Camera
				if err := render.SavePNG(depthOut, rt.DepthImage(cam.Near, cam.Far, linear)); err != nil {
					return err
				}
				logger.Info("wrote depth", "path", depthOut, "linear", linear)
			}
			if shadowOut != "" {
				lights := scene.Lights()
				if len(lights) == 0 {
					return fmt.Errorf("scene has no light for %s", shadowOut)
				}
				if err := render.SavePNG(shadowOut, render.ShadowMapImage(lights[0], linear)); err != nil {
					return err
				}
				logger.Info("wrote shadow map", "path", shadowOut)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "out.png", "color output path")
	cmd.Flags().StringVar(&depthOut, "depth", "", "also write the depth buffer here")
	cmd.Flags().StringVar(&shadowOut, "shadow", "", "also write the first light's shadow map here")
	cmd.Flags().BoolVar(&linear, "linear", false, "linearize depth images")
	cmd.Flags().IntVar(&width, "width", 0, "override render width")
	cmd.Flags().IntVar(&height, "height", 0, "override render height")
	return cmd
}
