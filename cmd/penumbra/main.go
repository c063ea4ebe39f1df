// penumbra renders shadowed 3D scenes on the CPU, to PNG files or straight
// into the terminal.
//
// Usage:
//
//	penumbra render [scene.toml] -o out.png
//	penumbra view [scene.toml]
//
// Without a scene file the built-in demo is used.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/taigrr/penumbra/pkg/config"
	"github.com/taigrr/penumbra/pkg/logging"
)

var logLevel string

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := &cobra.Command{
		Use:          "penumbra",
		Short:        "CPU rasterizer with spotlight shadows",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	root.AddCommand(renderCmd(), viewCmd())

	if err := fang.Execute(ctx, root); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*log.Logger, error) {
	return logging.New(os.Stderr, logLevel)
}

// loadScene reads the scene at args[0], or the demo scene without one.
func loadScene(args []string) (*config.Config, error) {
	if len(args) == 0 {
		return config.Default(), nil
	}
	return config.Load(args[0])
}
