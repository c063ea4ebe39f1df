//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Renders the demo scene with its depth and shadow maps into out/.
func (Run) Demo() error {
	mg.Deps(Build.Binary)
	if err := os.MkdirAll("out", 0o755); err != nil {
		return err
	}
	fmt.Println("Rendering demo scene...")
	_, err := executeCmd("bin/penumbra", withArgs(
		"render", "scenes/demo.toml",
		"-o", "out/demo.png",
		"--depth", "out/depth.png",
		"--shadow", "out/shadow.png",
		"--linear",
	), withStream())
	return err
}

// Opens the demo scene in the terminal viewer.
func (Run) View() error {
	mg.Deps(Build.Binary)
	_, err := executeCmd("bin/penumbra", withArgs("view", "--watch", "scenes/demo.toml"), withStream())
	return err
}
