package commands

import (
	"fmt"

	"git.home.luguber.info/inful/eventmetrics/internal/config"
)

// DefaultConfigPath is where init writes when no --config is given.
const DefaultConfigPath = "eventmetrics.yaml"

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	path := root.Config
	if path == "" {
		path = DefaultConfigPath
	}
	if err := config.Init(path, i.Force); err != nil {
		return err
	}
	fmt.Fprintf(g.Stdout, "Wrote configuration to %s\n", path)
	return nil
}
