package commands

import (
	"fmt"
	"text/tabwriter"

	merrors "git.home.luguber.info/inful/eventmetrics/internal/errors"
	"git.home.luguber.info/inful/eventmetrics/internal/metrics"
)

// CatalogCmd implements the 'catalog' command.
type CatalogCmd struct {
	Help bool `name:"with-help" help:"Print the help text next to each name"`
}

func (c *CatalogCmd) Run(g *Global, root *CLI) error {
	cfg, _, err := root.load(g)
	if err != nil {
		return err
	}
	set, err := metrics.ParsePolicySet(string(cfg.Metrics.Specialized))
	if err != nil {
		return merrors.ConfigInvalid("metrics.specialized", err)
	}

	tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	for _, entry := range metrics.BuildCatalog(metrics.Names{Namespace: cfg.Metrics.Namespace}, set) {
		if c.Help {
			fmt.Fprintf(tw, "%s\t%s\n", entry.Name, entry.Help)
			continue
		}
		fmt.Fprintln(tw, entry.Name)
	}
	return tw.Flush()
}
