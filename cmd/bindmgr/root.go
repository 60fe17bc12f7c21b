package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haukened/bindmgr/internal/dns/common/log"
	"github.com/haukened/bindmgr/internal/dns/config"
)

const appName = "bindmgr"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cli carries the state shared by every subcommand.
type cli struct {
	configPath string
	output     string
	cfg        *config.AppConfig
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   appName,
		Short: "Manage BIND zones, records and server settings",
		Long: `bindmgr edits the zone files and named.conf files of a BIND server and
reloads it after every change.

Run "bindmgr serve" for the REST API, or use the subcommands directly on the
host running named. Configuration comes from defaults, an optional YAML file
(--config) and BINDMGR_* environment variables.`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: c.load,
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVarP(&c.output, "output", "o", "yaml", "output format: yaml or json")

	root.AddCommand(
		c.serveCmd(),
		c.zoneCmd(),
		c.recordCmd(),
		c.blockCmd(),
		c.nullRouteCmd(),
		c.forwarderCmd(),
		c.recursionCmd(),
		c.configCmd(),
		c.reloadCmd(),
	)
	return root
}

// load reads the configuration and configures global logging.
func (c *cli) load(cmd *cobra.Command, _ []string) error {
	if c.output != "yaml" && c.output != "json" {
		return fmt.Errorf("unsupported output format %q", c.output)
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := log.Configure(cfg.Env, cfg.Log.Level); err != nil {
		return fmt.Errorf("logging configuration error: %w", err)
	}
	c.cfg = cfg
	return nil
}
