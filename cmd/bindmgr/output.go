package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/haukened/bindmgr/internal/dns/services/manager"
)

// withManager builds the application for a single command and closes it afterwards.
func (c *cli) withManager(cmd *cobra.Command, fn func(ctx context.Context, m *manager.Manager) error) error {
	app, err := buildApplication(c.cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(cmd.Context(), app.manager)
}

// print writes v in the selected output format.
func (c *cli) print(w io.Writer, v any) error {
	if c.output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
