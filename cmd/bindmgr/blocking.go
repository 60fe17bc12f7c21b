package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/haukened/bindmgr/internal/dns/repos/blocklist/parsers"
	"github.com/haukened/bindmgr/internal/dns/services/manager"
)

func (c *cli) blockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "block",
		Short: "Manage domains blocked through the response policy zone",
	}

	var source string
	add := &cobra.Command{
		Use:   "add <domain>",
		Short: "Block a domain and all of its subdomains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
				zone, err := m.BlockZone(ctx, manager.BlockRequest{Domain: args[0], Source: source})
				if err != nil {
					return err
				}
				return c.print(cmd.OutOrStdout(), zone)
			})
		},
	}
	add.Flags().StringVar(&source, "source", "", "where the entry came from (default api)")

	var (
		format       string
		importSource string
	)
	imp := &cobra.Command{
		Use:   "import <file|->",
		Short: "Block every domain of a hosts file or plain domain list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeFn()
			if importSource == "" {
				importSource = args[0]
			}
			return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
				res, err := m.ImportBlocklist(ctx, r, parsers.Format(format), importSource)
				if err != nil {
					return err
				}
				return c.print(cmd.OutOrStdout(), res)
			})
		},
	}
	imp.Flags().StringVar(&format, "format", string(parsers.FormatAuto), "list format: auto, hosts or plain")
	imp.Flags().StringVar(&importSource, "source", "", "source recorded for new entries (default the file name)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List blocked domains of both mechanisms",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withManager(cmd, func(_ context.Context, m *manager.Manager) error {
					zones, err := m.ListBlockedZones()
					if err != nil {
						return err
					}
					return c.print(cmd.OutOrStdout(), zones)
				})
			},
		},
		add,
		&cobra.Command{
			Use:   "remove <domain>",
			Short: "Unblock a domain",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
					return m.UnblockZone(ctx, args[0])
				})
			},
		},
		imp,
		&cobra.Command{
			Use:   "check <domain>",
			Short: "Report whether a name is blocked and by which entry",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withManager(cmd, func(_ context.Context, m *manager.Manager) error {
					d, err := m.CheckBlocked(args[0])
					if err != nil {
						return err
					}
					return c.print(cmd.OutOrStdout(), d)
				})
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show blocklist store and cache counters",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withManager(cmd, func(_ context.Context, m *manager.Manager) error {
					return c.print(cmd.OutOrStdout(), m.BlocklistStats())
				})
			},
		},
	)
	return cmd
}

func (c *cli) nullRouteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nullroute",
		Short: "Answer a domain with 0.0.0.0 from an authoritative null zone",
	}

	var source string
	add := &cobra.Command{
		Use:   "add <domain>",
		Short: "Register a null-route zone for a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
				return m.NullRoute(ctx, manager.BlockRequest{Domain: args[0], Source: source})
			})
		},
	}
	add.Flags().StringVar(&source, "source", "", "where the entry came from")

	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "remove <domain>",
			Short: "Remove the null-route zone of a domain",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
					return m.RemoveNullRoute(ctx, args[0])
				})
			},
		},
	)
	return cmd
}

// openInput opens path, or stdin for "-".
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
