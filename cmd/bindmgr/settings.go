package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/haukened/bindmgr/internal/dns/services/manager"
)

func (c *cli) forwarderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forwarder",
		Short: "Manage global forwarders",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List global forwarders",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withManager(cmd, func(_ context.Context, m *manager.Manager) error {
					fwds, err := m.ListForwarders()
					if err != nil {
						return err
					}
					return c.print(cmd.OutOrStdout(), fwds)
				})
			},
		},
		&cobra.Command{
			Use:   "add <ip>",
			Short: "Add a forwarder",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
					return m.AddForwarder(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "remove <ip>",
			Short: "Remove a forwarder",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
					return m.RemoveForwarder(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "check",
			Short: "Query every configured forwarder",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
					results, err := m.CheckForwarders(ctx)
					if err != nil {
						return err
					}
					return c.print(cmd.OutOrStdout(), results)
				})
			},
		},
	)
	return cmd
}

func (c *cli) recursionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recursion",
		Short: "Show or change recursion and its allowed networks",
	}
	set := func(enabled bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
				return m.SetRecursion(ctx, enabled)
			})
		}
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show recursion settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withManager(cmd, func(_ context.Context, m *manager.Manager) error {
					rec, err := m.Recursion()
					if err != nil {
						return err
					}
					return c.print(cmd.OutOrStdout(), rec)
				})
			},
		},
		&cobra.Command{Use: "enable", Short: "Enable recursion", Args: cobra.NoArgs, RunE: set(true)},
		&cobra.Command{Use: "disable", Short: "Disable recursion", Args: cobra.NoArgs, RunE: set(false)},
		&cobra.Command{
			Use:   "allow <network>",
			Short: "Add a network or ACL name to allow-recursion",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
					return m.AddRecursionNetwork(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "deny <network>",
			Short: "Remove a network or ACL name from allow-recursion",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
					return m.RemoveRecursionNetwork(ctx, args[0])
				})
			},
		},
	)
	return cmd
}

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Export or apply the combined server settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "export",
			Short: "Print recursion, forwarders, cache sizing and blocked zones",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withManager(cmd, func(_ context.Context, m *manager.Manager) error {
					s, err := m.Configuration()
					if err != nil {
						return err
					}
					return c.print(cmd.OutOrStdout(), s)
				})
			},
		},
		&cobra.Command{
			Use:   "apply <file|->",
			Short: "Replace the server settings with a YAML or JSON document",
			Long: `Replace the server settings with the document in the given file.

The document has the shape printed by "bindmgr config export". Omitted lists
are cleared, so export, edit and apply to change a single value. BIND is
reloaded once.`,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				r, closeFn, err := openInput(cmd, args[0])
				if err != nil {
					return err
				}
				defer closeFn()
				var s domain.ServerSettings
				// YAML is a superset of JSON
				if err := yaml.NewDecoder(r).Decode(&s); err != nil {
					return fmt.Errorf("failed to parse settings: %w", err)
				}
				return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
					return m.ReplaceConfiguration(ctx, s)
				})
			},
		},
	)
	return cmd
}

func (c *cli) reloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload BIND now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
				return m.Reload(ctx)
			})
		},
	}
}
