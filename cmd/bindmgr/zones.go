package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haukened/bindmgr/internal/dns/services/manager"
)

func (c *cli) zoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zone",
		Short: "List, create, delete and check zones",
	}

	var req manager.CreateZoneRequest
	create := &cobra.Command{
		Use:   "create <zone>",
		Short: "Create a zone file and register the zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[0]
			return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
				zone, err := m.CreateZone(ctx, req)
				if err != nil {
					return err
				}
				return c.print(cmd.OutOrStdout(), zone)
			})
		},
	}
	create.Flags().StringVar(&req.AdminEmail, "admin-email", "", "SOA contact address (default admin.<zone>)")
	create.Flags().Uint32Var(&req.TTL, "ttl", 0, "default TTL of the zone (default 3600)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List managed zones",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withManager(cmd, func(_ context.Context, m *manager.Manager) error {
					zones, err := m.ListZones()
					if err != nil {
						return err
					}
					return c.print(cmd.OutOrStdout(), zones)
				})
			},
		},
		create,
		&cobra.Command{
			Use:   "delete <zone>",
			Short: "Unregister a zone and remove its file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
					return m.DeleteZone(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "check <zone>",
			Short: "Parse a zone file with a full master file parser",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withManager(cmd, func(_ context.Context, m *manager.Manager) error {
					report, err := m.CheckZone(args[0])
					if err != nil {
						return err
					}
					return c.print(cmd.OutOrStdout(), report)
				})
			},
		},
	)
	return cmd
}

func (c *cli) recordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "List, add, update and delete records of a zone",
	}

	var ttl uint32
	add := &cobra.Command{
		Use:   "add <zone> <name> <type> <value>",
		Short: "Append a record",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := manager.RecordRequest{Name: args[1], Type: args[2], Value: args[3], TTL: ttl}
			return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
				rec, err := m.AddRecord(ctx, args[0], req)
				if err != nil {
					return err
				}
				return c.print(cmd.OutOrStdout(), rec)
			})
		},
	}
	add.Flags().Uint32Var(&ttl, "ttl", 0, "record TTL (default 3600)")

	var updateTTL uint32
	update := &cobra.Command{
		Use:   "update <zone> <id> <name> <type> <value>",
		Short: "Replace the record with the given id",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := recordID(args[1])
			if err != nil {
				return err
			}
			req := manager.RecordRequest{Name: args[2], Type: args[3], Value: args[4], TTL: updateTTL}
			return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
				rec, err := m.UpdateRecord(ctx, args[0], id, req)
				if err != nil {
					return err
				}
				return c.print(cmd.OutOrStdout(), rec)
			})
		},
	}
	update.Flags().Uint32Var(&updateTTL, "ttl", 0, "record TTL (default 3600)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <zone>",
			Short: "List the records of a zone with their ids",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withManager(cmd, func(_ context.Context, m *manager.Manager) error {
					records, err := m.ListRecords(args[0])
					if err != nil {
						return err
					}
					return c.print(cmd.OutOrStdout(), records)
				})
			},
		},
		add,
		update,
		&cobra.Command{
			Use:   "delete <zone> <id>",
			Short: "Delete the record with the given id",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := recordID(args[1])
				if err != nil {
					return err
				}
				return c.withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
					rec, err := m.DeleteRecord(ctx, args[0], id)
					if err != nil {
						return err
					}
					return c.print(cmd.OutOrStdout(), rec)
				})
			},
		},
	)
	return cmd
}

func recordID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("record id must be a non-negative integer, got %q", s)
	}
	return id, nil
}
