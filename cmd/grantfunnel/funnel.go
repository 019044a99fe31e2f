package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tendant/grantfunnel/pkg/domain"
	"github.com/tendant/grantfunnel/pkg/funnel"
)

func newFunnelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "funnel",
		Short: "Show and change a tenant's funnel",
		Long: `Show and change a tenant's funnel. <tenant> is a tenant ID or slug.

Statuses: prospect, shortlisted, researching, application_in_progress,
funded, passed.`,
	}

	var status string
	show := &cobra.Command{
		Use:   "show <tenant>",
		Short: "Show the funnel board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []funnel.BoardOption
			if status != "" {
				s, err := domain.ParseFunnelStatus(status)
				if err != nil {
					return err
				}
				opts = append(opts, funnel.WithStatusFilter(s))
			}
			board, err := a.board(cmd, args[0], opts...)
			if err != nil {
				return err
			}
			if err := board.Refresh(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderBoard(board.Columns()))
			return nil
		},
	}
	show.Flags().StringVar(&status, "status", "", "Only show entries in this status")

	add := &cobra.Command{
		Use:   "add <tenant> <org-id>",
		Short: "Add an organization as a prospect",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.board(cmd, args[0])
			if err != nil {
				return err
			}
			if err := board.Add(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderBoard(board.Columns()))
			return nil
		},
	}

	move := &cobra.Command{
		Use:   "move <tenant> <entry-id> <status>",
		Short: "Move an entry to another status",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := domain.ParseFunnelStatus(args[2])
			if err != nil {
				return err
			}
			board, err := a.board(cmd, args[0])
			if err != nil {
				return err
			}
			if err := board.Move(cmd.Context(), args[1], s); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderBoard(board.Columns()))
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <tenant> <entry-id>",
		Short: "Remove an entry from the funnel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.board(cmd, args[0])
			if err != nil {
				return err
			}
			if err := board.Remove(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderBoard(board.Columns()))
			return nil
		},
	}

	search := &cobra.Command{
		Use:   "search <tenant> <query>",
		Short: "Search organizations to add to the funnel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.board(cmd, args[0])
			if err != nil {
				return err
			}
			results, err := board.Search(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderSearchResults(args[1], results))
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <tenant> <file>",
		Short: "Add organizations listed in a YAML file",
		Long: `Add organizations listed in a YAML file through the bulk endpoint.
Use - to read from stdin. The file is a list of entries:

  - org_id: 6f1c0e1e-0000-4000-8000-000000000001
  - org_id: 6f1c0e1e-0000-4000-8000-000000000002
    status: researching`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readImportFile(cmd, args[1])
			if err != nil {
				return err
			}
			board, err := a.board(cmd, args[0])
			if err != nil {
				return err
			}
			created, err := board.AddMany(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d of %d organizations.\n", len(created), len(in))
			fmt.Fprint(cmd.OutOrStdout(), renderBoard(board.Columns()))
			return nil
		},
	}

	cmd.AddCommand(show, add, move, remove, search, importCmd)
	return cmd
}

// board resolves the tenant reference and returns an unloaded board for it.
func (a *app) board(cmd *cobra.Command, tenantRef string, opts ...funnel.BoardOption) (*funnel.Board, error) {
	tenantID, err := resolveTenant(cmd.Context(), a.client, tenantRef)
	if err != nil {
		return nil, err
	}
	opts = append(opts, funnel.WithLogger(a.logger))
	return funnel.NewBoard(a.client, tenantID, opts...), nil
}

func readImportFile(cmd *cobra.Command, path string) ([]domain.FunnelEntryInput, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	return parseImport(raw)
}

var errEmptyImport = errors.New("import file lists no organizations")

// parseImport decodes a YAML list of funnel entries and validates each one.
func parseImport(raw []byte) ([]domain.FunnelEntryInput, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var in []domain.FunnelEntryInput
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyImport
		}
		return nil, fmt.Errorf("parse import file: %w", err)
	}
	if len(in) == 0 {
		return nil, errEmptyImport
	}
	for i, item := range in {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("import entry %d: %w", i+1, err)
		}
	}
	return in, nil
}
