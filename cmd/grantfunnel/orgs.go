package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendant/grantfunnel/pkg/directory"
)

func newOrgsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orgs",
		Short: "Browse organizations and their grants",
	}

	var (
		query  string
		offset int
		limit  int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List organizations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = a.cfg.PageSize
			}
			page, err := directory.LoadList(cmd.Context(), a.client, query, offset, limit)
			if err != nil {
				return err
			}
			if page.CountErr != nil {
				a.logger.Warn("organization count failed", "error", page.CountErr)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderOrganizationList(page))
			return nil
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "Search by name")
	list.Flags().IntVar(&offset, "offset", 0, "Number of organizations to skip")
	list.Flags().IntVar(&limit, "limit", 0, "Page size (default: $PAGE_SIZE)")

	show := &cobra.Command{
		Use:   "show <org-id>",
		Short: "Show an organization with the grants it gave and received",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := directory.LoadDetail(cmd.Context(), a.client, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderDetail(detail))
			return nil
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}
