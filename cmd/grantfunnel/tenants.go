package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tendant/grantfunnel/pkg/api"
	"github.com/tendant/grantfunnel/pkg/domain"
)

func newTenantsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenants",
		Short: "List and create tenants",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tenants, err := a.client.ListTenants(cmd.Context())
			if err != nil {
				return fmt.Errorf("list tenants: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTenants(tenants))
			return nil
		},
	}

	var slug string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tenant",
		Long: `Create a tenant. The slug is derived from the name unless --slug is given:
"Acme Corp!" becomes "acme-corp".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := domain.TenantInput{Name: args[0], Slug: slug}.Normalize()
			if err != nil {
				return err
			}
			tenant, err := a.client.CreateTenant(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("create tenant: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created tenant %s (%s) %s\n", tenant.Name, tenant.Slug, tenant.ID)
			return nil
		},
	}
	create.Flags().StringVar(&slug, "slug", "", "URL slug (default: derived from the name)")

	cmd.AddCommand(list, create)
	return cmd
}

// resolveTenant accepts a tenant ID or slug and returns the tenant ID.
func resolveTenant(ctx context.Context, client *api.Client, ref string) (string, error) {
	if _, err := uuid.Parse(ref); err == nil {
		return ref, nil
	}
	tenants, err := client.ListTenants(ctx)
	if err != nil {
		return "", fmt.Errorf("list tenants: %w", err)
	}
	for _, t := range tenants {
		if t.Slug == ref {
			return t.ID, nil
		}
	}
	return "", fmt.Errorf("no tenant with ID or slug %q", ref)
}
