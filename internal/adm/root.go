// Package adm implements the edushelfadm command line tool: schema
// migration, catalog seeding, and account provisioning against the
// configured database.
package adm

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/edushelf/edushelf/internal/catalogsrv/config"
	"github.com/edushelf/edushelf/internal/catalogsrv/db"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/dbmanager"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/postgresql"
)

var configFile string

// NewRootCmd creates the root command for the admin CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edushelfadm",
		Short: "Administration tool for the edushelf catalog",
		Long: `edushelfadm manages the edushelf catalog service out of band:
applying schema migrations, seeding the catalog tree from a manifest, and
provisioning user accounts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadConfig(configFile)
		},
	}
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "path to the config file")

	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newAddUserCmd())
	return cmd
}

func openPool(ctx context.Context) (*sql.DB, error) {
	return dbmanager.NewPostgresqlDb(ctx, config.Config().Database.Dsn())
}

func openStore(ctx context.Context) (db.CatalogStore, error) {
	pool, err := openPool(ctx)
	if err != nil {
		return nil, err
	}
	return postgresql.New(pool), nil
}
