package adm

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/edushelf/edushelf/internal/catalogsrv/db/postgresql"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := postgresql.Migrate(ctx, pool); err != nil {
				return err
			}
			log.Ctx(ctx).Info().Msg("schema is up to date")
			return nil
		},
	}
}
