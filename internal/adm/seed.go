package adm

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/edushelf/edushelf/internal/catalogsrv/config"
	"github.com/edushelf/edushelf/internal/catalogsrv/docstore"
	"github.com/edushelf/edushelf/internal/catalogsrv/seed"
)

func newSeedCmd() *cobra.Command {
	var manifestPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a catalog manifest into the store",
		Long: `seed upserts the catalog tree described by a YAML manifest. The
operation is idempotent: re-running the same manifest converges, and a
corrected document reference in the manifest repairs the stored one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if manifestPath == "" {
				return fmt.Errorf("a manifest file is required, use -f")
			}
			ctx := cmd.Context()

			m, err := seed.Load(manifestPath)
			if err != nil {
				return err
			}
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			docs, derr := docstore.New(ctx, config.Config().Storage)
			if derr != nil {
				return derr
			}
			defer docs.Close()

			if err := seed.Apply(ctx, store, docs, m, filepath.Dir(manifestPath)); err != nil {
				return err
			}
			log.Ctx(ctx).Info().Str("manifest", manifestPath).Msg("seed applied")
			return nil
		},
	}
	cmd.Flags().StringVarP(&manifestPath, "file", "f", "", "path to the manifest file")
	return cmd
}
