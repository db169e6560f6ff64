package adm

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/edushelf/edushelf/internal/catalogsrv/catcommon"
	"github.com/edushelf/edushelf/internal/catalogsrv/db"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/models"
)

func newAddUserCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Provision a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}
			ctx := cmd.Context()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			ctx = db.SetCatalogStore(ctx, store)

			hash, herr := catcommon.HashPassword(password)
			if herr != nil {
				return herr
			}
			user := &models.User{Name: name, Email: email, PasswordHash: hash}
			if cerr := store.CreateUser(ctx, user); cerr != nil {
				return cerr
			}
			log.Ctx(ctx).Info().Str("email", email).Str("id", user.ID).Msg("user created")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	return cmd
}
