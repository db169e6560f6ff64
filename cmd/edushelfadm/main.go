package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/edushelf/edushelf/internal/adm"
	"github.com/edushelf/edushelf/internal/common/logtrace"
)

func main() {
	logtrace.InitLogger()
	ctx := log.Logger.WithContext(context.Background())

	cmd := adm.NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
