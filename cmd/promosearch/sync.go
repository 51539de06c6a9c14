package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/promo-search-engine/internal/source"
)

func syncCMD(cfgPath *string) *cobra.Command {
	var output string
	var sync = &cobra.Command{
		Use:   "sync",
		Short: "Download promotions from the upstream API into the data file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closer, err := setup(*cfgPath)
			if err != nil {
				return err
			}
			defer closer.Close()
			if output == "" {
				output = cfg.Data.File
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client := source.NewUpstreamClient(cfg.Upstream, &http.Client{})
			records, err := client.Fetch(ctx)
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			if err := source.NewFileSource(output).Save(records); err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"records": len(records),
				"file":    output,
			}).Info("promotions synced")
			cmd.Printf("Saved %d promotions to %s\n", len(records), output)
			return nil
		},
	}
	sync.Flags().StringVarP(&output, "output", "o", "", "output file (default is data.file)")
	return sync
}
