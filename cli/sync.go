package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackwu/vibetrail/config"
	"github.com/jackwu/vibetrail/syncer"
)

var syncAll bool

var syncCmd = &cobra.Command{
	Use:   "sync [session]",
	Short: "Upload ingested sessions to the configured sync server",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Sync.URL == "" {
			return fmt.Errorf("no sync server configured; set sync.url in %s", config.Path())
		}
		if len(args) == 0 && !syncAll {
			return fmt.Errorf("pass a session ID or --all")
		}

		db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		client := syncer.New(cfg.Sync.URL, cfg.Sync.Token, logger())

		var bundles []syncer.Bundle
		if syncAll {
			sessions, err := db.Sessions(ctx)
			if err != nil {
				return err
			}
			for _, session := range sessions {
				messages, err := db.Messages(ctx, session.ID)
				if err != nil {
					return err
				}
				bundles = append(bundles, syncer.Bundle{Session: session, Messages: messages})
			}
		} else {
			session, err := db.Session(ctx, args[0])
			if err != nil {
				return err
			}
			messages, err := db.Messages(ctx, session.ID)
			if err != nil {
				return err
			}
			bundles = append(bundles, syncer.Bundle{Session: session, Messages: messages})
		}

		if err := client.PushAll(ctx, bundles); err != nil {
			return err
		}
		fmt.Printf("Pushed %d sessions to %s\n", len(bundles), cfg.Sync.URL)
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncAll, "all", false, "sync every ingested session")
}
