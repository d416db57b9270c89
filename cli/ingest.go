package cli

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jackwu/vibetrail/scanner"
	"github.com/jackwu/vibetrail/search"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Persist scanned sessions and transcripts to the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		log := logger()
		ctx := cmd.Context()
		saved := 0
		for _, session := range scanner.ScanAll(cfg.Dirs()) {
			if session.ID == "" {
				session.ID = uuid.NewString()
			}

			messages := loadTranscript(session)

			var searchText string
			if raw, err := os.ReadFile(session.FilePath); err == nil {
				searchText = search.Extract(session.Agent, string(raw))
			}

			if err := db.SaveSession(ctx, session, messages, searchText); err != nil {
				log.Warn("skipping session", "session", session.ID, "error", err)
				continue
			}
			saved++
		}

		fmt.Printf("Ingested %d sessions into %s\n", saved, cfg.StorePath)
		return nil
	},
}

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank ingested sessions against a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		rows, err := db.SearchRows(ctx)
		if err != nil {
			return err
		}

		query := ""
		for i, arg := range args {
			if i > 0 {
				query += " "
			}
			query += arg
		}

		results := search.NewIndex(rows).Search(query, searchLimit)
		if len(results) == 0 {
			fmt.Println("No matches. Run `vibetrail ingest` first?")
			return nil
		}

		for _, res := range results {
			session, err := db.Session(ctx, res.SessionID)
			if err != nil {
				continue
			}
			fmt.Printf("%6.2f  %-8s %s  %-14s %s\n",
				res.Score, session.Agent, session.ShortID, session.Project, session.Summary)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum results")
}
