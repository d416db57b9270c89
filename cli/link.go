package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackwu/vibetrail/githook"
	"github.com/jackwu/vibetrail/model"
	"github.com/jackwu/vibetrail/scanner"
)

var linkQuiet bool

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link the HEAD commit to recently active sessions",
	Long: `Reads the HEAD commit of the current repository and records a link
to every session that was active shortly before it. Run automatically
by the post-commit hook.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return linkFail(err)
		}

		cwd, err := os.Getwd()
		if err != nil {
			return linkFail(err)
		}

		ctx := cmd.Context()
		commit, err := githook.HeadCommit(ctx, cwd)
		if err != nil {
			return linkFail(err)
		}

		sessions := scanner.ScanAll(cfg.Dirs())
		matched := githook.Match(commit, sessions, time.Duration(cfg.LinkWindow))
		if len(matched) == 0 {
			if !linkQuiet {
				fmt.Println("No recently active sessions to link.")
			}
			return nil
		}

		db, err := openStore(cfg)
		if err != nil {
			return linkFail(err)
		}
		defer db.Close()

		for _, session := range matched {
			link := model.CommitLink{
				SHA:         commit.SHA,
				SessionID:   session.ID,
				Agent:       session.Agent,
				CommittedAt: commit.Time,
				Subject:     commit.Subject,
			}
			if err := db.SaveCommitLink(ctx, link); err != nil {
				return linkFail(err)
			}
			if !linkQuiet {
				fmt.Printf("Linked %.8s to %s session %s\n", commit.SHA, session.Agent, session.ShortID)
			}
		}
		return nil
	},
}

// linkFail downgrades errors to silence in quiet mode so the
// post-commit hook never breaks a commit.
func linkFail(err error) error {
	if linkQuiet {
		logger().Debug("link skipped", "error", err)
		return nil
	}
	return err
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage the git post-commit hook",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the post-commit hook in the current repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		path, err := githook.Install(cmd.Context(), cwd)
		if err != nil {
			return err
		}
		fmt.Printf("Installed %s\n", path)
		return nil
	},
}

func init() {
	linkCmd.Flags().BoolVar(&linkQuiet, "quiet", false, "suppress output and never fail (for hooks)")
	hookCmd.AddCommand(hookInstallCmd)
}
