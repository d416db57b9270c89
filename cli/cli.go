// Package cli wires the commands together: browse, ingest, search,
// link and sync.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jackwu/vibetrail/config"
	"github.com/jackwu/vibetrail/mapper"
	"github.com/jackwu/vibetrail/model"
	"github.com/jackwu/vibetrail/scanner"
	"github.com/jackwu/vibetrail/store"
	"github.com/jackwu/vibetrail/tui"
)

var rootCmd = &cobra.Command{
	Use:          "vibetrail",
	Short:        "Browse, search and link your coding agent sessions",
	SilenceUsage: true,
	RunE:         runTUI,
}

var verboseFlag bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "enable debug logging")
	rootCmd.AddCommand(listCmd, showCmd, searchCmd, ingestCmd, linkCmd, hookCmd, syncCmd)
}

// Execute runs the CLI. It is the only entry point main needs.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func logger() *slog.Logger {
	level := slog.LevelWarn
	if verboseFlag {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func openStore(cfg config.Config) (*store.Store, error) {
	return store.Open(cfg.StorePath, logger())
}

// loadTranscript reads a session's raw log and maps it to the
// canonical transcript. Returns nil when the file is gone or the
// agent is unknown.
func loadTranscript(s model.Session) []model.Message {
	fn, ok := mapper.For(s.Agent)
	if !ok {
		return nil
	}
	raw, err := os.ReadFile(s.FilePath)
	if err != nil {
		return nil
	}
	return fn(string(raw))
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sessions := scanner.ScanAll(cfg.Dirs())
	if len(sessions) == 0 {
		fmt.Println("No sessions found.")
		return nil
	}

	m := tui.NewModel(sessions, loadTranscript)
	if cwd, err := os.Getwd(); err == nil {
		m.SetCWD(cwd)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("running browser: %w", err)
	}

	launch := result.(tui.Model).LaunchCmd()
	if launch == "" {
		return nil
	}

	// execute the chosen command via shell
	shell := "/bin/bash"
	if runtime.GOOS == "darwin" {
		if zsh, err := exec.LookPath("zsh"); err == nil {
			shell = zsh
		}
	}

	execCmd := exec.Command(shell, "-c", launch)
	execCmd.Stdin = os.Stdin
	execCmd.Stdout = os.Stdout
	execCmd.Stderr = os.Stderr
	if err := execCmd.Run(); err != nil {
		return fmt.Errorf("launching session: %w", err)
	}
	return nil
}
