package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pable/go-b5-metrics/internal/storage"
)

var (
	exportOut     string
	exportArchive string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a match as indented JSON",
	Long: `Write the full match state (teams, counters and action log) as indented JSON.
The output can be loaded back with 'b5stats import'.

Example:
  b5stats export --out baseball5-match-2026-10-15.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file path (default: stdout)")
	exportCmd.Flags().StringVar(&exportArchive, "archived", "", "archived match id prefix instead of the match in progress")
}

func runExport(_ *cobra.Command, _ []string) error {
	s, err := currentOrArchived(exportArchive)
	if err != nil {
		return err
	}
	data, err := storage.ExportState(s)
	if err != nil {
		return err
	}
	if exportOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(exportOut, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	log.Info().Str("file", exportOut).Int("actions", len(s.Actions)).Msg("match exported")
	return nil
}

var (
	importForce   bool
	importArchive bool
)

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Load an exported match",
	Long: `Load a match exported with 'b5stats export' as the match in progress. The
counters are checked against the action log before anything is replaced.
With --archive a completed match is stored in the archive instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVarP(&importForce, "force", "f", false, "replace a match already in progress")
	importCmd.Flags().BoolVar(&importArchive, "archive", false, "store a completed match in the archive")
}

func runImport(_ *cobra.Command, args []string) error {
	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}

	s, err := storage.DecodeState(data)
	if err != nil {
		return err
	}
	if err := verifyState(s); err != nil {
		return fmt.Errorf("refusing import: %w", err)
	}
	// Exports made before match ids existed carry none.
	if s.MatchID == "" {
		s.MatchID = uuid.NewString()
		log.Debug().Str("match", s.MatchID).Msg("assigned match id to import")
	}

	if importArchive {
		if !s.IsGameComplete {
			return fmt.Errorf("only completed matches can be archived")
		}
		if err := archive(s); err != nil {
			return fmt.Errorf("archive match: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Archived %s vs %s (%d - %d)\n", s.Teams[0].Name, s.Teams[1].Name, s.Teams[0].Score, s.Teams[1].Score)
		return nil
	}

	slot, err := openSlot()
	if err != nil {
		return err
	}
	defer slot.Close()
	if slot.Exists() && !importForce {
		fmt.Fprintln(os.Stderr, "A match is already in progress. Re-run with --force to replace it.")
		return nil
	}
	if err := storage.SaveState(slot, s); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Loaded %s vs %s: %d actions, phase %s\n", s.Teams[0].Name, s.Teams[1].Name, len(s.Actions), s.Phase())
	return nil
}
