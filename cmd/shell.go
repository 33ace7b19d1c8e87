package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive scoring session",
	Long: `Open a persistent session for scoring a match live. Every b5stats command is
available without the program name, e.g. 'bat 1.3' then 'record -z 5 -r safe'.
Type 'help' for a short list.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	cGreeting.Println("b5stats shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	rootCmd.SilenceErrors = true
	defer func() { rootCmd.SilenceErrors = false }()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print(shellStatus())
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		tokens, err := splitArgs(scanner.Text())
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}

		switch tokens[0] {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
			continue
		case "shell":
			cWarn.Fprintln(os.Stderr, "already in the shell")
			continue
		}

		if err := shellRun(tokens); err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return nil
}

// shellRun executes one command line through the root command. Local flags
// are reset first so values never leak from one line into the next.
func shellRun(tokens []string) error {
	for _, c := range rootCmd.Commands() {
		c.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	rootCmd.SetArgs(tokens)
	return rootCmd.Execute()
}

// shellStatus is the prompt: the score and batter of the match in progress.
func shellStatus() string {
	s, err := loadCurrent()
	if err != nil {
		return "b5stats"
	}
	status := fmt.Sprintf("%s %d-%d %s", s.Teams[0].Name, s.Teams[0].Score, s.Teams[1].Score, s.Teams[1].Name)
	switch {
	case s.IsGameComplete:
		status += " | final"
	case !s.IsGameActive:
		status += " | setup"
	default:
		status += fmt.Sprintf(" | inn %d", s.CurrentInning)
		if p := s.Player(string(s.CurrentBatter)); p != nil {
			status += " | " + p.Name
		}
	}
	return status
}

// splitArgs splits a command line on whitespace, keeping double-quoted
// sections together.
func splitArgs(line string) ([]string, error) {
	var (
		out     []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	if started {
		out = append(out, cur.String())
	}
	return out, nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"new --demo | new --team1 ... --players1 ...", "set up a match"},
		{"start", "start play"},
		{"bat <player>", "set the batter (id, name or team.position)"},
		{"record -z <1-9> -r safe|out [--fielder <p>]", "record the batter's play"},
		{"inning", "next inning"},
		{"show [--log]", "scoreboard and player tables"},
		{"heatmap [--team n | --player p]", "hit-zone grids"},
		{"end", "complete and archive the match"},
		{"list | player <name>", "archived matches and player history"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-46s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}
