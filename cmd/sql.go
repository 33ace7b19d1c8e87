package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the match archive",
	Long: `Run an arbitrary SQL query against the match archive and print results as a table.

Schema overview:
  matches(match_id, match_date, start_time, end_time, team1_name, team2_name,
    team1_score, team2_score, innings, action_count, state_json)
  player_match_stats(match_id, player_id, name, position, team_name, opponent, won,
    at_bats, hits, hit_zones, catches, missed_catches, good_throws, bad_throws,
    total_opportunities)
  actions(match_id, seq, action_id, inning, batter_id, batter_name, hit_zone,
    result, caught, good_throw, fielder_id, ts)

Times are Unix milliseconds. hit_zones is a JSON object keyed "zone1".."zone9".
Example: SELECT name, SUM(hits), SUM(at_bats) FROM player_match_stats GROUP BY name`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
