package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-b5-metrics/internal/aggregator"
	"github.com/pable/go-b5-metrics/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// pctOrDash formats a percentage, or "—" when there was nothing to measure.
func pctOrDash(v float64, den int) string {
	if den == 0 {
		return "—"
	}
	return fmt.Sprintf("%.2f%%", v)
}

// PrintMatchHeader prints a one-line header for the match.
func PrintMatchHeader(w io.Writer, s Summary) {
	id := s.MatchID
	if len(id) > 8 {
		id = id[:8]
	}
	status := string(s.Phase)
	if s.Match.IsDraw && s.Ended {
		status += " (draw)"
	}
	fmt.Fprintf(w, "\nMatch: %s  |  Date: %s  |  Innings: %d  |  Elapsed: %d min  |  Status: %s\n\n",
		id, s.Start.Format(time.DateOnly), s.Match.Innings, s.Elapsed, status)
}

// PrintScoreboard prints one row per team with the team-level percentages.
func PrintScoreboard(w io.Writer, s Summary) {
	table := newTable(w)
	table.Header("TEAM", "SCORE", "AVG%", "DEF%")
	for _, t := range s.Teams {
		table.Append(
			t.TeamName,
			strconv.Itoa(t.TotalScore),
			fmt.Sprintf("%.2f%%", t.TeamBattingAverage),
			fmt.Sprintf("%.2f%%", t.TeamDefensivePercentage),
		)
	}
	table.Render()
	fmt.Fprintf(w, "Actions: %d  |  Hits: %d  |  Outs: %d  |  Hit rate: %.2f%%\n",
		s.Match.TotalActions, s.Match.TotalHits, s.Match.TotalOuts, s.Match.HitRate)
}

// PrintBattingTable prints the batting line of every player of one team.
// If focusID is non-empty, that player's row is marked with ">".
func PrintBattingTable(w io.Writer, t aggregator.TeamStats, focusID string) {
	fmt.Fprintf(w, "\n%s batting\n", t.TeamName)
	table := newTable(w)
	table.Header(" ", "POS", "NAME", "AB", "H", "AVG%", "BEST", "WORST")
	for _, p := range t.Players {
		marker := " "
		if focusID != "" && p.ID == focusID {
			marker = ">"
		}
		best, worst := "—", "—"
		if p.Stats.AtBats > 0 {
			best = strconv.Itoa(p.Calculated.BestZone)
			worst = strconv.Itoa(p.Calculated.WorstZone)
		}
		table.Append(
			marker,
			strconv.Itoa(p.Position),
			p.Name,
			strconv.Itoa(p.Stats.AtBats),
			strconv.Itoa(p.Stats.Hits),
			pctOrDash(p.Calculated.BattingAverage, p.Stats.AtBats),
			best,
			worst,
		)
	}
	table.Render()
}

// PrintFieldingTable prints the fielding counters of every player of one team.
func PrintFieldingTable(w io.Writer, t aggregator.TeamStats) {
	fmt.Fprintf(w, "\n%s fielding\n", t.TeamName)
	table := newTable(w)
	table.Header("NAME", "OPP", "C", "MC", "GT", "BT", "CATCH%", "THROW%", "DEF%")
	for _, p := range t.Players {
		f := p.Stats.Fielding
		table.Append(
			p.Name,
			strconv.Itoa(f.TotalOpportunities),
			strconv.Itoa(f.Catches),
			strconv.Itoa(f.MissedCatches),
			strconv.Itoa(f.GoodThrows),
			strconv.Itoa(f.BadThrows),
			pctOrDash(p.Calculated.CatchingPercentage, f.Catches+f.MissedCatches),
			pctOrDash(p.Calculated.ThrowingAccuracy, f.GoodThrows+f.BadThrows),
			pctOrDash(p.Calculated.DefensiveEfficiency, f.TotalOpportunities),
		)
	}
	table.Render()
}

// band names the performance band of a zone, using 20-point steps.
func band(c aggregator.ZoneCell) string {
	switch {
	case c.Attempts == 0:
		return "-"
	case c.Percentage >= 80:
		return "excellent"
	case c.Percentage >= 60:
		return "good"
	case c.Percentage >= 40:
		return "fair"
	case c.Percentage >= 20:
		return "weak"
	default:
		return "poor"
	}
}

// PrintHeatmap prints the nine zones as a 3x3 grid, zone 1 top-left.
func PrintHeatmap(w io.Writer, title string, cells []aggregator.ZoneCell) {
	fmt.Fprintf(w, "\n%s\n", title)
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
	for row := 0; row*3 < len(cells); row++ {
		var line []any
		for _, c := range cells[row*3 : min(row*3+3, len(cells))] {
			line = append(line, fmt.Sprintf("Z%d %d/%d %s", c.Zone, c.Hits, c.Attempts, pctOrDash(c.Percentage, c.Attempts)))
		}
		table.Append(line...)
	}
	table.Render()

	var bands []string
	for _, c := range cells {
		if c.Attempts > 0 {
			bands = append(bands, fmt.Sprintf("Z%d %s", c.Zone, band(c)))
		}
	}
	if len(bands) > 0 {
		fmt.Fprintf(w, "Bands: %s\n", strings.Join(bands, ", "))
	}

	zoneOrDash := func(z int) string {
		if z == 0 {
			return "-"
		}
		return strconv.Itoa(z)
	}
	fav, busy, hits := aggregator.HeatmapHighlights(cells)
	fmt.Fprintf(w, "Favourite zone: %s  |  Busiest zone: %s  |  Total hits: %d\n", zoneOrDash(fav), zoneOrDash(busy), hits)
}

// PrintTopPerformers prints the match-wide leaders.
func PrintTopPerformers(w io.Writer, top aggregator.TopPerformers) {
	table := newTable(w)
	table.Header("AWARD", "PLAYER", "TEAM", "VALUE")
	row := func(award string, p *aggregator.PlayerWithStats, value func(*aggregator.PlayerWithStats) string) {
		if p == nil {
			table.Append(award, "—", "—", "—")
			return
		}
		table.Append(award, p.Name, p.TeamID, value(p))
	}
	row("Top batter", top.TopBatter, func(p *aggregator.PlayerWithStats) string {
		return fmt.Sprintf("%.2f%% (%d/%d)", p.Calculated.BattingAverage, p.Stats.Hits, p.Stats.AtBats)
	})
	row("Top defender", top.TopDefender, func(p *aggregator.PlayerWithStats) string {
		return fmt.Sprintf("%.2f%%", p.Calculated.DefensiveEfficiency)
	})
	row("Most active", top.MostActive, func(p *aggregator.PlayerWithStats) string {
		return fmt.Sprintf("%d actions", p.ActionCount())
	})
	table.Render()
}

// PrintActionLog prints the chronological action log of s.
func PrintActionLog(w io.Writer, s model.GameState) {
	table := newTable(w)
	table.Header("#", "INN", "BATTER", "ZONE", "RESULT", "FIELDER", "CATCH", "THROW")
	for i, a := range s.Actions {
		fielder, catch, throw := "—", "—", "—"
		if a.Defensive.FielderID != "" {
			fielder = a.Defensive.FielderID
			if p := s.Player(a.Defensive.FielderID); p != nil {
				fielder = p.Name
			}
			catch, throw = yesNo(a.Defensive.Caught), yesNo(a.Defensive.GoodThrow)
		}
		table.Append(
			strconv.Itoa(i+1),
			strconv.Itoa(a.Inning),
			a.BatterName,
			strconv.Itoa(a.HitZone),
			strings.ToUpper(string(a.Result)),
			fielder,
			catch,
			throw,
		)
	}
	table.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// PrintMatchList prints archived matches, most recent first as given.
func PrintMatchList(w io.Writer, matches []model.MatchRecord) {
	table := newTable(w)
	table.Header("ID", "DATE", "TEAM 1", "TEAM 2", "SCORE", "INN", "ACTIONS", "MIN")
	for _, m := range matches {
		id := m.MatchID
		if len(id) > 8 {
			id = id[:8]
		}
		mins := "—"
		if m.EndTime > 0 && m.StartTime > 0 {
			mins = strconv.Itoa(minutesBetween(time.UnixMilli(m.StartTime), time.UnixMilli(m.EndTime)))
		}
		table.Append(
			id,
			m.MatchDate,
			m.Team1Name,
			m.Team2Name,
			fmt.Sprintf("%d-%d", m.Team1Score, m.Team2Score),
			strconv.Itoa(m.Innings),
			strconv.Itoa(m.ActionCount),
			mins,
		)
	}
	table.Render()
}

// PrintPlayerHistory prints one row per archived match of a player followed
// by a career line computed from the summed counters.
func PrintPlayerHistory(w io.Writer, lines []model.PlayerLine) {
	table := newTable(w)
	table.Header("DATE", "MATCH", "TEAM", "VS", "W/L", "AB", "H", "AVG%", "DEF%")
	var career model.Player
	for _, l := range lines {
		p := aggregator.CalculatePlayerStats(model.Player{Stats: l.Stats})
		wl := "L"
		if l.Won {
			wl = "W"
		}
		id := l.MatchID
		if len(id) > 8 {
			id = id[:8]
		}
		table.Append(
			l.MatchDate,
			id,
			l.TeamName,
			l.Opponent,
			wl,
			strconv.Itoa(l.Stats.AtBats),
			strconv.Itoa(l.Stats.Hits),
			pctOrDash(p.BattingAverage, l.Stats.AtBats),
			pctOrDash(p.DefensiveEfficiency, l.Stats.Fielding.TotalOpportunities),
		)
		career.Stats = addStats(career.Stats, l.Stats)
	}
	table.Render()

	c := aggregator.CalculatePlayerStats(career)
	fmt.Fprintf(w, "Career: %d matches  |  %d/%d  |  AVG %s  |  DEF %s  |  best zone %d\n",
		len(lines), c.Hits, c.AtBats,
		pctOrDash(c.BattingAverage, c.AtBats),
		pctOrDash(c.DefensiveEfficiency, c.Fielding.TotalOpportunities),
		c.BestZone)
}

func addStats(a, b model.PlayerStats) model.PlayerStats {
	a.AtBats += b.AtBats
	a.Hits += b.Hits
	for i := range a.HitZones {
		a.HitZones[i].Hits += b.HitZones[i].Hits
		a.HitZones[i].Attempts += b.HitZones[i].Attempts
	}
	a.Fielding.Catches += b.Fielding.Catches
	a.Fielding.MissedCatches += b.Fielding.MissedCatches
	a.Fielding.GoodThrows += b.Fielding.GoodThrows
	a.Fielding.BadThrows += b.Fielding.BadThrows
	a.Fielding.TotalOpportunities += b.Fielding.TotalOpportunities
	return a
}
