package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pable/go-b5-metrics/internal/aggregator"
	"github.com/pable/go-b5-metrics/internal/model"
)

// Summary is everything a results screen shows for one match.
type Summary struct {
	MatchID string
	Phase   model.Phase
	Start   time.Time
	End     time.Time // match end, or the build time while the match is running
	Ended   bool
	Elapsed int // whole minutes from Start to End
	Match   aggregator.MatchSummary
	Teams   [2]aggregator.TeamStats
	Heat    [2][]aggregator.ZoneCell
}

// BuildSummary derives the display summary of s. now stands in for the end
// time of a match that has not ended.
func BuildSummary(s model.GameState, now time.Time) Summary {
	start := s.StartedAt()
	end, ended := s.EndedAt()
	if !ended {
		end = now
	}
	return Summary{
		MatchID: s.MatchID,
		Phase:   s.Phase(),
		Start:   start,
		End:     end,
		Ended:   ended,
		Elapsed: minutesBetween(start, end),
		Match:   aggregator.MatchSummaryOf(s),
		Teams:   aggregator.CalculateTeamStats(s),
		Heat:    [2][]aggregator.ZoneCell{aggregator.TeamHeatmap(s.Teams[0]), aggregator.TeamHeatmap(s.Teams[1])},
	}
}

func minutesBetween(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}

// battingPct is the whole-number hit percentage used by the text report.
func battingPct(hits, atBats int) int {
	if atBats == 0 {
		return 0
	}
	return int(math.Round(float64(hits) / float64(atBats) * 100))
}

// MatchReport renders the plain-text export of s. Times are shown in loc;
// an unfinished match is reported as ending at now.
func MatchReport(s model.GameState, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	start := s.StartedAt().In(loc)
	end, ok := s.EndedAt()
	if !ok {
		end = now
	}
	end = end.In(loc)

	var b strings.Builder
	b.WriteString("=== BASEBALL 5 MATCH REPORT ===\n\n")
	fmt.Fprintf(&b, "Date: %s\n", start.Format(time.DateOnly))
	fmt.Fprintf(&b, "Time: %s - %s\n", start.Format(time.TimeOnly), end.Format(time.TimeOnly))
	fmt.Fprintf(&b, "Duration: %d minutes\n", minutesBetween(start, end))
	fmt.Fprintf(&b, "Innings played: %d\n", s.CurrentInning)
	fmt.Fprintf(&b, "Total actions: %d\n\n", len(s.Actions))

	b.WriteString("=== FINAL SCORES ===\n")
	for _, t := range s.Teams {
		fmt.Fprintf(&b, "%s: %d\n", t.Name, t.Score)
	}
	b.WriteString("\n")

	for _, t := range s.Teams {
		fmt.Fprintf(&b, "=== %s ===\n", strings.ToUpper(t.Name))
		for _, p := range t.Players {
			fmt.Fprintf(&b, "%s (Pos. %d): %d/%d (%d%%)\n",
				p.Name, p.Position, p.Stats.Hits, p.Stats.AtBats, battingPct(p.Stats.Hits, p.Stats.AtBats))
		}
		b.WriteString("\n")
	}

	b.WriteString("=== ACTION LOG ===\n")
	for i, a := range s.Actions {
		fmt.Fprintf(&b, "%d. Inning %d - %s: Zone %d → %s\n",
			i+1, a.Inning, a.BatterName, a.HitZone, strings.ToUpper(string(a.Result)))
	}
	return b.String()
}
