package aggregator

import "github.com/pable/go-b5-metrics/internal/model"

// ZoneCell is one cell of a hit-zone heat-map.
type ZoneCell struct {
	Zone       int     `json:"zone"`
	Hits       int     `json:"hits"`
	Attempts   int     `json:"attempts"`
	Percentage float64 `json:"percentage"`
	Intensity  float64 `json:"intensity"` // 0..1
}

// ZoneHeatmap returns nine cells in zone order 1..9.
func ZoneHeatmap(zones model.HitZoneStats) []ZoneCell {
	out := make([]ZoneCell, 0, model.ZoneCount)
	for i, z := range zones {
		raw := pct(z.Hits, z.Attempts)
		out = append(out, ZoneCell{
			Zone:       i + 1,
			Hits:       z.Hits,
			Attempts:   z.Attempts,
			Percentage: round2(raw),
			Intensity:  min(raw/100, 1),
		})
	}
	return out
}

// TeamHeatmap sums the zones of every player on the team.
func TeamHeatmap(team model.Team) []ZoneCell {
	var sum model.HitZoneStats
	for _, p := range team.Players {
		for i, z := range p.Stats.HitZones {
			sum[i].Hits += z.Hits
			sum[i].Attempts += z.Attempts
		}
	}
	return ZoneHeatmap(sum)
}

// HeatmapHighlights returns the first zone with the highest percentage, the
// first zone with the most attempts and the total hits. Both zones are 0 when
// no zone has been attempted.
func HeatmapHighlights(cells []ZoneCell) (favorite, busiest, hits int) {
	var bestPct float64
	var mostAttempts int
	for _, c := range cells {
		hits += c.Hits
		if c.Attempts == 0 {
			continue
		}
		if favorite == 0 || c.Percentage > bestPct {
			favorite, bestPct = c.Zone, c.Percentage
		}
		if c.Attempts > mostAttempts {
			busiest, mostAttempts = c.Zone, c.Attempts
		}
	}
	return favorite, busiest, hits
}
