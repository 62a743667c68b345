package reporting

import (
	"sort"
	"time"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/domain/models"
)

// UpcomingWindowDays is how far ahead the harvest calendar looks, today included.
const UpcomingWindowDays = 14

// HarvestLine is a batch of trays expected to be ready.
type HarvestLine struct {
	Variety string `json:"variety"`
	Trays   int    `json:"trays"`
}

// HarvestDay lists the batches ready on one date.
type HarvestDay struct {
	Date     string        `json:"date"`
	Harvests []HarvestLine `json:"harvests"`
}

// UpcomingHarvests projects every sowing-log entry to its harvest date and returns one entry
// per day of the window, empty days included. Varieties missing from the registry are skipped.
func UpcomingHarvests(log models.HarvestLog, varieties []models.MicrogreenVariety, now time.Time, days int) []HarvestDay {
	if days <= 0 {
		days = UpcomingWindowDays
	}
	index := models.IndexVarieties(varieties)
	today := calendar.StartOfDay(now)

	byDate := make(map[string][]HarvestLine)
	for key, entry := range log {
		sowDay, err := calendar.Parse(key, now.Location())
		if err != nil {
			continue
		}
		for variety, trays := range entry.Trays {
			v, ok := index[variety]
			if !ok || trays <= 0 {
				continue
			}
			harvestDay := calendar.AddDays(sowDay, v.GrowthCycleDays)
			if harvestDay.Before(today) {
				continue
			}
			date := calendar.Format(harvestDay)
			byDate[date] = append(byDate[date], HarvestLine{Variety: variety, Trays: trays})
		}
	}

	out := make([]HarvestDay, 0, days)
	for i := 0; i < days; i++ {
		date := calendar.Format(calendar.AddDays(today, i))
		lines := byDate[date]
		if lines == nil {
			lines = []HarvestLine{}
		}
		sort.Slice(lines, func(a, b int) bool { return lines[a].Variety < lines[b].Variety })
		out = append(out, HarvestDay{Date: date, Harvests: lines})
	}
	return out
}
