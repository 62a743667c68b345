// Package planning turns orders, the sowing log and seed stock into sowing work.
package planning

import (
	"sort"
	"time"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/domain/models"
)

const (
	// DefaultYieldRatio is the boxes-per-tray figure used when a variety has no usable history.
	DefaultYieldRatio = 5.0

	yieldLookbackDays = 90
)

// harvestedStatuses are the order states whose ActualHarvest counts towards yield.
var harvestedStatuses = map[models.OrderStatus]bool{
	models.OrderHarvested:  true,
	models.OrderDispatched: true,
	models.OrderCompleted:  true,
	models.OrderShortfall:  true,
}

// CalculateYieldRatios reports trays sown, boxes harvested and their ratio per variety for
// the window [start, end of day(end)]. Log keys are read as days in start's location.
func CalculateYieldRatios(orders []models.Order, log models.HarvestLog, start, end time.Time) []models.YieldRatioData {
	trays := make(map[string]int)
	boxes := make(map[string]int)
	seen := make(map[string]struct{})

	for key, entry := range log {
		day, err := calendar.Parse(key, start.Location())
		if err != nil || !calendar.InRange(day, start, end) {
			continue
		}
		for variety, count := range entry.Trays {
			trays[variety] += count
			seen[variety] = struct{}{}
		}
	}

	for _, order := range orders {
		if !harvestedStatuses[order.Status] || order.ActualHarvest == nil {
			continue
		}
		if !calendar.InRange(order.CreatedAt, start, end) {
			continue
		}
		for _, item := range order.ActualHarvest {
			boxes[item.Variety] += item.Quantity
			seen[item.Variety] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]models.YieldRatioData, 0, len(names))
	for _, name := range names {
		row := models.YieldRatioData{
			Variety:        name,
			TraysSown:      trays[name],
			BoxesHarvested: boxes[name],
		}
		if row.TraysSown > 0 {
			ratio := float64(row.BoxesHarvested) / float64(row.TraysSown)
			row.YieldRatio = &ratio
		}
		out = append(out, row)
	}
	return out
}

// YieldMap keeps only the positive ratios of CalculateYieldRatios, keyed by variety.
func YieldMap(orders []models.Order, log models.HarvestLog, start, end time.Time) map[string]float64 {
	ratios := make(map[string]float64)
	for _, row := range CalculateYieldRatios(orders, log, start, end) {
		if row.YieldRatio != nil && *row.YieldRatio > 0 {
			ratios[row.Variety] = *row.YieldRatio
		}
	}
	return ratios
}

// trailingYieldMap is the 90-day yield map ending on day.
func trailingYieldMap(orders []models.Order, log models.HarvestLog, day time.Time) map[string]float64 {
	start := calendar.AddDays(calendar.StartOfDay(day), -yieldLookbackDays)
	return YieldMap(orders, log, start, day)
}

func ratioFor(yields map[string]float64, variety string) float64 {
	if ratio, ok := yields[variety]; ok && ratio > 0 {
		return ratio
	}
	return DefaultYieldRatio
}
