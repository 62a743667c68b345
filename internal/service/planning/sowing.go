package planning

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/domain/models"
)

// SowingPlanInput is the state slice read by GenerateSowingPlan.
type SowingPlanInput struct {
	Orders     []models.Order
	Varieties  []models.MicrogreenVariety
	Log        models.HarvestLog
	TargetDate time.Time
}

// demandKey identifies a bucket of boxes due for one variety on one day.
type demandKey struct {
	date    string
	variety string
}

// GenerateSowingPlan lists the trays to sow on TargetDate so that Pending orders with a
// delivery date are ready in time. Demand whose sow day is not exactly TargetDate is ignored,
// including sow days already in the past.
func GenerateSowingPlan(in SowingPlanInput) []models.SowingPlanItem {
	loc := in.TargetDate.Location()
	target := calendar.StartOfDay(in.TargetDate)
	targetKey := calendar.Format(target)
	varieties := models.IndexVarieties(in.Varieties)
	yields := trailingYieldMap(in.Orders, in.Log, target)

	demand := make(map[demandKey]int)
	for _, order := range in.Orders {
		if order.Status != models.OrderPending || order.DeliveryDate == nil {
			continue
		}
		due := calendar.Format(order.DeliveryDate.In(loc))
		for _, item := range order.Items {
			demand[demandKey{date: due, variety: item.Variety}] += item.Quantity
		}
	}

	keys := make([]demandKey, 0, len(demand))
	for key := range demand {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].variety < keys[j].variety
	})

	trays := make(map[string]int)
	reasons := make(map[string][]string)
	for _, key := range keys {
		variety, ok := varieties[key.variety]
		if !ok {
			continue
		}
		dueDay, err := calendar.Parse(key.date, loc)
		if err != nil {
			continue
		}
		if calendar.Format(calendar.AddDays(dueDay, -variety.GrowthCycleDays)) != targetKey {
			continue
		}
		qty := demand[key]
		trays[key.variety] += int(math.Ceil(float64(qty) / ratioFor(yields, key.variety)))
		reasons[key.variety] = append(reasons[key.variety], fmt.Sprintf("For %d boxes due %s", qty, key.date))
	}

	plan := make([]models.SowingPlanItem, 0, len(trays))
	for name, count := range trays {
		plan = append(plan, models.SowingPlanItem{
			Variety: name,
			Trays:   count,
			Reason:  strings.Join(reasons[name], "; "),
		})
	}
	sort.Slice(plan, func(i, j int) bool { return plan[i].Variety < plan[j].Variety })
	return plan
}
