package planning

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/domain/models"
)

const (
	// MinForecastHistory is the number of completed order lines below which no forecast is requested.
	MinForecastHistory = 5

	forecastWeekDays  = 7
	safetyHorizonDays = 30
	maxTaskReasons    = 2

	reasonSafetyStock  = "Safety Stock"
	reasonLowAfterSow  = "Stock will be low after sowing."
	reasonBelowReorder = "Stock is below reorder level."
)

// ForecastProvider predicts weekly demand from completed sales. A nil result means no demand.
type ForecastProvider interface {
	Forecast(ctx context.Context, history []models.HistoricalSale) (models.ForecastData, error)
}

// IntelligentPlanInput is the state slice read by the planner.
type IntelligentPlanInput struct {
	Orders        []models.Order
	Varieties     []models.MicrogreenVariety
	Log           models.HarvestLog
	SeedInventory models.SeedInventory
}

// Planner nets forecast, order and safety-stock demand against projected harvests and
// reports what should be sown today.
type Planner struct {
	forecaster ForecastProvider
	logger     *zap.Logger
	now        func() time.Time
}

// NewPlanner builds a planner. forecaster may be nil, in which case plans carry no forecast demand.
// Days are computed in loc.
func NewPlanner(forecaster ForecastProvider, loc *time.Location, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Planner{
		forecaster: forecaster,
		logger:     logger,
		now:        func() time.Time { return time.Now().In(loc) },
	}
}

// HistoricalSales flattens Completed orders into the lines sent to the forecast provider.
func HistoricalSales(orders []models.Order) []models.HistoricalSale {
	history := make([]models.HistoricalSale, 0)
	for _, order := range orders {
		if order.Status != models.OrderCompleted {
			continue
		}
		date := calendar.Format(order.CreatedAt)
		for _, item := range order.Items {
			history = append(history, models.HistoricalSale{Variety: item.Variety, Quantity: item.Quantity, Date: date})
		}
	}
	return history
}

// demandGrid holds a quantity and its reasons per (day, variety).
type demandGrid map[string]map[string]*demandCell

type demandCell struct {
	quantity float64
	reasons  []string
}

func (g demandGrid) cell(date, variety string) *demandCell {
	byVariety, ok := g[date]
	if !ok {
		byVariety = make(map[string]*demandCell)
		g[date] = byVariety
	}
	c, ok := byVariety[variety]
	if !ok {
		c = &demandCell{}
		byVariety[variety] = c
	}
	return c
}

func (g demandGrid) add(date, variety string, qty float64, reasons ...string) {
	c := g.cell(date, variety)
	c.quantity += qty
	for _, r := range reasons {
		c.addReason(r)
	}
}

func (c *demandCell) addReason(reason string) {
	for _, existing := range c.reasons {
		if existing == reason {
			return
		}
	}
	c.reasons = append(c.reasons, reason)
}

func (g demandGrid) dates() []string {
	out := make([]string, 0, len(g))
	for d := range g {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func (g demandGrid) varieties(date string) []string {
	out := make([]string, 0, len(g[date]))
	for v := range g[date] {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Generate computes today's sowing tasks and seed purchase list. A forecast failure is
// recorded on the plan and the remaining demand sources are still used.
func (p *Planner) Generate(ctx context.Context, in IntelligentPlanInput) models.IntelligentSowingPlan {
	now := p.now()
	loc := now.Location()
	today := calendar.StartOfDay(now)
	todayKey := calendar.Format(today)
	varieties := models.IndexVarieties(in.Varieties)
	yields := trailingYieldMap(in.Orders, in.Log, today)

	result := models.IntelligentSowingPlan{
		Plan:         []models.IntelligentSowingPlanItem{},
		PurchaseList: []models.SeedPurchaseItem{},
	}

	demand := make(demandGrid)

	forecast, err := p.forecast(ctx, in.Orders)
	if err != nil {
		result.ForecastError = err.Error()
		p.logger.Warn("forecast unavailable, planning without it", zap.Error(err))
	} else if forecast != nil {
		result.ForecastUsed = true
	}
	for w, week := range forecast {
		due := calendar.Format(calendar.AddDays(today, forecastWeekDays*w))
		reason := fmt.Sprintf("AI forecast for Week %d", w+1)
		for _, prediction := range week.Predictions {
			if prediction.Quantity <= 0 {
				continue
			}
			demand.add(due, prediction.Variety, float64(prediction.Quantity), reason)
		}
	}

	for _, order := range in.Orders {
		if order.Status != models.OrderPending || order.DeliveryDate == nil {
			continue
		}
		delivery := order.DeliveryDate.In(loc)
		if delivery.Before(today) {
			continue
		}
		due := calendar.Format(delivery)
		for _, item := range order.Items {
			demand.add(due, item.Variety, float64(item.Quantity), "Order "+order.ID)
		}
	}

	harvests := make(map[string]map[string]float64)
	for key, entry := range in.Log {
		sowDay, err := calendar.Parse(key, loc)
		if err != nil {
			p.logger.Debug("skip sowing log entry with invalid date", zap.String("date", key), zap.Error(err))
			continue
		}
		for name, trays := range entry.Trays {
			variety, ok := varieties[name]
			if !ok || trays <= 0 {
				continue
			}
			harvestDay := calendar.AddDays(sowDay, variety.GrowthCycleDays)
			if harvestDay.Before(today) {
				continue
			}
			harvestKey := calendar.Format(harvestDay)
			if harvests[harvestKey] == nil {
				harvests[harvestKey] = make(map[string]float64)
			}
			harvests[harvestKey][name] += float64(trays) * ratioFor(yields, name)
		}
	}

	net := make(demandGrid)
	for _, date := range demand.dates() {
		for _, name := range demand.varieties(date) {
			c := demand[date][name]
			needed := c.quantity - harvests[date][name]
			if needed > 0 {
				net.add(date, name, needed, c.reasons...)
			}
		}
	}

	applySafetyStock(net, harvests, in.Varieties, in.SeedInventory, today)

	type task struct {
		trays   int
		reasons []string
	}
	tasks := make(map[string]*task)
	for _, date := range net.dates() {
		dueDay, err := calendar.Parse(date, loc)
		if err != nil {
			continue
		}
		for _, name := range net.varieties(date) {
			variety, ok := varieties[name]
			if !ok {
				continue
			}
			if calendar.Format(calendar.AddDays(dueDay, -variety.GrowthCycleDays)) != todayKey {
				continue
			}
			c := net[date][name]
			t, ok := tasks[name]
			if !ok {
				t = &task{}
				tasks[name] = t
			}
			t.trays += int(math.Ceil(c.quantity / ratioFor(yields, name)))
			for _, r := range c.reasons {
				if !containsString(t.reasons, r) {
					t.reasons = append(t.reasons, r)
				}
			}
		}
	}

	listed := make(map[string]bool)
	taskNames := make([]string, 0, len(tasks))
	for name := range tasks {
		taskNames = append(taskNames, name)
	}
	sort.Strings(taskNames)

	for _, name := range taskNames {
		t := tasks[name]
		seed, ok := in.SeedInventory[name]
		if !ok || t.trays <= 0 {
			continue
		}
		grams := float64(t.trays) * seed.GramsPerTray
		reasons := t.reasons
		if len(reasons) > maxTaskReasons {
			reasons = reasons[:maxTaskReasons]
		}
		result.Plan = append(result.Plan, models.IntelligentSowingPlanItem{
			Variety:     name,
			TraysToSow:  t.trays,
			Reason:      strings.Join(reasons, "; "),
			SeedStatus:  classifySeed(seed, grams),
			GramsNeeded: grams,
		})

		if seed.StockOnHand-grams <= seed.ReorderLevel {
			buy := wholeGrams(math.Max(grams, seed.ReorderLevel)*1.2 - seed.StockOnHand)
			// A line that would buy nothing is left off the list.
			if buy > 0 {
				result.PurchaseList = append(result.PurchaseList, models.SeedPurchaseItem{
					Variety:    name,
					GramsToBuy: buy,
					Reason:     reasonLowAfterSow,
				})
				listed[name] = true
			}
		}
	}

	seedNames := make([]string, 0, len(in.SeedInventory))
	for name := range in.SeedInventory {
		seedNames = append(seedNames, name)
	}
	sort.Strings(seedNames)
	for _, name := range seedNames {
		seed := in.SeedInventory[name]
		if listed[name] || !seed.BelowReorder() {
			continue
		}
		buy := wholeGrams(seed.ReorderLevel*1.5 - seed.StockOnHand)
		if buy <= 0 {
			continue
		}
		result.PurchaseList = append(result.PurchaseList, models.SeedPurchaseItem{
			Variety:    name,
			GramsToBuy: buy,
			Reason:     reasonBelowReorder,
		})
		listed[name] = true
	}

	sort.SliceStable(result.PurchaseList, func(i, j int) bool {
		return result.PurchaseList[i].Variety < result.PurchaseList[j].Variety
	})

	p.logger.Info("intelligent sowing plan generated",
		zap.String("date", todayKey),
		zap.Int("tasks", len(result.Plan)),
		zap.Int("purchases", len(result.PurchaseList)),
		zap.Bool("forecast_used", result.ForecastUsed),
	)
	return result
}

func (p *Planner) forecast(ctx context.Context, orders []models.Order) (models.ForecastData, error) {
	if p.forecaster == nil {
		return nil, nil
	}
	history := HistoricalSales(orders)
	if len(history) < MinForecastHistory {
		p.logger.Debug("not enough history for a forecast", zap.Int("lines", len(history)))
		return nil, nil
	}
	forecast, err := p.forecaster.Forecast(ctx, history)
	if err != nil {
		return nil, fmt.Errorf("demand forecast: %w", err)
	}
	return forecast, nil
}

// applySafetyStock walks the next 30 days of finished-goods stock starting from zero and
// adds a "Safety Stock" demand on every day a variety sits below its target. The added
// deficit is not fed back into the running stock.
func applySafetyStock(net demandGrid, harvests map[string]map[string]float64, varieties []models.MicrogreenVariety, seeds models.SeedInventory, today time.Time) {
	stock := make(map[string]float64)
	for i := 0; i < safetyHorizonDays; i++ {
		date := calendar.Format(calendar.AddDays(today, i))
		for name, boxes := range harvests[date] {
			stock[name] += boxes
		}
		for name, c := range net[date] {
			stock[name] -= c.quantity
		}

		for _, v := range varieties {
			target := seeds[v.Name].SafetyStockBoxes
			if target <= 0 {
				continue
			}
			if current := stock[v.Name]; current < target {
				net.add(date, v.Name, target-current, reasonSafetyStock)
			}
		}
	}
}

func classifySeed(seed models.SeedInventoryItem, grams float64) models.SeedStatus {
	switch {
	case grams > seed.StockOnHand:
		return models.SeedInsufficient
	case seed.StockOnHand-grams <= seed.ReorderLevel:
		return models.SeedLowStock
	default:
		return models.SeedOK
	}
}

// wholeGrams rounds a purchase up to the next gram, ignoring float noise below a centigram.
func wholeGrams(g float64) float64 {
	return math.Ceil(math.Round(g*100) / 100)
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
