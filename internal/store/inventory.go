package store

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/domain/models"
)

// SowingLog returns a copy of the sowing log keyed by sow date.
func (s *Store) SowingLog() models.HarvestLog {
	return s.Snapshot().HarvestingLog
}

// SeedInventory returns a copy of the seed stock records.
func (s *Store) SeedInventory() models.SeedInventory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(models.SeedInventory, len(s.state.SeedInventory))
	for k, v := range s.state.SeedInventory {
		out[k] = v
	}
	return out
}

// SaveSowingLog records trays sown on date. Counts replace what was logged for the same day
// and variety, and seed stock moves by the difference times grams per tray. Stock is allowed
// to go negative.
func (s *Store) SaveSowingLog(ctx context.Context, date time.Time, trays map[string]int) (models.HarvestLogEntry, error) {
	if len(trays) == 0 {
		return models.HarvestLogEntry{}, validationf("at least one variety is required")
	}
	key := calendar.Format(date.In(s.loc))
	var saved models.HarvestLogEntry
	err := s.apply(ctx, "save sowing log", func(state *models.AppData) error {
		known := models.IndexVarieties(state.MicrogreenVarieties)
		for variety, count := range trays {
			if _, ok := known[variety]; !ok {
				return validationf("unknown variety %q", variety)
			}
			if count < 0 {
				return validationf("tray count for %s must not be negative", variety)
			}
		}

		entry, ok := state.HarvestingLog[key]
		if !ok {
			entry = models.HarvestLogEntry{Date: key}
		}
		if entry.Trays == nil {
			entry.Trays = map[string]int{}
		}
		for variety, count := range trays {
			delta := count - entry.Trays[variety]
			entry.Trays[variety] = count
			if seed, ok := state.SeedInventory[variety]; ok && delta != 0 {
				seed.StockOnHand -= float64(delta) * seed.GramsPerTray
				state.SeedInventory[variety] = seed
			}
		}
		state.HarvestingLog[key] = entry

		saved = models.HarvestLogEntry{Date: key, Trays: make(map[string]int, len(entry.Trays))}
		for v, n := range entry.Trays {
			saved.Trays[v] = n
		}
		return nil
	})
	if err != nil {
		return models.HarvestLogEntry{}, err
	}
	s.logger.Info("sowing log saved", zap.String("date", key), zap.Any("trays", trays))
	return saved, nil
}

// UpdateSeedInventory applies a manual edit to one variety's seed record.
func (s *Store) UpdateSeedInventory(ctx context.Context, variety string, patch models.SeedInventoryPatch) (models.SeedInventoryItem, error) {
	for field, v := range map[string]*float64{
		"reorderLevel":     patch.ReorderLevel,
		"gramsPerTray":     patch.GramsPerTray,
		"safetyStockBoxes": patch.SafetyStockBoxes,
	} {
		if v != nil && *v < 0 {
			return models.SeedInventoryItem{}, validationf("%s must not be negative", field)
		}
	}
	var updated models.SeedInventoryItem
	err := s.apply(ctx, "update seed inventory", func(state *models.AppData) error {
		item, ok := state.SeedInventory[variety]
		if !ok && !hasVariety(state.MicrogreenVarieties, variety) {
			return notFoundf("variety %q", variety)
		}
		updated = patch.Apply(item)
		state.SeedInventory[variety] = updated
		return nil
	})
	if err != nil {
		return models.SeedInventoryItem{}, err
	}
	return updated, nil
}

// WasteLog returns the waste entries, newest first.
func (s *Store) WasteLog() []models.WasteLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.WasteLogEntry{}, s.state.WasteLog...)
}

// AddWaste records discarded trays.
func (s *Store) AddWaste(ctx context.Context, entry models.WasteLogEntry) (models.WasteLogEntry, error) {
	entry.Reason = strings.TrimSpace(entry.Reason)
	if entry.TraysWasted <= 0 {
		return models.WasteLogEntry{}, validationf("trays wasted must be positive")
	}
	if entry.Date.IsZero() {
		entry.Date = s.now()
	}
	err := s.apply(ctx, "add waste", func(state *models.AppData) error {
		if !hasVariety(state.MicrogreenVarieties, entry.Variety) {
			return validationf("unknown variety %q", entry.Variety)
		}
		entry.ID = s.newID("WST")
		state.WasteLog = append([]models.WasteLogEntry{entry}, state.WasteLog...)
		return nil
	})
	if err != nil {
		return models.WasteLogEntry{}, err
	}
	return entry, nil
}

// DeleteWaste removes a waste entry.
func (s *Store) DeleteWaste(ctx context.Context, id string) error {
	return s.apply(ctx, "delete waste", func(state *models.AppData) error {
		for i, e := range state.WasteLog {
			if e.ID == id {
				state.WasteLog = append(state.WasteLog[:i], state.WasteLog[i+1:]...)
				return nil
			}
		}
		return notFoundf("waste entry %s", id)
	})
}

// DeliveryExpenses returns the expense entries, newest first.
func (s *Store) DeliveryExpenses() []models.DeliveryExpense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.DeliveryExpense{}, s.state.DeliveryExpenses...)
}

// AddExpense records a payment to a delivery person.
func (s *Store) AddExpense(ctx context.Context, expense models.DeliveryExpense) (models.DeliveryExpense, error) {
	expense.DeliveryPerson = strings.TrimSpace(expense.DeliveryPerson)
	expense.Remarks = strings.TrimSpace(expense.Remarks)
	if expense.DeliveryPerson == "" {
		return models.DeliveryExpense{}, validationf("delivery person is required")
	}
	if expense.Amount <= 0 {
		return models.DeliveryExpense{}, validationf("amount must be positive")
	}
	if expense.Date.IsZero() {
		expense.Date = s.now()
	}
	err := s.apply(ctx, "add expense", func(state *models.AppData) error {
		expense.ID = s.newID("EXP")
		state.DeliveryExpenses = append([]models.DeliveryExpense{expense}, state.DeliveryExpenses...)
		return nil
	})
	if err != nil {
		return models.DeliveryExpense{}, err
	}
	return expense, nil
}

// DeleteExpense removes an expense entry.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	return s.apply(ctx, "delete expense", func(state *models.AppData) error {
		for i, e := range state.DeliveryExpenses {
			if e.ID == id {
				state.DeliveryExpenses = append(state.DeliveryExpenses[:i], state.DeliveryExpenses[i+1:]...)
				return nil
			}
		}
		return notFoundf("delivery expense %s", id)
	})
}
