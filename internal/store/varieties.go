package store

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

// Varieties returns the registry in its stored order.
func (s *Store) Varieties() []models.MicrogreenVariety {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.MicrogreenVariety{}, s.state.MicrogreenVarieties...)
}

// DeliveryModes returns the registered delivery modes.
func (s *Store) DeliveryModes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.state.DeliveryModes...)
}

// AddVariety registers a variety and opens an empty seed record for it.
func (s *Store) AddVariety(ctx context.Context, name string, growthCycleDays int) (models.MicrogreenVariety, error) {
	variety := models.MicrogreenVariety{Name: strings.TrimSpace(name), GrowthCycleDays: growthCycleDays}
	err := s.apply(ctx, "add variety", func(state *models.AppData) error {
		if err := validateVariety(variety); err != nil {
			return err
		}
		if hasVariety(state.MicrogreenVarieties, variety.Name) {
			return validationf("variety %q already exists", variety.Name)
		}
		state.MicrogreenVarieties = append(state.MicrogreenVarieties, variety)
		if _, ok := state.SeedInventory[variety.Name]; !ok {
			state.SeedInventory[variety.Name] = models.SeedInventoryItem{}
		}
		return nil
	})
	if err != nil {
		return models.MicrogreenVariety{}, err
	}
	s.logger.Info("variety added", zap.String("variety", variety.Name), zap.Int("growth_cycle_days", variety.GrowthCycleDays))
	return variety, nil
}

// DeleteVariety removes a variety that no order references, together with its seed record.
func (s *Store) DeleteVariety(ctx context.Context, name string) error {
	return s.apply(ctx, "delete variety", func(state *models.AppData) error {
		idx := -1
		for i, v := range state.MicrogreenVarieties {
			if v.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return notFoundf("variety %q", name)
		}
		for _, order := range state.Orders {
			if order.ReferencesVariety(name) {
				return businessf("variety %q is used by order %s", name, order.ID)
			}
		}
		state.MicrogreenVarieties = append(state.MicrogreenVarieties[:idx], state.MicrogreenVarieties[idx+1:]...)
		delete(state.SeedInventory, name)
		return nil
	})
}

// ImportVarieties adds every variety or none of them. A name already registered or repeated
// in the batch, compared case-insensitively, rejects the whole batch. The registry ends up
// sorted by name.
func (s *Store) ImportVarieties(ctx context.Context, varieties []models.MicrogreenVariety) (int, error) {
	if len(varieties) == 0 {
		return 0, validationf("no varieties to import")
	}
	err := s.apply(ctx, "import varieties", func(state *models.AppData) error {
		seen := make(map[string]bool, len(state.MicrogreenVarieties)+len(varieties))
		for _, v := range state.MicrogreenVarieties {
			seen[strings.ToLower(v.Name)] = true
		}
		for _, v := range varieties {
			v.Name = strings.TrimSpace(v.Name)
			if err := validateVariety(v); err != nil {
				return err
			}
			key := strings.ToLower(v.Name)
			if seen[key] {
				return validationf("duplicate variety %q", v.Name)
			}
			seen[key] = true
			state.MicrogreenVarieties = append(state.MicrogreenVarieties, v)
			if _, ok := state.SeedInventory[v.Name]; !ok {
				state.SeedInventory[v.Name] = models.SeedInventoryItem{}
			}
		}
		sort.SliceStable(state.MicrogreenVarieties, func(i, j int) bool {
			return state.MicrogreenVarieties[i].Name < state.MicrogreenVarieties[j].Name
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("varieties imported", zap.Int("count", len(varieties)))
	return len(varieties), nil
}

// AddDeliveryMode registers a delivery mode. Adding an existing mode is a no-op.
func (s *Store) AddDeliveryMode(ctx context.Context, mode string) ([]string, error) {
	mode = strings.TrimSpace(mode)
	if mode == "" {
		return nil, validationf("delivery mode is required")
	}
	var modes []string
	err := s.apply(ctx, "add delivery mode", func(state *models.AppData) error {
		if !containsString(state.DeliveryModes, mode) {
			state.DeliveryModes = append(state.DeliveryModes, mode)
		}
		modes = append([]string{}, state.DeliveryModes...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return modes, nil
}

func validateVariety(v models.MicrogreenVariety) error {
	if v.Name == "" {
		return validationf("variety name is required")
	}
	if v.GrowthCycleDays <= 0 {
		return validationf("growth cycle for %q must be a positive number of days", v.Name)
	}
	return nil
}

func hasVariety(varieties []models.MicrogreenVariety, name string) bool {
	for _, v := range varieties {
		if v.Name == name {
			return true
		}
	}
	return false
}
