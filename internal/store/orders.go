package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/domain/models"
	"github.com/mamadbah2/microgreens/internal/service/harvest"
)

// OrderInput carries the client-editable fields of an order.
type OrderInput struct {
	ClientName   string             `json:"clientName"`
	Items        []models.OrderItem `json:"items"`
	DeliveryDate *time.Time         `json:"deliveryDate,omitempty"`
	Location     string             `json:"location,omitempty"`
}

// CompletionInput carries the delivery outcome.
type CompletionInput struct {
	CashReceived *float64 `json:"cashReceived,omitempty"`
	Remarks      string   `json:"remarks,omitempty"`
}

// Orders returns a copy of every order, newest first.
func (s *Store) Orders() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Order, len(s.state.Orders))
	for i, o := range s.state.Orders {
		out[i] = o.Clone()
	}
	return out
}

// Order returns one order by ID.
func (s *Store) Order(id string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := findOrder(s.state.Orders, id)
	if idx < 0 {
		return models.Order{}, notFoundf("order %s", id)
	}
	return s.state.Orders[idx].Clone(), nil
}

// AddOrder creates a Pending order.
func (s *Store) AddOrder(ctx context.Context, in OrderInput) (models.Order, error) {
	var created models.Order
	err := s.apply(ctx, "add order", func(state *models.AppData) error {
		if err := validateOrderInput(state, in); err != nil {
			return err
		}
		created = newOrder(s.newID("ORD"), in, s.now())
		state.Orders = append([]models.Order{created}, state.Orders...)
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	s.logger.Info("order created", zap.String("order_id", created.ID), zap.String("client", created.ClientName))
	return created.Clone(), nil
}

// UpdateOrder replaces the editable fields of an order. The order goes back to Pending and
// loses any recorded harvest. Completed orders cannot be edited.
func (s *Store) UpdateOrder(ctx context.Context, id string, in OrderInput) (models.Order, error) {
	var updated models.Order
	err := s.apply(ctx, "update order", func(state *models.AppData) error {
		idx := findOrder(state.Orders, id)
		if idx < 0 {
			return notFoundf("order %s", id)
		}
		order := &state.Orders[idx]
		if order.Status == models.OrderCompleted {
			return businessf("order %s is completed and cannot be edited", id)
		}
		if err := validateOrderInput(state, in); err != nil {
			return err
		}
		order.ClientName = strings.TrimSpace(in.ClientName)
		order.Items = append([]models.OrderItem{}, in.Items...)
		order.DeliveryDate = cloneTime(in.DeliveryDate)
		order.Location = strings.TrimSpace(in.Location)
		order.Status = models.OrderPending
		order.ActualHarvest = nil
		updated = order.Clone()
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return updated, nil
}

// DeleteOrder removes an order that is not Completed.
func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	return s.apply(ctx, "delete order", func(state *models.AppData) error {
		idx := findOrder(state.Orders, id)
		if idx < 0 {
			return notFoundf("order %s", id)
		}
		if state.Orders[idx].Status == models.OrderCompleted {
			return businessf("order %s is completed and cannot be deleted", id)
		}
		state.Orders = append(state.Orders[:idx], state.Orders[idx+1:]...)
		return nil
	})
}

// DeleteAllOrders clears the order history without touching other collections.
func (s *Store) DeleteAllOrders(ctx context.Context) error {
	return s.apply(ctx, "delete all orders", func(state *models.AppData) error {
		state.Orders = []models.Order{}
		return nil
	})
}

// Harvest allocates harvested boxes to the orders due today and returns the shortfalls.
func (s *Store) Harvest(ctx context.Context, harvested map[string]int) (models.ShortfallReport, error) {
	if err := harvest.Validate(harvested); err != nil {
		return nil, validationf("%v", err)
	}
	var report models.ShortfallReport
	err := s.apply(ctx, "harvest", func(state *models.AppData) error {
		known := models.IndexVarieties(state.MicrogreenVarieties)
		for variety := range harvested {
			if _, ok := known[variety]; !ok {
				return validationf("unknown variety %q", variety)
			}
		}
		state.Orders, report = harvest.Allocate(state.Orders, harvested, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("harvest allocated", zap.Int("shortfall_lines", len(report)))
	return report, nil
}

// Dispatch hands a harvested order to a registered delivery mode.
func (s *Store) Dispatch(ctx context.Context, id, mode string) (models.Order, error) {
	mode = strings.TrimSpace(mode)
	var dispatched models.Order
	err := s.apply(ctx, "dispatch", func(state *models.AppData) error {
		if !containsString(state.DeliveryModes, mode) {
			return validationf("unknown delivery mode %q", mode)
		}
		idx := findOrder(state.Orders, id)
		if idx < 0 {
			return notFoundf("order %s", id)
		}
		order := &state.Orders[idx]
		if !order.Status.IsDispatchable() {
			return businessf("order %s is %s and cannot be dispatched", id, order.Status)
		}
		order.Status = models.OrderDispatched
		order.DeliveryMode = mode
		dispatched = order.Clone()
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return dispatched, nil
}

// CompleteDelivery closes a dispatched order.
func (s *Store) CompleteDelivery(ctx context.Context, id string, in CompletionInput) (models.Order, error) {
	if in.CashReceived != nil && *in.CashReceived < 0 {
		return models.Order{}, validationf("cash received must not be negative")
	}
	var completed models.Order
	err := s.apply(ctx, "complete delivery", func(state *models.AppData) error {
		idx := findOrder(state.Orders, id)
		if idx < 0 {
			return notFoundf("order %s", id)
		}
		order := &state.Orders[idx]
		if order.Status != models.OrderDispatched {
			return businessf("order %s is %s and cannot be completed", id, order.Status)
		}
		order.Status = models.OrderCompleted
		if in.CashReceived != nil {
			cash := *in.CashReceived
			order.CashReceived = &cash
		}
		order.Remarks = strings.TrimSpace(in.Remarks)
		completed = order.Clone()
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return completed, nil
}

// ImportOrders adds every order or none of them.
func (s *Store) ImportOrders(ctx context.Context, inputs []OrderInput) ([]models.Order, error) {
	if len(inputs) == 0 {
		return nil, validationf("no orders to import")
	}
	var imported []models.Order
	err := s.apply(ctx, "import orders", func(state *models.AppData) error {
		for i, in := range inputs {
			if err := validateOrderInput(state, in); err != nil {
				return fmt.Errorf("order %d: %w", i+1, err)
			}
		}
		// IDs are only drawn once the whole file is known to be valid.
		now := s.now()
		created := make([]models.Order, 0, len(inputs))
		for _, in := range inputs {
			created = append(created, newOrder(s.newID("IMP"), in, now))
		}
		state.Orders = append(created, state.Orders...)
		imported = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("orders imported", zap.Int("count", len(imported)))
	out := make([]models.Order, len(imported))
	for i, o := range imported {
		out[i] = o.Clone()
	}
	return out, nil
}

func newOrder(id string, in OrderInput, now time.Time) models.Order {
	return models.Order{
		ID:           id,
		ClientName:   strings.TrimSpace(in.ClientName),
		Items:        append([]models.OrderItem{}, in.Items...),
		Status:       models.OrderPending,
		CreatedAt:    now,
		DeliveryDate: cloneTime(in.DeliveryDate),
		Location:     strings.TrimSpace(in.Location),
	}
}

func validateOrderInput(state *models.AppData, in OrderInput) error {
	if strings.TrimSpace(in.ClientName) == "" {
		return validationf("client name is required")
	}
	if len(in.Items) == 0 {
		return validationf("at least one item is required")
	}
	known := models.IndexVarieties(state.MicrogreenVarieties)
	for _, item := range in.Items {
		if _, ok := known[item.Variety]; !ok {
			return validationf("unknown variety %q", item.Variety)
		}
		if item.Quantity <= 0 {
			return validationf("quantity for %s must be positive", item.Variety)
		}
	}
	return nil
}

func findOrder(orders []models.Order, id string) int {
	for i, o := range orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
