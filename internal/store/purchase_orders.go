package store

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

// PurchaseOrderInput carries the editable fields of a seed purchase order.
type PurchaseOrderInput struct {
	SupplierName string                     `json:"supplierName"`
	Items        []models.PurchaseOrderItem `json:"items"`
	TotalCost    *float64                   `json:"totalCost,omitempty"`
	Notes        string                     `json:"notes,omitempty"`
}

// PurchaseOrders returns every purchase order, newest first.
func (s *Store) PurchaseOrders() []models.PurchaseOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PurchaseOrder, len(s.state.PurchaseOrders))
	for i, po := range s.state.PurchaseOrders {
		out[i] = po.Clone()
	}
	return out
}

// AddPurchaseOrder creates a Draft purchase order.
func (s *Store) AddPurchaseOrder(ctx context.Context, in PurchaseOrderInput) (models.PurchaseOrder, error) {
	if err := validatePurchaseInput(in); err != nil {
		return models.PurchaseOrder{}, err
	}
	var created models.PurchaseOrder
	err := s.apply(ctx, "add purchase order", func(state *models.AppData) error {
		created = models.PurchaseOrder{
			ID:           s.newID("PO"),
			SupplierName: strings.TrimSpace(in.SupplierName),
			Items:        append([]models.PurchaseOrderItem{}, in.Items...),
			Status:       models.PurchaseDraft,
			CreatedAt:    s.now(),
			TotalCost:    cloneFloat(in.TotalCost),
			Notes:        strings.TrimSpace(in.Notes),
		}
		state.PurchaseOrders = append([]models.PurchaseOrder{created}, state.PurchaseOrders...)
		return nil
	})
	if err != nil {
		return models.PurchaseOrder{}, err
	}
	s.logger.Info("purchase order created", zap.String("po_id", created.ID), zap.String("supplier", created.SupplierName))
	return created.Clone(), nil
}

// UpdatePurchaseOrder edits a purchase order that has not been received or cancelled.
func (s *Store) UpdatePurchaseOrder(ctx context.Context, id string, in PurchaseOrderInput) (models.PurchaseOrder, error) {
	if err := validatePurchaseInput(in); err != nil {
		return models.PurchaseOrder{}, err
	}
	var updated models.PurchaseOrder
	err := s.apply(ctx, "update purchase order", func(state *models.AppData) error {
		po, err := findPurchaseOrder(state, id)
		if err != nil {
			return err
		}
		if po.Status == models.PurchaseReceived || po.Status == models.PurchaseCancelled {
			return businessf("purchase order %s is %s and cannot be edited", id, po.Status)
		}
		po.SupplierName = strings.TrimSpace(in.SupplierName)
		po.Items = append([]models.PurchaseOrderItem{}, in.Items...)
		po.TotalCost = cloneFloat(in.TotalCost)
		po.Notes = strings.TrimSpace(in.Notes)
		updated = po.Clone()
		return nil
	})
	if err != nil {
		return models.PurchaseOrder{}, err
	}
	return updated, nil
}

// DeletePurchaseOrder removes a purchase order.
func (s *Store) DeletePurchaseOrder(ctx context.Context, id string) error {
	return s.apply(ctx, "delete purchase order", func(state *models.AppData) error {
		for i, po := range state.PurchaseOrders {
			if po.ID == id {
				state.PurchaseOrders = append(state.PurchaseOrders[:i], state.PurchaseOrders[i+1:]...)
				return nil
			}
		}
		return notFoundf("purchase order %s", id)
	})
}

// MarkPurchaseOrdered moves a Draft purchase order to Ordered.
func (s *Store) MarkPurchaseOrdered(ctx context.Context, id string) (models.PurchaseOrder, error) {
	return s.transitionPurchase(ctx, id, models.PurchaseOrdered, nil)
}

// ReceivePurchaseOrder moves an Ordered purchase order to Received and adds its grams to seed
// stock, opening a seed record for varieties that have none.
func (s *Store) ReceivePurchaseOrder(ctx context.Context, id string) (models.PurchaseOrder, error) {
	return s.transitionPurchase(ctx, id, models.PurchaseReceived, func(state *models.AppData, po *models.PurchaseOrder) {
		for _, item := range po.Items {
			seed := state.SeedInventory[item.Variety]
			seed.StockOnHand += item.Quantity
			state.SeedInventory[item.Variety] = seed
		}
	})
}

// CancelPurchaseOrder cancels a Draft or Ordered purchase order.
func (s *Store) CancelPurchaseOrder(ctx context.Context, id string) (models.PurchaseOrder, error) {
	return s.transitionPurchase(ctx, id, models.PurchaseCancelled, nil)
}

func (s *Store) transitionPurchase(ctx context.Context, id string, target models.PurchaseOrderStatus, effect func(*models.AppData, *models.PurchaseOrder)) (models.PurchaseOrder, error) {
	var out models.PurchaseOrder
	err := s.apply(ctx, "purchase order "+strings.ToLower(string(target)), func(state *models.AppData) error {
		po, err := findPurchaseOrder(state, id)
		if err != nil {
			return err
		}
		if !po.Status.CanTransitionTo(target) {
			return businessf("purchase order %s cannot move from %s to %s", id, po.Status, target)
		}
		now := s.now()
		po.Status = target
		switch target {
		case models.PurchaseOrdered:
			po.OrderedAt = &now
		case models.PurchaseReceived:
			po.ReceivedAt = &now
		case models.PurchaseCancelled:
			po.CancelledAt = &now
		}
		if effect != nil {
			effect(state, po)
		}
		out = po.Clone()
		return nil
	})
	if err != nil {
		return models.PurchaseOrder{}, err
	}
	s.logger.Info("purchase order status changed", zap.String("po_id", id), zap.String("status", string(target)))
	return out, nil
}

func findPurchaseOrder(state *models.AppData, id string) (*models.PurchaseOrder, error) {
	for i := range state.PurchaseOrders {
		if state.PurchaseOrders[i].ID == id {
			return &state.PurchaseOrders[i], nil
		}
	}
	return nil, notFoundf("purchase order %s", id)
}

func validatePurchaseInput(in PurchaseOrderInput) error {
	if strings.TrimSpace(in.SupplierName) == "" {
		return validationf("supplier name is required")
	}
	if len(in.Items) == 0 {
		return validationf("at least one item is required")
	}
	for _, item := range in.Items {
		if strings.TrimSpace(item.Variety) == "" {
			return validationf("item variety is required")
		}
		if item.Quantity <= 0 {
			return validationf("quantity for %s must be positive", item.Variety)
		}
		if item.PricePerGram != nil && *item.PricePerGram < 0 {
			return validationf("price per gram for %s must not be negative", item.Variety)
		}
	}
	if in.TotalCost != nil && *in.TotalCost < 0 {
		return validationf("total cost must not be negative")
	}
	return nil
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
