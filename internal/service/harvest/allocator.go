// Package harvest allocates a day's harvested boxes to the orders that are due.
package harvest

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/domain/models"
)

// ErrNegativeQuantity is returned by Validate for harvested counts below zero.
var ErrNegativeQuantity = errors.New("harvested quantity must not be negative")

// Pool is the stock of boxes still available during one harvest run.
type Pool map[string]int

// NewPool copies harvested into a fresh pool. Missing varieties read as zero.
func NewPool(harvested map[string]int) Pool {
	pool := make(Pool, len(harvested))
	for variety, qty := range harvested {
		pool[variety] = qty
	}
	return pool
}

// Draw takes up to requested boxes of variety from the pool and returns how many were taken.
func (p Pool) Draw(variety string, requested int) int {
	allocated := requested
	if available := p[variety]; available < allocated {
		allocated = available
	}
	if allocated < 0 {
		allocated = 0
	}
	p[variety] -= allocated
	return allocated
}

// Validate rejects harvest inputs with negative counts.
func Validate(harvested map[string]int) error {
	for variety, qty := range harvested {
		if qty < 0 {
			return fmt.Errorf("%s: %w", variety, ErrNegativeQuantity)
		}
	}
	return nil
}

// IsDue reports whether order takes part in a harvest run on now: it is Pending and has no
// delivery date or one no later than the end of today.
func IsDue(order models.Order, now time.Time) bool {
	if order.Status != models.OrderPending {
		return false
	}
	if order.DeliveryDate == nil {
		return true
	}
	return !order.DeliveryDate.After(calendar.EndOfDay(now))
}

// Allocate distributes harvested boxes to due orders, oldest CreatedAt first, drawing every
// order line from one shared pool in line order. It returns a copy of orders with the due ones
// marked Harvested or Shortfall, and every line that could not be filled in full.
func Allocate(orders []models.Order, harvested map[string]int, now time.Time) ([]models.Order, models.ShortfallReport) {
	out := make([]models.Order, len(orders))
	due := make([]int, 0, len(orders))
	for i, order := range orders {
		out[i] = order.Clone()
		if IsDue(order, now) {
			due = append(due, i)
		}
	}
	sort.SliceStable(due, func(a, b int) bool {
		return out[due[a]].CreatedAt.Before(out[due[b]].CreatedAt)
	})

	pool := NewPool(harvested)
	report := models.ShortfallReport{}

	for _, idx := range due {
		order := &out[idx]
		order.ActualHarvest = make([]models.OrderItem, 0, len(order.Items))
		short := false

		for _, item := range order.Items {
			allocated := pool.Draw(item.Variety, item.Quantity)
			order.ActualHarvest = append(order.ActualHarvest, models.OrderItem{Variety: item.Variety, Quantity: allocated})
			if allocated < item.Quantity {
				short = true
				report = append(report, models.ShortfallItem{
					OrderID:    order.ID,
					ClientName: order.ClientName,
					Variety:    item.Variety,
					Requested:  item.Quantity,
					Allocated:  allocated,
					Shortfall:  item.Quantity - allocated,
				})
			}
		}

		if short {
			order.Status = models.OrderShortfall
		} else {
			order.Status = models.OrderHarvested
		}
	}

	return out, report
}

// PickList totals the boxes requested by due orders per known variety. Every variety in the
// registry is present, with zero when nothing is due.
func PickList(orders []models.Order, varieties []models.MicrogreenVariety, now time.Time) map[string]int {
	list := make(map[string]int, len(varieties))
	for _, v := range varieties {
		list[v.Name] = 0
	}
	for _, order := range orders {
		if !IsDue(order, now) {
			continue
		}
		for _, item := range order.Items {
			if _, ok := list[item.Variety]; ok {
				list[item.Variety] += item.Quantity
			}
		}
	}
	return list
}
