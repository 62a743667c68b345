package reporting

import (
	"strconv"
	"strings"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/domain/models"
	"github.com/mamadbah2/microgreens/internal/service/dataio"
)

func fixed(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// YieldTable flattens yield ratios; a missing ratio is left blank.
func YieldTable(rows []models.YieldRatioData) dataio.Table {
	t := dataio.Table{Header: []string{"variety", "trays_sown", "boxes_harvested", "yield_ratio"}}
	for _, r := range rows {
		ratio := ""
		if r.YieldRatio != nil {
			ratio = fixed(*r.YieldRatio)
		}
		t.Rows = append(t.Rows, []string{r.Variety, strconv.Itoa(r.TraysSown), strconv.Itoa(r.BoxesHarvested), ratio})
	}
	return t
}

// FunnelTable flattens the seed-to-sale funnel.
func FunnelTable(rows []models.FunnelRow) dataio.Table {
	t := dataio.Table{Header: []string{"variety", "seed_purchased_g", "potential_trays", "potential_boxes", "boxes_sold", "conversion_rate_percent"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Variety,
			fixed(r.SeedPurchased),
			fixed(r.PotentialTrays),
			fixed(r.PotentialBoxes),
			strconv.Itoa(r.BoxesSold),
			fixed(r.ConversionRate),
		})
	}
	return t
}

// LocationTable flattens location sales; top varieties become "Name (n)" joined by "; ".
func LocationTable(rows []LocationSales) dataio.Table {
	t := dataio.Table{Header: []string{"location", "total_orders", "total_boxes", "total_cash", "top_varieties"}}
	for _, r := range rows {
		top := make([]string, 0, len(r.TopVarieties))
		for _, v := range r.TopVarieties {
			top = append(top, v.Variety+" ("+strconv.Itoa(v.Boxes)+")")
		}
		t.Rows = append(t.Rows, []string{r.Location, strconv.Itoa(r.TotalOrders), strconv.Itoa(r.TotalBoxes), fixed(r.TotalCash), strings.Join(top, "; ")})
	}
	return t
}

// EngagementTable lists lapsed clients before reduced ones.
func EngagementTable(report EngagementReport) dataio.Table {
	t := dataio.Table{Header: []string{"client_name", "status", "last_month_boxes", "this_month_boxes", "change"}}
	for _, r := range report.NoOrdersThisMonth {
		t.Rows = append(t.Rows, []string{r.ClientName, "High Priority (No Orders)", strconv.Itoa(r.LastMonthBoxes), strconv.Itoa(r.ThisMonthBoxes), "-100%"})
	}
	for _, r := range report.ReducedOrders {
		t.Rows = append(t.Rows, []string{r.ClientName, "Medium Priority (Reduced Orders)", strconv.Itoa(r.LastMonthBoxes), strconv.Itoa(r.ThisMonthBoxes), strconv.FormatFloat(r.PercentChange*100, 'f', 0, 64) + "%"})
	}
	return t
}

// UpcomingTable lists one row per batch, skipping empty days.
func UpcomingTable(days []HarvestDay) dataio.Table {
	t := dataio.Table{Header: []string{"harvest_date", "variety", "trays"}}
	for _, day := range days {
		for _, line := range day.Harvests {
			t.Rows = append(t.Rows, []string{day.Date, line.Variety, strconv.Itoa(line.Trays)})
		}
	}
	return t
}

// OrdersTable flattens orders with items rendered as "Variety:qty" joined by "; ".
func OrdersTable(orders []models.Order) dataio.Table {
	t := dataio.Table{Header: []string{"id", "clientName", "status", "createdAt", "deliveryDate", "deliveryMode", "location", "items", "actualHarvest", "cashReceived", "remarks"}}
	for _, o := range orders {
		delivery := ""
		if o.DeliveryDate != nil {
			delivery = calendar.Format(*o.DeliveryDate)
		}
		cash := ""
		if o.CashReceived != nil {
			cash = fixed(*o.CashReceived)
		}
		harvest := ""
		if o.ActualHarvest != nil {
			harvest = joinItems(o.ActualHarvest)
		}
		t.Rows = append(t.Rows, []string{
			o.ID, o.ClientName, string(o.Status), o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			delivery, o.DeliveryMode, o.Location, joinItems(o.Items), harvest, cash, o.Remarks,
		})
	}
	return t
}

func joinItems(items []models.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.Variety+":"+strconv.Itoa(item.Quantity))
	}
	return strings.Join(parts, "; ")
}
