package dataio

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/domain/models"
	"github.com/mamadbah2/microgreens/internal/store"
)

var (
	orderHeaders = []string{"clientName", "deliveryDate", "variety", "quantity"}
	dayPattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ParseOrdersCSV reads clientName, deliveryDate, variety, quantity and optional location
// columns. Rows sharing a client and delivery date become one order, in first-seen order.
// The first invalid row aborts the whole file with a *RowError.
func ParseOrdersCSV(r io.Reader, varieties []models.MicrogreenVariety, loc *time.Location) ([]store.OrderInput, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	header := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		header[strings.TrimSpace(h)] = i
	}
	for _, required := range orderHeaders {
		if _, ok := header[required]; !ok {
			return nil, invalidFilef("missing required header column %q", required)
		}
	}
	locationCol, hasLocation := header["location"]
	known := models.IndexVarieties(varieties)

	field := func(record []string, col int) string {
		if col < len(record) {
			return strings.TrimSpace(record[col])
		}
		return ""
	}

	type groupKey struct{ client, date string }
	groups := make(map[groupKey]int)
	var orders []store.OrderInput

	for i, record := range records[1:] {
		client := field(record, header["clientName"])
		date := field(record, header["deliveryDate"])
		variety := field(record, header["variety"])
		quantityRaw := field(record, header["quantity"])

		if client == "" {
			return nil, rowErrorf(i, "clientName is missing.")
		}
		if !dayPattern.MatchString(date) {
			return nil, rowErrorf(i, "deliveryDate is missing or not in YYYY-MM-DD format.")
		}
		delivery, err := calendar.Parse(date, loc)
		if err != nil {
			return nil, rowErrorf(i, "deliveryDate %q is not a valid date.", date)
		}
		if variety == "" {
			return nil, rowErrorf(i, "variety is missing.")
		}
		if _, ok := known[variety]; !ok {
			return nil, rowErrorf(i, "variety %q is not a valid microgreen variety.", variety)
		}
		quantity, err := strconv.Atoi(quantityRaw)
		if err != nil || quantity <= 0 {
			return nil, rowErrorf(i, "quantity must be a positive number.")
		}

		key := groupKey{client: client, date: date}
		idx, ok := groups[key]
		if !ok {
			d := delivery
			order := store.OrderInput{ClientName: client, DeliveryDate: &d}
			if hasLocation {
				order.Location = field(record, locationCol)
			}
			orders = append(orders, order)
			idx = len(orders) - 1
			groups[key] = idx
		}
		orders[idx].Items = append(orders[idx].Items, models.OrderItem{Variety: variety, Quantity: quantity})
	}

	return orders, nil
}

// readRecords reads every CSV record and requires a header plus one data row.
func readRecords(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %v: %w", err, ErrInvalidFile)
	}
	if len(records) < 2 {
		return nil, invalidFilef("CSV must have a header row and at least one data row")
	}
	return records, nil
}
