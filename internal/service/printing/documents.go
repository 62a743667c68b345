// Package printing renders the printable pick list and delivery manifest as PDF.
package printing

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

const (
	unassignedMode = "Unassigned"
	qrSizePx       = 256
	qrSizeMM       = 22.0
	headerDate     = "Monday, 2 January 2006"
)

// PickLine is one variety to pull from the grow racks.
type PickLine struct {
	Variety string `json:"variety"`
	Boxes   int    `json:"boxes"`
}

// PickLines orders the pick list by registry order, then any extra varieties by name.
func PickLines(picks map[string]int, varieties []models.MicrogreenVariety) []PickLine {
	lines := make([]PickLine, 0, len(picks))
	seen := make(map[string]bool, len(varieties))
	for _, v := range varieties {
		seen[v.Name] = true
		lines = append(lines, PickLine{Variety: v.Name, Boxes: picks[v.Name]})
	}
	var extra []string
	for name := range picks {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		lines = append(lines, PickLine{Variety: name, Boxes: picks[name]})
	}
	return lines
}

// ManifestGroup holds the dispatched orders travelling with one delivery mode.
type ManifestGroup struct {
	Mode   string
	Orders []models.Order
}

// GroupManifest keeps Dispatched orders and groups them by delivery mode, sorted by mode.
func GroupManifest(orders []models.Order) []ManifestGroup {
	byMode := make(map[string][]models.Order)
	for _, order := range orders {
		if order.Status != models.OrderDispatched {
			continue
		}
		mode := order.DeliveryMode
		if mode == "" {
			mode = unassignedMode
		}
		byMode[mode] = append(byMode[mode], order)
	}

	groups := make([]ManifestGroup, 0, len(byMode))
	for mode, list := range byMode {
		groups = append(groups, ManifestGroup{Mode: mode, Orders: list})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Mode < groups[j].Mode })
	return groups
}

// WritePickList renders the day's pick list with a box total.
func WritePickList(w io.Writer, day time.Time, lines []PickLine) error {
	pdf := newDocument("Harvest Pick List", day)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(120, 9, "Variety", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 9, "Boxes (50g)", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	total := 0
	for _, line := range lines {
		pdf.CellFormat(120, 8, line.Variety, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, strconv.Itoa(line.Boxes), "", 1, "R", false, 0, "")
		total += line.Boxes
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(120, 9, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(40, 9, strconv.Itoa(total), "T", 1, "R", false, 0, "")

	return output(pdf, w)
}

// WriteManifest renders one section per delivery mode with a QR code of each order ID.
func WriteManifest(w io.Writer, day time.Time, groups []ManifestGroup) error {
	pdf := newDocument("Delivery Manifest", day)

	if len(groups) == 0 {
		pdf.SetFont("Arial", "I", 12)
		pdf.Cell(0, 10, "No dispatched orders.")
		return output(pdf, w)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	for _, group := range groups {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, "Delivery via: "+group.Mode, "B", 1, "L", false, 0, "")
		pdf.Ln(2)

		for _, order := range group.Orders {
			if pdf.GetY()+qrSizeMM+6 > 280 {
				pdf.AddPage()
			}
			top := pdf.GetY()

			png, err := qrcode.Encode(order.ID, qrcode.Medium, qrSizePx)
			if err != nil {
				return fmt.Errorf("encode qr for %s: %w", order.ID, err)
			}
			name := "qr-" + order.ID
			pdf.RegisterImageOptionsReader(name, imageOpts, bytes.NewReader(png))
			pdf.ImageOptions(name, 178, top, qrSizeMM, qrSizeMM, false, imageOpts, 0, "")

			items := order.FulfilledItems()
			pdf.SetFont("Arial", "B", 12)
			pdf.CellFormat(120, 7, order.ClientName, "", 0, "L", false, 0, "")
			pdf.CellFormat(40, 7, fmt.Sprintf("%d boxes", models.TotalBoxes(items)), "", 1, "R", false, 0, "")
			pdf.SetFont("Courier", "", 9)
			pdf.CellFormat(120, 5, order.ID, "", 1, "L", false, 0, "")
			if order.Location != "" {
				pdf.SetFont("Arial", "", 10)
				pdf.CellFormat(120, 5, order.Location, "", 1, "L", false, 0, "")
			}

			pdf.SetFont("Arial", "", 11)
			for _, item := range items {
				pdf.CellFormat(100, 6, "  "+item.Variety, "", 0, "L", false, 0, "")
				pdf.CellFormat(20, 6, strconv.Itoa(item.Quantity), "", 1, "R", false, 0, "")
			}

			if bottom := top + qrSizeMM + 2; pdf.GetY() < bottom {
				pdf.SetY(bottom)
			}
			pdf.Ln(3)
		}
		pdf.Ln(4)
	}

	return output(pdf, w)
}

func newDocument(title string, day time.Time) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 8, day.Format(headerDate), "", 1, "C", false, 0, "")
	pdf.Ln(6)
	return pdf
}

func output(pdf *gofpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
