package dataio

import (
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

var (
	varietyNameAliases = []string{"name", "variety", "varietyname"}
	varietyDaysAliases = []string{"growthcycledays", "days", "growthcycle", "cycle"}
)

// ParseVarietiesCSV reads name and growth-cycle columns, matching headers case and space
// insensitively. Names already in existing or repeated in the file reject the whole file.
func ParseVarietiesCSV(r io.Reader, existing []models.MicrogreenVariety) ([]models.MicrogreenVariety, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	nameCol, daysCol := -1, -1
	for i, h := range records[0] {
		key := normalizeHeader(h)
		if nameCol < 0 && containsFold(varietyNameAliases, key) {
			nameCol = i
		}
		if daysCol < 0 && containsFold(varietyDaysAliases, key) {
			daysCol = i
		}
	}
	if nameCol < 0 {
		return nil, invalidFilef(`missing required header column "name"`)
	}
	if daysCol < 0 {
		return nil, invalidFilef(`missing required header column "growthCycleDays"`)
	}

	existingNames := make(map[string]bool, len(existing))
	for _, v := range existing {
		existingNames[strings.ToLower(v.Name)] = true
	}
	seen := make(map[string]bool)

	var out []models.MicrogreenVariety
	for i, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		var name, daysRaw string
		if nameCol < len(record) {
			name = strings.TrimSpace(record[nameCol])
		}
		if daysCol < len(record) {
			daysRaw = strings.TrimSpace(record[daysCol])
		}

		if name == "" {
			return nil, rowErrorf(i, "'name' is missing.")
		}
		days, err := strconv.Atoi(daysRaw)
		if err != nil || days <= 0 {
			return nil, rowErrorf(i, "'growthCycleDays' for %q must be a positive number.", name)
		}
		key := strings.ToLower(name)
		if existingNames[key] {
			return nil, rowErrorf(i, "Variety %q already exists.", name)
		}
		if seen[key] {
			return nil, rowErrorf(i, "Duplicate variety %q found in the file.", name)
		}
		seen[key] = true
		out = append(out, models.MicrogreenVariety{Name: name, GrowthCycleDays: days})
	}

	if len(out) == 0 {
		return nil, invalidFilef("no varieties found")
	}
	return out, nil
}

func normalizeHeader(h string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, h)
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
