package commands

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/domain/models"
	"github.com/mamadbah2/microgreens/internal/service/harvest"
	"github.com/mamadbah2/microgreens/internal/service/planning"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// HelpText lists the commands accepted on the operations channel.
const HelpText = "Commands:\n" +
	"/harvest Variety=boxes ... record today's harvest and allocate it to due orders\n" +
	"/sow Variety=trays ... log trays sown today\n" +
	"/plan today's sowing tasks and seed purchases\n" +
	"/stock seed stock on hand\n" +
	"/picklist boxes to pick for orders due today\n" +
	"/help this message"

var pairPattern = regexp.MustCompile(`([^\s=][^=]*?)\s*=\s*(-?\d+)`)

// FarmStore is the part of the application store the dispatcher drives.
type FarmStore interface {
	Harvest(ctx context.Context, harvested map[string]int) (models.ShortfallReport, error)
	SaveSowingLog(ctx context.Context, date time.Time, trays map[string]int) (models.HarvestLogEntry, error)
	Snapshot() models.AppData
	Now() time.Time
}

// PlanGenerator produces the intelligent sowing plan.
type PlanGenerator interface {
	Generate(ctx context.Context, in planning.IntelligentPlanInput) models.IntelligentSowingPlan
}

// Dispatcher executes parsed commands and returns the reply text.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	store   FarmStore
	planner PlanGenerator
	logger  *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(store FarmStore, planner PlanGenerator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:   store,
		planner: planner,
		logger:  logger,
	}
}

// HandleCommand runs the command against the store and formats a reply.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandHarvest:
		quantities, err := parsePairs(cmd.Args)
		if err != nil {
			return "", err
		}
		report, err := s.store.Harvest(ctx, quantities)
		if err != nil {
			return "", err
		}
		s.logger.Info("harvest recorded over whatsapp", zap.String("sender", sender), zap.Int("shortfall_lines", len(report)))
		return formatHarvestReply(report), nil
	case models.CommandSow:
		trays, err := parsePairs(cmd.Args)
		if err != nil {
			return "", err
		}
		today := s.store.Now()
		entry, err := s.store.SaveSowingLog(ctx, today, trays)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Sowing log saved for %s: %s.", entry.Date, formatCounts(trays, "trays")), nil
	case models.CommandPlan:
		if s.planner == nil {
			return "", ErrUnsupportedCommand
		}
		data := s.store.Snapshot()
		plan := s.planner.Generate(ctx, planning.IntelligentPlanInput{
			Orders:        data.Orders,
			Varieties:     data.MicrogreenVarieties,
			Log:           data.HarvestingLog,
			SeedInventory: data.SeedInventory,
		})
		return planning.FormatDigest(plan, s.store.Now()), nil
	case models.CommandStock:
		return formatStock(s.store.Snapshot()), nil
	case models.CommandPickList:
		data := s.store.Snapshot()
		now := s.store.Now()
		picks := harvest.PickList(data.Orders, data.MicrogreenVarieties, now)
		return formatPickList(picks, data.MicrogreenVarieties, now), nil
	case models.CommandHelp:
		return HelpText, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

// parsePairs reads "Variety=N" pairs. Variety names may contain spaces; commas separate pairs too.
func parsePairs(args []string) (map[string]int, error) {
	text := strings.ReplaceAll(strings.Join(args, " "), ",", " ")
	matches := pairPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, ErrInvalidArguments
	}

	out := make(map[string]int, len(matches))
	for _, m := range matches {
		qty, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, ErrInvalidArguments
		}
		out[strings.TrimSpace(m[1])] += qty
	}
	return out, nil
}

func formatHarvestReply(report models.ShortfallReport) string {
	if len(report) == 0 {
		return "Harvest recorded. All due orders fully allocated."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Harvest recorded with %d short lines:", len(report))
	for _, line := range report {
		fmt.Fprintf(&b, "\n- %s %s: %d of %d (short %d)", line.ClientName, line.Variety, line.Allocated, line.Requested, line.Shortfall)
	}
	return b.String()
}

func formatCounts(counts map[string]int, unit string) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %d %s", name, counts[name], unit))
	}
	return strings.Join(parts, ", ")
}

func formatStock(data models.AppData) string {
	var b strings.Builder
	b.WriteString("Seed stock:")
	for _, name := range models.VarietyNames(data.MicrogreenVarieties) {
		item, ok := data.SeedInventory[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n- %s: %.0fg", name, item.StockOnHand)
		if item.BelowReorder() {
			fmt.Fprintf(&b, " (reorder, level %.0fg)", item.ReorderLevel)
		}
	}
	return b.String()
}

func formatPickList(picks map[string]int, varieties []models.MicrogreenVariety, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pick list for %s:", calendar.Format(now))
	total := 0
	for _, name := range models.VarietyNames(varieties) {
		if picks[name] == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n- %s: %d boxes", name, picks[name])
		total += picks[name]
	}
	if total == 0 {
		b.WriteString("\nNo orders due.")
	}
	return b.String()
}
