package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/domain/models"
	"github.com/mamadbah2/microgreens/internal/service/dataio"
	"github.com/mamadbah2/microgreens/internal/service/planning"
	"github.com/mamadbah2/microgreens/internal/store"
)

// PlanGenerator produces the intelligent sowing plan.
type PlanGenerator interface {
	Generate(ctx context.Context, in planning.IntelligentPlanInput) models.IntelligentSowingPlan
}

// FarmHandler serves the JSON API over the application store.
type FarmHandler struct {
	store   *store.Store
	planner PlanGenerator
	advisor planning.SuggestionProvider
	logger  *zap.Logger
}

// NewFarmHandler constructs the API handler. advisor may be nil when no AI key is configured.
func NewFarmHandler(st *store.Store, planner PlanGenerator, advisor planning.SuggestionProvider, logger *zap.Logger) *FarmHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FarmHandler{store: st, planner: planner, advisor: advisor, logger: logger}
}

// statusFor maps store and import errors to HTTP status codes.
func statusFor(err error) int {
	var rowErr *dataio.RowError
	switch {
	case errors.Is(err, store.ErrValidation), errors.Is(err, dataio.ErrInvalidFile), errors.As(err, &rowErr):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrBusinessRule):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *FarmHandler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, format string, args ...any) {
	c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf(format, args...)})
}

// parseDay accepts a YYYY-MM-DD calendar day or an RFC 3339 timestamp. Empty yields nil.
func parseDay(value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if len(value) == len(calendar.DayLayout) {
		t, err := calendar.Parse(value, loc)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", value)
	}
	t = t.In(loc)
	return &t, nil
}

// dayQuery reads a calendar-day query parameter, falling back to def.
func (h *FarmHandler) dayQuery(c *gin.Context, key string, def time.Time) (time.Time, bool) {
	t, err := parseDay(c.Query(key), h.store.Location())
	if err != nil {
		badRequest(c, "%s: %v", key, err)
		return time.Time{}, false
	}
	if t == nil {
		return def, true
	}
	return *t, true
}

// rangeQuery reads start and end, defaulting to the trailing days before today.
func (h *FarmHandler) rangeQuery(c *gin.Context, trailingDays int) (time.Time, time.Time, bool) {
	today := calendar.StartOfDay(h.store.Now())
	start, ok := h.dayQuery(c, "start", calendar.AddDays(today, -trailingDays))
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, ok := h.dayQuery(c, "end", today)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		badRequest(c, "end must not be before start")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// respondTable writes value as JSON, or table as a CSV attachment when format=csv.
func (h *FarmHandler) respondTable(c *gin.Context, name string, value any, table func() dataio.Table) {
	if !strings.EqualFold(c.Query("format"), "csv") {
		c.JSON(http.StatusOK, value)
		return
	}
	filename := fmt.Sprintf("%s_%s.csv", name, calendar.Format(h.store.Now()))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := dataio.WriteCSV(c.Writer, table()); err != nil {
		h.logger.Error("failed writing csv", zap.String("report", name), zap.Error(err))
	}
}
