package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/daterange"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// rangeQuery is the parsed range selection shared by the query endpoints.
type rangeQuery struct {
	Selection  daterange.Selection
	LocationID *uuid.UUID
}

func (q rangeQuery) view() weather.RangeView {
	return weather.NewRangeView(q.Selection.Mode(), q.Selection.Range())
}

// parseRangeQuery replays the query string onto the default selection:
// preset first, then the from/to bounds, each of which switches to custom.
// An end date after today is rejected here; the resolver accepts any bounds.
func (h *handler) parseRangeQuery(c *fiber.Ctx) (rangeQuery, error) {
	now := h.service.Now()
	sel := daterange.NewSelection(now)

	if raw := c.Query("preset"); raw != "" {
		p, err := daterange.ParsePreset(raw)
		if err != nil {
			return rangeQuery{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if sel, err = sel.WithPreset(p, now); err != nil {
			return rangeQuery{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	if raw := c.Query("from"); raw != "" {
		from, err := parseTime(raw, now.Location())
		if err != nil {
			return rangeQuery{}, fiber.NewError(fiber.StatusBadRequest, "from: "+err.Error())
		}
		sel = sel.WithStart(from)
	}

	if raw := c.Query("to"); raw != "" {
		to, err := parseTime(raw, now.Location())
		if err != nil {
			return rangeQuery{}, fiber.NewError(fiber.StatusBadRequest, "to: "+err.Error())
		}
		if daterange.StartOfDay(to.In(now.Location())).After(daterange.StartOfDay(now)) {
			return rangeQuery{}, fiber.NewError(fiber.StatusBadRequest, "to must not be later than today")
		}
		sel = sel.WithEnd(to)
	}

	q := rangeQuery{Selection: sel}
	if raw := c.Query("location_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return rangeQuery{}, fiber.NewError(fiber.StatusBadRequest, "location_id must be a UUID")
		}
		q.LocationID = &id
	}

	h.metrics.RangeQuery(string(sel.Mode()))
	return q, nil
}

// parseTime accepts RFC3339, a calendar date interpreted in loc, or unix
// seconds. Bounds are aligned to whole days by the selection. Years outside
// 1-9999 are rejected so every bound stays renderable as RFC3339.
func parseTime(s string, loc *time.Location) (time.Time, error) {
	ts, err := parseTimeFormats(s, loc)
	if err != nil {
		return time.Time{}, err
	}
	if y := ts.Year(); y < minYear || y > maxYear {
		return time.Time{}, fmt.Errorf("year %d is outside %d-%d", y, minYear, maxYear)
	}
	return ts, nil
}

const (
	minYear = 1
	maxYear = 9999
)

func parseTimeFormats(s string, loc *time.Location) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.In(loc), nil
	}
	if ts, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).In(loc), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339, YYYY-MM-DD or unix seconds")
}
