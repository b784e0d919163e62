package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/weather-dashboard/internal/daterange"
	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/volatility"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = weather.Validator()

type handler struct {
	service *weather.Service
	metrics *metrics.Metrics
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. m may be nil.
func RegisterRoutes(app *fiber.App, service *weather.Service, m *metrics.Metrics) {
	h := &handler{service: service, metrics: m}
	v1 := app.Group("/api/v1")

	v1.Get("/locations", h.listLocations)
	v1.Post("/locations", h.createLocation)
	v1.Get("/locations/:id", h.getLocation)
	v1.Delete("/locations/:id", h.deleteLocation)
	v1.Post("/locations/:id/refresh", h.refreshLocation)

	v1.Get("/readings", h.listReadings)
	v1.Post("/readings", h.createReading)
	v1.Delete("/readings/:id", h.deleteReading)

	v1.Get("/dashboard", h.dashboard)
	v1.Get("/trends", h.trends)
	v1.Get("/volatility", h.volatility)
	v1.Get("/range", h.resolveRange)
}

func (h *handler) listLocations(c *fiber.Ctx) error {
	locs, err := h.service.ListLocations(c.UserContext())
	if err != nil {
		return toHTTPError(err, "failed to list locations")
	}
	return c.JSON(locs)
}

func (h *handler) createLocation(c *fiber.Ctx) error {
	var req weather.NewLocation
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	loc, err := h.service.CreateLocation(c.UserContext(), req)
	if err != nil {
		return toHTTPError(err, "failed to create location")
	}
	return c.Status(fiber.StatusCreated).JSON(loc)
}

func (h *handler) getLocation(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	loc, err := h.service.GetLocation(c.UserContext(), id)
	if err != nil {
		return toHTTPError(err, "failed to fetch location")
	}

	detail := locationDetail{Location: loc, LocalTime: h.service.Now().In(loc.TimeLocation())}
	latest, err := h.service.LatestReading(c.UserContext(), id)
	switch {
	case err == nil:
		detail.LatestReading = &latest
	case !errors.Is(err, store.ErrNotFound):
		return toHTTPError(err, "failed to fetch latest reading")
	}
	return c.JSON(detail)
}

// locationDetail is the body of GET /locations/:id. LatestReading is null
// until the location has a reading.
type locationDetail struct {
	weather.Location
	LocalTime     time.Time        `json:"local_time"`
	LatestReading *weather.Reading `json:"latest_reading"`
}

func (h *handler) deleteLocation(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteLocation(c.UserContext(), id); err != nil {
		return toHTTPError(err, "failed to delete location")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) refreshLocation(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	loc, err := h.service.GetLocation(c.UserContext(), id)
	if err != nil {
		return toHTTPError(err, "failed to fetch location")
	}
	reading, err := h.service.FetchAndStore(c.UserContext(), loc)
	if err != nil {
		return toHTTPError(err, "failed to refresh location")
	}
	return c.Status(fiber.StatusCreated).JSON(reading)
}

func (h *handler) listReadings(c *fiber.Ctx) error {
	q, err := h.parseRangeQuery(c)
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must not be negative")
	}

	readings, err := h.service.Readings(c.UserContext(), weather.ReadingFilter{
		LocationID: q.LocationID,
		Range:      q.Selection.Range(),
		Limit:      limit,
	})
	if err != nil {
		return toHTTPError(err, "failed to fetch readings")
	}
	return c.JSON(fiber.Map{
		"range":    q.view(),
		"readings": readings,
	})
}

// readingRequest is the body of POST /readings. A missing recorded_at
// means now.
type readingRequest struct {
	LocationID       uuid.UUID  `json:"location_id" validate:"required"`
	RecordedAt       *time.Time `json:"recorded_at"`
	TemperatureC     *float64   `json:"temperature_c"`
	HumidityPercent  *float64   `json:"humidity_percent"`
	PressureHpa      *float64   `json:"pressure_hpa"`
	WindSpeedMS      *float64   `json:"wind_speed_ms"`
	WindDirectionDeg *float64   `json:"wind_direction_deg"`
	PrecipitationMM  *float64   `json:"precipitation_mm"`
}

func (h *handler) createReading(c *fiber.Ctx) error {
	var req readingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	recordedAt := h.service.Now()
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}

	reading, err := h.service.RecordReading(c.UserContext(), weather.Reading{
		LocationID:       req.LocationID,
		RecordedAt:       recordedAt,
		TemperatureC:     req.TemperatureC,
		HumidityPercent:  req.HumidityPercent,
		PressureHpa:      req.PressureHpa,
		WindSpeedMS:      req.WindSpeedMS,
		WindDirectionDeg: req.WindDirectionDeg,
		PrecipitationMM:  req.PrecipitationMM,
	})
	if err != nil {
		return toHTTPError(err, "failed to record reading")
	}
	return c.Status(fiber.StatusCreated).JSON(reading)
}

func (h *handler) deleteReading(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteReading(c.UserContext(), id); err != nil {
		return toHTTPError(err, "failed to delete reading")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) dashboard(c *fiber.Ctx) error {
	q, err := h.parseRangeQuery(c)
	if err != nil {
		return err
	}
	d, err := h.service.Dashboard(c.UserContext(), q.Selection.Range(), q.LocationID)
	if err != nil {
		return toHTTPError(err, "failed to build dashboard")
	}
	return c.JSON(fiber.Map{
		"range":     q.view(),
		"dashboard": d,
	})
}

func (h *handler) trends(c *fiber.Ctx) error {
	q, err := h.parseRangeQuery(c)
	if err != nil {
		return err
	}
	trends, err := h.service.Trends(c.UserContext(), q.Selection.Range(), q.LocationID)
	if err != nil {
		return toHTTPError(err, "failed to build trends")
	}
	return c.JSON(fiber.Map{
		"range":  q.view(),
		"trends": trends,
	})
}

func (h *handler) volatility(c *fiber.Ctx) error {
	q, err := h.parseRangeQuery(c)
	if err != nil {
		return err
	}
	report, err := h.service.Volatility(c.UserContext(), q.Selection.Range(), q.LocationID)
	if err != nil {
		return toHTTPError(err, "failed to compute volatility")
	}

	weights := make(map[volatility.Metric]float64, len(volatility.Metrics()))
	for _, m := range volatility.Metrics() {
		weights[m] = volatility.Weight(m)
	}
	return c.JSON(fiber.Map{
		"range":      q.view(),
		"volatility": report,
		"weights":    weights,
	})
}

func (h *handler) resolveRange(c *fiber.Ctx) error {
	q, err := h.parseRangeQuery(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"range":   q.view(),
		"days":    q.Selection.Range().Days(),
		"presets": daterange.Presets(),
	})
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

func pathID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "id must be a UUID")
	}
	return id, nil
}

// toHTTPError maps domain errors onto HTTP status codes. Unknown errors are
// logged and reported with msg only.
func toHTTPError(err error, msg string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, weather.ErrInvalidLocation), errors.Is(err, weather.ErrInvalidReading):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrOutsideRetention), errors.Is(err, weather.ErrGeocode):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, weather.ErrNoProviderData):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		log.Error().Err(err).Msg(msg)
		return fiber.NewError(fiber.StatusInternalServerError, msg)
	}
}
