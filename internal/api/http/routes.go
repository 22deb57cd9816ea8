package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-cache/internal/geo"
	"github.com/i474232898/weather-cache/internal/weather"
)

var validate = validator.New()

// WeatherCache is the part of weather.Cache the routes use.
type WeatherCache interface {
	Get(ctx context.Context, location string) (weather.Snapshot, error)
	GetMany(ctx context.Context, locations []string) ([]weather.Snapshot, error)
	Clear()
}

// Options configures the routes.
type Options struct {
	// Geocoder resolves /nearby coordinates; nil means always use DefaultLocation.
	Geocoder        geo.Geocoder
	DefaultLocation string
	Logger          zerolog.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, cache WeatherCache, opts Options) {
	h := &handlers{cache: cache, opts: opts, log: opts.Logger.With().Str("component", "http").Logger()}

	v1 := app.Group("/api/v1")
	v1.Get("/weather", h.get)
	v1.Post("/weather/batch", h.batch)
	v1.Get("/weather/nearby", h.nearby)
	v1.Delete("/weather/cache", h.clear)
}

type handlers struct {
	cache WeatherCache
	opts  Options
	log   zerolog.Logger
}

// locationQuery holds the query parameter identifying a location.
type locationQuery struct {
	Location string `validate:"required"`
}

func (h *handlers) get(c *fiber.Ctx) error {
	q := locationQuery{Location: c.Query("location")}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	snap, err := h.cache.Get(c.UserContext(), q.Location)
	if err != nil {
		return unavailable(err)
	}
	return c.JSON(snap)
}

// batchRequest is the body of the batch endpoint.
type batchRequest struct {
	Locations []string `json:"locations" validate:"required,min=1,dive,required"`
}

func (h *handlers) batch(c *fiber.Ctx) error {
	var req batchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	snaps, err := h.cache.GetMany(c.UserContext(), req.Locations)
	if err != nil {
		return unavailable(err)
	}
	return c.JSON(fiber.Map{"snapshots": snaps})
}

// nearbyQuery holds the coordinates for the nearby endpoint.
type nearbyQuery struct {
	Lat string `validate:"required,latitude"`
	Lon string `validate:"required,longitude"`
}

func (h *handlers) nearby(c *fiber.Ctx) error {
	q := nearbyQuery{Lat: c.Query("lat"), Lon: c.Query("lon")}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	lat, err := strconv.ParseFloat(q.Lat, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid lat")
	}
	lon, err := strconv.ParseFloat(q.Lon, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid lon")
	}

	location := h.resolve(c.UserContext(), lat, lon)
	if location == "" {
		return fiber.NewError(fiber.StatusBadRequest, "location could not be determined")
	}

	snap, err := h.cache.Get(c.UserContext(), location)
	if err != nil {
		return unavailable(err)
	}
	return c.JSON(snap)
}

// resolve turns coordinates into a location key, falling back to the default location.
func (h *handlers) resolve(ctx context.Context, lat, lon float64) string {
	if h.opts.Geocoder == nil {
		return h.opts.DefaultLocation
	}
	place, err := h.opts.Geocoder.Reverse(ctx, lat, lon)
	if err != nil || place.Name == "" {
		h.log.Warn().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Str("fallback", h.opts.DefaultLocation).
			Msg("reverse geocoding failed")
		return h.opts.DefaultLocation
	}
	return place.Name
}

func (h *handlers) clear(c *fiber.Ctx) error {
	h.cache.Clear()
	return c.SendStatus(fiber.StatusNoContent)
}

// unavailable maps a cache error to the fixed user-facing message.
func unavailable(err error) error {
	if weather.IsProviderError(err) {
		return fiber.NewError(fiber.StatusServiceUnavailable, weather.UnavailableMessage)
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
}

// ErrorHandler renders every error as {"error":true,"message":...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
