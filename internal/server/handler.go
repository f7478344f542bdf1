package server

import (
	"errors"
	"net/url"

	apperr "github.com/AbdulWasayUl/go-country-currency/internal/errors"
	"github.com/AbdulWasayUl/go-country-currency/internal/render"
	"github.com/AbdulWasayUl/go-country-currency/internal/storage"
	"github.com/AbdulWasayUl/go-country-currency/services/country"
	"github.com/gofiber/fiber/v2"
)

// Handler serves the /countries routes.
type Handler struct {
	service   *country.Service
	artifacts storage.Store
}

func NewHandler(service *country.Service, artifacts storage.Store) *Handler {
	return &Handler{service: service, artifacts: artifacts}
}

// RegisterRoutes mounts the routes. Fixed paths are registered ahead of
// /:name so that they are not taken for country names.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/countries")
	group.Post("/refresh", h.HandleRefresh)
	group.Get("/status", h.HandleStatus)
	group.Get("/image/summary", h.HandleSummaryImage)
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleCreate)
	group.Get("/:name", h.HandleGet)
	group.Delete("/:name", h.HandleDelete)
}

func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	res, err := h.service.Refresh(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":           "Countries data refreshed successfully",
		"total_countries":   res.TotalCountries,
		"last_refreshed_at": res.LastRefreshedAt,
	})
}

// HandleList accepts region, currency and sort query parameters.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	filter := country.Filter{
		Region:       c.Query("region"),
		CurrencyCode: c.Query("currency"),
	}
	list, err := h.service.List(c.UserContext(), filter, country.ParseSort(c.Query("sort")))
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var in country.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.NewValidation(map[string]string{"body": "must be a valid JSON object"})
	}
	rec, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	status, err := h.service.Status(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(status)
}

func (h *Handler) HandleSummaryImage(c *fiber.Ctx) error {
	data, err := h.artifacts.Get(c.UserContext(), render.SummaryImageName)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NewNotFound("Summary image")
	}
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(data)
}

func (h *Handler) HandleGet(c *fiber.Ctx) error {
	name, err := pathName(c)
	if err != nil {
		return err
	}
	rec, err := h.service.Get(c.UserContext(), name)
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	name, err := pathName(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), name); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Country deleted successfully"})
}

// pathName decodes the :name segment, e.g. "United%20Kingdom".
func pathName(c *fiber.Ctx) (string, error) {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return "", apperr.NewValidation(map[string]string{"name": "is not a valid path segment"})
	}
	return name, nil
}
