package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/zeebo/xxh3"

	"github.com/totegamma/knights/internal/domain"
	"github.com/totegamma/knights/internal/present/rest/presenter"
	"github.com/totegamma/knights/internal/usecase"
)

const (
	msgInvalidPage     = "Invalid page. Page number should be positive"
	msgInvalidPageSize = "Invalid page size. Page size should be at least 1"
)

type Handler struct {
	knight *usecase.KnightUsecase
}

func NewHandler(knight *usecase.KnightUsecase) *Handler {
	return &Handler{
		knight: knight,
	}
}

// RegisterRoutes mounts the roster under g, which main prefixes with /api.
func (h *Handler) RegisterRoutes(e *echo.Echo, g *echo.Group) {
	e.GET("/healthz", h.handleHealth)

	knights := g.Group("/v1/knights")
	knights.POST("", h.handleCreate)
	knights.GET("", h.handleList)
	knights.GET("/:id", h.handleGet)
	knights.PATCH("/:id", h.handleUpdate)
	knights.DELETE("/:id", h.handleDelete)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleCreate(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.CreateKnightInput
	err := c.Bind(&input)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	knight, err := h.knight.Create(ctx, input)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, knight)
}

func (h *Handler) handleList(c echo.Context) error {
	ctx := c.Request().Context()

	page, ok := positiveQueryParam(c, "page")
	if !ok {
		return presenter.BadRequestMessage(c, msgInvalidPage)
	}
	pageSize, ok := positiveQueryParam(c, "pageSize")
	if !ok {
		return presenter.BadRequestMessage(c, msgInvalidPageSize)
	}

	result, err := h.knight.List(ctx, domain.ListFilter{
		Term:     c.QueryParam("term"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, result)
}

// handleGet tags the view with a content hash. The view depends on the
// current date, so the tag changes when age or experience do.
func (h *Handler) handleGet(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.knight.Get(ctx, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}

	body, err := json.Marshal(view)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	etag := fmt.Sprintf(`"%016x"`, xxh3.Hash(body))
	c.Response().Header().Set("ETag", etag)
	if etagMatches(c.Request().Header.Get("If-None-Match"), etag) {
		return c.NoContent(http.StatusNotModified)
	}

	return c.JSONBlob(http.StatusOK, body)
}

func (h *Handler) handleUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.UpdateKnightInput
	err := c.Bind(&input)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	knight, err := h.knight.Update(ctx, c.Param("id"), input)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, knight)
}

func (h *Handler) handleDelete(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.knight.Delete(ctx, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, result)
}

// etagMatches applies the weak comparison If-None-Match uses: any listed tag,
// with or without a W/ prefix, or "*".
func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// positiveQueryParam returns 0 for an absent parameter so the usecase
// default applies.
func positiveQueryParam(c echo.Context, name string) (int, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, false
	}
	return value, true
}
