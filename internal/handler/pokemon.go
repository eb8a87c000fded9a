package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Eizen94/pokedex-api/internal/model"
	"github.com/Eizen94/pokedex-api/internal/pokeapi"
)

// Catalog is the slice of the catalog provider the Pokémon endpoints need.
// The narrow interface keeps handler tests on an in-memory fake.
type Catalog interface {
	Page(ctx context.Context, offset, limit int) (*model.PokemonPage, error)
	Search(ctx context.Context, query string, limit int) ([]model.PokemonSummary, error)
	Detail(ctx context.Context, id int) (*model.PokemonDetail, error)
	FlushDetailCache()
	CachedDetails() int
}

// PokemonHandler serves the browseable catalog.
type PokemonHandler struct {
	Catalog  Catalog
	PageSize int
}

func NewPokemonHandler(catalog Catalog, pageSize int) *PokemonHandler {
	if pageSize < 1 {
		pageSize = 20
	}
	return &PokemonHandler{Catalog: catalog, PageSize: pageSize}
}

// List handles GET /v1/pokemon?offset=&limit=&q=.  With q set the paginated
// view is replaced by a filtered result capped at limit.
func (h *PokemonHandler) List(c echo.Context) error {
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = h.PageSize
	}

	ctx := c.Request().Context()

	if q := c.QueryParam("q"); q != "" {
		items, err := h.Catalog.Search(ctx, q, limit)
		if err != nil {
			return upstreamError(c, err)
		}
		if items == nil {
			items = []model.PokemonSummary{}
		}
		return c.JSON(http.StatusOK, echo.Map{"items": items, "query": q})
	}

	page, err := h.Catalog.Page(ctx, offset, limit)
	if err != nil {
		return upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Detail handles GET /v1/pokemon/:id.
func (h *PokemonHandler) Detail(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pokemon id"})
	}

	detail, err := h.Catalog.Detail(c.Request().Context(), id)
	if err != nil {
		return upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// FlushCache handles POST /v1/admin/catalog/cache/flush (ADMIN only).
func (h *PokemonHandler) FlushCache(c echo.Context) error {
	before := h.Catalog.CachedDetails()
	h.Catalog.FlushDetailCache()
	return c.JSON(http.StatusOK, echo.Map{"flushed": before})
}

// upstreamError maps the client's error taxonomy onto the fixed set of
// user-facing responses.  Nothing upstream-specific leaks past this point.
func upstreamError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, pokeapi.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "pokemon not found"})
	case errors.Is(err, pokeapi.ErrRateLimited):
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "catalog busy, try again later"})
	case errors.Is(err, pokeapi.ErrNoConnection):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "no connection to catalog"})
	case errors.Is(err, pokeapi.ErrDecode):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "catalog returned malformed data"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err // client went away; let echo handle it
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "something went wrong"})
	}
}
