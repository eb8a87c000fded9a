package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eizen94/pokedex-api/internal/model"
	"github.com/Eizen94/pokedex-api/internal/pokeapi"
)

// stubCatalog lets each test pin down exactly what the provider returns.
type stubCatalog struct {
	page       *model.PokemonPage
	search     []model.PokemonSummary
	detail     *model.PokemonDetail
	err        error
	flushed    bool
	gotOffset  int
	gotLimit   int
	gotQuery   string
	gotID      int
	cachedSize int
}

func (s *stubCatalog) Page(_ context.Context, offset, limit int) (*model.PokemonPage, error) {
	s.gotOffset, s.gotLimit = offset, limit
	return s.page, s.err
}

func (s *stubCatalog) Search(_ context.Context, query string, limit int) ([]model.PokemonSummary, error) {
	s.gotQuery, s.gotLimit = query, limit
	return s.search, s.err
}

func (s *stubCatalog) Detail(_ context.Context, id int) (*model.PokemonDetail, error) {
	s.gotID = id
	return s.detail, s.err
}

func (s *stubCatalog) FlushDetailCache() { s.flushed = true }
func (s *stubCatalog) CachedDetails() int {
	return s.cachedSize
}

func newListContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestPokemonList(t *testing.T) {
	cat := &stubCatalog{page: &model.PokemonPage{
		Items:   []model.PokemonSummary{{ID: 1, Name: "bulbasaur"}},
		Offset:  0,
		Limit:   20,
		HasMore: true,
	}}
	h := NewPokemonHandler(cat, 20)

	c, rec := newListContext("/v1/pokemon?offset=0&limit=20")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var page model.PokemonPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "bulbasaur", page.Items[0].Name)
	assert.True(t, page.HasMore)
}

func TestPokemonListClampsLimit(t *testing.T) {
	cat := &stubCatalog{page: &model.PokemonPage{}}
	h := NewPokemonHandler(cat, 20)

	c, _ := newListContext("/v1/pokemon?limit=500")
	require.NoError(t, h.List(c))
	assert.Equal(t, 20, cat.gotLimit)

	c, _ = newListContext("/v1/pokemon?offset=-5")
	require.NoError(t, h.List(c))
	assert.Equal(t, 0, cat.gotOffset)
}

func TestPokemonListSearch(t *testing.T) {
	cat := &stubCatalog{search: []model.PokemonSummary{{ID: 25, Name: "pikachu"}}}
	h := NewPokemonHandler(cat, 20)

	c, rec := newListContext("/v1/pokemon?q=pika")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pika", cat.gotQuery)

	var body struct {
		Items []model.PokemonSummary `json:"items"`
		Query string                 `json:"query"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "pikachu", body.Items[0].Name)
	assert.Equal(t, "pika", body.Query)
}

func TestPokemonListSearchEmptyResult(t *testing.T) {
	cat := &stubCatalog{search: nil}
	h := NewPokemonHandler(cat, 20)

	c, rec := newListContext("/v1/pokemon?q=zzz")
	require.NoError(t, h.List(c))

	// nil slice must serialize as an empty array, not null.
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestPokemonDetail(t *testing.T) {
	cat := &stubCatalog{detail: &model.PokemonDetail{
		PokemonSummary: model.PokemonSummary{ID: 25, Name: "pikachu"},
		Description:    "When several of these gather...",
	}}
	h := NewPokemonHandler(cat, 20)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/pokemon/:id")
	c.SetParamNames("id")
	c.SetParamValues("25")

	require.NoError(t, h.Detail(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25, cat.gotID)
}

func TestPokemonDetailInvalidID(t *testing.T) {
	h := NewPokemonHandler(&stubCatalog{}, 20)

	for _, raw := range []string{"abc", "0", "-3"} {
		t.Run(raw, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("id")
			c.SetParamValues(raw)

			require.NoError(t, h.Detail(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPokemonDetailErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: /pokemon/9999", pokeapi.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: /pokemon/25", pokeapi.ErrRateLimited), http.StatusTooManyRequests},
		{fmt.Errorf("%w: dial tcp", pokeapi.ErrNoConnection), http.StatusServiceUnavailable},
		{fmt.Errorf("%w: unexpected EOF", pokeapi.ErrDecode), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.code), func(t *testing.T) {
			h := NewPokemonHandler(&stubCatalog{err: tc.err}, 20)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("id")
			c.SetParamValues("25")

			require.NoError(t, h.Detail(c))
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestPokemonFlushCache(t *testing.T) {
	cat := &stubCatalog{cachedSize: 7}
	h := NewPokemonHandler(cat, 20)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/catalog/cache/flush", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.FlushCache(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, cat.flushed)
	assert.Contains(t, rec.Body.String(), `"flushed":7`)
}
