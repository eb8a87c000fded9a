package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Eizen94/pokedex-api/internal/model"
	"github.com/Eizen94/pokedex-api/internal/queue"
	"github.com/Eizen94/pokedex-api/internal/repository"
)

// FavoriteStore is the persistence slice the favorites endpoints need.
type FavoriteStore interface {
	Add(ctx context.Context, userID uint64, pokemonID int, nickname, note string) (model.Favorite, error)
	Remove(ctx context.Context, userID uint64, pokemonID int) error
	UpdateNote(ctx context.Context, userID uint64, pokemonID int, nickname, note string) (model.Favorite, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Favorite, error)
}

// SyncStamper records favorites activity on the profile document.
type SyncStamper interface {
	StampLastSync(ctx context.Context, userID uint64) error
}

// ActivityPublisher sends a favorite-activity event to the broker.  Publish
// failures are logged and swallowed: the mutation already committed and the
// audit trail is best-effort.
type ActivityPublisher func(ctx context.Context, ev queue.FavoriteActivityEvent) error

// FavoriteHandler serves the per-user favorites list.
type FavoriteHandler struct {
	Favorites FavoriteStore
	Profiles  SyncStamper
	Publish   ActivityPublisher
	Logger    *slog.Logger
}

func NewFavoriteHandler(f FavoriteStore, p SyncStamper, pub ActivityPublisher, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{Favorites: f, Profiles: p, Publish: pub, Logger: logger}
}

type addFavoriteReq struct {
	PokemonID int    `json:"pokemon_id"`
	Nickname  string `json:"nickname"`
	Note      string `json:"note"`
}

type editFavoriteReq struct {
	Nickname string `json:"nickname"`
	Note     string `json:"note"`
}

// List handles GET /v1/favorites, ordered by added time.
func (h *FavoriteHandler) List(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	favorites, err := h.Favorites.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load favorites failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": favorites, "count": len(favorites)})
}

// Add handles POST /v1/favorites.
func (h *FavoriteHandler) Add(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req addFavoriteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.PokemonID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pokemon_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	fav, err := h.Favorites.Add(ctx, uid, req.PokemonID, strings.TrimSpace(req.Nickname), strings.TrimSpace(req.Note))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already favorited"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save favorite failed"})
	}

	h.afterMutation(uid, "added", fav)
	return c.JSON(http.StatusCreated, fav)
}

// Remove handles DELETE /v1/favorites/:pokemonID.
func (h *FavoriteHandler) Remove(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	pokemonID, err := strconv.Atoi(c.Param("pokemonID"))
	if err != nil || pokemonID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pokemon id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Favorites.Remove(ctx, uid, pokemonID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "favorite not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove favorite failed"})
	}

	h.afterMutation(uid, "removed", model.Favorite{UserID: uid, PokemonID: pokemonID})
	return c.NoContent(http.StatusNoContent)
}

// Edit handles PATCH /v1/favorites/:pokemonID (nickname/note).
func (h *FavoriteHandler) Edit(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	pokemonID, err := strconv.Atoi(c.Param("pokemonID"))
	if err != nil || pokemonID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pokemon id"})
	}

	var req editFavoriteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	fav, err := h.Favorites.UpdateNote(ctx, uid, pokemonID, strings.TrimSpace(req.Nickname), strings.TrimSpace(req.Note))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "favorite not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update favorite failed"})
	}
	return c.JSON(http.StatusOK, fav)
}

// afterMutation stamps last_sync_at and publishes the activity event.  Both
// are best-effort; the primary write already succeeded.
func (h *FavoriteHandler) afterMutation(uid uint64, action string, fav model.Favorite) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := h.Profiles.StampLastSync(ctx, uid); err != nil {
		h.Logger.Warn("last_sync stamp failed", "user_id", uid, "err", err)
	}
	if h.Publish == nil {
		return
	}
	ev := queue.NewFavoriteActivityEvent(action, uid, fav.PokemonID, fav.Nickname)
	if err := h.Publish(ctx, ev); err != nil {
		h.Logger.Warn("favorite activity publish failed", "user_id", uid, "err", err)
	}
}

// currentUser reads the authenticated user id injected by the JWT
// middleware.
func currentUser(c echo.Context) (uint64, bool) {
	uid, ok := c.Get("user_id").(uint64)
	return uid, ok && uid > 0
}
