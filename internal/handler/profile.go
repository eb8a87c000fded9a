package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Eizen94/pokedex-api/internal/model"
	"github.com/Eizen94/pokedex-api/internal/repository"
)

// ProfileStore is the persistence slice the profile endpoints need.
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID uint64) (model.Profile, error)
	UpdateDisplay(ctx context.Context, userID uint64, displayName, photoURL string) (model.Profile, error)
	UpdateSettings(ctx context.Context, userID uint64, s model.Settings) (model.Profile, error)
}

// ProfileHandler serves the mirrored profile document and its settings bag.
type ProfileHandler struct {
	Profiles ProfileStore
}

func NewProfileHandler(p ProfileStore) *ProfileHandler {
	return &ProfileHandler{Profiles: p}
}

type updateProfileReq struct {
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
}

// Get handles GET /v1/profile.
func (h *ProfileHandler) Get(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Profiles.GetByUserID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	return c.JSON(http.StatusOK, p)
}

// Update handles PUT /v1/profile (display name / photo URL).
func (h *ProfileHandler) Update(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "display_name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Profiles.UpdateDisplay(ctx, uid, displayName, strings.TrimSpace(req.PhotoURL))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}
	return c.JSON(http.StatusOK, p)
}

// UpdateSettings handles PUT /v1/profile/settings (whole-bag replace).  The
// document store enforces no schema, so the bag is validated here before it
// is written.
func (h *ProfileHandler) UpdateSettings(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var s model.Settings
	if err := c.Bind(&s); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	switch s.Theme {
	case "light", "dark", "system":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "theme must be light, dark or system"})
	}
	if strings.TrimSpace(s.Language) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "language required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Profiles.UpdateSettings(ctx, uid, s)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update settings failed"})
	}
	return c.JSON(http.StatusOK, p)
}
