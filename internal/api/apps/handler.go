package apps

import (
	"context"
	"net/http"

	domain "github.com/sefailyasoz95/test-mate/internal/domain/apps"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AppStore interface {
	Create(ctx context.Context, app *domain.App) error
	ByID(ctx context.Context, id string) (domain.App, error)
	ByUser(ctx context.Context, userID uint) ([]domain.App, error)
	SetLink(ctx context.Context, id string, link string) error
}

type Handler struct {
	Apps AppStore
	Log  zerolog.Logger
}

func NewHandler(apps AppStore, log zerolog.Logger) *Handler {
	return &Handler{Apps: apps, Log: log}
}

// CreateApp registers a new app for the current user. New apps start in
// waiting_for_purchase.
func (h *Handler) CreateApp(c *gin.Context) {
	var body struct {
		Name        string `json:"name" binding:"required"`
		PackageName string `json:"package_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and package_name are required"})
		return
	}

	if !domain.IsValidPackageName(body.PackageName) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "package_name must be a valid reverse-DNS identifier (e.g. com.example.app)"})
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	app := domain.App{
		UserID:      userID,
		Name:        body.Name,
		PackageName: body.PackageName,
		Status:      string(domain.StatusWaitingForPurchase),
	}
	if err := h.Apps.Create(c.Request.Context(), &app); err != nil {
		h.Log.Error().Err(err).Uint("user_id", userID).Msg("failed to create app")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create app"})
		return
	}

	c.JSON(http.StatusCreated, app)
}

// ListApps returns the current user's apps, newest first.
func (h *Handler) ListApps(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	list, err := h.Apps.ByUser(c.Request.Context(), userID)
	if err != nil {
		h.Log.Error().Err(err).Uint("user_id", userID).Msg("failed to list apps")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load apps"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// AttachLink stores the Google Play listing URL on one of the user's apps.
func (h *Handler) AttachLink(c *gin.Context) {
	var body struct {
		AppLink string `json:"appLink" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "appLink is required"})
		return
	}

	appID := c.Param("id")
	userID := c.GetUint("user_id")

	app, err := h.Apps.ByID(c.Request.Context(), appID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "App not found"})
		return
	}
	if app.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	if err := h.Apps.SetLink(c.Request.Context(), appID, body.AppLink); err != nil {
		h.Log.Error().Err(err).Str("app_id", appID).Msg("failed to attach store link")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update app"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
