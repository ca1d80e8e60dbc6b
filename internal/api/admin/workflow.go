package admin

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sefailyasoz95/test-mate/internal/domain/apps"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UpdateStatus moves an app to an explicitly named target status. The
// transition is validated against the workflow table; a rejected transition
// leaves the stored status untouched.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var body struct {
		AppID  string `json:"appId"`
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.AppID == "" || body.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "appId and status are required"})
		return
	}

	target, err := apps.ParseStatus(body.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
		return
	}

	app, err := h.Apps.ByID(c.Request.Context(), body.AppID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "App not found"})
		return
	}

	if err := apps.ValidateTransition(apps.Status(app.Status), target); err != nil {
		if errors.Is(err, apps.ErrInvalidTransition) || errors.Is(err, apps.ErrUnknownStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate transition"})
		return
	}

	if err := h.Apps.SetStatus(c.Request.Context(), body.AppID, target); err != nil {
		h.Log.Error().Err(err).Str("app_id", body.AppID).Msg("failed to update app status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update app status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("App status updated to %s", target),
	})
}

// UpdateTesters stores the opaque tester-credential blob and advances the
// app, defaulting to testers_added.
func (h *Handler) UpdateTesters(c *gin.Context) {
	var body struct {
		AppID          string `json:"appId"`
		TesterAccounts string `json:"testerAccounts"`
		Status         string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.AppID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "App ID is required"})
		return
	}
	if body.TesterAccounts == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tester accounts are required"})
		return
	}

	target := apps.StatusTestersAdded
	if body.Status != "" {
		parsed, err := apps.ParseStatus(body.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
			return
		}
		target = parsed
	}

	app, err := h.Apps.ByID(c.Request.Context(), body.AppID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "App not found"})
		return
	}

	if err := apps.ValidateTransition(apps.Status(app.Status), target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Apps.SetTesterAccounts(c.Request.Context(), body.AppID, body.TesterAccounts, target); err != nil {
		h.Log.Error().Err(err).Str("app_id", body.AppID).Msg("failed to update tester accounts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update app"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Tester accounts added successfully",
	})
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_\s]`)

// AttachTestDetails uploads the final review screenshots to object storage
// and persists the review text plus the public URLs, completing the test.
func (h *Handler) AttachTestDetails(c *gin.Context) {
	appID := c.PostForm("appId")
	review := c.PostForm("review")
	if appID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "App ID is required"})
		return
	}

	app, err := h.Apps.ByID(c.Request.Context(), appID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "App not found"})
		return
	}

	target := apps.StatusTestReviewCompleted
	if err := apps.ValidateTransition(apps.Status(app.Status), target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form data"})
		return
	}

	safeName := strings.ToLower(strings.Join(strings.Fields(unsafeNameChars.ReplaceAllString(app.Name, "")), "_"))

	var screenshotURLs []string
	for _, fh := range form.File["screenshots"] {
		file, err := fh.Open()
		if err != nil {
			h.Log.Warn().Err(err).Str("app_id", appID).Str("file", fh.Filename).Msg("failed to open upload")
			continue
		}

		key := fmt.Sprintf("%s/%s_%s%s", appID, safeName, uuid.NewString(), filepath.Ext(fh.Filename))
		url, err := h.Screenshots.Upload(c.Request.Context(), key, file, fh.Size, fh.Header.Get("Content-Type"))
		file.Close()
		if err != nil {
			// Skip this file but keep the rest.
			h.Log.Warn().Err(err).Str("app_id", appID).Str("file", fh.Filename).Msg("screenshot upload failed")
			continue
		}
		screenshotURLs = append(screenshotURLs, url)
	}

	if err := h.Apps.SetTestDetails(c.Request.Context(), appID, review, screenshotURLs, target); err != nil {
		h.Log.Error().Err(err).Str("app_id", appID).Msg("failed to store test details")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update app"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"screenshots": screenshotURLs,
	})
}
