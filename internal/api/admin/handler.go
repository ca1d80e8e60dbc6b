package admin

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/sefailyasoz95/test-mate/internal/domain/apps"
	"github.com/sefailyasoz95/test-mate/internal/domain/billing"
	"github.com/sefailyasoz95/test-mate/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type AppStore interface {
	ByID(ctx context.Context, id string) (apps.App, error)
	SetStatus(ctx context.Context, id string, status apps.Status) error
	SetTesterAccounts(ctx context.Context, id string, accounts string, status apps.Status) error
	SetTestDetails(ctx context.Context, id string, review string, screenshots []string, status apps.Status) error
}

type ScreenshotStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

type Handler struct {
	DB          *gorm.DB
	Apps        AppStore
	Screenshots ScreenshotStore
	Log         zerolog.Logger
}

func NewHandler(db *gorm.DB, appStore AppStore, screenshots ScreenshotStore, log zerolog.Logger) *Handler {
	return &Handler{DB: db, Apps: appStore, Screenshots: screenshots, Log: log}
}

type AdminUser struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	AuthProvider string `json:"auth_provider"`
	CreatedAt    string `json:"created_at"`
}

type AdminPurchase struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	AppID       string  `json:"app_id"`
	PackageType string  `json:"package_type"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	ExpiresAt   string  `json:"expires_at"`
}

type AdminStats struct {
	TotalUsers    int            `json:"total_users"`
	TotalRevenue  float64        `json:"total_revenue"`
	RecentRevenue float64        `json:"recent_revenue"`
	AppsPerStatus map[string]int `json:"apps_per_status"`
}

func (h *Handler) ListAllUsers(c *gin.Context) {
	var list []users.User
	if err := h.DB.Order("created_at DESC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	var result []AdminUser
	for _, u := range list {
		result = append(result, AdminUser{
			ID:           u.ID,
			Name:         u.Name,
			Email:        u.Email,
			Role:         u.Role,
			AuthProvider: u.AuthProvider,
			CreatedAt:    u.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListAllPurchases(c *gin.Context) {
	type row struct {
		billing.Purchase
		Email string
	}
	var rows []row
	err := h.DB.Model(&billing.Purchase{}).
		Select("purchases.*, users.email").
		Joins("LEFT JOIN users ON users.id = purchases.user_id").
		Order("purchases.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load purchases"})
		return
	}

	var result []AdminPurchase
	for _, r := range rows {
		result = append(result, AdminPurchase{
			ID:          r.ID,
			Email:       r.Email,
			AppID:       r.AppID,
			PackageType: r.PackageType,
			Amount:      r.Amount,
			Status:      r.Status,
			CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04"),
			ExpiresAt:   r.ExpiresAt.Format("2006-01-02 15:04"),
		})
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Dashboard(c *gin.Context) {
	var stats AdminStats

	var totalUsers int64
	h.DB.Model(&users.User{}).Count(&totalUsers)
	stats.TotalUsers = int(totalUsers)

	h.DB.Model(&billing.Purchase{}).
		Where("status = ?", billing.PurchaseCompleted).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalRevenue)

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	h.DB.Model(&billing.Purchase{}).
		Where("status = ? AND created_at >= ?", billing.PurchaseCompleted, thirtyDaysAgo).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.RecentRevenue)

	type statusCount struct {
		Status string
		Count  int
	}
	var counts []statusCount
	h.DB.Model(&apps.App{}).
		Select("status, COUNT(id) as count").
		Group("status").
		Scan(&counts)

	stats.AppsPerStatus = map[string]int{}
	for _, sc := range counts {
		stats.AppsPerStatus[sc.Status] = sc.Count
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetUserDetails(c *gin.Context) {
	userID := c.Param("id")

	var user users.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var userApps []apps.App
	if err := h.DB.Where("user_id = ?", userID).Find(&userApps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch apps"})
		return
	}

	var purchases []billing.Purchase
	if err := h.DB.Where("user_id = ?", userID).Find(&purchases).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch purchases"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      user,
		"apps":      userApps,
		"purchases": purchases,
	})
}
