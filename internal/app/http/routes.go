package routes

import (
	adminapi "github.com/sefailyasoz95/test-mate/internal/api/admin"
	appsapi "github.com/sefailyasoz95/test-mate/internal/api/apps"
	authapi "github.com/sefailyasoz95/test-mate/internal/api/auth"
	billingapi "github.com/sefailyasoz95/test-mate/internal/api/billing"
	stripewebhooks "github.com/sefailyasoz95/test-mate/internal/api/stripewebhook"
	usersapi "github.com/sefailyasoz95/test-mate/internal/api/users"
	"github.com/sefailyasoz95/test-mate/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth    *authapi.Handler
	Users   *usersapi.Handler
	Apps    *appsapi.Handler
	Billing *billingapi.Handler
	Webhook *stripewebhooks.Handler
	Admin   *adminapi.Handler
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	// The webhook stays outside every middleware group: its signature check
	// needs the raw body.
	r.POST("/webhook", h.Webhook.Handle)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/products", h.Billing.ListProducts)
	r.GET("/auth/google", h.Auth.GoogleStart)
	r.GET("/auth/google/callback", h.Auth.GoogleCallback)

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())
	public.POST("/register", h.Auth.Register)
	public.POST("/login", h.Auth.Login)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.GET("/me", h.Users.GetCurrentUser)
	auth.GET("/apps", h.Apps.ListApps)
	auth.POST("/apps", h.Apps.CreateApp)
	auth.PUT("/apps/:id/link", h.Apps.AttachLink)
	auth.GET("/purchases", h.Billing.ListPurchases)
	auth.POST("/create-checkout-session", h.Billing.CreateCheckoutSession)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/dashboard", h.Admin.Dashboard)
	admin.GET("/users", h.Admin.ListAllUsers)
	admin.GET("/purchases", h.Admin.ListAllPurchases)
	admin.GET("/user/:id", h.Admin.GetUserDetails)
	admin.POST("/apps/update-status", h.Admin.UpdateStatus)
	admin.POST("/apps/update-testers", h.Admin.UpdateTesters)
	admin.POST("/apps/test-details", h.Admin.AttachTestDetails)
}
