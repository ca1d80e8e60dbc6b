package auth

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/sefailyasoz95/test-mate/config"
	"github.com/sefailyasoz95/test-mate/internal/domain/users"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func googleOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     config.GOOGLE_CLIENT_ID,
		ClientSecret: config.GOOGLE_CLIENT_SECRET,
		RedirectURL:  config.GOOGLE_REDIRECT_URL,
		Scopes: []string{
			"openid",
			"email",
			"profile",
		},
		Endpoint: google.Endpoint,
	}
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GET /auth/google
func (h *Handler) GoogleStart(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate state"})
		return
	}

	// state lives in an HttpOnly cookie for the round trip
	c.SetCookie(
		"oauth_state",
		state,
		300, // 5 minutes
		"/",
		"",    // domain (set in prod)
		false, // secure (true in prod HTTPS)
		true,  // httpOnly
	)

	url := googleOAuthConfig().AuthCodeURL(state, oauth2.AccessTypeOnline)
	c.Redirect(http.StatusFound, url)
}

// GET /auth/google/callback
func (h *Handler) GoogleCallback(c *gin.Context) {
	stateCookie, err := c.Cookie("oauth_state")
	if err != nil || stateCookie == "" || stateCookie != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}

	ctx := c.Request.Context()
	conf := googleOAuthConfig()

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		h.Log.Warn().Err(err).Msg("google code exchange failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "code exchange failed"})
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing id_token"})
		return
	}

	provider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "oidc provider unavailable"})
		return
	}

	idToken, err := provider.Verifier(&oidc.Config{ClientID: conf.ClientID}).Verify(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid id_token"})
		return
	}

	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil || claims.Sub == "" || claims.Email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incomplete id_token claims"})
		return
	}

	user, err := h.upsertGoogleUser(claims.Sub, claims.Email, claims.Name)
	if err != nil {
		h.Log.Error().Err(err).Str("email", claims.Email).Msg("google user upsert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store user"})
		return
	}

	signed, err := signToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign token"})
		return
	}

	if config.GOOGLE_FRONTEND_REDIRECT != "" {
		c.Redirect(http.StatusFound, config.GOOGLE_FRONTEND_REDIRECT+"?token="+signed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": signed})
}

func (h *Handler) upsertGoogleUser(sub, email, name string) (*users.User, error) {
	var user users.User
	err := h.DB.Where("google_sub = ?", sub).First(&user).Error
	if err == nil {
		return &user, nil
	}

	// Link an existing local account with the same email, otherwise create.
	err = h.DB.Where("email = ?", email).First(&user).Error
	if err == nil {
		if err := h.DB.Model(&user).Updates(map[string]interface{}{
			"google_sub":    sub,
			"auth_provider": "google",
		}).Error; err != nil {
			return nil, err
		}
		user.GoogleSub = &sub
		return &user, nil
	}

	user = users.User{
		Name:         name,
		Email:        email,
		AuthProvider: "google",
		GoogleSub:    &sub,
		Role:         "user",
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
