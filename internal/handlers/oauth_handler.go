package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"collabhub_backend/internal/logger"
	"collabhub_backend/internal/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const oauthStateCookie = "oauth_state"

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// OAuthHandler drives the Google sign-in flow. The callback redirects
// back to the frontend with the token pair in the fragment.
type OAuthHandler struct {
	*BaseHandler
	authService services.AuthService
	oauth       *oauth2.Config
	frontendURL string
}

func NewOAuthHandler(base *BaseHandler, authService services.AuthService, clientID, clientSecret, redirectURL, frontendURL string) *OAuthHandler {
	return &OAuthHandler{
		BaseHandler: base,
		authService: authService,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		frontendURL: frontendURL,
	}
}

func (h *OAuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	oauth := r.Group("/auth/google")
	{
		oauth.GET("", h.Start)
		oauth.GET("/callback", h.Callback)
	}
}

func (h *OAuthHandler) Start(c *gin.Context) {
	state := randomState(32)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", false, true)

	c.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthCodeURL(state))
}

func (h *OAuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing code or state"})
		return
	}

	stored, err := c.Cookie(oauthStateCookie)
	if err != nil || stored == "" || stored != state {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state"})
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	token, err := h.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		logger.WithError(err).Warn("oauth code exchange failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to exchange code"})
		return
	}

	client := h.oauth.Client(c.Request.Context(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch userinfo"})
		return
	}
	defer resp.Body.Close()

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to decode userinfo"})
		return
	}

	emailAddr := strings.ToLower(strings.TrimSpace(info.Email))
	if info.ID == "" || emailAddr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Google account missing email"})
		return
	}

	auth, err := h.authService.LoginWithGoogle(info.ID, emailAddr, strings.TrimSpace(info.Name))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	// hand the tokens to the SPA via the URL fragment so they never
	// hit server logs
	redirect := h.frontendURL + "/auth/callback#" + url.Values{
		"access_token":  {auth.AccessToken},
		"refresh_token": {auth.RefreshToken},
	}.Encode()

	c.Redirect(http.StatusTemporaryRedirect, redirect)
}

func randomState(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
