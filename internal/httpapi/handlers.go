package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"admin-console/internal/audit"
	"admin-console/internal/config"
	"admin-console/internal/gateway"
	"admin-console/internal/permission"
	"admin-console/internal/session"
	"admin-console/internal/settings"
	"admin-console/internal/token"
	"admin-console/pkg/logger"
	"admin-console/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Sessions *session.Manager
	Gateway  *gateway.Client
	Perms    *permission.Evaluator
	Settings *settings.Service
	Audit    *audit.Service
	Redis    *redis.Client
	Login    config.LoginConfig
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResult is the identity shape returned by the gateway credential
// check. Capabilities stay raw until normalized at this boundary; nothing
// downstream re-disambiguates them.
type loginResult struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Phone        string          `json:"phone"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	Role         string          `json:"role"`
	Capabilities json.RawMessage `json:"capabilities"`
	Country      string          `json:"country"`
}

// SignIn verifies credentials against the gateway and issues a session.
func (h Handlers) SignIn(c *gin.Context) {
	log := logger.FromGin(c)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	ip := c.ClientIP()
	attemptKey := "login_attempts:" + req.Username + ":" + ip
	if !h.allowAttempt(c, attemptKey) {
		h.auditDenied(c, req.Username, ip, "rate limited")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, try again later"})
		return
	}

	ctx := c.Request.Context()
	opts := gateway.Options{
		// No session yet; a stored default-country override wins over
		// the static config default inside the client.
		Country: h.Settings.DefaultCountry(ctx, ""),
	}
	flight := gateway.FlightFrom(c, h.Gateway)
	data, err := flight.Call(ctx, "auth.check", loginRequest{Username: req.Username, Password: req.Password}, opts)
	switch {
	case errors.Is(err, gateway.ErrAccessDenied):
		h.auditDenied(c, req.Username, ip, "credentials rejected")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	case errors.Is(err, gateway.ErrTransport):
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "service unavailable, try again"})
		return
	case err != nil:
		log.Warn("credential check failed", "err", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	var res loginResult
	if err := json.Unmarshal(data, &res); err != nil || res.ID == "" {
		log.Error("credential check returned malformed identity", "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "service unavailable, try again"})
		return
	}

	id := token.Identity{
		ID:           res.ID,
		Name:         res.Name,
		Phone:        res.Phone,
		Username:     res.Username,
		Email:        res.Email,
		Role:         res.Role,
		Capabilities: permission.NormalizeCapabilities(res.Capabilities),
		Country:      res.Country,
	}
	if err := h.Sessions.Issue(c, id); err != nil {
		log.Error("session issuance failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed"})
		return
	}

	h.resetAttempts(c, attemptKey)
	if err := h.Audit.LogLogin(ctx, id.ID, id.Username, id.Role, ip); err != nil {
		log.Warn("audit append failed", "err", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             id.ID,
		"name":           id.Name,
		"role":           id.Role,
		"capabilities":   id.Capabilities,
		"is_super_admin": h.Perms.IsSuperAdmin(id.Role, id.Capabilities),
	})
}

// SignOut destroys the session. Chain after session.Require.
func (h Handlers) SignOut(c *gin.Context) {
	id, _ := session.FromContext(c.Request.Context())
	h.Sessions.Destroy(c)
	if err := h.Audit.LogLogout(c.Request.Context(), id.ID, id.Username, c.ClientIP()); err != nil {
		logger.FromGin(c).Warn("audit append failed", "err", err)
	}
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

// Me returns the current identity.
func (h Handlers) Me(c *gin.Context) {
	id, ok := session.FromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":             id.ID,
		"name":           id.Name,
		"username":       id.Username,
		"email":          id.Email,
		"role":           id.Role,
		"capabilities":   id.Capabilities,
		"country":        id.Country,
		"is_super_admin": h.Perms.IsSuperAdmin(id.Role, id.Capabilities),
	})
}

// --- Console operations ---

// Forward returns a handler that dispatches one business operation through
// the request-scoped flight with the session identity attached. Capability
// gating belongs to the route chain, not here.
func (h Handlers) Forward(operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := session.FromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		var params map[string]any
		if c.Request.Body != nil && c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&params); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
				return
			}
		}

		opts := gateway.Options{
			OperatorID:     id.ID,
			SessionCountry: id.Country,
			// Explicit per-call override, e.g. ?country=SG.
			Country: c.Query("country"),
		}
		flight := gateway.FlightFrom(c, h.Gateway)
		data, err := flight.Call(c.Request.Context(), operation, params, opts)
		switch {
		case errors.Is(err, gateway.ErrAccessDenied):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		case errors.Is(err, gateway.ErrTransport):
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "service unavailable, try again"})
			return
		case err != nil:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json", orEmptyObject(data))
	}
}

// --- Settings ---

type updateSettingsRequest struct {
	Values map[string]string `json:"values"`
}

func (h Handlers) GetSettings(c *gin.Context) {
	ctx := c.Request.Context()
	out := gin.H{}
	for _, key := range []string{settings.KeyDefaultCountry, settings.KeyMaintenanceNotice} {
		v, ok, err := h.Settings.Get(ctx, key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "settings lookup failed"})
			return
		}
		if ok {
			out[key] = v
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Values) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "values required"})
		return
	}
	if err := h.Settings.SetAll(c.Request.Context(), req.Values); err != nil {
		if errors.Is(err, settings.ErrInvalidKey) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid key"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "settings update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// --- helpers ---

// allowAttempt is fail-open when no limiter backend is wired: login must
// keep working if redis is down, the throttle is defense in depth.
func (h Handlers) allowAttempt(c *gin.Context, key string) bool {
	if h.Redis == nil {
		return true
	}
	ok, err := utils.AllowLoginAttempt(c.Request.Context(), h.Redis, key, h.Login.MaxAttempts, h.Login.Window)
	if err != nil {
		logger.FromGin(c).Warn("login limiter unavailable", "err", err)
		return true
	}
	return ok
}

func (h Handlers) resetAttempts(c *gin.Context, key string) {
	if h.Redis == nil {
		return
	}
	if err := utils.ResetLoginAttempts(c.Request.Context(), h.Redis, key); err != nil {
		logger.FromGin(c).Warn("login limiter reset failed", "err", err)
	}
}

func (h Handlers) auditDenied(c *gin.Context, username, ip, reason string) {
	if err := h.Audit.LogLoginDenied(c.Request.Context(), username, ip, reason); err != nil {
		logger.FromGin(c).Warn("audit append failed", "err", err)
	}
}

func orEmptyObject(data json.RawMessage) []byte {
	if len(data) == 0 {
		return []byte("{}")
	}
	return data
}
