package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Marcella2706/task2-GeekHaven/internal/auth"
	"github.com/Marcella2706/task2-GeekHaven/internal/domain"
	applog "github.com/Marcella2706/task2-GeekHaven/internal/log"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Auth  *auth.Service
	Store Pinger
	Redis Pinger // optional
}

func NewHandler(svc *auth.Service, store Pinger) *Handler {
	return &Handler{Auth: svc, Store: store}
}

const msgBadBody = "Invalid request body"

// fail writes err as {"message": ...}. Domain errors keep their message; anything else is
// logged and answered with the endpoint's generic message.
func fail(c *gin.Context, err error, generic string) {
	if de, ok := domain.AsError(err); ok {
		c.JSON(de.Kind.Status(), gin.H{"message": de.Message})
		return
	}
	applog.Ctx(c.Request.Context(), zap.String("request_id", c.GetString(requestIDKey))).
		Error(generic, zap.Error(err), zap.String("route", c.FullPath()))
	c.JSON(http.StatusInternalServerError, gin.H{"message": generic})
}

// bind decodes an optional JSON body. An empty body leaves in untouched so the
// service can report the missing fields itself.
func bind(c *gin.Context, in any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgBadBody})
		return false
	}
	return true
}

type registerReq struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

type sessionResp struct {
	Message string          `json:"message,omitempty"`
	Token   string          `json:"token"`
	User    domain.UserView `json:"user"`
}

// Register godoc
// @Summary Register a local account
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerReq true "register"
// @Success 201 {object} sessionResp
// @Failure 400 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in registerReq
	if !bind(c, &in) {
		return
	}
	ctx, sp := startSpan(c, "auth.register")
	s, err := h.Auth.Register(ctx, auth.RegisterInput{
		FullName: in.FullName,
		Email:    in.Email,
		Password: in.Password,
		Role:     in.Role,
		Phone:    in.Phone,
		Location: in.Location,
	})
	finishSpan(sp, err)
	if err != nil {
		fail(c, err, "Error registering user")
		return
	}
	c.JSON(http.StatusCreated, sessionResp{Message: "User registered successfully", Token: s.Token, User: s.User})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginReq true "login"
// @Success 200 {object} sessionResp
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if !bind(c, &in) {
		return
	}
	ctx, sp := startSpan(c, "auth.login")
	s, err := h.Auth.Login(ctx, in.Email, in.Password)
	finishSpan(sp, err)
	if err != nil {
		fail(c, err, "Error logging in")
		return
	}
	c.JSON(http.StatusOK, sessionResp{Message: "Login successful", Token: s.Token, User: s.User})
}

type googleReq struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

func googleResp(gs *auth.GoogleSession) sessionResp {
	msg := "Login successful"
	if gs.Created {
		msg = "Account created and logged in"
	}
	return sessionResp{Message: msg, Token: gs.Token, User: gs.User}
}

// Google godoc
// @Summary Sign in with a Google ID token
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body googleReq true "Google ID token and optional role for new accounts"
// @Success 200 {object} sessionResp
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/auth/google [post]
func (h *Handler) Google(c *gin.Context) {
	var in googleReq
	if !bind(c, &in) {
		return
	}
	ctx, sp := startSpan(c, "auth.google")
	gs, err := h.Auth.GoogleAuth(ctx, in.Token, in.Role)
	finishSpan(sp, err)
	if err != nil {
		fail(c, err, "Error with Google authentication")
		return
	}
	c.JSON(http.StatusOK, googleResp(gs))
}

// GoogleURL godoc
// @Summary Consent URL for the Google authorization-code flow
// @Tags auth
// @Produce json
// @Param role query string false "buyer or seller"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/auth/google/url [get]
func (h *Handler) GoogleURL(c *gin.Context) {
	url, state, err := h.Auth.GoogleAuthURL(c.Query("role"))
	if err != nil {
		fail(c, err, "Error with Google authentication")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "state": state})
}

// GoogleCallback godoc
// @Summary Complete the Google authorization-code flow
// @Tags auth
// @Produce json
// @Param code query string true "authorization code"
// @Param state query string true "state from /api/auth/google/url"
// @Success 200 {object} sessionResp
// @Failure 400 {object} map[string]string
// @Router /api/auth/google/callback [get]
func (h *Handler) GoogleCallback(c *gin.Context) {
	ctx, sp := startSpan(c, "auth.google_callback")
	gs, err := h.Auth.GoogleCallback(ctx, c.Query("code"), c.Query("state"))
	finishSpan(sp, err)
	if err != nil {
		fail(c, err, "Error with Google authentication")
		return
	}
	c.JSON(http.StatusOK, googleResp(gs))
}

// Refresh godoc
// @Summary Issue a fresh token for the caller
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} sessionResp
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	s, err := h.Auth.Refresh(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		fail(c, err, "Error refreshing token")
		return
	}
	c.JSON(http.StatusOK, sessionResp{Token: s.Token, User: s.User})
}

// Logout godoc
// @Summary Logout
// @Description Tokens are stateless; the client discards its copy.
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

type forgotReq struct {
	Email string `json:"email"`
}

type forgotResp struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken,omitempty"`
}

// ForgotPassword godoc
// @Summary Start a password reset
// @Description In dev reset mode the response carries resetToken; otherwise it is only mailed.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body forgotReq true "email"
// @Success 200 {object} forgotResp
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/auth/forgot-password [post]
func (h *Handler) ForgotPassword(c *gin.Context) {
	var in forgotReq
	if !bind(c, &in) {
		return
	}
	ctx, sp := startSpan(c, "auth.forgot_password")
	tok, err := h.Auth.ForgotPassword(ctx, in.Email)
	finishSpan(sp, err)
	if err != nil {
		fail(c, err, "Error processing forgot password")
		return
	}
	c.JSON(http.StatusOK, forgotResp{Message: "Password reset instructions sent to your email", ResetToken: tok})
}

type resetReq struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword godoc
// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body resetReq true "reset"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/auth/reset-password [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var in resetReq
	if !bind(c, &in) {
		return
	}
	ctx, sp := startSpan(c, "auth.reset_password")
	err := h.Auth.ResetPassword(ctx, in.ResetToken, in.NewPassword)
	finishSpan(sp, err)
	if err != nil {
		fail(c, err, "Error resetting password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "redis: " + err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
