package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterConfig struct {
	Service     string
	CORSOrigins []string
	Global      *RateLimiter
	Auth        *RateLimiter // applied to /api/auth only
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept", requestIDKey},
		ExposeHeaders: []string{"X-Signature", requestIDKey, "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func NewRouter(h *Handler, rc RouterConfig) *gin.Engine {
	if rc.Service == "" {
		rc.Service = "resellhub-api"
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Trace(rc.Service))
	r.Use(Prometheus())
	r.Use(AccessLog())
	r.Use(cors.New(corsConfig(rc.CORSOrigins)))
	r.Use(SignResponse(h.Auth.Secret()))
	if rc.Global != nil {
		r.Use(rc.Global.Handler())
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authMW := AuthJWT(h.Auth)

	api := r.Group("/api/auth")
	if rc.Auth != nil {
		api.Use(rc.Auth.Handler())
	}
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.POST("/google", h.Google)
		api.GET("/google/url", h.GoogleURL)
		api.GET("/google/callback", h.GoogleCallback)
		api.POST("/refresh", authMW, h.Refresh)
		api.POST("/logout", authMW, h.Logout)
		api.POST("/forgot-password", h.ForgotPassword)
		api.POST("/reset-password", h.ResetPassword)
	}

	users := r.Group("/api/users", authMW)
	{
		users.GET("/profile", h.Profile)
		users.PUT("/profile", h.UpdateProfile)
		users.GET("/seller/profile", SellerOnly(), h.SellerProfile)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})
	return r
}
