package api

import (
	"log/slog"
	stdhttp "net/http"

	intconfig "familytrip/internal/config"
	h "familytrip/internal/http/handlers"
	"familytrip/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, auth *middleware.Authenticator) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.CORS(env.CORSAllowedOrigins),
		middleware.AuthOptional(auth),
		middleware.Logger(),
		gin.Recovery(),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		slog.Warn("failed to set trusted proxies", "error", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route niet gevonden",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		api.GET("/auth/session", h.Session)
		api.POST("/chat", h.Chat)

		trips := api.Group("/trips", middleware.RequireAuth())
		trips.GET("", h.ListTrips)
		trips.POST("", h.CreateTrip)
		trips.GET("/:id", h.GetTrip)
		trips.PUT("/:id", h.UpdateTrip)
		trips.DELETE("/:id", h.DeleteTrip)
		trips.GET("/:id/pdf", h.GetTripPDF)
		trips.GET("/:id/calendar", h.GetTripCalendar)
		trips.POST("/:id/suggestions", h.SuggestForTrip)
	}

	h.SetRouter(r)
	return r
}
