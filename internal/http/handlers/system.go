package handlers

import (
	"net/http"
	"sync"

	intconfig "familytrip/internal/config"
	intdb "familytrip/internal/db"
	"familytrip/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"message":  "familytrip backend draait",
		"provider": currentProvider().Name(),
	})
}

func DBCheck(c *gin.Context) {
	ctx := c.Request.Context()
	if err := intconfig.EnsureDB(ctx); err != nil {
		respondError(c, http.StatusInternalServerError, "db_unavailable", "database niet bereikbaar", err.Error())
		return
	}
	ok, err := intdb.HasTable(ctx, intconfig.DB, "trips")
	if err != nil || !ok {
		respondError(c, http.StatusInternalServerError, "schema_missing", "tabel trips ontbreekt", errString(err))
		return
	}
	var count int
	if err := intconfig.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM trips").Scan(&count); err != nil {
		respondError(c, http.StatusInternalServerError, "db_query_failed", "query op database mislukt", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "databaseverbinding OK",
		"driver":      intconfig.DB.DriverName(),
		"trips_in_db": count,
		"request_id":  middleware.GetRequestID(c),
	})
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "router nog niet klaar"})
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method": rt.Method,
			"path":   rt.Path,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
