package handlers

import (
	"net/http"

	"familytrip/internal/domain/models"
	"familytrip/internal/http/middleware"
	"familytrip/internal/repositories"
	"familytrip/internal/services"

	"github.com/gin-gonic/gin"
)

func tripService(c *gin.Context) services.TripService {
	return services.TripService{
		Repo:      repositories.TripsRepository{},
		RequestID: middleware.GetRequestID(c),
	}
}

func userID(c *gin.Context) string {
	return middleware.GetIdentity(c).UserID
}

// POST /api/trips
func CreateTrip(c *gin.Context) {
	var in models.TripInput
	if !BindJSONOrError(c, &in) {
		return
	}
	trip, err := tripService(c).Create(c.Request.Context(), userID(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "trip": trip})
}

// GET /api/trips
func ListTrips(c *gin.Context) {
	trips, err := tripService(c).List(c.Request.Context(), userID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// GET /api/trips/:id
func GetTrip(c *gin.Context) {
	trip, err := tripService(c).Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

// PUT /api/trips/:id
func UpdateTrip(c *gin.Context) {
	var in models.TripInput
	if !BindJSONOrError(c, &in) {
		return
	}
	trip, err := tripService(c).Update(c.Request.Context(), userID(c), c.Param("id"), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "trip": trip})
}

// DELETE /api/trips/:id
func DeleteTrip(c *gin.Context) {
	if err := tripService(c).Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/trips/:id/suggestions
func SuggestForTrip(c *gin.Context) {
	var in services.SuggestInput
	if !BindJSONOrError(c, &in) {
		return
	}
	stream, err := chatService(c).Suggest(c.Request.Context(), middleware.GetIdentity(c), c.Param("id"), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writeStream(c, stream)
}
