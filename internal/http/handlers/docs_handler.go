package handlers

import (
	"net/http"

	"familytrip/internal/http/middleware"
	"familytrip/internal/services"

	"github.com/gin-gonic/gin"
)

func docsService(c *gin.Context) services.DocsService {
	return services.DocsService{
		Trips:     tripService(c),
		RequestID: middleware.GetRequestID(c),
	}
}

// GET /api/trips/:id/pdf
func GetTripPDF(c *gin.Context) {
	pdfBytes, filename, err := docsService(c).TripPDF(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// GET /api/trips/:id/calendar
func GetTripCalendar(c *gin.Context) {
	ics, filename, err := docsService(c).TripCalendar(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", ics)
}
