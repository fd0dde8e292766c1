package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"familytrip/internal/domain/models"
	"familytrip/internal/http/middleware"
	"familytrip/internal/llm"
	"familytrip/internal/repositories"
	"familytrip/internal/services"
	"familytrip/internal/utils"

	"github.com/gin-gonic/gin"
)

var (
	providerMu  sync.RWMutex
	provider    llm.Provider = llm.Unavailable{Reason: errors.New("provider not configured")}
	maxTokens   int          = services.DefaultMaxTokens
	temperature float64      = services.DefaultTemperature
)

// SetProvider installs the model provider and generation parameters used by chat.
func SetProvider(p llm.Provider, tokens int, temp float64) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
	maxTokens = tokens
	temperature = temp
}

func currentProvider() llm.Provider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider
}

func chatService(c *gin.Context) services.ChatService {
	providerMu.RLock()
	defer providerMu.RUnlock()
	reqID := middleware.GetRequestID(c)
	temp := temperature
	return services.ChatService{
		Provider:    provider,
		Trips:       services.TripService{Repo: repositories.TripsRepository{}, RequestID: reqID},
		MaxTokens:   maxTokens,
		Temperature: &temp,
		RequestID:   reqID,
	}
}

// POST /api/chat
func Chat(c *gin.Context) {
	var req models.ChatRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	stream, err := chatService(c).Stream(c.Request.Context(), middleware.GetIdentity(c), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writeStream(c, stream)
}

// writeStream relays the upstream deltas. With ?protocol=data every delta is framed
// as `0:<json string>\n` and a failure mid-stream is reported as `3:<json string>\n`.
func writeStream(c *gin.Context, s *services.ChatStream) {
	defer s.Close()

	dataProtocol := c.Query("protocol") == "data"
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Prompt-Variant", string(s.Variant))
	if dataProtocol {
		c.Header("X-Vercel-AI-Data-Stream", "v1")
	}
	c.Status(http.StatusOK)

	c.Writer.WriteHeaderNow()

	done := c.Request.Context().Done()
	for s.Next() {
		select {
		case <-done:
			return
		default:
		}
		if dataProtocol {
			b, _ := json.Marshal(s.Text())
			fmt.Fprintf(c.Writer, "0:%s\n", b)
		} else {
			io.WriteString(c.Writer, s.Text())
		}
		c.Writer.Flush()
	}

	if err := s.Err(); err != nil {
		utils.LogError(middleware.GetRequestID(c), "chat", "stream", err)
		if dataProtocol {
			b, _ := json.Marshal(upstreamMessage)
			fmt.Fprintf(c.Writer, "3:%s\n", b)
			c.Writer.Flush()
		}
	}
}
