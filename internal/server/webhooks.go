package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleFormWebhook ingests one form-provider delivery. Rejections for
// missing required fields answer with the values that were understood, so
// a misconfigured form template is debuggable from the provider's retry
// log alone.
func (s *Server) handleFormWebhook(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.metrics.ObserveWebhook("invalid")
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	parsed, err := s.normalizer.Normalize(payload)
	if err != nil {
		s.metrics.ObserveWebhook("invalid")
		AbortWithError(c, err)
		return
	}

	if parsed.Email == "" || parsed.FormID == "" {
		s.metrics.ObserveWebhook("rejected")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "missing required fields",
			"received": gin.H{
				"email":     parsed.Email,
				"formId":    parsed.FormID,
				"invoiceNo": parsed.InvoiceNo,
			},
		})
		return
	}

	result, err := s.ticketSvc.ProcessSubmission(c.Request.Context(), parsed)
	if err != nil {
		s.metrics.ObserveWebhook("failed")
		AbortWithError(c, err)
		return
	}

	body := gin.H{
		"success": true,
		"created": result.Created,
		"ticket":  newTicketView(result.Ticket),
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
		s.metrics.ObserveTicketCreated()
		if result.NotifyErr != nil {
			s.metrics.ObserveTicketEmail("failed")
			body["warning"] = "confirmation email could not be sent"
		} else {
			s.metrics.ObserveTicketEmail("sent")
		}
	} else {
		s.metrics.ObserveTicketDeduplicated()
	}
	s.metrics.ObserveWebhook("accepted")

	c.JSON(status, body)
}

// webhookRateLimit throttles deliveries per client address. Redis being
// down fails open; dropping paid registrations is worse than letting a
// burst through.
func (s *Server) webhookRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}

		res, err := s.limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			s.log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			s.metrics.ObserveRateLimited()
			if res.RetryAfter > 0 {
				seconds := int(math.Ceil(res.RetryAfter.Seconds()))
				c.Header("Retry-After", strconv.Itoa(seconds))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{
				Success: false,
				Error: errorPayload{
					Type:    "rate_limited",
					Message: "too many requests",
				},
			})
			return
		}
		c.Next()
	}
}
