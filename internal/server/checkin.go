package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	ticketdomain "github.com/smallevents/gatekeeper/internal/ticket/domain"
)

type checkInRequest struct {
	TicketID  string `json:"ticket_id"`
	InvoiceNo string `json:"invoice_no"`
	EventID   string `json:"event_id"`
}

func (s *Server) handleCheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	ref := strings.TrimSpace(req.TicketID)
	if ref == "" {
		ref = strings.TrimSpace(req.InvoiceNo)
	}

	got, err := s.ticketSvc.CheckIn(c.Request.Context(), ticketdomain.CheckInRequest{
		Ref:     ref,
		EventID: req.EventID,
	})
	if err != nil {
		s.metrics.ObserveCheckIn(checkInResult(err))
		AbortWithError(c, err)
		return
	}

	s.metrics.ObserveCheckIn("ok")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"ticket":  newTicketView(got),
	})
}

func checkInResult(err error) string {
	var conflict *ticketdomain.AlreadyCheckedInError
	switch {
	case errors.As(err, &conflict):
		return "duplicate"
	case isNotFoundError(err):
		return "not_found"
	case isValidationError(err):
		return "invalid"
	default:
		return "error"
	}
}
