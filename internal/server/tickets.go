package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	ticketdomain "github.com/smallevents/gatekeeper/internal/ticket/domain"
)

// ticketView is the public shape of a ticket. Snowflake ids serialize as
// strings so javascript clients never hit float64 precision loss.
type ticketView struct {
	ID             string         `json:"id"`
	InvoiceNo      string         `json:"invoice_no"`
	EventID        string         `json:"event_id"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone,omitempty"`
	Church         string         `json:"church,omitempty"`
	YouthMinistry  string         `json:"youth_ministry,omitempty"`
	Quantity       int            `json:"quantity"`
	ProductDetails string         `json:"product_details,omitempty"`
	TotalAmount    float64        `json:"total_amount"`
	CheckedIn      bool           `json:"checked_in"`
	CheckInTime    *time.Time     `json:"check_in_time,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

func newTicketView(t ticketdomain.Ticket) ticketView {
	return ticketView{
		ID:             t.ID.String(),
		InvoiceNo:      t.InvoiceNo,
		EventID:        t.EventID.String(),
		Name:           t.Name,
		Email:          t.Email,
		Phone:          t.Phone,
		Church:         t.Church,
		YouthMinistry:  t.YouthMinistry,
		Quantity:       t.Quantity,
		ProductDetails: t.ProductDetails,
		TotalAmount:    t.TotalAmount,
		CheckedIn:      t.CheckedIn,
		CheckInTime:    t.CheckInTime,
		Metadata:       t.Metadata,
		CreatedAt:      t.CreatedAt,
	}
}

func (s *Server) handleTicketLookup(c *gin.Context) {
	got, err := s.ticketSvc.Lookup(c.Request.Context(), ticketdomain.LookupRequest{
		InvoiceNo: c.Param("invoice_no"),
		EventID:   c.Query("event_id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"ticket":  newTicketView(got),
	})
}

func (s *Server) handleTicketSearch(c *gin.Context) {
	got, err := s.ticketSvc.Search(c.Request.Context(), ticketdomain.SearchRequest{
		EventID: c.Param("event_id"),
		Query:   c.Query("q"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	views := make([]ticketView, 0, len(got))
	for _, t := range got {
		views = append(views, newTicketView(t))
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(views),
		"tickets": views,
	})
}
