package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallevents/gatekeeper/internal/clock"
	"github.com/smallevents/gatekeeper/internal/submission"
	ticketdomain "github.com/smallevents/gatekeeper/internal/ticket/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTicketService struct {
	lastSubmission submission.ParsedSubmission
	processResult  ticketdomain.ProcessSubmissionResult
	processErr     error

	checkInReq    ticketdomain.CheckInRequest
	checkInTicket ticketdomain.Ticket
	checkInErr    error

	lookupTicket ticketdomain.Ticket
	lookupErr    error

	searchTickets []ticketdomain.Ticket
	searchErr     error
}

func (f *fakeTicketService) ProcessSubmission(ctx context.Context, sub submission.ParsedSubmission) (ticketdomain.ProcessSubmissionResult, error) {
	f.lastSubmission = sub
	return f.processResult, f.processErr
}

func (f *fakeTicketService) CheckIn(ctx context.Context, req ticketdomain.CheckInRequest) (ticketdomain.Ticket, error) {
	f.checkInReq = req
	return f.checkInTicket, f.checkInErr
}

func (f *fakeTicketService) Lookup(ctx context.Context, req ticketdomain.LookupRequest) (ticketdomain.Ticket, error) {
	return f.lookupTicket, f.lookupErr
}

func (f *fakeTicketService) Search(ctx context.Context, req ticketdomain.SearchRequest) ([]ticketdomain.Ticket, error) {
	return f.searchTickets, f.searchErr
}

func newTestServer(t *testing.T, svc ticketdomain.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandlingMiddleware())

	norm := submission.New(submission.Params{
		Log:     zap.NewNop(),
		Clock:   clock.NewFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)),
		Aliases: submission.StaticAliases(submission.DefaultAliases()),
	})

	s := &Server{
		engine:     r,
		log:        zap.NewNop(),
		normalizer: norm,
		ticketSvc:  svc,
	}
	s.registerAPIRoutes()
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleTicket() ticketdomain.Ticket {
	return ticketdomain.Ticket{
		ID:        snowflake.ID(7331),
		InvoiceNo: "9001",
		EventID:   snowflake.ID(42),
		Name:      "Jordan Example",
		Email:     "jordan@example.org",
		Church:    "Grace Chapel",
		Quantity:  2,
		CreatedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func TestWebhookCreatesTicket(t *testing.T) {
	svc := &fakeTicketService{
		processResult: ticketdomain.ProcessSubmissionResult{Ticket: sampleTicket(), Created: true},
	}
	r := newTestServer(t, svc)

	w := doJSON(r, http.MethodPost, "/v1/webhooks/forms", `{
		"formID": "240123456789",
		"q4_email4": "jordan@example.org",
		"q3_name3": "Jordan Example",
		"q10_invoiceId": "# INV-9001"
	}`)

	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["created"])
	assert.NotContains(t, body, "warning")

	assert.Equal(t, "jordan@example.org", svc.lastSubmission.Email)
	assert.Equal(t, "240123456789", svc.lastSubmission.FormID)
	assert.Equal(t, "9001", svc.lastSubmission.InvoiceNo)
}

func TestWebhookNestedPayload(t *testing.T) {
	svc := &fakeTicketService{
		processResult: ticketdomain.ProcessSubmissionResult{Ticket: sampleTicket(), Created: true},
	}
	r := newTestServer(t, svc)

	inner := `{"formID":"240123456789","q4_email4":"jordan@example.org","q10_invoiceId":"INV-9001"}`
	payload, err := json.Marshal(map[string]any{"rawRequest": inner})
	require.NoError(t, err)

	w := doJSON(r, http.MethodPost, "/v1/webhooks/forms", string(payload))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "9001", svc.lastSubmission.InvoiceNo)
}

func TestWebhookMissingRequiredFields(t *testing.T) {
	svc := &fakeTicketService{}
	r := newTestServer(t, svc)

	w := doJSON(r, http.MethodPost, "/v1/webhooks/forms", `{
		"q3_name3": "No Email",
		"q10_invoiceId": "INV-1"
	}`)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Success  bool   `json:"success"`
		Message  string `json:"message"`
		Received struct {
			Email     string `json:"email"`
			FormID    string `json:"formId"`
			InvoiceNo string `json:"invoiceNo"`
		} `json:"received"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "missing required fields", body.Message)
	assert.Empty(t, body.Received.Email)
	assert.Equal(t, "1", body.Received.InvoiceNo)
}

func TestWebhookInvalidBody(t *testing.T) {
	r := newTestServer(t, &fakeTicketService{})

	w := doJSON(r, http.MethodPost, "/v1/webhooks/forms", `[1,2,3]`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "validation_error", body.Error.Type)
}

func TestWebhookDuplicateReturnsExisting(t *testing.T) {
	svc := &fakeTicketService{
		processResult: ticketdomain.ProcessSubmissionResult{Ticket: sampleTicket(), Created: false},
	}
	r := newTestServer(t, svc)

	w := doJSON(r, http.MethodPost, "/v1/webhooks/forms", `{
		"formID": "240123456789",
		"q4_email4": "jordan@example.org",
		"q10_invoiceId": "INV-9001"
	}`)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["created"])
}

func TestWebhookEmailFailureStillSucceeds(t *testing.T) {
	svc := &fakeTicketService{
		processResult: ticketdomain.ProcessSubmissionResult{
			Ticket:    sampleTicket(),
			Created:   true,
			NotifyErr: errors.New("smtp down"),
		},
	}
	r := newTestServer(t, svc)

	w := doJSON(r, http.MethodPost, "/v1/webhooks/forms", `{
		"formID": "240123456789",
		"q4_email4": "jordan@example.org",
		"q10_invoiceId": "INV-9001"
	}`)

	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "confirmation email could not be sent", body["warning"])
}

func TestCheckInOK(t *testing.T) {
	ticket := sampleTicket()
	ticket.CheckedIn = true
	at := time.Date(2026, 3, 16, 9, 30, 0, 0, time.UTC)
	ticket.CheckInTime = &at

	svc := &fakeTicketService{checkInTicket: ticket}
	r := newTestServer(t, svc)

	w := doJSON(r, http.MethodPost, "/v1/checkin", `{"invoice_no": "9001"}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "9001", svc.checkInReq.Ref)

	var body struct {
		Success bool       `json:"success"`
		Ticket  ticketView `json:"ticket"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.True(t, body.Ticket.CheckedIn)
	assert.Equal(t, "7331", body.Ticket.ID)
}

func TestCheckInPrefersTicketID(t *testing.T) {
	svc := &fakeTicketService{checkInTicket: sampleTicket()}
	r := newTestServer(t, svc)

	doJSON(r, http.MethodPost, "/v1/checkin", `{"ticket_id": "7331", "invoice_no": "9001", "event_id": "42"}`)
	assert.Equal(t, "7331", svc.checkInReq.Ref)
	assert.Equal(t, "42", svc.checkInReq.EventID)
}

func TestCheckInConflict(t *testing.T) {
	at := time.Date(2026, 3, 16, 9, 30, 0, 0, time.UTC)
	svc := &fakeTicketService{
		checkInErr: &ticketdomain.AlreadyCheckedInError{Name: "Jordan Example", CheckedInAt: at},
	}
	r := newTestServer(t, svc)

	w := doJSON(r, http.MethodPost, "/v1/checkin", `{"invoice_no": "9001"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "already_checked_in", body.Error.Type)
	assert.Equal(t, "Jordan Example", body.Error.Name)
	require.NotNil(t, body.Error.CheckedInAt)
	assert.True(t, at.Equal(*body.Error.CheckedInAt))
}

func TestCheckInNotFound(t *testing.T) {
	svc := &fakeTicketService{checkInErr: ticketdomain.ErrNotFound}
	r := newTestServer(t, svc)

	w := doJSON(r, http.MethodPost, "/v1/checkin", `{"invoice_no": "missing"}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body.Error.Type)
}

func TestTicketLookup(t *testing.T) {
	svc := &fakeTicketService{lookupTicket: sampleTicket()}
	r := newTestServer(t, svc)

	w := doJSON(r, http.MethodGet, "/v1/tickets/9001", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Ticket ticketView `json:"ticket"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "9001", body.Ticket.InvoiceNo)
	assert.Equal(t, "42", body.Ticket.EventID)
	assert.Equal(t, "Grace Chapel", body.Ticket.Church)
}

func TestTicketLookupNotFound(t *testing.T) {
	svc := &fakeTicketService{lookupErr: ticketdomain.ErrNotFound}
	r := newTestServer(t, svc)

	w := doJSON(r, http.MethodGet, "/v1/tickets/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTicketSearch(t *testing.T) {
	svc := &fakeTicketService{searchTickets: []ticketdomain.Ticket{sampleTicket()}}
	r := newTestServer(t, svc)

	w := doJSON(r, http.MethodGet, "/v1/events/42/tickets?q=jordan", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool         `json:"success"`
		Count   int          `json:"count"`
		Tickets []ticketView `json:"tickets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Tickets, 1)
	assert.Equal(t, "Jordan Example", body.Tickets[0].Name)
}
