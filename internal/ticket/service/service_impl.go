package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallevents/gatekeeper/internal/clock"
	eventdomain "github.com/smallevents/gatekeeper/internal/event/domain"
	"github.com/smallevents/gatekeeper/internal/providers/email"
	"github.com/smallevents/gatekeeper/internal/providers/qr"
	"github.com/smallevents/gatekeeper/internal/submission"
	"github.com/smallevents/gatekeeper/internal/ticket/domain"
	userdomain "github.com/smallevents/gatekeeper/internal/user/domain"
	pkgdb "github.com/smallevents/gatekeeper/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const searchLimit = 50

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
	Event eventdomain.Service
	User  userdomain.Service
	QR    qr.Generator
	Email email.Provider
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	event eventdomain.Service
	user  userdomain.Service
	qr    qr.Generator
	email email.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ticket.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		event: p.Event,
		user:  p.User,
		qr:    p.QR,
		email: p.Email,
	}
}

// ProcessSubmission turns one normalized webhook delivery into a ticket.
// The invoice number gates idempotency twice: a pre-check catches the
// common replay cheaply, and the unique index catches concurrent replays
// at insert time. Only a fresh insert triggers the QR and email side
// effects, so a retried delivery never double-sends.
func (s *Service) ProcessSubmission(ctx context.Context, sub submission.ParsedSubmission) (domain.ProcessSubmissionResult, error) {
	if strings.TrimSpace(sub.Email) == "" {
		return domain.ProcessSubmissionResult{}, domain.ErrMissingEmail
	}
	if strings.TrimSpace(sub.FormID) == "" {
		return domain.ProcessSubmissionResult{}, domain.ErrMissingFormID
	}
	if strings.TrimSpace(sub.InvoiceNo) == "" {
		return domain.ProcessSubmissionResult{}, domain.ErrMissingInvoiceNo
	}

	existing, err := s.repo.FindByInvoiceNo(ctx, s.db, sub.InvoiceNo)
	if err != nil {
		return domain.ProcessSubmissionResult{}, err
	}
	if existing != nil {
		s.log.Info("duplicate submission ignored",
			zap.String("invoice_no", sub.InvoiceNo),
			zap.String("ticket_id", existing.ID.String()),
		)
		return domain.ProcessSubmissionResult{Ticket: *existing, Created: false}, nil
	}

	usr, err := s.user.EnsureByEmail(ctx, sub.Email)
	if err != nil {
		return domain.ProcessSubmissionResult{}, fmt.Errorf("ensure user: %w", err)
	}

	evt, err := s.event.EnsureByFormID(ctx, eventdomain.EnsureEventRequest{
		FormID: sub.FormID,
		Title:  sub.EventName,
	})
	if err != nil {
		return domain.ProcessSubmissionResult{}, fmt.Errorf("ensure event: %w", err)
	}

	quantity := sub.Quantity
	if quantity < 1 {
		quantity = 1
	}

	now := s.clock.Now()
	ticket := domain.Ticket{
		ID:             s.genID.Generate(),
		InvoiceNo:      sub.InvoiceNo,
		UserID:         usr.ID,
		EventID:        evt.ID,
		Name:           sub.Name,
		Email:          usr.Email,
		Phone:          sub.Phone,
		Church:         sub.Church,
		YouthMinistry:  sub.YouthMinistry,
		Quantity:       quantity,
		ProductDetails: sub.ProductDetails,
		TotalAmount:    sub.TotalAmount,
		Metadata:       metadataFor(sub),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &ticket); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			// A concurrent delivery of the same invoice won the insert.
			raced, findErr := s.repo.FindByInvoiceNo(ctx, s.db, sub.InvoiceNo)
			if findErr == nil && raced != nil {
				return domain.ProcessSubmissionResult{Ticket: *raced, Created: false}, nil
			}
		}
		return domain.ProcessSubmissionResult{}, err
	}

	s.log.Info("ticket created",
		zap.String("invoice_no", ticket.InvoiceNo),
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("event_id", evt.ID.String()),
	)

	result := domain.ProcessSubmissionResult{Ticket: ticket, Created: true}
	result.NotifyErr = s.notify(ctx, ticket, evt, sub)
	return result, nil
}

// notify renders the QR code and sends the confirmation email. Failures
// here never roll back the ticket; the caller decides how to surface them.
func (s *Service) notify(ctx context.Context, ticket domain.Ticket, evt eventdomain.Event, sub submission.ParsedSubmission) error {
	qrURL, err := s.qr.DataURL(ticket.InvoiceNo)
	if err != nil {
		s.log.Warn("qr generation failed",
			zap.String("invoice_no", ticket.InvoiceNo),
			zap.Error(err),
		)
		return fmt.Errorf("generate qr: %w", err)
	}

	msg := email.TicketEmail{
		To:         ticket.Email,
		Name:       ticket.Name,
		EventTitle: evt.Title,
		EventDate:  sub.EventDate,
		InvoiceNo:  ticket.InvoiceNo,
		QRDataURL:  qrURL,
	}
	if err := s.email.SendTicket(ctx, msg); err != nil {
		s.log.Warn("ticket email failed",
			zap.String("invoice_no", ticket.InvoiceNo),
			zap.String("to", ticket.Email),
			zap.Error(err),
		)
		return fmt.Errorf("send ticket email: %w", err)
	}
	return nil
}

// CheckIn marks a ticket used. The ref resolves as a ticket id first and
// an invoice number second, so both the QR payload and a manual invoice
// entry work at the gate.
func (s *Service) CheckIn(ctx context.Context, req domain.CheckInRequest) (domain.Ticket, error) {
	ref := strings.TrimSpace(req.Ref)
	if ref == "" {
		return domain.Ticket{}, domain.ErrInvalidReference
	}

	ticket, err := s.resolve(ctx, ref)
	if err != nil {
		return domain.Ticket{}, err
	}
	if ticket == nil {
		return domain.Ticket{}, domain.ErrNotFound
	}

	if eventID := strings.TrimSpace(req.EventID); eventID != "" {
		id, parseErr := snowflake.ParseString(eventID)
		if parseErr != nil || id != ticket.EventID {
			return domain.Ticket{}, domain.ErrNotFound
		}
	}

	now := s.clock.Now()
	won, err := s.repo.MarkCheckedIn(ctx, s.db, ticket.ID, now)
	if err != nil {
		return domain.Ticket{}, err
	}
	if !won {
		used, findErr := s.repo.FindByID(ctx, s.db, ticket.ID)
		if findErr != nil {
			return domain.Ticket{}, findErr
		}
		if used == nil || used.CheckInTime == nil {
			return domain.Ticket{}, domain.ErrNotFound
		}
		return domain.Ticket{}, &domain.AlreadyCheckedInError{
			Name:        used.Name,
			CheckedInAt: *used.CheckInTime,
		}
	}

	ticket.CheckedIn = true
	ticket.CheckInTime = &now
	ticket.UpdatedAt = now

	s.log.Info("ticket checked in",
		zap.String("invoice_no", ticket.InvoiceNo),
		zap.String("ticket_id", ticket.ID.String()),
	)
	return *ticket, nil
}

func (s *Service) resolve(ctx context.Context, ref string) (*domain.Ticket, error) {
	if id, err := snowflake.ParseString(ref); err == nil && id > 0 {
		ticket, err := s.repo.FindByID(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if ticket != nil {
			return ticket, nil
		}
	}
	return s.repo.FindByInvoiceNo(ctx, s.db, ref)
}

func (s *Service) Lookup(ctx context.Context, req domain.LookupRequest) (domain.Ticket, error) {
	invoiceNo := strings.TrimSpace(req.InvoiceNo)
	if invoiceNo == "" {
		return domain.Ticket{}, domain.ErrInvalidReference
	}

	ticket, err := s.repo.FindByInvoiceNo(ctx, s.db, invoiceNo)
	if err != nil {
		return domain.Ticket{}, err
	}
	if ticket == nil {
		return domain.Ticket{}, domain.ErrNotFound
	}

	if eventID := strings.TrimSpace(req.EventID); eventID != "" {
		id, parseErr := snowflake.ParseString(eventID)
		if parseErr != nil || id != ticket.EventID {
			return domain.Ticket{}, domain.ErrNotFound
		}
	}
	return *ticket, nil
}

func (s *Service) Search(ctx context.Context, req domain.SearchRequest) ([]domain.Ticket, error) {
	evt, err := s.event.GetByID(ctx, eventdomain.GetEventRequest{ID: req.EventID})
	if err != nil {
		return nil, err
	}
	return s.repo.Search(ctx, s.db, evt.ID, req.Query, searchLimit)
}

// metadataFor keeps the submission fields that have no ticket column of
// their own. The event name and date already live on the event row, but
// the copy here preserves what the registrant actually typed.
func metadataFor(sub submission.ParsedSubmission) datatypes.JSONMap {
	meta := datatypes.JSONMap{}
	if sub.EventName != "" {
		meta["event_name"] = sub.EventName
	}
	if sub.EventDate != "" {
		meta["event_date"] = sub.EventDate
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}
