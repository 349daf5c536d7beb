package email

import "context"

// TicketEmail is the confirmation sent after a fresh ticket is created.
type TicketEmail struct {
	To         string
	Name       string
	EventTitle string
	EventDate  string
	InvoiceNo  string
	QRDataURL  string
}

type Provider interface {
	SendTicket(ctx context.Context, msg TicketEmail) error
}

// NoOpProvider drops mail; used when SMTP is not configured.
type NoOpProvider struct{}

func (p *NoOpProvider) SendTicket(ctx context.Context, msg TicketEmail) error {
	return nil
}
