package email

import "context"

// Client defines an interface for sending a rendered report message.
// This keeps the application logic decoupled from the SMTP library.
type Client interface {
	Send(ctx context.Context, recipients []string, subject, body string) error
}
