// Package notify tells users about workflow decisions by email.
package notify

import "context"

// sender delivers one message. SMTP is the only transport today.
type sender interface {
	SendMessageTo(ctx context.Context, to, subject, body string) error
}
