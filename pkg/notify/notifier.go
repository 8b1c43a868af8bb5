package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/pkg/config"
)

// Mailer renders change request decisions into emails.
type Mailer struct {
	sender sender
}

// NewMailer picks the SMTP sender when it is enabled in cfg.
func NewMailer(cfg *config.Config) *Mailer {
	if !cfg.SMTP.Enable {
		return &Mailer{sender: logSender{}}
	}
	s := cfg.SMTP
	return &Mailer{sender: NewSMTPSender(s.Host, s.Port, s.User, s.Password, s.From)}
}

func (m *Mailer) ChangeRequestDecided(ctx context.Context, cr *model.ChangeRequest, requester *model.User) error {
	subject, body := renderDecision(cr, requester)
	return m.sender.SendMessageTo(ctx, requester.Email, subject, body)
}

func renderDecision(cr *model.ChangeRequest, requester *model.User) (subject, body string) {
	verdict := strings.ToLower(string(cr.Status))
	subject = fmt.Sprintf("[%s] change request %s", cr.CRNumber, verdict)

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", requester.FullName())
	fmt.Fprintf(&b, "your change request %s \"%s\" was %s", cr.CRNumber, cr.Title, verdict)
	if cr.ApprovedAt != nil {
		fmt.Fprintf(&b, " on %s", cr.ApprovedAt.Format("2006-01-02 15:04"))
	}
	b.WriteString(".\n")
	if cr.Status == model.CRRejected && cr.RejectionReason != nil && *cr.RejectionReason != "" {
		fmt.Fprintf(&b, "\nReason: %s\n", *cr.RejectionReason)
	}
	if !cr.CostImpact.IsZero() || cr.ScheduleImpact != 0 {
		fmt.Fprintf(&b, "\nCost impact: %s\nSchedule impact: %d days\n", cr.CostImpact.StringFixed(2), cr.ScheduleImpact)
	}
	return subject, b.String()
}
