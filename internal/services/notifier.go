package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/onboarding-service/internal/models"
	"github.com/tesseract-hub/onboarding-service/internal/notifications"
	"github.com/tesseract-hub/onboarding-service/internal/templates"
)

// UserDirectory resolves notification recipients
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListStaff(ctx context.Context) ([]models.User, error)
}

// ProfileNotifier turns committed profile transitions into notifications.
// Every method is best-effort: lookup failures are logged and dropped.
type ProfileNotifier struct {
	gateway         notifications.Gateway
	users           UserDirectory
	adminRecipients []string
	adminURL        string
	logger          *logrus.Entry
}

// NewProfileNotifier creates a notifier. When adminRecipients is empty the
// staff users are notified of new submissions.
func NewProfileNotifier(gateway notifications.Gateway, users UserDirectory, adminRecipients []string, adminURL string, logger *logrus.Logger) *ProfileNotifier {
	return &ProfileNotifier{
		gateway:         gateway,
		users:           users,
		adminRecipients: adminRecipients,
		adminURL:        strings.TrimRight(adminURL, "/"),
		logger:          logger.WithField("component", "profile_notifier"),
	}
}

// baseContext builds the template data. owner may be nil when it could not
// be loaded; the owner fields then fall back to the owner id.
func (n *ProfileNotifier) baseContext(wf models.Workflow, p *models.Profile, owner *models.User) map[string]string {
	ctx := map[string]string{
		"label":        wf.Label,
		"variant":      string(wf.Variant),
		"profile_id":   p.ID.String(),
		"first_name":   "",
		"owner_name":   p.OwnerID.String(),
		"owner_email":  "",
		"review_notes": p.ReviewNotes,
	}
	if owner != nil {
		ctx["first_name"] = owner.DisplayName()
		ctx["owner_email"] = owner.Email
		if name := strings.TrimSpace(owner.FirstName + " " + owner.LastName); name != "" {
			ctx["owner_name"] = name
		} else if owner.Email != "" {
			ctx["owner_name"] = owner.Email
		}
	}
	if p.SubmittedAt != nil {
		ctx["submitted_at"] = p.SubmittedAt.UTC().Format(time.RFC1123)
	}
	if n.adminURL != "" {
		ctx["admin_url"] = n.adminURL + "/" + string(wf.Variant) + "/" + p.ID.String()
	}
	return ctx
}

func (n *ProfileNotifier) owner(ctx context.Context, p *models.Profile) *models.User {
	owner, err := n.users.GetByID(ctx, p.OwnerID)
	if err != nil {
		n.logger.WithError(err).WithField("profile_id", p.ID).Warn("Failed to load profile owner for notification")
		return nil
	}
	return owner
}

// Submitted tells the owner their profile is in review and tells staff a
// new submission is waiting
func (n *ProfileNotifier) Submitted(ctx context.Context, wf models.Workflow, p *models.Profile) {
	owner := n.owner(ctx, p)
	data := n.baseContext(wf, p, owner)

	if owner != nil && owner.Email != "" {
		n.gateway.Send(ctx, notifications.Notification{
			Channel:     notifications.ChannelEmail,
			Recipient:   owner.Email,
			TemplateKey: templates.ProfileSubmitted,
			Context:     data,
		})
	}

	for _, recipient := range n.staffRecipients(ctx) {
		n.gateway.Send(ctx, notifications.Notification{
			Channel:     notifications.ChannelEmail,
			Recipient:   recipient,
			TemplateKey: templates.AdminNewSubmission,
			Context:     data,
		})
	}
}

func (n *ProfileNotifier) staffRecipients(ctx context.Context) []string {
	if len(n.adminRecipients) > 0 {
		return n.adminRecipients
	}
	staff, err := n.users.ListStaff(ctx)
	if err != nil {
		n.logger.WithError(err).Warn("Failed to list staff for submission notice")
		return nil
	}
	out := make([]string, 0, len(staff))
	for _, u := range staff {
		if u.Email != "" {
			out = append(out, u.Email)
		}
	}
	return out
}

// Reviewed sends the owner the notice matching the profile's new status.
// Statuses without a template are skipped.
func (n *ProfileNotifier) Reviewed(ctx context.Context, wf models.Workflow, p *models.Profile) {
	key, ok := templates.StatusTemplate(string(p.Status))
	if !ok {
		return
	}
	owner := n.owner(ctx, p)
	if owner == nil || owner.Email == "" {
		return
	}
	n.gateway.Send(ctx, notifications.Notification{
		Channel:     notifications.ChannelEmail,
		Recipient:   owner.Email,
		TemplateKey: key,
		Context:     n.baseContext(wf, p, owner),
	})
}
