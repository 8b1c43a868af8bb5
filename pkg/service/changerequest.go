package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"k8s.io/utils/ptr"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/pkg/store"
)

// Notifier is told about change request decisions.
type Notifier interface {
	ChangeRequestDecided(ctx context.Context, cr *model.ChangeRequest, requester *model.User) error
}

type ChangeRequests struct {
	crs      *store.Store[model.ChangeRequest, *model.ChangeRequest]
	projects *store.Store[model.Project, *model.Project]
	users    *store.Store[model.User, *model.User]
	notifier Notifier
	now      func() time.Time
	log      logr.Logger
}

type ChangeRequestOption func(*ChangeRequests)

func WithNotifier(n Notifier) ChangeRequestOption {
	return func(s *ChangeRequests) { s.notifier = n }
}

func WithClock(now func() time.Time) ChangeRequestOption {
	return func(s *ChangeRequests) { s.now = now }
}

func WithLogger(log logr.Logger) ChangeRequestOption {
	return func(s *ChangeRequests) { s.log = log }
}

func NewChangeRequests(db *gorm.DB, opts ...ChangeRequestOption) *ChangeRequests {
	s := &ChangeRequests{
		crs:      store.New[model.ChangeRequest](db),
		projects: store.New[model.Project](db),
		users:    store.New[model.User](db),
		now:      time.Now,
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListByProject returns the live change requests of a project, newest first.
func (s *ChangeRequests) ListByProject(ctx context.Context, org, projectID uuid.UUID) ([]model.ChangeRequest, error) {
	return s.crs.FindMany(ctx, org, store.Filter{"project_id": projectID}, store.OrderBy("created_at desc"))
}

func (s *ChangeRequests) Get(ctx context.Context, org, id uuid.UUID) (*model.ChangeRequest, error) {
	return s.crs.FindByID(ctx, org, id)
}

// Create numbers cr as CR-<year>-<NNN> and stores it as SUBMITTED unless a
// DRAFT status was requested. Deleted requests still count toward the
// sequence so numbers are never reused. Numbers are unique per project; when
// every attempted number is taken Create fails with ErrNumberTaken.
func (s *ChangeRequests) Create(ctx context.Context, org, projectID, requestedBy uuid.UUID, cr *model.ChangeRequest) error {
	if _, err := s.projects.FindByID(ctx, org, projectID, store.Select("id")); err != nil {
		return err
	}
	n, err := s.crs.Count(ctx, org, store.Filter{"project_id": projectID}, store.WithDeleted())
	if err != nil {
		return err
	}
	cr.ProjectID = projectID
	cr.RequestedByID = requestedBy
	if cr.Status != model.CRDraft {
		cr.Status = model.CRSubmitted
	}
	cr.ApprovedByID, cr.ApprovedAt, cr.RejectionReason = nil, nil, nil

	year := s.now().Year()
	for attempt := int64(1); attempt <= crNumberAttempts; attempt++ {
		cr.CRNumber = FormatCRNumber(year, n+attempt)
		err = s.crs.Create(ctx, org, cr)
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		s.log.V(2).Info("change request number taken", "project", projectID, "number", cr.CRNumber)
	}
	return fmt.Errorf("%s: %w", cr.CRNumber, ErrNumberTaken)
}

// crNumberAttempts bounds how many following numbers Create tries when a
// concurrent request took the counted one.
const crNumberAttempts = 3

// FormatCRNumber renders a change request number, zero padding seq to three digits.
func FormatCRNumber(year int, seq int64) string {
	return fmt.Sprintf("CR-%d-%03d", year, seq)
}

// Approve marks a SUBMITTED or UNDER_REVIEW request as approved by approver.
func (s *ChangeRequests) Approve(ctx context.Context, org, id, approver uuid.UUID) (*model.ChangeRequest, error) {
	return s.decide(ctx, org, id, map[string]any{
		"status":         model.CRApproved,
		"approved_by_id": approver,
		"approved_at":    s.now(),
	})
}

// Reject marks a SUBMITTED or UNDER_REVIEW request as rejected with reason.
func (s *ChangeRequests) Reject(ctx context.Context, org, id uuid.UUID, reason string) (*model.ChangeRequest, error) {
	return s.decide(ctx, org, id, map[string]any{
		"status":           model.CRRejected,
		"rejection_reason": ptr.To(reason),
	})
}

func (s *ChangeRequests) decide(ctx context.Context, org, id uuid.UUID, patch map[string]any) (*model.ChangeRequest, error) {
	cr, err := s.crs.FindByID(ctx, org, id)
	if err != nil {
		return nil, err
	}
	if !cr.Status.Decidable() {
		return nil, fmt.Errorf("%s is %s: %w", cr.CRNumber, cr.Status, ErrInvalidTransition)
	}
	if err := s.crs.Update(ctx, org, id, patch); err != nil {
		return nil, err
	}
	if cr, err = s.crs.FindByID(ctx, org, id); err != nil {
		return nil, err
	}
	s.notify(ctx, org, cr)
	return cr, nil
}

// notify never fails the decision itself.
func (s *ChangeRequests) notify(ctx context.Context, org uuid.UUID, cr *model.ChangeRequest) {
	if s.notifier == nil {
		return
	}
	requester, err := s.users.FindByID(ctx, org, cr.RequestedByID)
	if err != nil {
		s.log.Info("requester not found, skip notification", "cr", cr.CRNumber, "err", err)
		return
	}
	if err := s.notifier.ChangeRequestDecided(ctx, cr, requester); err != nil {
		s.log.Error(err, "notify change request decision", "cr", cr.CRNumber, "to", requester.Email)
	}
}

// Delete soft deletes a change request.
func (s *ChangeRequests) Delete(ctx context.Context, org, id uuid.UUID) error {
	return s.crs.Delete(ctx, org, id)
}
