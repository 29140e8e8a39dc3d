package complaints

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hostelgrievance/grievance-backend/internal/catalog"
	"github.com/hostelgrievance/grievance-backend/internal/locations"
	"github.com/hostelgrievance/grievance-backend/internal/notifications"
	"github.com/hostelgrievance/grievance-backend/internal/staff"
	"github.com/hostelgrievance/grievance-backend/pkg/db"
	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
	"github.com/hostelgrievance/grievance-backend/pkg/enums"
	pkgerrors "github.com/hostelgrievance/grievance-backend/pkg/errors"
	"github.com/hostelgrievance/grievance-backend/pkg/logger"
	"github.com/hostelgrievance/grievance-backend/pkg/metrics"
	"github.com/hostelgrievance/grievance-backend/pkg/pagination"
)

const msgComplaintNotFound = "complaint not found"

// Service covers complaint intake, reads, upvotes and the handling workflow.
type Service interface {
	Create(ctx context.Context, viewer Viewer, in CreateInput) (*View, error)
	ListPublic(ctx context.Context, viewer Viewer, params ListParams) (*pagination.Page[View], error)
	Get(ctx context.Context, viewer Viewer, id uuid.UUID) (*View, error)
	ListByUser(ctx context.Context, viewer Viewer, userID uuid.UUID) ([]View, error)
	ListAssigned(ctx context.Context, viewer Viewer, params ListParams) (*pagination.Page[View], error)
	ToggleUpvote(ctx context.Context, viewer Viewer, id uuid.UUID) (*UpvoteResult, error)

	Delegate(ctx context.Context, viewer Viewer, id uuid.UUID, in DelegateInput) (*View, error)
	Escalate(ctx context.Context, viewer Viewer, id uuid.UUID) (*View, error)
	Resolve(ctx context.Context, viewer Viewer, id uuid.UUID, in ResolveInput) (*View, error)
}

// ServiceParams bundles the collaborators of the complaint service.
type ServiceParams struct {
	DB            *db.Client
	Complaints    *Repository
	Staff         *staff.Repository
	Locations     *locations.Repository
	Catalog       *catalog.Repository
	Notifications notifications.Repository
	Metrics       *metrics.ComplaintMetrics
	Logger        *logger.Logger
}

type service struct {
	db            *db.Client
	repo          *Repository
	router        *Router
	staff         *staff.Repository
	catalog       *catalog.Repository
	notifications notifications.Repository
	metrics       *metrics.ComplaintMetrics
	logg          *logger.Logger
}

// NewService validates params and builds the complaint service.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.DB == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	case params.Complaints == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "complaints repository required")
	case params.Staff == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "staff repository required")
	case params.Locations == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "locations repository required")
	case params.Catalog == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog repository required")
	case params.Notifications == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		db:            params.DB,
		repo:          params.Complaints,
		router:        NewRouter(params.Staff, params.Locations),
		staff:         params.Staff,
		catalog:       params.Catalog,
		notifications: params.Notifications,
		metrics:       params.Metrics,
		logg:          logg,
	}, nil
}

// Create files a complaint. Routing, the complaint rows, tag links,
// attachments and the incharge notification commit together or not at all.
func (s *service) Create(ctx context.Context, viewer Viewer, in CreateInput) (*View, error) {
	if !viewer.Role.CanFileComplaints() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only students and faculty can file complaints")
	}
	access, err := enums.ParseComplaintAccess(in.Access)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid inputs")
	}
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if len(title) < 3 || len(description) < 3 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid inputs")
	}
	attachments := make([]string, 0, len(in.Attachments))
	for _, url := range in.Attachments {
		if trimmed := strings.TrimSpace(url); trimmed != "" {
			attachments = append(attachments, trimmed)
		}
	}

	var (
		complaintID uuid.UUID
		category    string
	)
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		assignment, err := s.router.AssignIncharge(ctx, tx, in.Location)
		if err != nil {
			if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
				s.metrics.IncRoutingFailure(routedCategory(err))
			}
			return err
		}
		category = assignment.Location.Category

		tags, err := catalog.ResolveTags(ctx, s.catalog.WithTx(tx), in.Tags)
		if err != nil {
			return err
		}

		repo := s.repo.WithTx(tx)
		complaint := &models.Complaint{
			Title:           title,
			Description:     description,
			Access:          access,
			PostAsAnonymous: in.PostAsAnonymous,
			Status:          enums.ComplaintStatusPending,
			UserID:          viewer.ID,
			LocationID:      assignment.Location.ID,
		}
		if err := repo.Create(ctx, complaint); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create complaint")
		}
		if err := repo.CreateDetail(ctx, &models.ComplaintDetail{
			ComplaintID: complaint.ID,
			AssignedTo:  assignment.InchargeID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create complaint detail")
		}
		if err := repo.LinkTags(ctx, complaint.ID, tags); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link tags")
		}
		if err := repo.CreateAttachments(ctx, complaint.ID, attachments); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create attachments")
		}
		note := notifications.ForComplaint(enums.NotificationTypeComplaintAssigned, assignment.InchargeID, complaint.ID, title)
		if err := s.notifications.WithTx(tx).Create(ctx, note); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "notify incharge")
		}
		complaintID = complaint.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCreated(category)
	s.logg.Info(s.logg.WithComplaintID(ctx, complaintID.String()), "complaint.created")
	return s.view(ctx, s.repo, viewer, complaintID)
}

func (s *service) ListPublic(ctx context.Context, viewer Viewer, params ListParams) (*pagination.Page[View], error) {
	access := enums.ComplaintAccessPublic
	q := listQuery{Access: &access}
	return s.page(ctx, viewer, q, params)
}

func (s *service) Get(ctx context.Context, viewer Viewer, id uuid.UUID) (*View, error) {
	return s.view(ctx, s.repo, viewer, id)
}

func (s *service) ListByUser(ctx context.Context, viewer Viewer, userID uuid.UUID) ([]View, error) {
	if viewer.ID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot list another user's complaints")
	}
	rows, err := s.repo.List(ctx, listQuery{UserID: &userID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list complaints")
	}
	return s.renderAll(ctx, s.repo, viewer, rows)
}

func (s *service) ListAssigned(ctx context.Context, viewer Viewer, params ListParams) (*pagination.Page[View], error) {
	var q listQuery
	switch viewer.Role {
	case enums.RoleIssueIncharge:
		q.AssignedTo = &viewer.ID
	case enums.RoleResolver:
		q.ResolverID = &viewer.ID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only staff have assigned complaints")
	}
	return s.page(ctx, viewer, q, params)
}

func (s *service) page(ctx context.Context, viewer Viewer, q listQuery, params ListParams) (*pagination.Page[View], error) {
	if strings.TrimSpace(params.Status) != "" {
		status, err := enums.ParseComplaintStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		q.Status = &status
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		q.Cursor = cursor
	}
	q.Limit = pagination.LimitWithBuffer(params.Limit)

	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list complaints")
	}
	kept, next := pagination.Trim(rows, params.Limit, func(c models.Complaint) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})
	views, err := s.renderAll(ctx, s.repo, viewer, kept)
	if err != nil {
		return nil, err
	}
	return &pagination.Page[View]{Items: views, NextCursor: next}, nil
}

// load fetches a complaint the viewer may see. Hidden complaints are
// reported as missing so their existence does not leak.
func (s *service) load(ctx context.Context, repo *Repository, viewer Viewer, id uuid.UUID) (*models.Complaint, error) {
	complaint, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgComplaintNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load complaint")
	}
	if !CanView(complaint, viewer) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgComplaintNotFound)
	}
	return complaint, nil
}

func (s *service) view(ctx context.Context, repo *Repository, viewer Viewer, id uuid.UUID) (*View, error) {
	complaint, err := s.load(ctx, repo, viewer, id)
	if err != nil {
		return nil, err
	}
	views, err := s.renderAll(ctx, repo, viewer, []models.Complaint{*complaint})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *service) renderAll(ctx context.Context, repo *Repository, viewer Viewer, rows []models.Complaint) ([]View, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	inchargeIDs := make([]uuid.UUID, 0, len(rows))
	resolverIDs := make([]uuid.UUID, 0)
	for _, row := range rows {
		ids = append(ids, row.ID)
		if row.Detail != nil {
			inchargeIDs = append(inchargeIDs, row.Detail.AssignedTo)
			if row.Detail.ResolverID != nil {
				resolverIDs = append(resolverIDs, *row.Detail.ResolverID)
			}
		}
	}

	var (
		rc  renderContext
		err error
	)
	if rc.upvoted, err = repo.UpvotedBy(ctx, viewer.ID, ids); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load upvotes")
	}
	if rc.incharges, err = repo.InchargesByIDs(ctx, inchargeIDs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load incharges")
	}
	if rc.resolvers, err = repo.ResolversByIDs(ctx, resolverIDs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load resolvers")
	}

	out := make([]View, 0, len(rows))
	for i := range rows {
		out = append(out, Render(&rows[i], rc))
	}
	return out, nil
}

// routedCategory is the stored category of a location that resolved but has
// no incharge. Unknown locations yield "", never the caller's input.
func routedCategory(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return ""
	}
	details, _ := typed.Details().(map[string]any)
	category, _ := details["category"].(string)
	return category
}
