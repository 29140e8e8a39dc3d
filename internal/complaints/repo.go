package complaints

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hostelgrievance/grievance-backend/internal/repo"
	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
	"github.com/hostelgrievance/grievance-backend/pkg/enums"
	"github.com/hostelgrievance/grievance-backend/pkg/pagination"
)

// Repository persists complaints and the rows hanging off them.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{Base: r.Base.WithTx(tx)}
}

type listQuery struct {
	Access     *enums.ComplaintAccess
	UserID     *uuid.UUID
	AssignedTo *uuid.UUID
	ResolverID *uuid.UUID
	Status     *enums.ComplaintStatus
	Cursor     *pagination.Cursor
	Limit      int
}

func (r *Repository) Create(ctx context.Context, complaint *models.Complaint) error {
	return r.DB(ctx).Omit(clause.Associations).Create(complaint).Error
}

func (r *Repository) CreateDetail(ctx context.Context, detail *models.ComplaintDetail) error {
	return r.DB(ctx).Create(detail).Error
}

func (r *Repository) LinkTags(ctx context.Context, complaintID uuid.UUID, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	links := make([]models.ComplaintTag, 0, len(tags))
	for _, tag := range tags {
		links = append(links, models.ComplaintTag{ComplaintID: complaintID, TagID: tag.ID})
	}
	return r.DB(ctx).Create(&links).Error
}

func (r *Repository) CreateAttachments(ctx context.Context, complaintID uuid.UUID, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	rows := make([]models.Attachment, 0, len(urls))
	for i, url := range urls {
		rows = append(rows, models.Attachment{ComplaintID: complaintID, ImageURL: url, Position: i})
	}
	return r.DB(ctx).Create(&rows).Error
}

func (r *Repository) withAll(ctx context.Context) *gorm.DB {
	return r.DB(ctx).
		Preload("User").
		Preload("Location").
		Preload("Detail").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

// FindByID loads a complaint with every association.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := r.withAll(ctx).First(&complaint, "complaints.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &complaint, nil
}

// LockDetail reads the workflow row with a row lock where the dialect has one.
func (r *Repository) LockDetail(ctx context.Context, complaintID uuid.UUID) (*models.ComplaintDetail, error) {
	var detail models.ComplaintDetail
	if err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&detail, "complaint_id = ?", complaintID).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

// List returns complaints newest first. Limit should already include the
// page buffer; zero means unbounded.
func (r *Repository) List(ctx context.Context, q listQuery) ([]models.Complaint, error) {
	query := r.withAll(ctx).Model(&models.Complaint{})
	if q.AssignedTo != nil || q.ResolverID != nil {
		query = query.Joins("JOIN complaint_details ON complaint_details.complaint_id = complaints.id")
		if q.AssignedTo != nil {
			query = query.Where("complaint_details.assigned_to = ?", *q.AssignedTo)
		}
		if q.ResolverID != nil {
			query = query.Where("complaint_details.resolver_id = ?", *q.ResolverID)
		}
	}
	if q.Access != nil {
		query = query.Where("complaints.access = ?", *q.Access)
	}
	if q.UserID != nil {
		query = query.Where("complaints.user_id = ?", *q.UserID)
	}
	if q.Status != nil {
		query = query.Where("complaints.status = ?", *q.Status)
	}
	if q.Cursor != nil {
		query = query.Where("(complaints.created_at < ?) OR (complaints.created_at = ? AND complaints.id < ?)",
			q.Cursor.CreatedAt, q.Cursor.CreatedAt, q.Cursor.ID)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var out []models.Complaint
	if err := query.
		Order("complaints.created_at DESC").
		Order("complaints.id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpvotedBy returns the subset of complaintIDs the user has upvoted.
func (r *Repository) UpvotedBy(ctx context.Context, userID uuid.UUID, complaintIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(complaintIDs))
	if len(complaintIDs) == 0 {
		return out, nil
	}
	var ids []uuid.UUID
	if err := r.DB(ctx).
		Model(&models.Upvote{}).
		Where("user_id = ? AND complaint_id IN ?", userID, complaintIDs).
		Pluck("complaint_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// InchargesByIDs loads incharge profiles with their users, keyed by user id.
func (r *Repository) InchargesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.IssueIncharge, error) {
	out := make(map[uuid.UUID]models.IssueIncharge, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.IssueIncharge
	if err := r.DB(ctx).Preload("User").Where("user_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UserID] = row
	}
	return out, nil
}

// ResolversByIDs loads resolver profiles with their users, keyed by user id.
func (r *Repository) ResolversByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Resolver, error) {
	out := make(map[uuid.UUID]models.Resolver, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Resolver
	if err := r.DB(ctx).Preload("User").Where("user_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UserID] = row
	}
	return out, nil
}

// UpdateStatus sets the complaint status column.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ComplaintStatus) error {
	return r.DB(ctx).Model(&models.Complaint{}).Where("id = ?", id).Update("status", status).Error
}

// UpdateDetail applies column updates to the workflow row.
func (r *Repository) UpdateDetail(ctx context.Context, complaintID uuid.UUID, updates map[string]any) error {
	return r.DB(ctx).Model(&models.ComplaintDetail{}).Where("complaint_id = ?", complaintID).Updates(updates).Error
}

// RemoveUpvote deletes the user's vote and reports whether one existed.
func (r *Repository) RemoveUpvote(ctx context.Context, userID, complaintID uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("user_id = ? AND complaint_id = ?", userID, complaintID).Delete(&models.Upvote{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) AddUpvote(ctx context.Context, userID, complaintID uuid.UUID) error {
	return r.DB(ctx).Create(&models.Upvote{UserID: userID, ComplaintID: complaintID}).Error
}

// AdjustUpvotes moves the counter by delta in SQL and returns the new total.
func (r *Repository) AdjustUpvotes(ctx context.Context, complaintID uuid.UUID, delta int) (int, error) {
	if err := r.DB(ctx).
		Model(&models.ComplaintDetail{}).
		Where("complaint_id = ?", complaintID).
		UpdateColumn("upvotes", gorm.Expr("upvotes + ?", delta)).Error; err != nil {
		return 0, err
	}
	var detail models.ComplaintDetail
	if err := r.DB(ctx).
		Select("complaint_id", "upvotes").
		First(&detail, "complaint_id = ?", complaintID).Error; err != nil {
		return 0, err
	}
	return detail.Upvotes, nil
}

// ReconcileUpvotes rewrites every stored counter that drifted from the number
// of upvote rows and returns how many details changed.
func (r *Repository) ReconcileUpvotes(ctx context.Context) (int64, error) {
	const counted = "(SELECT COUNT(*) FROM upvotes WHERE upvotes.complaint_id = complaint_details.complaint_id)"
	res := r.DB(ctx).Exec("UPDATE complaint_details SET upvotes = " + counted + " WHERE upvotes <> " + counted)
	return res.RowsAffected, res.Error
}
