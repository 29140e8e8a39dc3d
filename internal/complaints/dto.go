package complaints

import (
	"time"

	"github.com/google/uuid"

	"github.com/hostelgrievance/grievance-backend/pkg/enums"
)

// Viewer is the authenticated caller as seen by the complaint service.
type Viewer struct {
	ID   uuid.UUID
	Role enums.Role
}

// CreateInput is the body of POST /complaint/create.
type CreateInput struct {
	Title           string   `json:"title" validate:"required,min=3,max=200"`
	Description     string   `json:"description" validate:"required,min=3,max=5000"`
	Access          string   `json:"access" validate:"required,oneof=PUBLIC PRIVATE public private"`
	PostAsAnonymous bool     `json:"postAsAnonymous"`
	Location        string   `json:"location" validate:"required,triple"`
	Tags            []string `json:"tags" validate:"omitempty,max=10,dive,required"`
	Attachments     []string `json:"attachments" validate:"omitempty,max=5,dive,url"`
}

// DelegateInput names the resolver an incharge hands a complaint to.
type DelegateInput struct {
	ResolverID uuid.UUID `json:"resolverId" validate:"required"`
}

// ResolveInput closes a complaint with one of the two outcomes.
type ResolveInput struct {
	Outcome string `json:"outcome" validate:"required,oneof=RESOLVED NOT_RESOLVED"`
}

// ListParams selects a page of complaints.
type ListParams struct {
	Limit  int
	Cursor string
	Status string
}

// InchargeView identifies the incharge currently responsible.
type InchargeView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Designation string    `json:"designation"`
	Rank        int       `json:"rank"`
}

// ResolverView identifies the delegated resolver.
type ResolverView struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Occupation string    `json:"occupation"`
}

// View is the flattened complaint returned by every read endpoint.
type View struct {
	ID              uuid.UUID             `json:"id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Access          enums.ComplaintAccess `json:"access"`
	PostAsAnonymous bool                  `json:"postAsAnonymous"`
	Status          enums.ComplaintStatus `json:"status"`
	CreatedAt       time.Time             `json:"createdAt"`
	UserID          uuid.UUID             `json:"userId"`
	UserName        string                `json:"userName"`
	Location        string                `json:"location"`
	Tags            []string              `json:"tags"`
	Attachments     []string              `json:"attachments"`
	Upvotes         int                   `json:"upvotes"`
	ActionTaken     bool                  `json:"actionTaken"`
	Escalations     int                   `json:"escalations"`
	ResolvedAt      *time.Time            `json:"resolvedAt,omitempty"`
	IsUpvoted       bool                  `json:"isUpvoted"`
	Incharge        *InchargeView         `json:"incharge,omitempty"`
	Resolver        *ResolverView         `json:"resolver,omitempty"`
}

// UpvoteResult is returned by the upvote toggle.
type UpvoteResult struct {
	TotalUpvotes int  `json:"totalUpvotes"`
	IsNowUpvoted bool `json:"isNowUpvoted"`
}
