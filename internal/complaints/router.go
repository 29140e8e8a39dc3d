package complaints

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hostelgrievance/grievance-backend/internal/locations"
	"github.com/hostelgrievance/grievance-backend/internal/staff"
	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
	pkgerrors "github.com/hostelgrievance/grievance-backend/pkg/errors"
)

const (
	msgNoIncharge = "no incharge for location"
	msgNoSenior   = "no senior incharge available"
)

// Assignment is the incharge a complaint is routed to.
type Assignment struct {
	InchargeID uuid.UUID
	Rank       int
	Location   models.Location
}

// Router picks the responsible incharge for a location. Larger rank values
// are more junior: intake goes to the largest rank and escalation walks
// toward rank 1.
type Router struct {
	staff     *staff.Repository
	locations *locations.Repository
}

func NewRouter(staffRepo *staff.Repository, locationRepo *locations.Repository) *Router {
	return &Router{staff: staffRepo, locations: locationRepo}
}

// AssignIncharge resolves triple and returns the first responder there.
// Ties on rank are broken by user id so the choice is deterministic.
func (r *Router) AssignIncharge(ctx context.Context, tx *gorm.DB, triple string) (*Assignment, error) {
	t := locations.ParseTriple(triple)
	if t.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location is required")
	}
	location, err := r.locations.WithTx(tx).FindByTriple(ctx, t)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgNoIncharge).
				WithDetails(map[string]any{"location": t.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve location")
	}

	incharges, err := r.staff.WithTx(tx).InchargesAt(ctx, location.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load incharges")
	}
	if len(incharges) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgNoIncharge).
			WithDetails(map[string]any{"location": t.String(), "category": location.Category})
	}
	first := incharges[0]
	return &Assignment{InchargeID: first.UserID, Rank: first.Rank, Location: *location}, nil
}

// NextSenior returns the incharge with the greatest rank strictly below
// currentRank at the location.
func (r *Router) NextSenior(ctx context.Context, tx *gorm.DB, locationID uuid.UUID, currentRank int) (*Assignment, error) {
	incharges, err := r.staff.WithTx(tx).InchargesAt(ctx, locationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load incharges")
	}
	// incharges are ordered by rank descending
	for _, candidate := range incharges {
		if candidate.Rank < currentRank {
			return &Assignment{InchargeID: candidate.UserID, Rank: candidate.Rank}, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeStateConflict, msgNoSenior)
}
