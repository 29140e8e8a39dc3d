package complaints

import (
	"github.com/google/uuid"

	"github.com/hostelgrievance/grievance-backend/internal/locations"
	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
	"github.com/hostelgrievance/grievance-backend/pkg/enums"
)

// AnonymousName replaces the author's name on anonymous complaints.
const AnonymousName = "Anonymous"

// renderContext carries the per-viewer facts Render cannot read off the row.
// upvoted holds the complaints the viewer has upvoted.
type renderContext struct {
	upvoted   map[uuid.UUID]bool
	incharges map[uuid.UUID]models.IssueIncharge
	resolvers map[uuid.UUID]models.Resolver
}

// CanView reports whether viewer may see c at all. Public complaints are
// visible to every authenticated user.
func CanView(c *models.Complaint, viewer Viewer) bool {
	if c.Access != enums.ComplaintAccessPrivate {
		return true
	}
	if viewer.Role == enums.RoleAdmin || c.UserID == viewer.ID {
		return true
	}
	if c.Detail == nil {
		return false
	}
	if c.Detail.AssignedTo == viewer.ID {
		return true
	}
	return c.Detail.ResolverID != nil && *c.Detail.ResolverID == viewer.ID
}

// Render flattens c for the viewer rc was built for. The author name is
// masked whenever the complaint was posted anonymously, whoever is looking.
func Render(c *models.Complaint, rc renderContext) View {
	view := View{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		Access:          c.Access,
		PostAsAnonymous: c.PostAsAnonymous,
		Status:          c.Status,
		CreatedAt:       c.CreatedAt,
		UserID:          c.UserID,
		UserName:        c.User.Name,
		Location:        locations.TripleOf(c.Location).String(),
		Tags:            make([]string, 0, len(c.Tags)),
		Attachments:     make([]string, 0, len(c.Attachments)),
		IsUpvoted:       rc.upvoted[c.ID],
	}
	if c.PostAsAnonymous {
		view.UserName = AnonymousName
	}
	for _, tag := range c.Tags {
		view.Tags = append(view.Tags, tag.Name)
	}
	for _, attachment := range c.Attachments {
		view.Attachments = append(view.Attachments, attachment.ImageURL)
	}

	if d := c.Detail; d != nil {
		view.Upvotes = d.Upvotes
		view.ActionTaken = d.ActionTaken
		view.Escalations = d.Escalations
		view.ResolvedAt = d.ResolvedAt
		if incharge, ok := rc.incharges[d.AssignedTo]; ok {
			view.Incharge = &InchargeView{
				ID:          incharge.UserID,
				Name:        incharge.User.Name,
				Email:       incharge.User.Email,
				Designation: incharge.Designation,
				Rank:        incharge.Rank,
			}
		}
		if d.ResolverID != nil {
			if resolver, ok := rc.resolvers[*d.ResolverID]; ok {
				view.Resolver = &ResolverView{
					ID:         resolver.UserID,
					Name:       resolver.User.Name,
					Occupation: resolver.Occupation,
				}
			}
		}
	}
	return view
}
