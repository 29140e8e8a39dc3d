package complaints

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
	"github.com/hostelgrievance/grievance-backend/pkg/enums"
)

func sampleComplaint() *models.Complaint {
	owner := uuid.New()
	incharge := uuid.New()
	return &models.Complaint{
		ID:          uuid.New(),
		Title:       "Water cooler broken",
		Description: "Second floor cooler leaks",
		Access:      enums.ComplaintAccessPublic,
		Status:      enums.ComplaintStatusPending,
		UserID:      owner,
		User:        models.User{ID: owner, Name: "Asha"},
		Location:    models.Location{Category: "Hostel", Name: "Ganga", Block: "A"},
		Detail:      &models.ComplaintDetail{AssignedTo: incharge, Upvotes: 4},
		Tags:        []models.Tag{{Name: "water"}},
		Attachments: []models.Attachment{{ImageURL: "https://img/1.png"}, {ImageURL: "https://img/2.png"}},
	}
}

func TestRenderFlattens(t *testing.T) {
	c := sampleComplaint()
	rc := renderContext{
		upvoted: map[uuid.UUID]bool{c.ID: true},
		incharges: map[uuid.UUID]models.IssueIncharge{
			c.Detail.AssignedTo: {UserID: c.Detail.AssignedTo, Rank: 2, Designation: "Warden", User: models.User{Name: "Mr Iyer", Email: "iyer@hostel.edu"}},
		},
	}
	view := Render(c, rc)

	assert.Equal(t, "Asha", view.UserName)
	assert.Equal(t, "Hostel-Ganga-A", view.Location)
	assert.Equal(t, []string{"water"}, view.Tags)
	assert.Equal(t, []string{"https://img/1.png", "https://img/2.png"}, view.Attachments)
	assert.Equal(t, 4, view.Upvotes)
	assert.True(t, view.IsUpvoted)
	if assert.NotNil(t, view.Incharge) {
		assert.Equal(t, "Mr Iyer", view.Incharge.Name)
		assert.Equal(t, 2, view.Incharge.Rank)
	}
	assert.Nil(t, view.Resolver)
}

func TestRenderMasksAnonymousAuthorForEveryone(t *testing.T) {
	c := sampleComplaint()
	c.PostAsAnonymous = true

	ownView := Render(c, renderContext{})
	otherView := Render(c, renderContext{upvoted: map[uuid.UUID]bool{}})
	assert.Equal(t, AnonymousName, ownView.UserName)
	assert.Equal(t, AnonymousName, otherView.UserName)
	assert.Equal(t, c.UserID, ownView.UserID)
	assert.False(t, ownView.IsUpvoted)
}

func TestCanView(t *testing.T) {
	c := sampleComplaint()
	stranger := Viewer{ID: uuid.New(), Role: enums.RoleStudent}
	assert.True(t, CanView(c, stranger))

	c.Access = enums.ComplaintAccessPrivate
	assert.False(t, CanView(c, stranger))
	assert.True(t, CanView(c, Viewer{ID: c.UserID, Role: enums.RoleStudent}))
	assert.True(t, CanView(c, Viewer{ID: c.Detail.AssignedTo, Role: enums.RoleIssueIncharge}))
	assert.True(t, CanView(c, Viewer{ID: uuid.New(), Role: enums.RoleAdmin}))

	resolver := uuid.New()
	c.Detail.ResolverID = &resolver
	assert.True(t, CanView(c, Viewer{ID: resolver, Role: enums.RoleResolver}))
}
