package staff

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelgrievance/grievance-backend/internal/locations"
	"github.com/hostelgrievance/grievance-backend/internal/users"
	"github.com/hostelgrievance/grievance-backend/pkg/config"
	"github.com/hostelgrievance/grievance-backend/pkg/db/dbtest"
	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
	"github.com/hostelgrievance/grievance-backend/pkg/enums"
	pkgerrors "github.com/hostelgrievance/grievance-backend/pkg/errors"
	"github.com/hostelgrievance/grievance-backend/pkg/security"
)

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    64,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type fixture struct {
	svc   Service
	users *users.Repository
	staff *Repository
	loc   *models.Location
	other *models.Location
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client, conn := dbtest.Client(t)
	locRepo := locations.NewRepository(conn)
	userRepo := users.NewRepository(conn)
	staffRepo := NewRepository(conn)

	loc := &models.Location{Category: "Hostel", Name: "Ganga", Block: "A"}
	other := &models.Location{Category: "Hostel", Name: "Yamuna", Block: "B"}
	require.NoError(t, locRepo.Create(context.Background(), loc))
	require.NoError(t, locRepo.Create(context.Background(), other))

	svc, err := NewService(ServiceParams{
		DB:             client,
		Staff:          staffRepo,
		Users:          userRepo,
		Locations:      locRepo,
		PasswordConfig: testPasswordConfig,
	})
	require.NoError(t, err)
	return fixture{svc: svc, users: userRepo, staff: staffRepo, loc: loc, other: other}
}

func inchargeRequest(email, phone string, rank int) CreateInchargeRequest {
	return CreateInchargeRequest{
		Name:        "Warden " + email,
		Email:       email,
		PhoneNumber: phone,
		Password:    "secret1",
		Location:    "Hostel-Ganga-A",
		Rank:        rank,
		Designation: "Warden",
	}
}

func TestCreateIncharge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateIncharge(ctx, inchargeRequest("warden@hostel.edu", "9000000001", 2))
	require.NoError(t, err)
	assert.Equal(t, "Hostel-Ganga-A", created.Location)
	assert.Equal(t, 2, created.Rank)

	user, err := f.users.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.RoleIssueIncharge, user.Role)
	ok, err := security.VerifyPassword("secret1", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateInchargeFailuresInsertNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateIncharge(ctx, inchargeRequest("warden@hostel.edu", "9000000001", 1))
	require.NoError(t, err)

	_, err = f.svc.CreateIncharge(ctx, inchargeRequest("WARDEN@hostel.edu", "9000000002", 1))
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	_, err = f.svc.CreateIncharge(ctx, inchargeRequest("other@hostel.edu", "9000000001", 1))
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	req := inchargeRequest("lost@hostel.edu", "9000000003", 1)
	req.Location = "Hostel-Kaveri-Z"
	_, err = f.svc.CreateIncharge(ctx, req)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = f.users.FindByEmail(ctx, "lost@hostel.edu")
	assert.Error(t, err, "a failed create must not leave a user behind")

	list, err := f.svc.ListIncharges(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateInchargePartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.CreateIncharge(ctx, inchargeRequest("warden@hostel.edu", "9000000001", 2))
	require.NoError(t, err)
	_, err = f.svc.CreateIncharge(ctx, inchargeRequest("chief@hostel.edu", "9000000002", 1))
	require.NoError(t, err)

	rank := 3
	location := "Hostel-Yamuna-B"
	updated, err := f.svc.UpdateIncharge(ctx, created.ID, UpdateInchargeRequest{Rank: &rank, Location: &location})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Rank)
	assert.Equal(t, "Hostel-Yamuna-B", updated.Location)
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, "Warden", updated.Designation)

	taken := "chief@hostel.edu"
	_, err = f.svc.UpdateIncharge(ctx, created.ID, UpdateInchargeRequest{Email: &taken})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	password := "another1"
	_, err = f.svc.UpdateIncharge(ctx, created.ID, UpdateInchargeRequest{Password: &password})
	require.NoError(t, err)
	user, err := f.users.FindByID(ctx, created.ID)
	require.NoError(t, err)
	ok, err := security.VerifyPassword("another1", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.UpdateIncharge(ctx, uuid.New(), UpdateInchargeRequest{Rank: &rank})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestUpdateInchargeLocationBlockedWhileAssigned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	busy, err := f.svc.CreateIncharge(ctx, inchargeRequest("busy@hostel.edu", "9000000001", 2))
	require.NoError(t, err)
	require.NoError(t, f.staff.DB(ctx).Create(&models.ComplaintDetail{ComplaintID: uuid.New(), AssignedTo: busy.ID}).Error)

	moved := "Hostel-Yamuna-B"
	_, err = f.svc.UpdateIncharge(ctx, busy.ID, UpdateInchargeRequest{Location: &moved})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	got, err := f.svc.GetIncharge(ctx, busy.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hostel-Ganga-A", got.Location)

	// staying put is not a move
	same := "Hostel-Ganga-A"
	designation := "Senior Warden"
	updated, err := f.svc.UpdateIncharge(ctx, busy.ID, UpdateInchargeRequest{Location: &same, Designation: &designation})
	require.NoError(t, err)
	assert.Equal(t, "Senior Warden", updated.Designation)
}

func TestDeleteIncharge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	busy, err := f.svc.CreateIncharge(ctx, inchargeRequest("busy@hostel.edu", "9000000001", 1))
	require.NoError(t, err)
	idle, err := f.svc.CreateIncharge(ctx, inchargeRequest("idle@hostel.edu", "9000000002", 2))
	require.NoError(t, err)

	require.NoError(t, f.staff.DB(ctx).Create(&models.ComplaintDetail{ComplaintID: uuid.New(), AssignedTo: busy.ID}).Error)
	err = f.svc.DeleteIncharge(ctx, busy.ID)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	require.NoError(t, f.svc.DeleteIncharge(ctx, idle.ID))
	_, err = f.svc.GetIncharge(ctx, idle.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
	_, err = f.users.FindByID(ctx, idle.ID)
	assert.Error(t, err)

	err = f.svc.DeleteIncharge(ctx, idle.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestResolverLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateResolver(ctx, CreateResolverRequest{
		Name:        "Ramesh",
		Email:       "plumber@hostel.edu",
		PhoneNumber: "9000000009",
		Password:    "secret1",
		Location:    "Hostel-Ganga-A",
		Occupation:  "Plumber",
	})
	require.NoError(t, err)
	assert.Equal(t, "Plumber", created.Occupation)

	got, err := f.svc.GetResolver(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, got.Email)

	occupation := "Electrician"
	updated, err := f.svc.UpdateResolver(ctx, created.ID, UpdateResolverRequest{Occupation: &occupation})
	require.NoError(t, err)
	assert.Equal(t, "Electrician", updated.Occupation)

	// an incharge id is not a resolver
	incharge, err := f.svc.CreateIncharge(ctx, inchargeRequest("warden@hostel.edu", "9000000001", 1))
	require.NoError(t, err)
	_, err = f.svc.GetResolver(ctx, incharge.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	complaint := models.Complaint{Title: "Leak", Description: "Tap leaking", Access: enums.ComplaintAccessPublic,
		Status: enums.ComplaintStatusAssigned, UserID: uuid.New(), LocationID: f.loc.ID}
	require.NoError(t, f.staff.DB(ctx).Create(&complaint).Error)
	resolverID := created.ID
	require.NoError(t, f.staff.DB(ctx).Create(&models.ComplaintDetail{ComplaintID: complaint.ID, AssignedTo: incharge.ID, ResolverID: &resolverID}).Error)

	require.NoError(t, f.svc.DeleteResolver(ctx, created.ID))

	var detail models.ComplaintDetail
	require.NoError(t, f.staff.DB(ctx).First(&detail, "complaint_id = ?", complaint.ID).Error)
	assert.Nil(t, detail.ResolverID)
	var reloaded models.Complaint
	require.NoError(t, f.staff.DB(ctx).First(&reloaded, "id = ?", complaint.ID).Error)
	assert.Equal(t, enums.ComplaintStatusPending, reloaded.Status)

	list, err := f.svc.ListResolvers(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
