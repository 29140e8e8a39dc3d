package complaints

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hostelgrievance/grievance-backend/internal/catalog"
	"github.com/hostelgrievance/grievance-backend/internal/locations"
	"github.com/hostelgrievance/grievance-backend/internal/notifications"
	"github.com/hostelgrievance/grievance-backend/internal/staff"
	"github.com/hostelgrievance/grievance-backend/pkg/db/dbtest"
	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
	"github.com/hostelgrievance/grievance-backend/pkg/enums"
	"github.com/hostelgrievance/grievance-backend/pkg/metrics"
)

type fixture struct {
	t        *testing.T
	conn     *gorm.DB
	svc      Service
	router   *Router
	registry *prometheus.Registry

	ganga  models.Location
	yamuna models.Location

	student  Viewer
	student2 Viewer
	faculty  Viewer
	admin    Viewer

	junior   Viewer // rank 3 at ganga, first responder
	middle   Viewer // rank 2 at ganga
	senior   Viewer // rank 1 at ganga
	resolver Viewer // plumber at ganga
	faraway  Viewer // resolver at yamuna
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client, conn := dbtest.Client(t)
	f := &fixture{t: t, conn: conn, registry: prometheus.NewRegistry()}

	f.ganga = models.Location{Category: "Hostel", Name: "Ganga", Block: "A"}
	f.yamuna = models.Location{Category: "Hostel", Name: "Yamuna", Block: "B"}
	require.NoError(t, conn.Create(&f.ganga).Error)
	require.NoError(t, conn.Create(&f.yamuna).Error)
	require.NoError(t, conn.Create(&[]models.Tag{{Name: "water"}, {Name: "wifi"}}).Error)

	f.student = f.user("Asha", enums.RoleStudent)
	f.student2 = f.user("Bilal", enums.RoleStudent)
	f.faculty = f.user("Prof Rao", enums.RoleFaculty)
	f.admin = f.user("Admin", enums.RoleAdmin)
	f.junior = f.incharge("Junior Warden", f.ganga, 3)
	f.middle = f.incharge("Deputy Warden", f.ganga, 2)
	f.senior = f.incharge("Chief Warden", f.ganga, 1)
	f.resolver = f.resolverAt("Ramesh", f.ganga, "Plumber")
	f.faraway = f.resolverAt("Suresh", f.yamuna, "Electrician")

	staffRepo := staff.NewRepository(conn)
	locationRepo := locations.NewRepository(conn)
	f.router = NewRouter(staffRepo, locationRepo)
	svc, err := NewService(ServiceParams{
		DB:            client,
		Complaints:    NewRepository(conn),
		Staff:         staffRepo,
		Locations:     locationRepo,
		Catalog:       catalog.NewRepository(conn),
		Notifications: notifications.NewRepository(conn),
		Metrics:       metrics.NewComplaintMetrics(f.registry),
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) user(name string, role enums.Role) Viewer {
	f.t.Helper()
	u := models.User{Name: name, Email: uuid.NewString() + "@hostel.edu", PasswordHash: "x", Role: role}
	require.NoError(f.t, f.conn.Create(&u).Error)
	return Viewer{ID: u.ID, Role: role}
}

func (f *fixture) incharge(name string, loc models.Location, rank int) Viewer {
	f.t.Helper()
	v := f.user(name, enums.RoleIssueIncharge)
	require.NoError(f.t, f.conn.Create(&models.IssueIncharge{UserID: v.ID, LocationID: loc.ID, Rank: rank, Designation: "Warden"}).Error)
	return v
}

func (f *fixture) resolverAt(name string, loc models.Location, occupation string) Viewer {
	f.t.Helper()
	v := f.user(name, enums.RoleResolver)
	require.NoError(f.t, f.conn.Create(&models.Resolver{UserID: v.ID, LocationID: loc.ID, Occupation: occupation}).Error)
	return v
}

func (f *fixture) file(viewer Viewer, in CreateInput) *View {
	f.t.Helper()
	view, err := f.svc.Create(context.Background(), viewer, in)
	require.NoError(f.t, err)
	return view
}

func gangaInput(title string) CreateInput {
	return CreateInput{
		Title:       title,
		Description: "Needs attention soon",
		Access:      "PUBLIC",
		Location:    "Hostel-Ganga-A",
	}
}

func (f *fixture) count(model any, query string, args ...any) int64 {
	f.t.Helper()
	var n int64
	q := f.conn.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(f.t, q.Count(&n).Error)
	return n
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if hasLabel(metric, label, value) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabel(metric *dto.Metric, name, value string) bool {
	for _, pair := range metric.GetLabel() {
		if pair.GetName() == name && pair.GetValue() == value {
			return true
		}
	}
	return false
}
