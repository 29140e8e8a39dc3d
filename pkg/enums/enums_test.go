package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" issue_incharge ")
	require.NoError(t, err)
	assert.Equal(t, RoleIssueIncharge, role)

	_, err = ParseRole("janitor")
	require.Error(t, err)
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleStudent.CanFileComplaints())
	assert.True(t, RoleFaculty.CanSelfRegister())
	assert.False(t, RoleAdmin.CanSelfRegister())
	assert.False(t, RoleResolver.CanFileComplaints())
	assert.True(t, RoleIssueIncharge.IsStaff())
	assert.False(t, RoleStudent.IsStaff())
	assert.False(t, Role("OTHER").IsValid())
}

func TestComplaintStatusLifecycle(t *testing.T) {
	for _, s := range []ComplaintStatus{ComplaintStatusPending, ComplaintStatusAssigned, ComplaintStatusEscalated} {
		assert.True(t, s.IsOpen(), s)
		assert.False(t, s.IsOutcome(), s)
	}
	for _, s := range []ComplaintStatus{ComplaintStatusResolved, ComplaintStatusNotResolved} {
		assert.False(t, s.IsOpen(), s)
		assert.True(t, s.IsOutcome(), s)
	}

	status, err := ParseComplaintStatus("not_resolved")
	require.NoError(t, err)
	assert.Equal(t, ComplaintStatusNotResolved, status)
}

func TestParseComplaintAccess(t *testing.T) {
	access, err := ParseComplaintAccess("private")
	require.NoError(t, err)
	assert.Equal(t, ComplaintAccessPrivate, access)

	_, err = ParseComplaintAccess("secret")
	require.Error(t, err)
}
