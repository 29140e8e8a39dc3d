package enums

import (
	"fmt"
	"strings"
)

// ComplaintAccess controls who can read a complaint.
type ComplaintAccess string

const (
	ComplaintAccessPublic  ComplaintAccess = "PUBLIC"
	ComplaintAccessPrivate ComplaintAccess = "PRIVATE"
)

func (a ComplaintAccess) String() string {
	return string(a)
}

func (a ComplaintAccess) IsValid() bool {
	return a == ComplaintAccessPublic || a == ComplaintAccessPrivate
}

// ParseComplaintAccess converts raw input into a ComplaintAccess.
func ParseComplaintAccess(value string) (ComplaintAccess, error) {
	access := ComplaintAccess(strings.ToUpper(strings.TrimSpace(value)))
	if !access.IsValid() {
		return "", fmt.Errorf("invalid complaint access %q", value)
	}
	return access, nil
}

// ComplaintStatus tracks the handling workflow.
type ComplaintStatus string

const (
	ComplaintStatusPending     ComplaintStatus = "PENDING"
	ComplaintStatusAssigned    ComplaintStatus = "ASSIGNED"
	ComplaintStatusEscalated   ComplaintStatus = "ESCALATED"
	ComplaintStatusResolved    ComplaintStatus = "RESOLVED"
	ComplaintStatusNotResolved ComplaintStatus = "NOT_RESOLVED"
)

var validComplaintStatuses = []ComplaintStatus{
	ComplaintStatusPending,
	ComplaintStatusAssigned,
	ComplaintStatusEscalated,
	ComplaintStatusResolved,
	ComplaintStatusNotResolved,
}

func (s ComplaintStatus) String() string {
	return string(s)
}

func (s ComplaintStatus) IsValid() bool {
	for _, candidate := range validComplaintStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsOpen reports whether the complaint can still move through the workflow.
func (s ComplaintStatus) IsOpen() bool {
	return s == ComplaintStatusPending || s == ComplaintStatusAssigned || s == ComplaintStatusEscalated
}

// IsOutcome reports whether the status is a valid resolution outcome.
func (s ComplaintStatus) IsOutcome() bool {
	return s == ComplaintStatusResolved || s == ComplaintStatusNotResolved
}

// ParseComplaintStatus converts raw input into a ComplaintStatus.
func ParseComplaintStatus(value string) (ComplaintStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validComplaintStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid complaint status %q", value)
}
