package notifications

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hostelgrievance/grievance-backend/pkg/db/models"
	"github.com/hostelgrievance/grievance-backend/pkg/enums"
)

// ForComplaint builds the notification a workflow step sends to recipient.
// The caller persists it inside the same transaction as the state change.
func ForComplaint(kind enums.NotificationType, recipient, complaintID uuid.UUID, complaintTitle string) *models.Notification {
	id := complaintID
	n := &models.Notification{
		UserID:      recipient,
		ComplaintID: &id,
		Type:        kind,
	}
	switch kind {
	case enums.NotificationTypeComplaintAssigned:
		n.Title = "New complaint assigned"
		n.Message = fmt.Sprintf("%q has been routed to you.", complaintTitle)
	case enums.NotificationTypeComplaintDelegated:
		n.Title = "Complaint delegated"
		n.Message = fmt.Sprintf("You have been asked to resolve %q.", complaintTitle)
	case enums.NotificationTypeComplaintEscalated:
		n.Title = "Complaint escalated"
		n.Message = fmt.Sprintf("%q was escalated to you.", complaintTitle)
	case enums.NotificationTypeComplaintResolved:
		n.Title = "Complaint closed"
		n.Message = fmt.Sprintf("Your complaint %q has been closed.", complaintTitle)
	default:
		n.Title = "Complaint update"
		n.Message = complaintTitle
	}
	return n
}
