package enums

import "fmt"

// NotificationType labels in-app notifications raised by the complaint workflow.
type NotificationType string

const (
	NotificationTypeComplaintAssigned  NotificationType = "complaint_assigned"
	NotificationTypeComplaintDelegated NotificationType = "complaint_delegated"
	NotificationTypeComplaintEscalated NotificationType = "complaint_escalated"
	NotificationTypeComplaintResolved  NotificationType = "complaint_resolved"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeComplaintAssigned,
	NotificationTypeComplaintDelegated,
	NotificationTypeComplaintEscalated,
	NotificationTypeComplaintResolved,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
