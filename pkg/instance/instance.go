package instance

import "os"

const envInstanceID = "GRIEVANCE_INSTANCE_ID"

// GetID names the running process in logs. It prefers GRIEVANCE_INSTANCE_ID,
// then the hostname.
func GetID() string {
	if id := os.Getenv(envInstanceID); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
