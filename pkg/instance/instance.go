package instance

import "os"

// GetID returns the process instance identifier attached to startup logs.
// BOUTIQUE_INSTANCE_ID wins over the platform DYNO name.
func GetID() string {
	for _, key := range []string{"BOUTIQUE_INSTANCE_ID", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
