package pkg

import "github.com/google/uuid"

// GenerateGameID returns a new unique game id.
func GenerateGameID() string {
	return uuid.NewString()
}

// GenerateTaskID returns a new unique id for a scheduled task.
func GenerateTaskID() string {
	return uuid.NewString()
}
