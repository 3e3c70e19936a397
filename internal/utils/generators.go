package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func GenerateUUID() string {
	return uuid.NewString()
}

// GenerateSessionID returns a readable session identifier; the timestamp
// prefix keeps raw log lines sortable.
func GenerateSessionID() string {
	return fmt.Sprintf("ses_%d_%s", time.Now().Unix(), uuid.NewString()[:8])
}
