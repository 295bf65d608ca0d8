package core

import "github.com/google/uuid"

// NewID returns a random UUID string used to correlate crew and agent runs
// in logs and results.
func NewID() string { return uuid.NewString() }
