package translate

import (
	"time"

	"github.com/google/uuid"
)

// Clock is the monotonic-time capability the core consumes (spec §1). A
// fixed implementation makes C5's `created`/`created_at` fields
// deterministic in tests (ids come from IDGenerator, a separate seam), the
// same seam the teacher threads through its adapter constructors.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// SystemClock is the production Clock, backed by time.Now.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

// IDGenerator produces opaque unique identifiers for response envelopes.
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

// UUIDGenerator is the production IDGenerator, backed by google/uuid.
func UUIDGenerator() IDGenerator { return uuidGenerator{} }

func (uuidGenerator) NewID() string { return uuid.NewString() }
