package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Job is a unit of work executed by the worker pool. The outcome of Run is
// delivered on Done when it is non-nil; Done must have room for it.
type Job struct {
	ID      string
	Service string
	Run     func(ctx context.Context) error
	Done    chan<- error
}

// RateLimitSettings allows MaxRequests per PerDuration, with up to Burst
// requests let through at once (1 when unset).
type RateLimitSettings struct {
	MaxRequests int
	PerDuration time.Duration
	Burst       int
}

type Migration struct {
	Name string
	Func func(ctx context.Context, db *mongo.Database) error
}
