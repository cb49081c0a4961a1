package backend

import (
	"context"

	"jiceot/internal/amqp"
	"jiceot/internal/records"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result holds the store and its companions for one backend.
type Result struct {
	Store records.Store
	// Publisher is nil when AMQP is not configured or unreachable.
	Publisher amqp.Publisher
	// Ready reports whether the store can serve requests.
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

type Config struct {
	Type BackendType

	SQLiteDBPath string

	// An empty AMQPURL disables event publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
