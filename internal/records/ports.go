// Package records defines the data-access ports the scheduler's callers
// depend on. Storage backends implement them; nothing here knows about a
// concrete database.
package records

import (
	"context"

	"jiceot/internal/core"
)

// Ports for outbound adapters.
type (
	TypeLister interface {
		// ListObligationTypes returns the types of one kind. Stopped types are
		// omitted unless includeStopped is set.
		ListObligationTypes(ctx context.Context, kind core.Kind, includeStopped bool) ([]core.ObligationType, error)
	}

	TypeReader interface {
		// GetObligationType returns core.ErrNotFound when id is unknown.
		GetObligationType(ctx context.Context, id int64) (core.ObligationType, error)
	}

	TypeWriter interface {
		CreateObligationType(ctx context.Context, t core.ObligationType) (core.ObligationType, error)
	}

	CompletionLister interface {
		// ListCompletionsForPeriod returns the records of one type for exactly
		// one period.
		ListCompletionsForPeriod(ctx context.Context, typeID int64, p core.Period) ([]core.CompletionRecord, error)

		// ListCompletions returns every record of the given kind whose period
		// lies in [from, to].
		ListCompletions(ctx context.Context, kind core.Kind, from, to core.Period) ([]core.CompletionRecord, error)
	}

	CompletionWriter interface {
		CreateCompletion(ctx context.Context, r core.CompletionRecord) (core.CompletionRecord, error)
	}

	// Store is the union implemented by every backend.
	Store interface {
		TypeLister
		TypeReader
		TypeWriter
		CompletionLister
		CompletionWriter
	}
)
