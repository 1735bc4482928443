package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// DefinitionLoader retrieves conversation definitions from whatever backend
// authored them (file, embedded config, remote service).
type DefinitionLoader interface {
	// Load returns the current definition.
	Load(ctx context.Context) (*domain.ConversationDefinition, error)
}

// Watchable is implemented by loaders that can notify about backend
// changes, typically for hot-reload in development mode.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying
	// definition changes. It abstracts away event details, signaling only
	// that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
