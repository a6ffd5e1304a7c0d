package driven

import (
	"context"

	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
)

// FilterConfigStore defines the driven port for filter configuration
// persistence. Save is invoked on every configuration change; Load once at
// startup.
type FilterConfigStore interface {
	// Save replaces the stored configuration wholesale.
	Save(ctx context.Context, cfg model.FilterConfiguration) error
	// Load returns the stored configuration, or nil when none has been saved.
	Load(ctx context.Context) (*model.FilterConfiguration, error)
}
