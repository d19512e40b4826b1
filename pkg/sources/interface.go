package sources

import (
	"github.com/Kazbonfim/rocketseat-downloader2/pkg/data"
)

// Source resolves the course catalog hierarchy. Listing failures below the
// catalog level are returned as errors and handled as recoverable by the
// caller; the catalog itself is required to start anything.
type Source interface {
	ListSpecializations() ([]data.Specialization, error)
	ListModules(specializationSlug string) ([]data.Module, error)
	ListGroups(moduleSlug string) ([]data.Group, error)
}
