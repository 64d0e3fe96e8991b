// Package repository defines the synchronizer shared by every repository family.
package repository

import (
	"context"
	"fmt"

	"github.com/ralt/repomirror/internal/layout"
	"github.com/ralt/repomirror/internal/metadata"
	"github.com/ralt/repomirror/internal/models"
	"github.com/ralt/repomirror/internal/repository/conda"
	"github.com/ralt/repomirror/internal/repository/pypi"
	"github.com/ralt/repomirror/internal/repository/yum"
	"github.com/ralt/repomirror/internal/runner"
)

// Repository mirrors one upstream repository into its layout
type Repository interface {
	// Descriptor returns the repository identity
	Descriptor() models.RepositoryDescriptor

	// Layout returns where the repository lives on the server
	Layout() layout.Layout

	// Sync brings the repository directory up to date with source
	Sync(ctx context.Context, source string, filter models.SyncFilter) error

	// BuildMetadata regenerates the client-facing index
	BuildMetadata(ctx context.Context, incremental bool) error
}

// New returns the synchronizer for d's repository family
func New(d models.RepositoryDescriptor, serverRoot string, r runner.Runner, b *metadata.Builder) (Repository, error) {
	l := layout.For(serverRoot, d)

	switch d.Type {
	case models.TypeOSPackage:
		return yum.New(d, l, r, b), nil
	case models.TypeArchiveIndex:
		return conda.New(d, l, r), nil
	case models.TypeLanguagePackage:
		return pypi.New(d, l, r), nil
	default:
		return nil, models.NewError(models.ErrInvalidConfig, d.ID, fmt.Errorf("unsupported repository type %s", d.Type))
	}
}
