package provider

import (
	"context"
	"errors"
	"io/fs"

	apperrors "github.com/urbanpilot/oddnet/pkg/errors"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// File reads a road network snapshot from a local file. The extent is
// validated but not applied: the file is assumed to already cover the
// area of interest. Used by the CLI and in tests.
type File struct {
	path string
}

// NewFile creates a file-backed snapshot provider.
func NewFile(path string) *File {
	return &File{path: path}
}

// Snapshot implements Provider.
func (p *File) Snapshot(ctx context.Context, extent Extent) (*roadnet.Graph, error) {
	if err := extent.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g, err := roadnet.ReadSnapshotFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "snapshot file %s not found", p.path)
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "failed to read snapshot file %s", p.path)
	}
	return g, nil
}

// Ensure File implements Provider.
var _ Provider = (*File)(nil)
