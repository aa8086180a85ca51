package adapter

import (
	"context"

	"github.com/control-theory/plotdeck/internal/chart"
)

// Backend is the opaque drawing surface. Every operation except Purge may
// finish asynchronously; the returned Task reports completion.
type Backend interface {
	Draw(ctx context.Context, id string, series []chart.Series, layout chart.Layout, cfg chart.Config) Task
	Restyle(ctx context.Context, id string, layout chart.Layout) Task
	Resize(ctx context.Context, id string) Task
	Purge(id string) error
	ExportImage(ctx context.Context, id string, req ExportRequest) Task
}

// ExportRequest describes a raster/vector image export
type ExportRequest struct {
	Format   string
	Width    int
	Height   int
	Filename string
}

// Export formats
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// Surface is the presentation layer that owns the containers
type Surface interface {
	// Exists reports whether the container id resolves
	Exists(id string) bool
	// ShowError replaces the container content with an inline error
	ShowError(id string, frag ErrorFragment)
}

// Op names the operation an Event reports on
type Op string

const (
	OpDraw    Op = "draw"
	OpRestyle Op = "restyle"
	OpResize  Op = "resize"
	OpExport  Op = "export"
	OpRemove  Op = "remove"
)

// Event is emitted after an asynchronous operation settles for a chart that
// is still current
type Event struct {
	ID  string
	Op  Op
	Err error
}
