// Package engine orchestrates a full analysis run: concurrent input
// loading, aggregation, flow-graph construction, and dashboard assembly.
package engine

import (
	"context"
	"io"
	"os"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/declarelens/declarelens/internal/model"
	"github.com/declarelens/declarelens/pkg/analysis"
	"github.com/declarelens/declarelens/pkg/declare"
	"github.com/declarelens/declarelens/pkg/errors"
	"github.com/declarelens/declarelens/pkg/flow"
	"github.com/declarelens/declarelens/pkg/parser"
	"github.com/declarelens/declarelens/pkg/tags"
	"github.com/declarelens/declarelens/pkg/telemetry"
	"github.com/declarelens/declarelens/pkg/util"
)

// Inputs names the files of one analysis run. Model is required; every
// other path may be empty or missing, in which case that artifact
// degrades to an empty collection. Gzip-compressed inputs (.gz) are
// transparent.
type Inputs struct {
	Model       string // Declare model, one constraint per line
	Stats       string // per-constraint statistics CSV
	Details     string // trace-constraint detail CSV
	Replay      string // replay overview CSV
	Log         string // raw event log (XES)
	AlignedLog  string // model-aligned event log (XES)
	Tags        string // constraint tag YAML
	CoveragePct float64
}

// Run is the result bundle of one engine run.
type Run struct {
	Dashboard   *model.Dashboard
	Diagnostics *parser.Diagnostics
}

// tracer instruments the engine phases; a no-op provider keeps it inert
// when telemetry is disabled.
var tracer = otel.Tracer("declarelens/engine")

// Analyze loads all inputs concurrently, joins at a barrier, and runs
// aggregation and flow building. The model file is the only fatal
// dependency; a missing or empty model aborts the run.
func Analyze(ctx context.Context, in Inputs) (*Run, error) {
	ctx, span := tracer.Start(ctx, "engine.Analyze")
	defer span.End()

	loaded, diags, err := loadInputs(ctx, in)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	_, aggSpan := tracer.Start(ctx, "engine.Aggregate")
	result := analysis.Aggregate(*loaded, diags)
	aggSpan.End()

	_, flowSpan := tracer.Start(ctx, "engine.Flow")
	viz := flow.Build(loaded.Log, loaded.AlignedLog, in.CoveragePct)
	flowSpan.End()

	dashboard := &model.Dashboard{
		RunID:       uuid.New().String(),
		Constraints: result.Constraints,
		Traces:      result.Traces,
		Overview:    result.Overview,
		Groups:      result.Groups,
		CoViolation: result.CoViolation,
		Flow:        viz,
	}
	span.SetAttributes(
		attribute.Int("constraints", len(dashboard.Constraints)),
		attribute.Int("traces", len(dashboard.Traces)),
		attribute.Int("diagnostics", diags.Count()),
	)

	return &Run{Dashboard: dashboard, Diagnostics: diags}, nil
}

// loadInputs parses all input files concurrently. Each loader writes to
// its own slot of the shared Input and to its own diagnostics collector;
// collectors are merged after the errgroup barrier, so no locking is
// needed.
func loadInputs(ctx context.Context, in Inputs) (*analysis.Input, *parser.Diagnostics, error) {
	ctx, span := tracer.Start(ctx, "engine.Load")
	defer span.End()

	loaded := &analysis.Input{}
	var collectors []*parser.Diagnostics
	g, ctx := errgroup.WithContext(ctx)

	// Optional inputs: a missing file is a diagnostic, not an error.
	launch := func(path string, load func(r io.Reader, collect *parser.Diagnostics) error) {
		if path == "" {
			return
		}
		collect := &parser.Diagnostics{}
		collectors = append(collectors, collect)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return errors.ContextCanceled(path)
			}
			r, cleanup, err := util.OpenFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					collect.Skip(path, 0, "file not found, continuing without it")
					return nil
				}
				return errors.Wrapf(err, errors.CodeFilePermission, "opening %s", path)
			}
			defer cleanup()
			return load(r, collect)
		})
	}

	// The model is the one fatal input.
	modelDiags := &parser.Diagnostics{}
	collectors = append(collectors, modelDiags)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return errors.ContextCanceled(in.Model)
		}
		r, cleanup, err := util.OpenFile(in.Model)
		if err != nil {
			if os.IsNotExist(err) {
				return errors.ModelMissing(in.Model)
			}
			return errors.Wrap(err, errors.CodeFilePermission, "opening model file")
		}
		defer cleanup()

		constraints, err := declare.ParseModel(r, in.Model, modelDiags)
		if err != nil {
			return errors.Wrap(err, errors.CodeModelUnparsable, "reading model file")
		}
		if len(constraints) == 0 {
			return errors.ModelUnparsable(in.Model)
		}
		loaded.Constraints = constraints
		return nil
	})

	launch(in.Stats, func(r io.Reader, collect *parser.Diagnostics) error {
		stats, err := parser.ReadConstraintStats(r, in.Stats, collect)
		loaded.Stats = stats
		return err
	})
	launch(in.Details, func(r io.Reader, collect *parser.Diagnostics) error {
		details, err := parser.ReadTraceDetails(r, in.Details, collect)
		loaded.Details = details
		return err
	})
	launch(in.Replay, func(r io.Reader, collect *parser.Diagnostics) error {
		replay, err := parser.ReadReplayOverview(r, in.Replay, collect)
		loaded.Replay = replay
		return err
	})
	launch(in.Log, func(r io.Reader, collect *parser.Diagnostics) error {
		log, err := parser.ReadEventLog(r, in.Log, collect)
		loaded.Log = log
		return err
	})
	launch(in.AlignedLog, func(r io.Reader, collect *parser.Diagnostics) error {
		log, err := parser.ReadEventLog(r, in.AlignedLog, collect)
		loaded.AlignedLog = log
		return err
	})
	launch(in.Tags, func(r io.Reader, collect *parser.Diagnostics) error {
		t, err := tags.Read(r, in.Tags, collect)
		loaded.Tags = t
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	diags := &parser.Diagnostics{}
	for _, c := range collectors {
		diags.Merge(c)
	}
	return loaded, diags, nil
}
