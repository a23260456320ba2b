package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-import/internal/domain"
	apperrors "github.com/spec-kit/ticket-import/pkg/util/errorutil"
)

// Row messages reported to the importing user.
const (
	msgInvalidColumns = "Invalid number of columns"
	msgNoTitle        = "No title provided, skipped"
	msgNoPermission   = "No permission to create tickets"
	msgCreateFailed   = "Failed to create ticket"
	msgInvalidRow     = "Invalid CSV row"
	msgUnreadableRow  = "Unable to read row"
)

// Options are the per-run import switches.
type Options struct {
	HasHeaders   bool
	AddFollowup  bool
	FieldMapping map[string]string

	// OnCreated, when set, is called after each ticket is created.
	OnCreated func(CreatedTicket)
}

// CreatedTicket describes a row that produced a ticket.
type CreatedTicket struct {
	Line     int
	TicketID int64
	Name     string
}

// Recorder receives per-row and per-run outcomes.
type Recorder interface {
	RecordRow(outcome string)
	RecordRun(status string)
}

// DriverDependencies bundles the collaborators of a driver.
type DriverDependencies struct {
	Creator         Creator
	Lookup          Lookup
	Defaults        DefaultsProvider
	Recorder        Recorder
	Logger          *zap.Logger
	FollowupContent string
	DefaultContent  string
	Now             func() time.Time
}

// Driver reads a CSV source and creates one ticket per accepted row.
// Rows are handled strictly in input order; a failing row never stops the run.
type Driver struct {
	creator         Creator
	resolver        *Resolver
	defaults        DefaultsProvider
	recorder        Recorder
	logger          *zap.Logger
	followupContent string
	defaultContent  string
	now             func() time.Time
}

// NewDriver constructs a driver.
func NewDriver(deps DriverDependencies) *Driver {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Driver{
		creator:         deps.Creator,
		resolver:        NewResolver(deps.Lookup, logger),
		defaults:        deps.Defaults,
		recorder:        deps.Recorder,
		logger:          logger,
		followupContent: deps.FollowupContent,
		defaultContent:  deps.DefaultContent,
		now:             now,
	}
}

// RunFile opens path and runs the import over it. The file is closed on
// every return path.
func (d *Driver) RunFile(ctx context.Context, path string, opts Options, rc RunContext) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return d.Abort(rc, fmt.Errorf("open %s: %w", path, err))
	}
	defer f.Close()
	return d.Run(ctx, f, opts, rc)
}

// Run imports every data row of src. Row numbers are physical line numbers
// and every empty physical line counts as a skipped row. The returned error
// is non-nil only when the source itself is unreadable; the result is then
// tagged with SourceError and holds no row outcomes.
func (d *Driver) Run(ctx context.Context, src io.Reader, opts Options, rc RunContext) (*Result, error) {
	result := newResult(rc, d.now())
	logger := d.logger.With(zap.String("run_id", rc.RunID.String()), zap.Int64("actor_id", rc.ActorID))

	processor := NewProcessor(d.resolver, ProcessorConfig{
		Defaults:       d.loadDefaults(ctx, logger),
		DefaultContent: d.defaultContent,
		Now:            d.now,
	})

	// The first row is always consumed. Without headers its content is
	// ignored and an empty source is simply an empty run.
	reader := newRecordReader(src)
	first, err := reader.read()
	if err != nil && (opts.HasHeaders || !(errors.Is(err, io.EOF) || isParseError(err))) {
		if errors.Is(err, io.EOF) {
			err = errors.New("missing header row")
		}
		return d.abort(result, fmt.Errorf("read header: %w", err))
	}
	var headers []string
	if opts.HasHeaders {
		headers = first.fields
	}
	headerMap := MapHeaders(headers, opts.HasHeaders, opts.FieldMapping)
	logger.Debug("header map built", zap.Strings("fields", headerMap.Fields()))

	for err == nil || isParseError(err) {
		var rec record
		rec, err = reader.read()
		for _, line := range rec.blank {
			d.skipBlank(result, line)
		}
		switch {
		case err == nil:
			d.processRow(ctx, logger, processor, headerMap, len(headers), rec.fields, rec.line, opts, rc, result)
		case isParseError(err):
			d.fail(result, logger, rec.line, msgInvalidRow, err)
		case !errors.Is(err, io.EOF):
			d.fail(result, logger, rec.line, msgUnreadableRow, err)
		}
	}

	result.FinishedAt = d.now()
	d.record(func(r Recorder) { r.RecordRun("completed") })
	logger.Info("import finished",
		zap.Int("success", result.SuccessCount),
		zap.Int("errors", result.ErrorCount),
		zap.Int("skipped", result.SkippedCount))
	return result, nil
}

func (d *Driver) processRow(
	ctx context.Context,
	logger *zap.Logger,
	processor *Processor,
	headerMap HeaderMap,
	headerCount int,
	row []string,
	line int,
	opts Options,
	rc RunContext,
	result *Result,
) {
	if isBlankRow(row) {
		d.skipBlank(result, line)
		return
	}

	if opts.HasHeaders && len(row) != headerCount {
		d.fail(result, logger, line, msgInvalidColumns, fmt.Errorf("got %d columns, want %d", len(row), headerCount))
		return
	}

	input := processor.Prepare(ctx, headerMap.Apply(row), rc)
	if strings.TrimSpace(input.Name) == "" {
		result.skip(line, msgNoTitle)
		d.record(func(r Recorder) { r.RecordRow(OutcomeSkipped) })
		return
	}

	allowed, err := d.creator.CanCreate(ctx, rc.ActorID)
	if err != nil {
		logger.Warn("permission check failed", zap.Int("line", line), zap.Error(err))
		allowed = false
	}
	if !allowed {
		d.fail(result, logger, line, msgNoPermission, nil)
		return
	}

	id, err := d.creator.Create(ctx, input)
	if err != nil || id == 0 {
		d.fail(result, logger, line, msgCreateFailed, err)
		return
	}
	result.success(id)
	d.record(func(r Recorder) { r.RecordRow(OutcomeSuccess) })
	if opts.OnCreated != nil {
		opts.OnCreated(CreatedTicket{Line: line, TicketID: id, Name: input.Name})
	}

	if opts.AddFollowup {
		if err := d.creator.AddFollowup(ctx, id, d.followupContent, rc.ActorID); err != nil {
			logger.Warn("followup not added", zap.Int64("ticket_id", id), zap.Error(err))
		}
	}
}

func (d *Driver) skipBlank(result *Result, line int) {
	result.skip(line, "")
	d.record(func(r Recorder) { r.RecordRow(OutcomeSkipped) })
}

func (d *Driver) fail(result *Result, logger *zap.Logger, line int, message string, cause error) {
	result.fail(line, message)
	d.record(func(r Recorder) { r.RecordRow(OutcomeError) })
	fields := []zap.Field{zap.Int("line", line), zap.String("reason", message)}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	logger.Debug("row rejected", fields...)
}

// Abort returns the result of a run whose source could not be opened.
func (d *Driver) Abort(rc RunContext, err error) (*Result, error) {
	return d.abort(newResult(rc, d.now()), err)
}

func (d *Driver) abort(result *Result, err error) (*Result, error) {
	result.SourceError = err.Error()
	result.FinishedAt = d.now()
	d.record(func(r Recorder) { r.RecordRun("aborted") })
	d.logger.Error("import source unreadable",
		zap.String("run_id", result.RunID.String()),
		zap.Error(err))
	return result, apperrors.NewSourceUnreadable(err)
}

func (d *Driver) loadDefaults(ctx context.Context, logger *zap.Logger) domain.ImportDefaults {
	if d.defaults == nil {
		return domain.ImportDefaults{}
	}
	defaults, err := d.defaults.GetDefaults(ctx)
	if err != nil {
		logger.Warn("import defaults unavailable; using built-in values", zap.Error(err))
		return domain.ImportDefaults{}
	}
	return defaults
}

func (d *Driver) record(fn func(Recorder)) {
	if d.recorder != nil {
		fn(d.recorder)
	}
}

func isParseError(err error) bool {
	var parseErr *csv.ParseError
	return errors.As(err, &parseErr)
}
