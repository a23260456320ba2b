package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-import/internal/config"
	"github.com/spec-kit/ticket-import/internal/domain"
	"github.com/spec-kit/ticket-import/internal/events"
	"github.com/spec-kit/ticket-import/internal/importer"
	"github.com/spec-kit/ticket-import/internal/observability"
	"github.com/spec-kit/ticket-import/internal/repository"
	apperrors "github.com/spec-kit/ticket-import/pkg/util/errorutil"
)

// sniffLen is the number of leading bytes inspected to reject binary uploads.
const sniffLen = 3072

// Actor identifies who runs an import and in which scope.
type Actor struct {
	UserID          int64
	ActiveEntityID  int64
	HasActiveEntity bool
}

// Upload is an uploaded file. Open is called at most once per import.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// ImportService coordinates CSV import runs.
type ImportService struct {
	cfg          config.ImportConfig
	tickets      repository.TicketRepository
	importConfig repository.ImportConfigRepository
	runs         repository.ImportRunRepository
	creator      importer.Creator
	lookup       importer.Lookup
	defaults     importer.DefaultsProvider
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// ImportDependencies bundles repositories for the import service.
type ImportDependencies struct {
	TicketRepo       repository.TicketRepository
	FollowupRepo     repository.FollowupRepository
	UserRepo         repository.UserRepository
	CatalogRepo      repository.CatalogRepository
	ImportConfigRepo repository.ImportConfigRepository
	RightsRepo       repository.RightsRepository
	RunRepo          repository.ImportRunRepository
	Dispatcher       events.Dispatcher
	Metrics          *observability.Metrics
	Logger           *zap.Logger
	Now              func() time.Time
}

// NewImportService builds the service.
func NewImportService(cfg config.ImportConfig, deps ImportDependencies) *ImportService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &ImportService{
		cfg:          cfg,
		tickets:      deps.TicketRepo,
		importConfig: deps.ImportConfigRepo,
		runs:         deps.RunRepo,
		creator:      NewCreatorGateway(deps.TicketRepo, deps.FollowupRepo, deps.RightsRepo),
		lookup:       NewLookupGateway(deps.UserRepo, deps.CatalogRepo),
		defaults:     NewDefaultsGateway(deps.ImportConfigRepo, cfg),
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		logger:       logger,
		now:          now,
	}
}

// ImportUpload validates and imports an uploaded CSV file. The upload is
// closed before returning.
func (s *ImportService) ImportUpload(ctx context.Context, actor Actor, upload Upload, opts importer.Options) (*importer.Result, error) {
	if err := importer.ValidateUpload(upload.Filename, upload.Size, s.cfg.MaxUploadBytes, s.cfg.AllowedExtensions); err != nil {
		return nil, err
	}
	if err := ValidateMapping(opts.FieldMapping); err != nil {
		return nil, err
	}

	file, err := upload.Open()
	if err != nil {
		return s.abort(ctx, actor, opts, fmt.Errorf("open upload: %w", err))
	}
	defer file.Close()

	src, err := sniffText(file)
	if apperrors.IsCode(err, apperrors.CodeUnsupportedFileType) {
		return nil, err
	}
	if err != nil {
		return s.abort(ctx, actor, opts, fmt.Errorf("read upload: %w", err))
	}
	return s.run(ctx, actor, opts, func(d *importer.Driver, rc importer.RunContext) (*importer.Result, error) {
		return d.Run(ctx, src, opts, rc)
	})
}

// ImportFile imports a CSV file from the local filesystem.
func (s *ImportService) ImportFile(ctx context.Context, actor Actor, path string, opts importer.Options) (*importer.Result, error) {
	if info, err := os.Stat(path); err == nil {
		if err := importer.ValidateUpload(info.Name(), info.Size(), s.cfg.MaxUploadBytes, s.cfg.AllowedExtensions); err != nil {
			return nil, err
		}
	}
	if err := ValidateMapping(opts.FieldMapping); err != nil {
		return nil, err
	}
	return s.run(ctx, actor, opts, func(d *importer.Driver, rc importer.RunContext) (*importer.Result, error) {
		return d.RunFile(ctx, path, opts, rc)
	})
}

// abort stores and announces a run whose source could not be read.
func (s *ImportService) abort(ctx context.Context, actor Actor, opts importer.Options, cause error) (*importer.Result, error) {
	return s.run(ctx, actor, opts, func(d *importer.Driver, rc importer.RunContext) (*importer.Result, error) {
		return d.Abort(rc, cause)
	})
}

func (s *ImportService) run(
	ctx context.Context,
	actor Actor,
	opts importer.Options,
	exec func(*importer.Driver, importer.RunContext) (*importer.Result, error),
) (*importer.Result, error) {
	rc := importer.RunContext{
		RunID:           uuid.New(),
		ActorID:         actor.UserID,
		ActiveEntityID:  actor.ActiveEntityID,
		HasActiveEntity: actor.HasActiveEntity,
	}
	logger := s.logger.With(zap.String("run_id", rc.RunID.String()))

	driver := importer.NewDriver(importer.DriverDependencies{
		Creator:         s.creator,
		Lookup:          s.lookup,
		Defaults:        s.defaults,
		Recorder:        s.metrics,
		Logger:          s.logger,
		FollowupContent: s.cfg.FollowupContent,
		DefaultContent:  s.cfg.DefaultContent,
		Now:             s.now,
	})

	opts.OnCreated = func(c importer.CreatedTicket) {
		s.publish(ctx, logger, events.NewEvent(events.EventTicketImported, rc.RunID, rc.ActorID,
			events.TicketImportedPayload{TicketID: c.TicketID, Line: c.Line, Title: c.Name}))
	}

	result, err := exec(driver, rc)
	if result == nil {
		return nil, err
	}

	if s.runs != nil {
		if saveErr := s.runs.Save(ctx, result); saveErr != nil {
			logger.Warn("import run not stored", zap.Error(saveErr))
		}
	}
	s.publish(ctx, logger, events.NewEvent(events.EventImportCompleted, rc.RunID, rc.ActorID,
		events.ImportCompletedPayload{
			Success:     result.SuccessCount,
			Errors:      result.ErrorCount,
			Skipped:     result.SkippedCount,
			SourceError: result.SourceError,
		}))
	return result, err
}

func (s *ImportService) publish(ctx context.Context, logger *zap.Logger, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

// GetRun returns a stored run owned by actorID.
func (s *ImportService) GetRun(ctx context.Context, actorID int64, runID uuid.UUID) (*importer.Result, error) {
	if s.runs == nil {
		return nil, apperrors.NewNotFound("import run", nil)
	}
	run, err := s.runs.Get(ctx, runID)
	if errors.Is(err, repository.ErrRunNotFound) {
		return nil, apperrors.NewNotFound("import run", map[string]any{"run_id": runID.String()})
	}
	if err != nil {
		return nil, err
	}
	if run.ActorID != actorID {
		return nil, apperrors.NewNotFound("import run", map[string]any{"run_id": runID.String()})
	}
	return run, nil
}

// ListRuns returns the actor's most recent runs, newest first.
func (s *ImportService) ListRuns(ctx context.Context, actorID int64, limit int) ([]importer.Result, error) {
	if s.runs == nil {
		return []importer.Result{}, nil
	}
	return s.runs.ListByActor(ctx, actorID, limit)
}

// ImportedTickets loads the tickets created by a run.
func (s *ImportService) ImportedTickets(ctx context.Context, run *importer.Result) ([]domain.Ticket, error) {
	if run == nil || len(run.CreatedIDs) == 0 {
		return []domain.Ticket{}, nil
	}
	return s.tickets.ListByIDs(ctx, run.CreatedIDs)
}

// PreviewMapping reports how the given header row would be mapped.
func (s *ImportService) PreviewMapping(headers []string, hasHeaders bool, mapping map[string]string) (importer.HeaderMap, error) {
	if err := ValidateMapping(mapping); err != nil {
		return nil, err
	}
	return importer.MapHeaders(headers, hasHeaders, mapping), nil
}

// Fields lists the importable fields.
func (s *ImportService) Fields() []importer.FieldInfo {
	return importer.Fields()
}

// GetDefaults returns the effective import defaults.
func (s *ImportService) GetDefaults(ctx context.Context) (domain.ImportDefaults, error) {
	return s.defaults.GetDefaults(ctx)
}

// SaveDefaults stores the import defaults.
func (s *ImportService) SaveDefaults(ctx context.Context, d domain.ImportDefaults) error {
	if s.importConfig == nil {
		return apperrors.NewInternalError(errors.New("import configuration store not available"))
	}
	return s.importConfig.Save(ctx, d)
}

// ValidateMapping rejects explicit mappings that target unknown fields.
func ValidateMapping(mapping map[string]string) error {
	invalid := map[string]any{}
	for source, field := range mapping {
		if field != "" && !importer.IsField(field) {
			invalid[source] = field
		}
	}
	if len(invalid) > 0 {
		return apperrors.NewValidationError("field mapping targets unknown fields", invalid)
	}
	return nil
}

// sniffText rejects sources whose leading bytes are not text. The returned
// reader still yields the inspected bytes. Read failures are returned as is.
func sniffText(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}
	if len(head) == 0 {
		return br, nil
	}
	detected := mimetype.Detect(head)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return br, nil
		}
	}
	return nil, apperrors.NewUnsupportedFileType(detected.String(), []string{"text/csv", "text/plain"})
}
