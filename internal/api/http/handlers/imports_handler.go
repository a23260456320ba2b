package handlers

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-import/internal/api/dto"
	"github.com/spec-kit/ticket-import/internal/auth"
	"github.com/spec-kit/ticket-import/internal/domain"
	"github.com/spec-kit/ticket-import/internal/importer"
	"github.com/spec-kit/ticket-import/internal/service"
	apperrors "github.com/spec-kit/ticket-import/pkg/util/errorutil"
)

const (
	uploadField     = "import_file"
	defaultRunLimit = 20
	maxRunLimit     = 100
)

// ImportsHandler exposes the CSV ticket import.
type ImportsHandler struct {
	service *service.ImportService
	logger  *zap.Logger
}

// NewImportsHandler constructs handler.
func NewImportsHandler(importService *service.ImportService, logger *zap.Logger) *ImportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportsHandler{service: importService, logger: logger}
}

// Create POST /imports.
func (h *ImportsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var form dto.ImportFormRequest
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if errs, ok := form.Ok(); !ok {
		return apperrors.NewValidationError("invalid import form", dto.Details(errs))
	}
	mapping, err := parseFieldMapping(form.FieldMapping)
	if err != nil {
		return err
	}
	file, err := c.FormFile(uploadField)
	if err != nil {
		return apperrors.NewValidationError("no file uploaded", map[string]any{"field": uploadField})
	}

	upload := service.Upload{
		Filename: file.Filename,
		Size:     file.Size,
		Open:     func() (io.ReadCloser, error) { return file.Open() },
	}
	opts := importer.Options{
		HasHeaders:   formBool(form.HasHeaders, true),
		AddFollowup:  formBool(form.AddFollowup, true),
		FieldMapping: mapping,
	}
	result, err := h.service.ImportUpload(c.UserContext(), actorOf(principal), upload, opts)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": h.runResponse(c, result)})
}

// List GET /imports.
func (h *ImportsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	limit := c.QueryInt("limit", defaultRunLimit)
	if limit <= 0 || limit > maxRunLimit {
		limit = defaultRunLimit
	}
	runs, err := h.service.ListRuns(c.UserContext(), principal.User.ID, limit)
	if err != nil {
		return err
	}
	items := make([]dto.ImportRunSummary, 0, len(runs))
	for i := range runs {
		items = append(items, dto.NewImportRunSummary(&runs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /imports/:id.
func (h *ImportsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	runID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.NewValidationError("invalid run id", map[string]any{"id": c.Params("id")})
	}
	run, err := h.service.GetRun(c.UserContext(), principal.User.ID, runID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.runResponse(c, run)})
}

// Fields GET /imports/fields.
func (h *ImportsHandler) Fields(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{
		"fields":        h.service.Fields(),
		"sample_header": strings.Join(importer.SampleHeader(), ","),
	}})
}

// Mapping POST /imports/mapping.
func (h *ImportsHandler) Mapping(c *fiber.Ctx) error {
	var req dto.MappingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if errs, ok := req.Ok(); !ok {
		return apperrors.NewValidationError("invalid mapping request", dto.Details(errs))
	}
	hasHeaders := req.HasHeaders == nil || *req.HasHeaders
	mapping, err := h.service.PreviewMapping(req.Headers, hasHeaders, req.FieldMapping)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mapping})
}

// GetDefaults GET /imports/config.
func (h *ImportsHandler) GetDefaults(c *fiber.Ctx) error {
	d, err := h.service.GetDefaults(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDefaultsResponse(d)})
}

// SaveDefaults PUT /imports/config.
func (h *ImportsHandler) SaveDefaults(c *fiber.Ctx) error {
	var req dto.DefaultsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if errs, ok := req.Ok(); !ok {
		return apperrors.NewValidationError("invalid import defaults", dto.Details(errs))
	}
	d := req.ToDomain()
	if err := h.service.SaveDefaults(c.UserContext(), d); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDefaultsResponse(d)})
}

func (h *ImportsHandler) runResponse(c *fiber.Ctx, run *importer.Result) dto.ImportRunResponse {
	tickets, err := h.service.ImportedTickets(c.UserContext(), run)
	if err != nil {
		// titles only decorate the links
		h.logger.Warn("imported tickets not loaded", zap.String("run_id", run.RunID.String()), zap.Error(err))
		tickets = []domain.Ticket{}
	}
	return dto.NewImportRunResponse(run, tickets)
}

func actorOf(p *auth.Principal) service.Actor {
	return service.Actor{
		UserID:          p.User.ID,
		ActiveEntityID:  p.ActiveEntityID,
		HasActiveEntity: p.HasActiveEntity,
	}
}

func formBool(raw string, fallback bool) bool {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func parseFieldMapping(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var mapping map[string]string
	if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
		return nil, apperrors.NewValidationError("field_mapping must be a JSON object of strings", nil)
	}
	return mapping, nil
}
