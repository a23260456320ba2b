package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-import/internal/api/http/handlers"
	"github.com/spec-kit/ticket-import/internal/auth"
	"github.com/spec-kit/ticket-import/internal/config"
	"github.com/spec-kit/ticket-import/internal/domain"
	"github.com/spec-kit/ticket-import/internal/events"
	"github.com/spec-kit/ticket-import/internal/importer"
	"github.com/spec-kit/ticket-import/internal/observability"
	"github.com/spec-kit/ticket-import/internal/repository"
	"github.com/spec-kit/ticket-import/internal/service"
)

type stubUsers struct{ users map[int64]*domain.User }

func (s stubUsers) Create(context.Context, *domain.User) error          { return nil }
func (s stubUsers) UpdatePassword(context.Context, int64, string) error { return nil }
func (s stubUsers) FindByName(context.Context, string) ([]int64, error) { return nil, nil }
func (s stubUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}
func (s stubUsers) GetByLogin(_ context.Context, login string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Login == login {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type stubCatalog struct{}

func (stubCatalog) Create(context.Context, *domain.CatalogItem) error { return nil }
func (stubCatalog) FindByName(context.Context, domain.CatalogKind, string) ([]int64, error) {
	return nil, nil
}
func (stubCatalog) List(context.Context, domain.CatalogKind) ([]domain.CatalogItem, error) {
	return nil, nil
}

type stubTickets struct{ created []domain.TicketInput }

func (s *stubTickets) Create(_ context.Context, in *domain.TicketInput) (int64, error) {
	s.created = append(s.created, *in)
	return int64(100 + len(s.created)), nil
}
func (s *stubTickets) GetByID(context.Context, int64) (*domain.Ticket, error) {
	return nil, pgx.ErrNoRows
}
func (s *stubTickets) ListByIDs(_ context.Context, ids []int64) ([]domain.Ticket, error) {
	out := make([]domain.Ticket, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Ticket{ID: id, Name: s.created[id-101].Name})
	}
	return out, nil
}

type stubFollowups struct{ count int }

func (s *stubFollowups) Create(context.Context, *domain.Followup) error {
	s.count++
	return nil
}
func (s *stubFollowups) ListByTicket(context.Context, int64) ([]domain.Followup, error) {
	return nil, nil
}

type stubImportConfig struct{ stored *domain.ImportDefaults }

func (s *stubImportConfig) Get(context.Context) (*domain.ImportDefaults, error) {
	if s.stored == nil {
		return nil, pgx.ErrNoRows
	}
	return s.stored, nil
}
func (s *stubImportConfig) Save(_ context.Context, d domain.ImportDefaults) error {
	s.stored = &d
	return nil
}

type stubRights map[int64]domain.Right

func (s stubRights) Get(_ context.Context, userID int64, _ string) (domain.Right, error) {
	return s[userID], nil
}
func (s stubRights) Grant(context.Context, int64, string, domain.Right) error { return nil }

type stubRuns struct{ runs []importer.Result }

func (s *stubRuns) Save(_ context.Context, r *importer.Result) error {
	s.runs = append([]importer.Result{*r}, s.runs...)
	return nil
}
func (s *stubRuns) Get(_ context.Context, id uuid.UUID) (*importer.Result, error) {
	for i := range s.runs {
		if s.runs[i].RunID == id {
			return &s.runs[i], nil
		}
	}
	return nil, repository.ErrRunNotFound
}
func (s *stubRuns) ListByActor(_ context.Context, actorID int64, limit int) ([]importer.Result, error) {
	out := []importer.Result{}
	for _, r := range s.runs {
		if r.ActorID == actorID && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

type testServer struct {
	app       *fiber.App
	tokens    *auth.TokenManager
	tickets   *stubTickets
	followups *stubFollowups
}

const (
	importer1 = int64(1) // full rights
	reader2   = int64(2) // import read only
)

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	hash, err := auth.HashPassword("secret", 4)
	require.NoError(t, err)
	users := stubUsers{users: map[int64]*domain.User{
		importer1: {ID: importer1, Login: "alice", PasswordHash: hash, EntityID: 4, Active: true},
		reader2:   {ID: reader2, Login: "bob", PasswordHash: hash, Active: true},
	}}
	// both right names share the stub, so user 1 also holds ticket CREATE
	rights := stubRights{
		importer1: domain.RightRead | domain.RightUpdate | domain.RightCreate,
		reader2:   domain.RightRead,
	}
	ts := &testServer{tickets: &stubTickets{}, followups: &stubFollowups{}}

	cfg := config.Config{
		Auth: config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4},
		Import: config.ImportConfig{
			MaxUploadBytes:    1 << 20,
			AllowedExtensions: []string{"csv", "txt"},
			FollowupContent:   "Ticket imported from CSV",
			DefaultUrgency:    3,
			DefaultImpact:     2,
			DefaultPriority:   3,
		},
	}
	metrics := observability.NewMetrics()
	logger := zap.NewNop()

	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: users, RightsRepo: rights})
	importService := service.NewImportService(cfg.Import, service.ImportDependencies{
		TicketRepo:       ts.tickets,
		FollowupRepo:     ts.followups,
		UserRepo:         users,
		CatalogRepo:      stubCatalog{},
		ImportConfigRepo: &stubImportConfig{},
		RightsRepo:       rights,
		RunRepo:          &stubRuns{},
		Dispatcher:       events.NewInMemoryDispatcher(),
		Metrics:          metrics,
		Logger:           logger,
	})
	ts.tokens = authService.TokenManager()

	ts.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger, metrics)})
	RegisterMiddlewares(ts.app, logger, metrics, 0)
	RegisterRoutes(ts.app, RouteConfig{
		Health:         handlers.NewHealthHandler("ticket-import", "test", map[string]handlers.Pinger{"postgres": nil}),
		Auth:           handlers.NewAuthHandler(authService),
		Imports:        handlers.NewImportsHandler(importService, logger),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users),
		Rights:         rights,
		Metrics:        metrics,
	})
	return ts
}

func (ts *testServer) token(t *testing.T, userID, entityID int64) string {
	t.Helper()
	token, _, err := ts.tokens.GenerateToken(userID, entityID, true)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token, contentType string, body io.Reader) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func uploadBody(t *testing.T, filename, content string, fields map[string]string) (string, io.Reader) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("import_file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return w.FormDataContentType(), &buf
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, "POST", "/auth/login", "", fiber.MIMEApplicationJSON,
		strings.NewReader(`{"login":"alice","password":"secret"}`))
	require.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]any)
	token := data["auth"].(map[string]any)["token"].(string)

	claims, err := ts.tokens.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, importer1, claims.UserID)
	require.Equal(t, int64(4), claims.ActiveEntityID)

	status, body = ts.do(t, "POST", "/auth/login", "", fiber.MIMEApplicationJSON,
		strings.NewReader(`{"login":"alice","password":"wrong"}`))
	require.Equal(t, fiber.StatusUnauthorized, status)
	require.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, body = ts.do(t, "POST", "/auth/login", "", fiber.MIMEApplicationJSON, strings.NewReader(`{}`))
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestCreateImport(t *testing.T) {
	ts := newTestServer(t)
	ctype, body := uploadBody(t, "tickets.csv", "title,description\nVPN down,Since 9am\n,\nPrinter jam,\n",
		map[string]string{"format": "csv"})

	status, resp := ts.do(t, "POST", "/imports", ts.token(t, importer1, 4), ctype, body)

	require.Equal(t, fiber.StatusCreated, status)
	data := resp["data"].(map[string]any)
	require.Equal(t, "Import completed: 2 successful, 0 errors, 1 skipped", data["summary"])
	imported := data["imported"].([]any)
	require.Len(t, imported, 2)
	require.Equal(t, "/tickets/101", imported[0].(map[string]any)["link"])
	require.Equal(t, "VPN down", imported[0].(map[string]any)["title"])

	require.Len(t, ts.tickets.created, 2)
	require.Equal(t, int64(4), ts.tickets.created[0].EntityID)
	require.Equal(t, 2, ts.followups.count, "add_followup defaults to on")

	runID := data["run_id"].(string)
	status, resp = ts.do(t, "GET", "/imports/"+runID, ts.token(t, importer1, 4), "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, runID, resp["data"].(map[string]any)["run_id"])

	status, resp = ts.do(t, "GET", "/imports", ts.token(t, importer1, 4), "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, resp["data"].([]any), 1)

	status, _ = ts.do(t, "GET", "/imports/"+runID, ts.token(t, reader2, 0), "", nil)
	require.Equal(t, fiber.StatusNotFound, status)
}

func TestCreateImport_Options(t *testing.T) {
	ts := newTestServer(t)
	ctype, body := uploadBody(t, "tickets.txt", "Subject,Notes\nMail bounce,ignored\n", map[string]string{
		"format":        "csv",
		"has_headers":   "1",
		"add_followup":  "0",
		"field_mapping": `{"Subject":"name"}`,
	})

	status, resp := ts.do(t, "POST", "/imports", ts.token(t, importer1, 4), ctype, body)

	require.Equal(t, fiber.StatusCreated, status, "%v", resp)
	require.Equal(t, "Mail bounce", ts.tickets.created[0].Name)
	require.Zero(t, ts.followups.count)
}

func TestCreateImport_Rejections(t *testing.T) {
	cases := []struct {
		name     string
		token    func(*testServer, *testing.T) string
		filename string
		content  string
		fields   map[string]string
		status   int
		code     string
	}{
		{
			name:     "no token",
			token:    func(*testServer, *testing.T) string { return "" },
			filename: "a.csv", content: "title\nx\n",
			status: fiber.StatusUnauthorized, code: "UNAUTHORIZED",
		},
		{
			name:     "read only",
			token:    func(ts *testServer, t *testing.T) string { return ts.token(t, reader2, 0) },
			filename: "a.csv", content: "title\nx\n",
			status: fiber.StatusForbidden, code: "FORBIDDEN",
		},
		{
			name:     "format",
			filename: "a.csv", content: "title\nx\n",
			fields: map[string]string{"format": "xlsx"},
			status: fiber.StatusBadRequest, code: "VALIDATION_FAILED",
		},
		{
			name:   "no file",
			status: fiber.StatusBadRequest, code: "VALIDATION_FAILED",
		},
		{
			name:     "extension",
			filename: "a.xlsx", content: "title\nx\n",
			status: fiber.StatusUnsupportedMediaType, code: "UNSUPPORTED_FILE_TYPE",
		},
		{
			name:     "mapping json",
			filename: "a.csv", content: "title\nx\n",
			fields: map[string]string{"field_mapping": "[1,2]"},
			status: fiber.StatusBadRequest, code: "VALIDATION_FAILED",
		},
		{
			name:     "empty source",
			filename: "a.csv", content: "",
			status: fiber.StatusUnprocessableEntity, code: "SOURCE_UNREADABLE",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)
			token := ts.token(t, importer1, 4)
			if tc.token != nil {
				token = tc.token(ts, t)
			}
			ctype, body := uploadBody(t, tc.filename, tc.content, tc.fields)
			status, resp := ts.do(t, "POST", "/imports", token, ctype, body)
			require.Equal(t, tc.status, status)
			require.Equal(t, tc.code, errorCode(resp))
			require.Empty(t, ts.tickets.created)
		})
	}
}

func TestFieldsAndMapping(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, reader2, 0)

	status, resp := ts.do(t, "GET", "/imports/fields", token, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, resp["data"].(map[string]any)["fields"].([]any), len(importer.Fields()))

	status, resp = ts.do(t, "POST", "/imports/mapping", token, fiber.MIMEApplicationJSON,
		strings.NewReader(`{"headers":["Title","Owner"]}`))
	require.Equal(t, fiber.StatusOK, status)
	mapping := resp["data"].([]any)
	require.Equal(t, "name", mapping[0].(map[string]any)["field"])
	require.Equal(t, "", mapping[1].(map[string]any)["field"])

	status, _ = ts.do(t, "POST", "/imports/mapping", token, fiber.MIMEApplicationJSON,
		strings.NewReader(`{"headers":["Owner"],"field_mapping":{"Owner":"owner"}}`))
	require.Equal(t, fiber.StatusBadRequest, status)
}

func TestImportDefaults(t *testing.T) {
	ts := newTestServer(t)

	status, resp := ts.do(t, "GET", "/imports/config", ts.token(t, reader2, 0), "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.EqualValues(t, 2, resp["data"].(map[string]any)["impact"])

	status, _ = ts.do(t, "PUT", "/imports/config", ts.token(t, reader2, 0), fiber.MIMEApplicationJSON,
		strings.NewReader(`{"urgency":4,"impact":4,"priority":4}`))
	require.Equal(t, fiber.StatusForbidden, status)

	status, resp = ts.do(t, "PUT", "/imports/config", ts.token(t, importer1, 4), fiber.MIMEApplicationJSON,
		strings.NewReader(`{"urgency":9,"impact":4,"priority":4}`))
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Contains(t, resp["error"].(map[string]any)["details"], "Urgency")

	status, _ = ts.do(t, "PUT", "/imports/config", ts.token(t, importer1, 4), fiber.MIMEApplicationJSON,
		strings.NewReader(`{"category_id":3,"urgency":4,"impact":4,"priority":5}`))
	require.Equal(t, fiber.StatusOK, status)

	status, resp = ts.do(t, "GET", "/imports/config", ts.token(t, reader2, 0), "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.EqualValues(t, 5, resp["data"].(map[string]any)["priority"])
}

func TestOpenRoutes(t *testing.T) {
	ts := newTestServer(t)

	status, resp := ts.do(t, "GET", "/health/live", "", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "alive", resp["status"])

	status, resp = ts.do(t, "GET", "/health/ready", "", "", nil)
	require.Equal(t, fiber.StatusServiceUnavailable, status)
	require.Equal(t, "DEPENDENCY_UNAVAILABLE", errorCode(resp))

	status, resp = ts.do(t, "GET", "/nowhere", "", "", nil)
	require.Equal(t, fiber.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", errorCode(resp))

	req := httptest.NewRequest("GET", "/metrics", nil)
	res, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	require.Contains(t, string(raw), "ticket_import_http_requests_total")
}
