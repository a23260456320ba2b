package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-import/internal/domain"
	"github.com/spec-kit/ticket-import/internal/importer"
)

func TestLoginRequest_Ok(t *testing.T) {
	req := LoginRequest{Login: "  alice ", Password: "pw"}
	_, ok := req.Ok()
	require.True(t, ok)
	require.Equal(t, "alice", req.Login)

	req = LoginRequest{Login: "   "}
	errs, ok := req.Ok()
	require.False(t, ok)
	require.Equal(t, "Login is required", errs["Login"])
	require.Contains(t, errs, "Password")
}

func TestImportFormRequest_Ok(t *testing.T) {
	req := ImportFormRequest{}
	_, ok := req.Ok()
	require.True(t, ok)
	require.Equal(t, "csv", req.Format)

	req = ImportFormRequest{Format: "xlsx", HasHeaders: "yes"}
	errs, ok := req.Ok()
	require.False(t, ok)
	require.Equal(t, "Format must be one of: csv", errs["Format"])
	require.Contains(t, errs, "HasHeaders")
}

func TestDefaultsRequest_Ok(t *testing.T) {
	req := DefaultsRequest{Urgency: 3, Impact: 2, Priority: 6, EntityID: -1}
	errs, ok := req.Ok()
	require.False(t, ok)
	require.Equal(t, "Priority must be at most 5", errs["Priority"])
	require.Contains(t, errs, "EntityID")
	require.NotContains(t, errs, "Urgency")

	req = DefaultsRequest{CategoryID: 4, Urgency: 1, Impact: 5, Priority: 3}
	_, ok = req.Ok()
	require.True(t, ok)
	require.Equal(t, domain.ImportDefaults{CategoryID: 4, Urgency: 1, Impact: 5, Priority: 3}, req.ToDomain())
}

func TestNewImportRunResponse(t *testing.T) {
	r := &importer.Result{
		RunID:        uuid.New(),
		SuccessCount: 2,
		ErrorCount:   1,
		Messages:     []string{"Line 3: Failed to create ticket"},
		CreatedIDs:   []int64{10, 11},
	}
	resp := NewImportRunResponse(r, []domain.Ticket{{ID: 10, Name: "VPN down"}})

	require.Equal(t, "Import completed: 2 successful, 1 errors, 0 skipped", resp.Summary)
	require.Equal(t, []string{resp.Summary, "Line 3: Failed to create ticket"}, resp.Details)
	require.Equal(t, []ImportedTicket{
		{ID: 10, Title: "VPN down", Link: "/tickets/10"},
		{ID: 11, Link: "/tickets/11"},
	}, resp.Imported)
}
