package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-import/internal/domain"
	"github.com/spec-kit/ticket-import/internal/importer"
)

func TestCreatorGateway(t *testing.T) {
	tickets := &memTickets{}
	followups := &memFollowups{}
	rights := memRights{5: {domain.RightNameTicket: domain.RightCreate}, 6: {domain.RightNameTicket: domain.RightRead}}
	gw := NewCreatorGateway(tickets, followups, rights)
	ctx := context.Background()

	for actor, want := range map[int64]bool{5: true, 6: false, 7: false, 0: false} {
		ok, err := gw.CanCreate(ctx, actor)
		require.NoError(t, err)
		require.Equal(t, want, ok, "actor %d", actor)
	}

	id, err := gw.Create(ctx, &domain.TicketInput{Name: "x"})
	require.NoError(t, err)
	require.NoError(t, gw.AddFollowup(ctx, id, "note", 5))
	require.Equal(t, domain.Followup{ID: 1, TicketID: id, UserID: 5, Content: "note"}, followups.followups[0])
}

func TestLookupGateway(t *testing.T) {
	users := &memUsers{users: []*domain.User{{ID: 3, Login: "jdoe", Email: "jdoe@example.com"}}}
	catalog := &memCatalog{items: []domain.CatalogItem{
		{ID: 9, Kind: domain.CatalogGroup, Name: "Helpdesk"},
		{ID: 10, Kind: domain.CatalogLocation, Name: "Helpdesk"},
	}}
	gw := NewLookupGateway(users, catalog)
	ctx := context.Background()

	ids, err := gw.FindByName(ctx, importer.LookupUser, "jdoe@example.com")
	require.NoError(t, err)
	require.Equal(t, []int64{3}, ids)

	ids, err = gw.FindByName(ctx, importer.LookupGroup, "Helpdesk")
	require.NoError(t, err)
	require.Equal(t, []int64{9}, ids)

	ids, err = gw.FindByName(ctx, importer.LookupLocation, "Helpdesk")
	require.NoError(t, err)
	require.Equal(t, []int64{10}, ids)

	_, err = gw.FindByName(ctx, importer.LookupKind("printer"), "x")
	require.Error(t, err)
}
