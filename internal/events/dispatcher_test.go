package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDispatcher(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string

	d.Subscribe(EventTicketImported, func(_ context.Context, e Event) error {
		got = append(got, "first:"+string(e.Type))
		return errors.New("mail server down")
	})
	d.Subscribe(EventTicketImported, func(_ context.Context, e Event) error {
		got = append(got, "second:"+string(e.Type))
		return nil
	})
	d.Subscribe(EventImportCompleted, func(context.Context, Event) error {
		got = append(got, "completed")
		return nil
	})

	runID := uuid.New()
	err := d.Publish(context.Background(), NewEvent(EventTicketImported, runID, 7, TicketImportedPayload{TicketID: 1}))
	require.ErrorContains(t, err, "mail server down")
	require.Equal(t, []string{"first:ticket_imported", "second:ticket_imported"}, got)

	require.NoError(t, d.Publish(context.Background(), NewEvent(EventImportCompleted, runID, 7, ImportCompletedPayload{})))
	require.Equal(t, "completed", got[2])
}

func TestNewEvent(t *testing.T) {
	runID := uuid.New()
	e := NewEvent(EventImportCompleted, runID, 3, ImportCompletedPayload{Success: 2})

	require.NotEqual(t, uuid.Nil, e.ID)
	require.Equal(t, runID, e.RunID)
	require.Equal(t, int64(3), e.ActorID)
	require.False(t, e.Timestamp.IsZero())
}

func TestInMemoryDispatcher_RecoversPanics(t *testing.T) {
	d := NewInMemoryDispatcher()
	called := false
	d.Subscribe(EventImportCompleted, func(context.Context, Event) error {
		panic("nil template")
	})
	d.Subscribe(EventImportCompleted, func(context.Context, Event) error {
		called = true
		return nil
	})

	var err error
	require.NotPanics(t, func() {
		err = d.Publish(context.Background(), NewEvent(EventImportCompleted, uuid.New(), 1, ImportCompletedPayload{}))
	})
	require.ErrorContains(t, err, "import_completed handler panicked: nil template")
	require.True(t, called)
}

func TestInMemoryDispatcher_StopsOnCancel(t *testing.T) {
	d := NewInMemoryDispatcher()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	d.Subscribe(EventTicketImported, func(context.Context, Event) error {
		calls++
		cancel()
		return nil
	})
	d.Subscribe(EventTicketImported, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(ctx, NewEvent(EventTicketImported, uuid.New(), 1, TicketImportedPayload{TicketID: 9}))
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}
