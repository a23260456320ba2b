package importer

import (
	"context"
	"errors"
	"sync"

	"github.com/spec-kit/ticket-import/internal/domain"
)

type fakeCreator struct {
	mu          sync.Mutex
	nextID      int64
	allow       bool
	allowErr    error
	createErr   error
	zeroID      bool
	followupErr error

	created   []*domain.TicketInput
	followups []int64
	checks    int
}

func newFakeCreator() *fakeCreator {
	return &fakeCreator{nextID: 100, allow: true}
}

func (f *fakeCreator) CanCreate(_ context.Context, _ int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks++
	return f.allow, f.allowErr
}

func (f *fakeCreator) Create(_ context.Context, input *domain.TicketInput) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.created = append(f.created, input)
	if f.zeroID {
		return 0, nil
	}
	f.nextID++
	return f.nextID, nil
}

func (f *fakeCreator) AddFollowup(_ context.Context, ticketID int64, _ string, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, ticketID)
	return f.followupErr
}

type fakeLookup struct {
	ids   map[LookupKind]map[string][]int64
	err   error
	calls int
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{ids: map[LookupKind]map[string][]int64{}}
}

func (f *fakeLookup) with(kind LookupKind, name string, ids ...int64) *fakeLookup {
	if f.ids[kind] == nil {
		f.ids[kind] = map[string][]int64{}
	}
	f.ids[kind][name] = ids
	return f
}

func (f *fakeLookup) FindByName(_ context.Context, kind LookupKind, name string) ([]int64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.ids[kind][name], nil
}

type fakeDefaults struct {
	defaults domain.ImportDefaults
	err      error
}

func (f fakeDefaults) GetDefaults(context.Context) (domain.ImportDefaults, error) {
	return f.defaults, f.err
}

type fakeRecorder struct {
	rows map[string]int
	runs map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{rows: map[string]int{}, runs: map[string]int{}}
}

func (f *fakeRecorder) RecordRow(outcome string) { f.rows[outcome]++ }
func (f *fakeRecorder) RecordRun(status string)  { f.runs[status]++ }

type failingReader struct {
	data []byte
	done bool
}

var errBrokenSource = errors.New("broken pipe")

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errBrokenSource
	}
	r.done = true
	n := copy(p, r.data)
	return n, nil
}
