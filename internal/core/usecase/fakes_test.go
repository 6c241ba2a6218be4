package usecase

import (
	"context"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"sync"
	"time"

	"github.com/google/uuid"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return baseTime.Add(time.Duration(minutes) * time.Minute)
}

// fakeSource - управляемый источник данных.
// Если задан gate, каждый вызов ждет сигнала из канала.
type fakeSource struct {
	mu         sync.Mutex
	branches   []domain.Branch
	apartments []domain.Apartment
	rooms      []domain.Room

	branchesErr   error
	apartmentsErr error
	roomsErr      error

	gate    chan struct{}
	started chan domain.Resource
	calls   int
}

func (f *fakeSource) wait(ctx context.Context, r domain.Resource) error {
	f.mu.Lock()
	f.calls++
	gate, started := f.gate, f.started
	f.mu.Unlock()

	if started != nil {
		started <- r
	}
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSource) FetchBranches(ctx context.Context, filter domain.BranchFilter) ([]domain.Branch, error) {
	if err := f.wait(ctx, domain.ResourceBranches); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.branchesErr != nil {
		return nil, f.branchesErr
	}
	var out []domain.Branch
	for _, b := range f.branches {
		if filter.ID != nil && b.ID != *filter.ID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeSource) FetchApartments(ctx context.Context, filter domain.ApartmentFilter) ([]domain.Apartment, error) {
	if err := f.wait(ctx, domain.ResourceApartments); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.apartmentsErr != nil {
		return nil, f.apartmentsErr
	}
	var out []domain.Apartment
	for _, a := range f.apartments {
		if filter.ID != nil && a.ID != *filter.ID {
			continue
		}
		if filter.BranchID != nil && a.BranchID != *filter.BranchID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeSource) FetchRooms(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	if err := f.wait(ctx, domain.ResourceRooms); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roomsErr != nil {
		return nil, f.roomsErr
	}
	var out []domain.Room
	for _, r := range f.rooms {
		if filter.ID != nil && r.ID != *filter.ID {
			continue
		}
		if filter.ApartmentID != nil {
			if id, ok := r.Owner.ApartmentID(); !ok || id != *filter.ApartmentID {
				continue
			}
		}
		if filter.BranchID != nil {
			if id, ok := r.Owner.BranchID(); !ok || id != *filter.BranchID {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeSource) setBranches(b []domain.Branch) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.branches = b
}

type fakeMetrics struct {
	mu         sync.Mutex
	loads      []domain.LoadStatus
	superseded int
	fetches    map[domain.Resource]int
}

func (m *fakeMetrics) ObserveFetch(resource domain.Resource, _ time.Duration, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetches == nil {
		m.fetches = map[domain.Resource]int{}
	}
	m.fetches[resource]++
}

func (m *fakeMetrics) RecordLoad(status domain.LoadStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads = append(m.loads, status)
}

func (m *fakeMetrics) RecordSuperseded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.superseded++
}

func (m *fakeMetrics) SetTreeSize(int, int, int) {}

type fakeEvents struct {
	events []domain.ListingChangedEvent
	err    error
}

func (f *fakeEvents) PublishListingChanged(_ context.Context, e domain.ListingChangedEvent) error {
	f.events = append(f.events, e)
	return f.err
}

// fakeRepository хранит записи в памяти.
type fakeRepository struct {
	branches   map[uuid.UUID]domain.Branch
	apartments map[uuid.UUID]domain.Apartment
	rooms      map[uuid.UUID]domain.Room
	err        error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		branches:   map[uuid.UUID]domain.Branch{},
		apartments: map[uuid.UUID]domain.Apartment{},
		rooms:      map[uuid.UUID]domain.Room{},
	}
}

func (r *fakeRepository) ListBranchesByName(context.Context) ([]domain.Branch, error) {
	out := make([]domain.Branch, 0, len(r.branches))
	for _, b := range r.branches {
		out = append(out, b)
	}
	return out, r.err
}

func (r *fakeRepository) CreateBranch(_ context.Context, in domain.BranchInput) (*domain.Branch, error) {
	if r.err != nil {
		return nil, r.err
	}
	b := domain.Branch{ID: uuid.New(), Name: in.Name, City: in.City, Address: in.Address, Latitude: in.Latitude, Longitude: in.Longitude}
	r.branches[b.ID] = b
	return &b, nil
}

func (r *fakeRepository) UpdateBranch(_ context.Context, id uuid.UUID, in domain.BranchInput) (*domain.Branch, error) {
	if _, ok := r.branches[id]; !ok {
		return nil, domain.ErrNotFound
	}
	b := domain.Branch{ID: id, Name: in.Name, City: in.City, Address: in.Address}
	r.branches[id] = b
	return &b, nil
}

func (r *fakeRepository) DeleteBranch(_ context.Context, id uuid.UUID) error {
	if _, ok := r.branches[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.branches, id)
	return nil
}

func (r *fakeRepository) CreateApartment(_ context.Context, in domain.ApartmentInput) (*domain.Apartment, error) {
	if r.err != nil {
		return nil, r.err
	}
	a := domain.Apartment{ID: uuid.New(), BranchID: in.BranchID, Name: in.Name, Image: in.Image, Images: in.Images}
	r.apartments[a.ID] = a
	return &a, nil
}

func (r *fakeRepository) UpdateApartment(_ context.Context, id uuid.UUID, in domain.ApartmentInput) (*domain.Apartment, error) {
	if _, ok := r.apartments[id]; !ok {
		return nil, domain.ErrNotFound
	}
	a := domain.Apartment{ID: id, BranchID: in.BranchID, Name: in.Name}
	r.apartments[id] = a
	return &a, nil
}

func (r *fakeRepository) DeleteApartment(_ context.Context, id uuid.UUID) error {
	if _, ok := r.apartments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.apartments, id)
	return nil
}

func (r *fakeRepository) CreateRoom(_ context.Context, in domain.RoomInput) (*domain.Room, error) {
	if r.err != nil {
		return nil, r.err
	}
	room := domain.Room{ID: uuid.New(), Owner: in.Owner, Name: in.Name, Capacity: in.Capacity, Image: in.Image, Images: in.Images}
	r.rooms[room.ID] = room
	return &room, nil
}

func (r *fakeRepository) UpdateRoom(_ context.Context, id uuid.UUID, in domain.RoomInput) (*domain.Room, error) {
	if _, ok := r.rooms[id]; !ok {
		return nil, domain.ErrNotFound
	}
	room := domain.Room{ID: id, Owner: in.Owner, Name: in.Name, Capacity: in.Capacity}
	r.rooms[id] = room
	return &room, nil
}

func (r *fakeRepository) DeleteRoom(_ context.Context, id uuid.UUID) error {
	if _, ok := r.rooms[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rooms, id)
	return nil
}

type fakeTokens struct {
	claims *port.TokenClaims
	err    error
}

func (f *fakeTokens) ValidateToken(context.Context, string) (*port.TokenClaims, error) {
	return f.claims, f.err
}

type fakeProfiles struct {
	profiles map[uuid.UUID]domain.Profile
}

func (f *fakeProfiles) FindProfileByID(_ context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}
