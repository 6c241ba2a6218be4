package usecase

import (
	"context"
	"errors"
	"listing-service/internal/core/domain"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type AggregatorSuite struct {
	suite.Suite
	source     *fakeSource
	metrics    *fakeMetrics
	aggregator *ListingAggregator

	branch    domain.Branch
	apartment domain.Apartment
}

func TestAggregatorSuite(t *testing.T) {
	suite.Run(t, new(AggregatorSuite))
}

func (s *AggregatorSuite) SetupTest() {
	s.branch = domain.Branch{ID: uuid.New(), Name: "Bengaluru", CreatedAt: at(1)}
	s.apartment = domain.Apartment{ID: uuid.New(), BranchID: s.branch.ID, Name: "Koramangala Loft", CreatedAt: at(2)}
	s.source = &fakeSource{
		branches:   []domain.Branch{s.branch},
		apartments: []domain.Apartment{s.apartment},
		rooms: []domain.Room{
			{ID: uuid.New(), Name: "Queen Room", Owner: domain.OwnedByApartment(s.apartment.ID), CreatedAt: at(3)},
			{ID: uuid.New(), Name: "Garden Suite", Owner: domain.OwnedByBranch(s.branch.ID), CreatedAt: at(4)},
		},
	}
	s.metrics = &fakeMetrics{}
	s.aggregator = NewListingAggregator(s.source, s.metrics)
}

func (s *AggregatorSuite) TestInitialSnapshotIsIdle() {
	snap := s.aggregator.Snapshot()
	s.Equal(domain.StatusIdle, snap.Status)
	s.False(snap.Loading)
	s.Empty(snap.Tree.Branches)
	s.Empty(snap.Errors)
}

func (s *AggregatorSuite) TestLoadReady() {
	snap, err := s.aggregator.Load(context.Background())
	s.Require().NoError(err)

	s.Equal(domain.StatusReady, snap.Status)
	s.False(snap.Loading)
	s.Empty(snap.Errors)
	s.Equal(uint64(1), snap.Sequence)
	s.Require().Len(snap.Tree.Branches, 1)
	s.Len(snap.Tree.Branches[0].Apartments, 1)
	s.Len(snap.Tree.Branches[0].Rooms, 1)
	s.Equal(2, snap.Tree.RoomCount())
	s.Equal([]domain.LoadStatus{domain.StatusReady}, s.metrics.loads)
	s.Equal(*snap, s.aggregator.Snapshot())
}

func (s *AggregatorSuite) TestRoomsFailureKeepsBranchesAndApartments() {
	s.source.roomsErr = errors.New("connection reset")

	snap, err := s.aggregator.Load(context.Background())
	s.Require().NoError(err)

	s.Equal(domain.StatusPartiallyFailed, snap.Status)
	s.False(snap.Loading)
	s.Require().NotNil(snap.ErrorFor(domain.ResourceRooms))
	s.Equal("connection reset", snap.ErrorFor(domain.ResourceRooms).Message)
	s.Nil(snap.ErrorFor(domain.ResourceBranches))
	s.Require().Len(snap.Tree.Branches, 1)
	s.Require().Len(snap.Tree.Branches[0].Apartments, 1)
	s.Empty(snap.Tree.Branches[0].Apartments[0].Rooms)
	s.Empty(snap.Tree.Branches[0].Rooms)
}

func (s *AggregatorSuite) TestApartmentsFailureKeepsBranch() {
	s.source.apartmentsErr = errors.New("network error")

	snap, err := s.aggregator.Load(context.Background())
	s.Require().NoError(err)

	s.Equal(domain.StatusPartiallyFailed, snap.Status)
	s.False(snap.Loading)
	s.NotNil(snap.ErrorFor(domain.ResourceApartments))
	s.Require().Len(snap.Tree.Branches, 1)
	s.Empty(snap.Tree.Branches[0].Apartments)
	// Прямые комнаты филиала не зависят от квартир
	s.Len(snap.Tree.Branches[0].Rooms, 1)
}

func (s *AggregatorSuite) TestAllFetchesFail() {
	s.source.branchesErr = errors.New("unauthorized")
	s.source.apartmentsErr = errors.New("unauthorized")
	s.source.roomsErr = errors.New("unauthorized")

	snap, err := s.aggregator.Load(context.Background())
	s.Require().NoError(err)

	s.Equal(domain.StatusPartiallyFailed, snap.Status)
	s.Len(snap.Errors, 3)
	s.Empty(snap.Tree.Branches)
}

func (s *AggregatorSuite) TestLoadIsIdempotent() {
	first, err := s.aggregator.Load(context.Background())
	s.Require().NoError(err)
	second, err := s.aggregator.Load(context.Background())
	s.Require().NoError(err)

	s.Equal(first.Tree, second.Tree)
	s.Equal(uint64(2), second.Sequence)
}

func (s *AggregatorSuite) TestReloadReplacesTree() {
	_, err := s.aggregator.Load(context.Background())
	s.Require().NoError(err)

	s.source.setBranches(nil)
	snap, err := s.aggregator.Load(context.Background())
	s.Require().NoError(err)
	s.Empty(snap.Tree.Branches)
}

func (s *AggregatorSuite) TestFetchesRunInParallel() {
	s.source.gate = make(chan struct{})
	s.source.started = make(chan domain.Resource, 3)

	done := make(chan error, 1)
	go func() {
		_, err := s.aggregator.Load(context.Background())
		done <- err
	}()

	// Все три запроса стартуют до того, как хотя бы один завершится
	started := map[domain.Resource]bool{}
	for range 3 {
		select {
		case r := <-s.source.started:
			started[r] = true
		case <-time.After(2 * time.Second):
			s.FailNow("fetches were not started concurrently")
		}
	}
	s.Len(started, 3)
	s.True(s.aggregator.Snapshot().Loading)
	s.Equal(domain.StatusLoading, s.aggregator.Snapshot().Status)

	close(s.source.gate)
	s.Require().NoError(<-done)
	s.False(s.aggregator.Snapshot().Loading)
}

func (s *AggregatorSuite) TestSupersededLoadIsDiscarded() {
	s.source.gate = make(chan struct{})
	s.source.started = make(chan domain.Resource, 6)

	firstDone := make(chan error, 1)
	go func() {
		_, err := s.aggregator.Load(context.Background())
		firstDone <- err
	}()
	for range 3 {
		<-s.source.started
	}

	// Второй вызов видит другой набор филиалов
	newer := domain.Branch{ID: uuid.New(), Name: "Mumbai", CreatedAt: at(5)}
	s.source.setBranches([]domain.Branch{newer})

	secondDone := make(chan error, 1)
	go func() {
		_, err := s.aggregator.Load(context.Background())
		secondDone <- err
	}()
	for range 3 {
		<-s.source.started
	}

	close(s.source.gate)

	s.ErrorIs(<-firstDone, domain.ErrLoadSuperseded)
	s.Require().NoError(<-secondDone)

	snap := s.aggregator.Snapshot()
	s.Equal(uint64(2), snap.Sequence)
	s.Require().Len(snap.Tree.Branches, 1)
	s.Equal("Mumbai", snap.Tree.Branches[0].Name)
	s.Equal(1, s.metrics.superseded)
}

func (s *AggregatorSuite) TestCancelledLoadDoesNotMutateState() {
	_, err := s.aggregator.Load(context.Background())
	s.Require().NoError(err)
	before := s.aggregator.Snapshot()

	s.source.gate = make(chan struct{})
	s.source.setBranches(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap, err := s.aggregator.Load(ctx)
	s.ErrorIs(err, context.Canceled)
	s.Nil(snap)

	after := s.aggregator.Snapshot()
	s.Equal(before.Tree, after.Tree)
	s.Equal(before.Sequence, after.Sequence)
	s.Equal(domain.StatusReady, after.Status)
	s.False(after.Loading)
}

func (s *AggregatorSuite) TestFetchTimeoutBecomesResourceError() {
	s.source.gate = make(chan struct{})
	s.aggregator.WithFetchTimeout(20 * time.Millisecond)

	snap, err := s.aggregator.Load(context.Background())
	s.Require().NoError(err)

	s.Equal(domain.StatusPartiallyFailed, snap.Status)
	s.Empty(snap.Tree.Branches)
	for _, r := range domain.Resources {
		s.Require().NotNil(snap.ErrorFor(r))
		s.Equal("request timed out", snap.ErrorFor(r).Message)
	}
}
