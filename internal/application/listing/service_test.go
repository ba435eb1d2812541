package listing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/estate/listings/internal/domain/listing"
	"github.com/estate/listings/internal/domain/shared"
)

// MockRepository is a mock implementation of listing.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindAll(ctx context.Context) ([]listing.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]listing.Listing), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id string) (*listing.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Listing), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, l *listing.Listing) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockRepository) UpdateComment(ctx context.Context, id, comment string) error {
	args := m.Called(ctx, id, comment)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

var fixedNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func at(day int) *time.Time {
	t := time.Date(2025, 4, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func newTestService(repo *MockRepository) (*Service, *recordingPublisher) {
	svc := NewService(repo, NewView(time.Minute), zap.NewNop())
	svc.SetClock(func() time.Time { return fixedNow })
	svc.SetGenerator(NewGenerator(42))
	pub := &recordingPublisher{}
	svc.SetEventPublisher(pub)
	return svc, pub
}

func TestService_RefreshSortsNewestFirst(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	repo.On("FindAll", mock.Anything).Return([]listing.Listing{
		{ID: "a", CreatedAt: at(1)},
		{ID: "b"},
		{ID: "c", CreatedAt: at(3)},
	}, nil).Once()

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.Stale)
	assert.Equal(t, fixedNow, snap.FetchedAt)
	require.Len(t, snap.Listings, 3)
	assert.Equal(t, "c", snap.Listings[0].ID)
	assert.Equal(t, "a", snap.Listings[1].ID)
	assert.Equal(t, "b", snap.Listings[2].ID)
	assert.Same(t, snap, svc.View().Current())
	repo.AssertExpectations(t)
}

func TestService_BrowseServesStaleSnapshotOnFailure(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, NewView(0), zap.NewNop())

	repo.On("FindAll", mock.Anything).Return([]listing.Listing{
		{ID: "1", Name: "Alpha", District: listing.DistrictExpo},
		{ID: "2", Name: "Beta", District: listing.DistrictTuran},
	}, nil).Once()
	repo.On("FindAll", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	first := svc.Browse(context.Background(), listing.Criteria{District: listing.DistrictExpo})
	assert.False(t, first.Stale)
	assert.Equal(t, 2, first.Total)
	assert.Equal(t, 1, first.Matched)

	second := svc.Browse(context.Background(), listing.DefaultCriteria())
	assert.True(t, second.Stale)
	assert.Equal(t, 2, second.Total)
	assert.Len(t, second.Items, 2)
	repo.AssertExpectations(t)
}

func TestService_BrowseEmptyWhenNeverFetched(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	repo.On("FindAll", mock.Anything).Return(nil, errors.New("boom")).Once()

	res := svc.Browse(context.Background(), listing.DefaultCriteria())
	assert.True(t, res.Stale)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}

func TestService_BrowseReusesFreshSnapshot(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	repo.On("FindAll", mock.Anything).Return([]listing.Listing{{ID: "1"}}, nil).Once()

	svc.Browse(context.Background(), listing.DefaultCriteria())
	svc.Browse(context.Background(), listing.DefaultCriteria())
	repo.AssertNumberOfCalls(t, "FindAll", 1)
}

func TestService_Get(t *testing.T) {
	t.Run("found in snapshot", func(t *testing.T) {
		repo := new(MockRepository)
		svc, _ := newTestService(repo)
		repo.On("FindAll", mock.Anything).Return([]listing.Listing{{ID: "x", Name: "Alpha"}}, nil).Once()

		l, err := svc.Get(context.Background(), "x")
		require.NoError(t, err)
		assert.Equal(t, "Alpha", l.Name)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("found in store only", func(t *testing.T) {
		repo := new(MockRepository)
		svc, _ := newTestService(repo)
		repo.On("FindAll", mock.Anything).Return([]listing.Listing{}, nil).Once()
		repo.On("FindByID", mock.Anything, "y").Return(&listing.Listing{ID: "y"}, nil).Once()

		l, err := svc.Get(context.Background(), "y")
		require.NoError(t, err)
		assert.Equal(t, "y", l.ID)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockRepository)
		svc, _ := newTestService(repo)
		repo.On("FindAll", mock.Anything).Return([]listing.Listing{}, nil).Once()
		repo.On("FindByID", mock.Anything, "zzz").Return(nil, shared.ErrNotFound).Once()

		_, err := svc.Get(context.Background(), "zzz")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_Submit(t *testing.T) {
	repo := new(MockRepository)
	svc, pub := newTestService(repo)

	form := listing.DefaultForm()
	form.Name = "Sky"
	form.Price = "abc"
	form.Floors = "9"

	repo.On("Create", mock.Anything, mock.MatchedBy(func(l *listing.Listing) bool {
		return l.Name == "Sky" && l.Price.IsZero() && l.Floors == 9 &&
			l.CreatedAt != nil && l.CreatedAt.Equal(fixedNow)
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*listing.Listing).ID = "new-id"
	}).Return(nil).Once()
	repo.On("FindAll", mock.Anything).Return([]listing.Listing{{ID: "new-id", Name: "Sky"}}, nil).Once()

	res, err := svc.Submit(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "new-id", res.Listing.ID)
	assert.Equal(t, listing.DefaultForm(), res.Form)
	assert.Equal(t, []string{listing.EventTypeListingCreated}, pub.types())
	assert.Len(t, svc.View().Current().Listings, 1)
	repo.AssertExpectations(t)
}

func TestService_SubmitFailureKeepsNothing(t *testing.T) {
	repo := new(MockRepository)
	svc, pub := newTestService(repo)

	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("write failed")).Once()

	res, err := svc.Submit(context.Background(), listing.DefaultForm())
	assert.Error(t, err)
	assert.Nil(t, res)
	assert.Empty(t, pub.types())
	repo.AssertNotCalled(t, "FindAll", mock.Anything)
}

func TestService_UpdateComment(t *testing.T) {
	repo := new(MockRepository)
	svc, pub := newTestService(repo)

	repo.On("UpdateComment", mock.Anything, "id1", "needs a call").Return(nil).Once()
	repo.On("FindAll", mock.Anything).Return([]listing.Listing{{ID: "id1", Comment: "needs a call"}}, nil).Once()

	l, err := svc.UpdateComment(context.Background(), "id1", "  needs a call  ")
	require.NoError(t, err)
	assert.Equal(t, "needs a call", l.Comment)
	assert.Equal(t, []string{listing.EventTypeListingCommentUpdated}, pub.types())

	repo.On("UpdateComment", mock.Anything, "gone", "x").Return(shared.ErrNotFound).Once()
	_, err = svc.UpdateComment(context.Background(), "gone", "x")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_UpdateCommentWhenRefreshFails(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	repo.On("FindAll", mock.Anything).Return([]listing.Listing{{ID: "id1", Name: "Alpha", Comment: "old"}}, nil).Once()
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	repo.On("UpdateComment", mock.Anything, "id1", "new").Return(nil).Once()
	repo.On("FindAll", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	l, err := svc.UpdateComment(context.Background(), "id1", "new")
	require.NoError(t, err)
	assert.Equal(t, "new", l.Comment)
	assert.Equal(t, "Alpha", l.Name)

	cached, ok := svc.view.Current().Find("id1")
	require.True(t, ok)
	assert.Equal(t, "old", cached.Comment)
}

func TestService_Delete(t *testing.T) {
	repo := new(MockRepository)
	svc, pub := newTestService(repo)

	repo.On("Delete", mock.Anything, "id1").Return(nil).Once()
	repo.On("FindAll", mock.Anything).Return([]listing.Listing{}, nil).Once()
	require.NoError(t, svc.Delete(context.Background(), "id1"))
	assert.Equal(t, []string{listing.EventTypeListingDeleted}, pub.types())

	repo.On("Delete", mock.Anything, "missing").Return(shared.ErrNotFound).Once()
	assert.ErrorIs(t, svc.Delete(context.Background(), "missing"), shared.ErrNotFound)
}

func TestService_Seed(t *testing.T) {
	t.Run("default count", func(t *testing.T) {
		repo := new(MockRepository)
		svc, pub := newTestService(repo)

		repo.On("Create", mock.Anything, mock.Anything).Return(nil).Times(DefaultSeedCount)
		repo.On("FindAll", mock.Anything).Return([]listing.Listing{}, nil).Once()

		res, err := svc.Seed(context.Background(), 0)
		require.NoError(t, err)
		assert.Equal(t, BulkResult{Requested: 20, Succeeded: 20}, res)
		assert.Equal(t, []string{listing.EventTypeListingsSeeded}, pub.types())
		repo.AssertExpectations(t)
	})

	t.Run("failures are counted", func(t *testing.T) {
		repo := new(MockRepository)
		svc, _ := newTestService(repo)

		repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("quota")).Twice()
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		repo.On("FindAll", mock.Anything).Return([]listing.Listing{}, nil).Once()

		res, err := svc.Seed(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, BulkResult{Requested: 5, Succeeded: 3, Failed: 2}, res)
	})

	t.Run("count out of range", func(t *testing.T) {
		repo := new(MockRepository)
		svc, _ := newTestService(repo)

		for _, n := range []int{-1, MaxSeedCount + 1} {
			_, err := svc.Seed(context.Background(), n)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
		}
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_DeleteAll(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := new(MockRepository)
	svc, pub := newTestService(repo)
	svc.SetDeleteConcurrency(3)

	var stored []listing.Listing
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		stored = append(stored, listing.Listing{ID: id})
	}
	repo.On("FindAll", mock.Anything).Return(stored, nil).Once()
	repo.On("Delete", mock.Anything, "c").Return(errors.New("permission denied")).Once()
	repo.On("Delete", mock.Anything, "f").Return(errors.New("timeout")).Once()
	repo.On("Delete", mock.Anything, mock.Anything).Return(nil)
	repo.On("FindAll", mock.Anything).Return([]listing.Listing{{ID: "c"}, {ID: "f"}}, nil).Once()

	res := svc.DeleteAll(context.Background())
	assert.Equal(t, BulkResult{Requested: 7, Succeeded: 5, Failed: 2}, res)
	assert.Len(t, svc.View().Current().Listings, 2)
	assert.Equal(t, []string{listing.EventTypeListingsPurged}, pub.types())
	repo.AssertNumberOfCalls(t, "Delete", 7)
}

func TestService_DeleteAllEmpty(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	repo.On("FindAll", mock.Anything).Return([]listing.Listing{}, nil).Twice()

	res := svc.DeleteAll(context.Background())
	assert.Equal(t, BulkResult{}, res)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestService_PublishFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	repo := new(MockRepository)
	svc := NewService(repo, NewView(time.Minute), zap.New(core))
	svc.SetEventPublisher(&recordingPublisher{err: errors.New("broker down")})

	repo.On("Delete", mock.Anything, "id1").Return(nil).Once()
	repo.On("FindAll", mock.Anything).Return([]listing.Listing{}, nil).Once()

	require.NoError(t, svc.Delete(context.Background(), "id1"))
	assert.Equal(t, 1, logs.FilterMessage("Failed to publish listing events").Len())
}

func TestGenerator_Ranges(t *testing.T) {
	g := NewGenerator(7)
	minPrice := decimal.NewFromInt(5_000_000)
	maxPrice := decimal.NewFromInt(54_999_999)

	for i := 0; i < 200; i++ {
		l := g.Listing(fixedNow)
		assert.Regexp(t, `^Проект \d{1,3}$`, l.Name)
		assert.Contains(t, listing.KnownDistricts, l.District)
		assert.Contains(t, listing.KnownConstructions, l.Construction)
		assert.Contains(t, listing.KnownClasses, l.Class)
		assert.Contains(t, listing.KnownFinishStates, l.FinishState)
		assert.GreaterOrEqual(t, l.Floors, 5)
		assert.LessOrEqual(t, l.Floors, 24)
		assert.Contains(t, []float64{2.5, 3.5, 4.5, 5.5, 6.5}, l.CeilingHeight)
		assert.True(t, l.Price.GreaterThanOrEqual(minPrice) && l.Price.LessThanOrEqual(maxPrice), "price %s", l.Price)
		assert.GreaterOrEqual(t, l.Discount, 0)
		assert.Less(t, l.Discount, 30)
		require.NotNil(t, l.HandoverDate)
		assert.False(t, l.HandoverDate.Before(fixedNow))
		assert.True(t, l.HandoverDate.Before(fixedNow.Add(365*24*time.Hour)))
		assert.Regexp(t, `^Комментарий \d{1,3}$`, l.Comment)
		assert.NotNil(t, l.PaymentMethods)
		assert.True(t, listing.NewPaymentSet(listing.KnownPaymentOptions...).ContainsAll(l.PaymentMethods))
		assert.Empty(t, l.FloorPlanURL)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(99).Listing(fixedNow)
	b := NewGenerator(99).Listing(fixedNow)
	assert.Equal(t, a, b)
}
