package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blazerider/internal/domain/entity"
	"blazerider/pkg/errors"
)

type fakeRideRepo struct {
	mu     sync.Mutex
	routes map[string]*entity.Route
	rides  map[string]*entity.Ride
}

func newFakeRideRepo() *fakeRideRepo {
	return &fakeRideRepo{
		routes: make(map[string]*entity.Route),
		rides:  make(map[string]*entity.Ride),
	}
}

func (r *fakeRideRepo) CreateRoute(ctx context.Context, route *entity.Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if route.ID == "" {
		route.ID = uuid.New().String()
	}
	copied := *route
	r.routes[route.ID] = &copied
	return nil
}

func (r *fakeRideRepo) GetRoute(ctx context.Context, id string) (*entity.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.routes[id]
	if !ok {
		return nil, errors.NotFound("Route", nil)
	}
	copied := *route
	return &copied, nil
}

func (r *fakeRideRepo) ListPublishedRoutes(ctx context.Context, limit, offset int) ([]*entity.Route, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Route
	for _, route := range r.routes {
		if route.Published {
			copied := *route
			result = append(result, &copied)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeRideRepo) ListPendingPublishRoutes(ctx context.Context) ([]*entity.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Route
	for _, route := range r.routes {
		if !route.Published && !route.PublishAt.IsZero() {
			copied := *route
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakeRideRepo) SetRoutePublished(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.routes[id]
	if !ok {
		return errors.NotFound("Route", nil)
	}
	route.Published = true
	return nil
}

func (r *fakeRideRepo) CreateRide(ctx context.Context, ride *entity.Ride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ride.ID == "" {
		ride.ID = uuid.New().String()
	}
	copied := *ride
	r.rides[ride.ID] = &copied
	return nil
}

func (r *fakeRideRepo) GetRide(ctx context.Context, id string) (*entity.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ride, ok := r.rides[id]
	if !ok {
		return nil, errors.NotFound("Ride", nil)
	}
	copied := *ride
	return &copied, nil
}

func (r *fakeRideRepo) UpdateRide(ctx context.Context, ride *entity.Ride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *ride
	r.rides[ride.ID] = &copied
	return nil
}

func (r *fakeRideRepo) ListUpcomingRides(ctx context.Context, limit, offset int) ([]*entity.Ride, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Ride
	for _, ride := range r.rides {
		if ride.Status != entity.RideStatusCancelled && ride.DepartAt.After(time.Now()) {
			copied := *ride
			result = append(result, &copied)
		}
	}
	return result, int64(len(result)), nil
}

func newRideFixture(userIDs ...string) (*RideUseCase, *fakeRideRepo, *fakeScheduler) {
	repo := newFakeRideRepo()
	sched := newFakeScheduler()
	uc := NewRideUseCase(repo, newFakeUserRepo(userIDs...), nil, sched, nil, nil)
	return uc, repo, sched
}

func TestCreateRouteComputesDistanceAndDuration(t *testing.T) {
	uc, _, _ := newRideFixture("alice")

	// Two points one degree of latitude apart, roughly 111 km.
	route, err := uc.CreateRoute(context.Background(), "alice", CreateRouteInput{
		Name: "North run",
		Points: []entity.GeoPoint{
			{Latitude: 0, Longitude: 0},
			{Latitude: 1, Longitude: 0},
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 111.2, route.DistanceKm, 0.5)
	assert.Equal(t, 167, route.DurationMin, "111.2 km at 40 km/h rounds up to 167 minutes")
	assert.True(t, route.Published)
}

func TestCreateRouteRequiresTwoPoints(t *testing.T) {
	uc, _, _ := newRideFixture("alice")

	_, err := uc.CreateRoute(context.Background(), "alice", CreateRouteInput{
		Name:   "Nowhere",
		Points: []entity.GeoPoint{{Latitude: 0, Longitude: 0}},
	})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestCreateRouteDeferredPublish(t *testing.T) {
	uc, repo, sched := newRideFixture("alice", "bob")
	ctx := context.Background()

	route, err := uc.CreateRoute(ctx, "alice", CreateRouteInput{
		Name: "Sunrise loop",
		Points: []entity.GeoPoint{
			{Latitude: 0, Longitude: 0},
			{Latitude: 0.1, Longitude: 0.1},
		},
		PublishAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.False(t, route.Published)

	_, err = uc.GetRoute(ctx, "bob", route.ID)
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	require.True(t, sched.fire(routePublishJobID(route.ID)))

	stored, err := repo.GetRoute(ctx, route.ID)
	require.NoError(t, err)
	assert.True(t, stored.Published)
}

func TestJoinRideFillsAndRejects(t *testing.T) {
	uc, repo, _ := newRideFixture("host", "bob", "carol", "dave")
	ctx := context.Background()

	route, err := uc.CreateRoute(ctx, "host", CreateRouteInput{
		Name: "Loop",
		Points: []entity.GeoPoint{
			{Latitude: 0, Longitude: 0},
			{Latitude: 0.1, Longitude: 0},
		},
	})
	require.NoError(t, err)

	ride, err := uc.CreateRide(ctx, "host", CreateRideInput{
		RouteID:  route.ID,
		Title:    "Saturday ride",
		DepartAt: time.Now().Add(2 * time.Hour),
		Seats:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RideStatusOpen, ride.Status)

	ride, err = uc.JoinRide(ctx, "bob", ride.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RideStatusFull, ride.Status)

	// Joining again is a no-op for an existing member.
	again, err := uc.JoinRide(ctx, "bob", ride.ID)
	require.NoError(t, err)
	assert.Len(t, again.MemberIDs, 2)

	_, err = uc.JoinRide(ctx, "carol", ride.ID)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	stored, err := repo.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"host", "bob"}, stored.MemberIDs)
}

func TestLeaveRideReopensAndHostCancels(t *testing.T) {
	uc, _, _ := newRideFixture("host", "bob")
	ctx := context.Background()

	route, err := uc.CreateRoute(ctx, "host", CreateRouteInput{
		Name: "Loop",
		Points: []entity.GeoPoint{
			{Latitude: 0, Longitude: 0},
			{Latitude: 0.1, Longitude: 0},
		},
	})
	require.NoError(t, err)

	ride, err := uc.CreateRide(ctx, "host", CreateRideInput{
		RouteID:  route.ID,
		Title:    "Evening ride",
		DepartAt: time.Now().Add(time.Hour),
		Seats:    2,
	})
	require.NoError(t, err)

	ride, err = uc.JoinRide(ctx, "bob", ride.ID)
	require.NoError(t, err)
	require.Equal(t, entity.RideStatusFull, ride.Status)

	ride, err = uc.LeaveRide(ctx, "bob", ride.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RideStatusOpen, ride.Status)
	assert.Equal(t, []string{"host"}, ride.MemberIDs)

	ride, err = uc.LeaveRide(ctx, "host", ride.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RideStatusCancelled, ride.Status)
}

func TestCreateRideValidation(t *testing.T) {
	uc, _, _ := newRideFixture("host")
	ctx := context.Background()

	route, err := uc.CreateRoute(ctx, "host", CreateRouteInput{
		Name: "Loop",
		Points: []entity.GeoPoint{
			{Latitude: 0, Longitude: 0},
			{Latitude: 0.1, Longitude: 0},
		},
	})
	require.NoError(t, err)

	_, err = uc.CreateRide(ctx, "host", CreateRideInput{
		RouteID:  route.ID,
		DepartAt: time.Now().Add(time.Hour),
		Seats:    0,
	})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = uc.CreateRide(ctx, "host", CreateRideInput{
		RouteID:  route.ID,
		DepartAt: time.Now().Add(-time.Hour),
		Seats:    2,
	})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}
