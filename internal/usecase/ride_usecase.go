package usecase

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"blazerider/internal/domain/entity"
	"blazerider/internal/domain/repository"
	"blazerider/internal/infrastructure/geo"
	"blazerider/pkg/errors"
)

// Average moving speed used to estimate route duration.
const avgSpeedKmh = 40.0

// RideUseCase manages shared routes and group rides. Routes support the
// same deferred publishing as feed posts.
type RideUseCase struct {
	rideRepo  repository.RideRepository
	userRepo  repository.UserRepository
	notifier  *NotificationUseCase
	scheduler JobScheduler
	weather   WeatherService
	geocode   GeocodeService
}

func NewRideUseCase(
	rideRepo repository.RideRepository,
	userRepo repository.UserRepository,
	notifier *NotificationUseCase,
	scheduler JobScheduler,
	weather WeatherService,
	geocode GeocodeService,
) *RideUseCase {
	return &RideUseCase{
		rideRepo:  rideRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		scheduler: scheduler,
		weather:   weather,
		geocode:   geocode,
	}
}

type CreateRouteInput struct {
	Name      string
	Points    []entity.GeoPoint
	PublishAt time.Time
}

type CreateRideInput struct {
	RouteID  string
	Title    string
	DepartAt time.Time
	Seats    int
}

func routePublishJobID(routeID string) string {
	return fmt.Sprintf("publish-route-%s", routeID)
}

// haversineKm is the great-circle distance between two points.
func haversineKm(a, b entity.GeoPoint) float64 {
	const earthRadiusKm = 6371.0

	latA := a.Latitude * math.Pi / 180
	latB := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// CreateRoute stores a polyline route, computing its length and a duration
// estimate, and resolving the endpoint names when geocoding is available.
func (uc *RideUseCase) CreateRoute(ctx context.Context, userID string, input CreateRouteInput) (*entity.Route, error) {
	if len(input.Points) < 2 {
		return nil, errors.BadRequest("A route needs at least two points", nil)
	}

	var distanceKm float64
	for i := 1; i < len(input.Points); i++ {
		distanceKm += haversineKm(input.Points[i-1], input.Points[i])
	}

	route := &entity.Route{
		OwnerID:     userID,
		Name:        input.Name,
		Points:      input.Points,
		DistanceKm:  distanceKm,
		DurationMin: int(math.Ceil(distanceKm / avgSpeedKmh * 60)),
		Published:   true,
	}

	if uc.geocode != nil {
		origin := input.Points[0]
		destination := input.Points[len(input.Points)-1]
		if name, err := uc.geocode.ReverseGeocode(ctx, origin.Latitude, origin.Longitude); err == nil {
			route.OriginName = name
		} else {
			log.Printf("CreateRoute: origin geocode failed: %v", err)
		}
		if name, err := uc.geocode.ReverseGeocode(ctx, destination.Latitude, destination.Longitude); err == nil {
			route.DestinationName = name
		} else {
			log.Printf("CreateRoute: destination geocode failed: %v", err)
		}
	}

	deferred := input.PublishAt.After(time.Now())
	if deferred {
		route.Published = false
		route.PublishAt = input.PublishAt
	}

	if err := uc.rideRepo.CreateRoute(ctx, route); err != nil {
		log.Printf("CreateRoute Error: Failed for user %s: %v", userID, err)
		return nil, err
	}

	if deferred && uc.scheduler != nil {
		uc.scheduleRoutePublish(route.ID, input.PublishAt)
	}

	return route, nil
}

func (uc *RideUseCase) scheduleRoutePublish(routeID string, at time.Time) {
	uc.scheduler.Schedule(routePublishJobID(routeID), time.Until(at), func() {
		ctx := context.Background()
		if err := uc.rideRepo.SetRoutePublished(ctx, routeID); err != nil {
			log.Printf("Scheduled publish failed for route %s: %v", routeID, err)
			return
		}
		log.Printf("Route %s published on schedule", routeID)
	})
}

// ReschedulePendingPublishes re-arms route publish jobs after a restart.
func (uc *RideUseCase) ReschedulePendingPublishes(ctx context.Context) {
	if uc.scheduler == nil {
		return
	}

	pending, err := uc.rideRepo.ListPendingPublishRoutes(ctx)
	if err != nil {
		log.Printf("Failed to reschedule pending routes: %v", err)
		return
	}

	for _, route := range pending {
		uc.scheduleRoutePublish(route.ID, route.PublishAt)
	}
	if len(pending) > 0 {
		log.Printf("Rescheduled %d pending route publishes", len(pending))
	}
}

func (uc *RideUseCase) GetRoute(ctx context.Context, userID, routeID string) (*entity.Route, error) {
	route, err := uc.rideRepo.GetRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if !route.Published && route.OwnerID != userID {
		return nil, errors.NotFound("Route", nil)
	}
	return route, nil
}

func (uc *RideUseCase) ListRoutes(ctx context.Context, limit, offset int) ([]*entity.Route, int64, error) {
	return uc.rideRepo.ListPublishedRoutes(ctx, limit, offset)
}

// CreateRide opens a group ride on a published route.
func (uc *RideUseCase) CreateRide(ctx context.Context, userID string, input CreateRideInput) (*entity.Ride, error) {
	if input.Seats < 1 {
		return nil, errors.BadRequest("A ride needs at least one seat", nil)
	}
	if input.DepartAt.Before(time.Now()) {
		return nil, errors.BadRequest("Departure time must be in the future", nil)
	}

	route, err := uc.rideRepo.GetRoute(ctx, input.RouteID)
	if err != nil {
		return nil, errors.NotFound("Route not found", err)
	}
	if !route.Published && route.OwnerID != userID {
		return nil, errors.NotFound("Route", nil)
	}

	ride := &entity.Ride{
		RouteID:   input.RouteID,
		HostID:    userID,
		Title:     input.Title,
		DepartAt:  input.DepartAt,
		Seats:     input.Seats,
		MemberIDs: []string{userID},
		Status:    entity.RideStatusOpen,
	}

	if err := uc.rideRepo.CreateRide(ctx, ride); err != nil {
		log.Printf("CreateRide Error: Failed for user %s: %v", userID, err)
		return nil, err
	}

	return ride, nil
}

// JoinRide adds the caller to an open ride. Joining twice is a no-op; a
// full ride flips to full and rejects further joins.
func (uc *RideUseCase) JoinRide(ctx context.Context, userID, rideID string) (*entity.Ride, error) {
	ride, err := uc.rideRepo.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.HasMember(userID) {
		return ride, nil
	}
	if ride.Status != entity.RideStatusOpen {
		return nil, errors.BadRequest("This ride is not open for joining", nil)
	}
	if len(ride.MemberIDs) >= ride.Seats {
		return nil, errors.BadRequest("This ride is full", nil)
	}

	ride.MemberIDs = append(ride.MemberIDs, userID)
	if len(ride.MemberIDs) >= ride.Seats {
		ride.Status = entity.RideStatusFull
	}

	if err := uc.rideRepo.UpdateRide(ctx, ride); err != nil {
		log.Printf("JoinRide Error: Failed for ride %s: %v", rideID, err)
		return nil, err
	}

	if uc.notifier != nil {
		if joiner, err := uc.userRepo.GetByID(ctx, userID); err == nil {
			uc.notifier.Relay(ctx, &entity.Notification{
				UserID: ride.HostID,
				Type:   entity.NotificationTypeRide,
				Title:  joiner.Username,
				Body:   "Joined your ride",
				RefID:  rideID,
			})
		}
	}

	return ride, nil
}

// LeaveRide removes the caller. The host cancels the ride by leaving.
func (uc *RideUseCase) LeaveRide(ctx context.Context, userID, rideID string) (*entity.Ride, error) {
	ride, err := uc.rideRepo.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !ride.HasMember(userID) {
		return ride, nil
	}

	if userID == ride.HostID {
		ride.Status = entity.RideStatusCancelled
	} else {
		members := ride.MemberIDs[:0]
		for _, id := range ride.MemberIDs {
			if id != userID {
				members = append(members, id)
			}
		}
		ride.MemberIDs = members
		if ride.Status == entity.RideStatusFull {
			ride.Status = entity.RideStatusOpen
		}
	}

	if err := uc.rideRepo.UpdateRide(ctx, ride); err != nil {
		return nil, err
	}

	return ride, nil
}

func (uc *RideUseCase) GetRide(ctx context.Context, rideID string) (*entity.Ride, error) {
	return uc.rideRepo.GetRide(ctx, rideID)
}

func (uc *RideUseCase) ListUpcomingRides(ctx context.Context, limit, offset int) ([]*entity.Ride, int64, error) {
	return uc.rideRepo.ListUpcomingRides(ctx, limit, offset)
}

// RouteWeather reports conditions at the route's starting point.
func (uc *RideUseCase) RouteWeather(ctx context.Context, routeID string) (*geo.Weather, error) {
	if uc.weather == nil {
		return nil, errors.Internal("Weather service is not configured", nil)
	}

	route, err := uc.rideRepo.GetRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if len(route.Points) == 0 {
		return nil, errors.BadRequest("Route has no points", nil)
	}

	origin := route.Points[0]
	return uc.weather.CurrentWeather(ctx, origin.Latitude, origin.Longitude)
}
