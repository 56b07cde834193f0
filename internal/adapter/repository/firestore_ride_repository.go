package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"blazerider/internal/domain/entity"
	"blazerider/internal/domain/repository"
	"blazerider/pkg/errors"
)

type firestoreRideRepository struct {
	client *firestore.Client
}

func NewFirestoreRideRepository(client *firestore.Client) repository.RideRepository {
	return &firestoreRideRepository{
		client: client,
	}
}

func (r *firestoreRideRepository) CreateRoute(ctx context.Context, route *entity.Route) error {
	if route.ID == "" {
		route.ID = uuid.New().String()
	}

	now := time.Now()
	route.CreatedAt = now
	route.UpdatedAt = now

	_, err := r.client.Collection("routes").Doc(route.ID).Set(ctx, route)
	if err != nil {
		return errors.Internal("Failed to create route", err)
	}

	return nil
}

func (r *firestoreRideRepository) GetRoute(ctx context.Context, id string) (*entity.Route, error) {
	doc, err := r.client.Collection("routes").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Route", nil)
		}
		return nil, errors.Internal("Failed to get route", err)
	}

	var route entity.Route
	if err := doc.DataTo(&route); err != nil {
		return nil, errors.Internal("Failed to parse route data", err)
	}

	return &route, nil
}

func (r *firestoreRideRepository) ListPublishedRoutes(ctx context.Context, limit, offset int) ([]*entity.Route, int64, error) {
	query := r.client.Collection("routes").Where("published", "==", true).OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while listing routes: %v", err)
		return nil, 0, errors.Internal("Failed to list routes", err)
	}

	total := int64(len(allDocs))

	start := offset
	end := len(allDocs)
	if limit > 0 {
		end = start + limit
		if end > len(allDocs) {
			end = len(allDocs)
		}
	}
	if start > len(allDocs) {
		start = len(allDocs)
	}

	var routes []*entity.Route
	for i := start; i < end; i++ {
		var route entity.Route
		if err := allDocs[i].DataTo(&route); err != nil {
			continue // Skip malformed documents
		}
		routes = append(routes, &route)
	}

	return routes, total, nil
}

func (r *firestoreRideRepository) ListPendingPublishRoutes(ctx context.Context) ([]*entity.Route, error) {
	docs, err := r.client.Collection("routes").Where("published", "==", false).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list pending routes", err)
	}

	var routes []*entity.Route
	for _, doc := range docs {
		var route entity.Route
		if err := doc.DataTo(&route); err != nil {
			continue
		}
		if route.PublishAt.IsZero() {
			continue
		}
		routes = append(routes, &route)
	}

	return routes, nil
}

func (r *firestoreRideRepository) SetRoutePublished(ctx context.Context, id string) error {
	_, err := r.client.Collection("routes").Doc(id).Update(ctx, []firestore.Update{
		{Path: "published", Value: true},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to publish route", err)
	}

	return nil
}

func (r *firestoreRideRepository) CreateRide(ctx context.Context, ride *entity.Ride) error {
	if ride.ID == "" {
		ride.ID = uuid.New().String()
	}

	now := time.Now()
	ride.CreatedAt = now
	ride.UpdatedAt = now

	_, err := r.client.Collection("rides").Doc(ride.ID).Set(ctx, ride)
	if err != nil {
		return errors.Internal("Failed to create ride", err)
	}

	return nil
}

func (r *firestoreRideRepository) GetRide(ctx context.Context, id string) (*entity.Ride, error) {
	doc, err := r.client.Collection("rides").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Ride", nil)
		}
		return nil, errors.Internal("Failed to get ride", err)
	}

	var ride entity.Ride
	if err := doc.DataTo(&ride); err != nil {
		return nil, errors.Internal("Failed to parse ride data", err)
	}

	return &ride, nil
}

func (r *firestoreRideRepository) UpdateRide(ctx context.Context, ride *entity.Ride) error {
	ride.UpdatedAt = time.Now()

	_, err := r.client.Collection("rides").Doc(ride.ID).Set(ctx, ride)
	if err != nil {
		return errors.Internal("Failed to update ride", err)
	}

	return nil
}

func (r *firestoreRideRepository) ListUpcomingRides(ctx context.Context, limit, offset int) ([]*entity.Ride, int64, error) {
	query := r.client.Collection("rides").Where("departAt", ">=", time.Now()).OrderBy("departAt", firestore.Asc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while listing rides: %v", err)
		return nil, 0, errors.Internal("Failed to list rides", err)
	}

	total := int64(len(allDocs))

	start := offset
	end := len(allDocs)
	if limit > 0 {
		end = start + limit
		if end > len(allDocs) {
			end = len(allDocs)
		}
	}
	if start > len(allDocs) {
		start = len(allDocs)
	}

	var rides []*entity.Ride
	for i := start; i < end; i++ {
		var ride entity.Ride
		if err := allDocs[i].DataTo(&ride); err != nil {
			continue
		}
		rides = append(rides, &ride)
	}

	return rides, total, nil
}
