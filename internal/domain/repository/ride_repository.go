package repository

import (
	"context"

	"blazerider/internal/domain/entity"
)

type RideRepository interface {
	CreateRoute(ctx context.Context, route *entity.Route) error
	GetRoute(ctx context.Context, id string) (*entity.Route, error)
	ListPublishedRoutes(ctx context.Context, limit, offset int) ([]*entity.Route, int64, error)
	ListPendingPublishRoutes(ctx context.Context) ([]*entity.Route, error)
	SetRoutePublished(ctx context.Context, id string) error

	CreateRide(ctx context.Context, ride *entity.Ride) error
	GetRide(ctx context.Context, id string) (*entity.Ride, error)
	UpdateRide(ctx context.Context, ride *entity.Ride) error
	ListUpcomingRides(ctx context.Context, limit, offset int) ([]*entity.Ride, int64, error)
}
