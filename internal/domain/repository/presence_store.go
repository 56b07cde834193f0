package repository

import (
	"context"

	"blazerider/internal/domain/entity"
)

// PresenceStore is the realtime key-value boundary: per-user online state
// plus a geospatial index for nearby queries. States are overwritten, never
// deleted.
type PresenceStore interface {
	Set(ctx context.Context, presence *entity.Presence) error
	Get(ctx context.Context, userID string) (*entity.Presence, error)
	UpdateLocation(ctx context.Context, userID string, lat, lng float64) error
	Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]*entity.NearbyRider, error)
	List(ctx context.Context) ([]*entity.Presence, error)
}
