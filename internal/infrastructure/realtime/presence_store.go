package realtime

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"blazerider/internal/domain/entity"
	"blazerider/internal/domain/repository"
	"blazerider/pkg/errors"
)

const (
	presenceKeyPrefix = "presence:"
	locationsKey      = "rider:locations"
)

type redisPresenceStore struct {
	client *redis.Client
}

func NewRedisPresenceStore(client *redis.Client) repository.PresenceStore {
	return &redisPresenceStore{
		client: client,
	}
}

func presenceKey(userID string) string {
	return presenceKeyPrefix + userID
}

func (s *redisPresenceStore) Set(ctx context.Context, presence *entity.Presence) error {
	fields := map[string]interface{}{
		"state":      string(presence.State),
		"lastActive": presence.LastActive.Unix(),
	}
	if presence.Latitude != 0 || presence.Longitude != 0 {
		fields["lat"] = presence.Latitude
		fields["lng"] = presence.Longitude
	}

	if err := s.client.HSet(ctx, presenceKey(presence.UserID), fields).Err(); err != nil {
		return errors.Internal("Failed to store presence", err)
	}

	if presence.Latitude != 0 || presence.Longitude != 0 {
		if err := s.client.GeoAdd(ctx, locationsKey, &redis.GeoLocation{
			Name:      presence.UserID,
			Latitude:  presence.Latitude,
			Longitude: presence.Longitude,
		}).Err(); err != nil {
			log.Printf("GeoAdd failed for user %s: %v", presence.UserID, err)
		}
	}

	return nil
}

func (s *redisPresenceStore) Get(ctx context.Context, userID string) (*entity.Presence, error) {
	fields, err := s.client.HGetAll(ctx, presenceKey(userID)).Result()
	if err != nil {
		return nil, errors.Internal("Failed to read presence", err)
	}
	if len(fields) == 0 {
		// Never-seen users read as offline.
		return &entity.Presence{
			UserID: userID,
			State:  entity.PresenceOffline,
		}, nil
	}

	return parsePresence(userID, fields), nil
}

func (s *redisPresenceStore) UpdateLocation(ctx context.Context, userID string, lat, lng float64) error {
	if err := s.client.HSet(ctx, presenceKey(userID), map[string]interface{}{
		"lat": lat,
		"lng": lng,
	}).Err(); err != nil {
		return errors.Internal("Failed to store location", err)
	}

	if err := s.client.GeoAdd(ctx, locationsKey, &redis.GeoLocation{
		Name:      userID,
		Latitude:  lat,
		Longitude: lng,
	}).Err(); err != nil {
		return errors.Internal("Failed to index location", err)
	}

	return nil
}

func (s *redisPresenceStore) Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]*entity.NearbyRider, error) {
	locations, err := s.client.GeoSearchLocation(ctx, locationsKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  lng,
			Latitude:   lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
			Count:      limit,
		},
		WithCoord: true,
		WithDist:  true,
	}).Result()
	if err != nil {
		return nil, errors.Internal("Failed to search nearby riders", err)
	}

	var riders []*entity.NearbyRider
	for _, loc := range locations {
		riders = append(riders, &entity.NearbyRider{
			UserID:     loc.Name,
			DistanceKm: loc.Dist,
			Latitude:   loc.Latitude,
			Longitude:  loc.Longitude,
		})
	}

	return riders, nil
}

func (s *redisPresenceStore) List(ctx context.Context) ([]*entity.Presence, error) {
	var presences []*entity.Presence

	iter := s.client.Scan(ctx, 0, presenceKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		fields, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			log.Printf("Presence scan: failed to read %s: %v", key, err)
			continue
		}
		if len(fields) == 0 {
			continue
		}
		userID := strings.TrimPrefix(key, presenceKeyPrefix)
		presences = append(presences, parsePresence(userID, fields))
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Internal("Failed to scan presence keys", err)
	}

	return presences, nil
}

func parsePresence(userID string, fields map[string]string) *entity.Presence {
	presence := &entity.Presence{
		UserID: userID,
		State:  fields["state"],
	}
	if presence.State == "" {
		presence.State = entity.PresenceOffline
	}
	if unix, err := strconv.ParseInt(fields["lastActive"], 10, 64); err == nil {
		presence.LastActive = time.Unix(unix, 0)
	}
	if lat, err := strconv.ParseFloat(fields["lat"], 64); err == nil {
		presence.Latitude = lat
	}
	if lng, err := strconv.ParseFloat(fields["lng"], 64); err == nil {
		presence.Longitude = lng
	}
	return presence
}

// NewRedisClient connects and pings so a bad address fails at startup
// instead of on the first presence write.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}
