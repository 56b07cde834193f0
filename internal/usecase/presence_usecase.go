package usecase

import (
	"context"
	"log"
	"time"

	"blazerider/internal/domain/entity"
	"blazerider/internal/domain/repository"
	"blazerider/pkg/errors"
)

// PresenceUseCase drives the rider presence state machine. Foregrounding
// the app forces online, backgrounding records offline, and a background
// sweep promotes riders offline longer than the threshold to inactive so
// the map can fade them instead of dropping them.
type PresenceUseCase struct {
	store             repository.PresenceStore
	realtime          Realtime
	inactiveThreshold time.Duration
}

func NewPresenceUseCase(store repository.PresenceStore, realtime Realtime, inactiveThreshold time.Duration) *PresenceUseCase {
	return &PresenceUseCase{
		store:             store,
		realtime:          realtime,
		inactiveThreshold: inactiveThreshold,
	}
}

type UpdatePresenceInput struct {
	State     string
	Latitude  float64
	Longitude float64
}

// Update applies a client-reported presence transition. Clients may only
// report online, offline or pending; inactive is derived server-side.
func (uc *PresenceUseCase) Update(ctx context.Context, userID string, input UpdatePresenceInput) (*entity.Presence, error) {
	switch input.State {
	case entity.PresenceOnline, entity.PresenceOffline, entity.PresencePending:
	default:
		return nil, errors.BadRequest("Invalid presence state", nil)
	}

	presence := &entity.Presence{
		UserID:     userID,
		State:      input.State,
		LastActive: time.Now(),
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
	}

	if err := uc.store.Set(ctx, presence); err != nil {
		log.Printf("Presence update failed for user %s: %v", userID, err)
		return nil, err
	}

	if uc.realtime != nil {
		uc.realtime.SendEvent(userID, "presence_ack", presence)
	}

	return presence, nil
}

// Heartbeat refreshes the user's activity clock and forces them online.
// Called from socket heartbeats and any authenticated API activity.
func (uc *PresenceUseCase) Heartbeat(ctx context.Context, userID string) error {
	current, err := uc.store.Get(ctx, userID)
	if err != nil {
		return err
	}

	current.State = entity.PresenceOnline
	current.LastActive = time.Now()

	return uc.store.Set(ctx, current)
}

// Get resolves a user's effective presence. Riders last seen longer ago
// than the threshold read as inactive even before the sweeper catches them.
func (uc *PresenceUseCase) Get(ctx context.Context, userID string) (*entity.Presence, error) {
	presence, err := uc.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if presence.State == entity.PresenceOnline && time.Since(presence.LastActive) > uc.inactiveThreshold {
		presence.State = entity.PresenceInactive
	}

	return presence, nil
}

// UpdateLocation moves the rider on the map without changing their state.
func (uc *PresenceUseCase) UpdateLocation(ctx context.Context, userID string, lat, lng float64) error {
	return uc.store.UpdateLocation(ctx, userID, lat, lng)
}

// Nearby finds riders within radiusKm of the given point.
func (uc *PresenceUseCase) Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]*entity.NearbyRider, error) {
	if radiusKm <= 0 {
		radiusKm = 10
	}
	if limit <= 0 {
		limit = 50
	}
	return uc.store.Nearby(ctx, lat, lng, radiusKm, limit)
}

// StartInactivitySweeper periodically demotes stale online riders to
// inactive. Runs until the context is cancelled.
func (uc *PresenceUseCase) StartInactivitySweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				uc.sweep(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (uc *PresenceUseCase) sweep(ctx context.Context) {
	presences, err := uc.store.List(ctx)
	if err != nil {
		log.Printf("Presence sweep failed: %v", err)
		return
	}

	cutoff := time.Now().Add(-uc.inactiveThreshold)
	for _, presence := range presences {
		if presence.State != entity.PresenceOnline || presence.LastActive.After(cutoff) {
			continue
		}

		presence.State = entity.PresenceInactive
		if err := uc.store.Set(ctx, presence); err != nil {
			log.Printf("Presence sweep: failed to mark %s inactive: %v", presence.UserID, err)
		}
	}
}
