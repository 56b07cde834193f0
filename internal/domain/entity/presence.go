package entity

import "time"

const (
	PresenceOnline   = "online"
	PresenceOffline  = "offline"
	PresenceInactive = "inactive"
	PresencePending  = "pending"
)

// Presence is a user's realtime state. It lives in the realtime store, not
// Firestore, and is only ever overwritten, never deleted.
type Presence struct {
	UserID     string    `json:"user_id"`
	State      string    `json:"state"` // "online", "offline", "inactive", "pending"
	LastActive time.Time `json:"last_active"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
}

// NearbyRider is one result of a geospatial query against the realtime store.
type NearbyRider struct {
	UserID     string  `json:"user_id"`
	DistanceKm float64 `json:"distance_km"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}
