package entity

import "time"

type GeoPoint struct {
	Latitude  float64 `json:"latitude" firestore:"latitude"`
	Longitude float64 `json:"longitude" firestore:"longitude"`
}

// Route is a shared ride route drawn as a polyline on the map.
type Route struct {
	ID              string     `json:"id" firestore:"id"`
	OwnerID         string     `json:"owner_id" firestore:"ownerId"`
	Name            string     `json:"name" firestore:"name"`
	Points          []GeoPoint `json:"points" firestore:"points"`
	OriginName      string     `json:"origin_name,omitempty" firestore:"originName,omitempty"`
	DestinationName string     `json:"destination_name,omitempty" firestore:"destinationName,omitempty"`
	DistanceKm      float64    `json:"distance_km" firestore:"distanceKm"`
	DurationMin     int        `json:"duration_min" firestore:"durationMin"`
	Published       bool       `json:"published" firestore:"published"`
	PublishAt       time.Time  `json:"publish_at,omitempty" firestore:"publishAt,omitempty"`
	CreatedAt       time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt       time.Time  `json:"updated_at" firestore:"updatedAt"`
}

const (
	RideStatusOpen      = "open"
	RideStatusFull      = "full"
	RideStatusCancelled = "cancelled"
	RideStatusDone      = "done"
)

type Ride struct {
	ID        string    `json:"id" firestore:"id"`
	RouteID   string    `json:"route_id" firestore:"routeId"`
	HostID    string    `json:"host_id" firestore:"hostId"`
	Title     string    `json:"title" firestore:"title"`
	DepartAt  time.Time `json:"depart_at" firestore:"departAt"`
	Seats     int       `json:"seats" firestore:"seats"`
	MemberIDs []string  `json:"member_ids" firestore:"memberIds"`
	Status    string    `json:"status" firestore:"status"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (r *Ride) HasMember(userID string) bool {
	for _, id := range r.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
