package models

import (
	"time"
)

type RideStatus string

// RideStatus constants
const (
	RideStatusEnRoute RideStatus = "en-route"
	RideStatusPickup  RideStatus = "pickup"
	RideStatusDropoff RideStatus = "dropoff"
)

// Valid reports whether s is one of the known ride statuses.
func (s RideStatus) Valid() bool {
	switch s {
	case RideStatusEnRoute, RideStatusPickup, RideStatusDropoff:
		return true
	}
	return false
}

type Ride struct {
	ID               uint        `json:"id" gorm:"primaryKey"`
	Status           RideStatus  `json:"status" gorm:"column:status;size:50;not null;index:ride_status_idx"`
	RiderID          uint        `json:"rider" gorm:"column:rider_id;not null"`
	DriverID         uint        `json:"driver" gorm:"column:driver_id;not null"`
	PickupLatitude   float64     `json:"pickup_latitude" gorm:"column:pickup_latitude;not null;index:ride_pickup_coords_idx,priority:1"`
	PickupLongitude  float64     `json:"pickup_longitude" gorm:"column:pickup_longitude;not null;index:ride_pickup_coords_idx,priority:2"`
	DropoffLatitude  float64     `json:"dropoff_latitude" gorm:"column:dropoff_latitude;not null"`
	DropoffLongitude float64     `json:"dropoff_longitude" gorm:"column:dropoff_longitude;not null"`
	PickupTime       time.Time   `json:"pickup_time" gorm:"column:pickup_time;not null;index:ride_pickup_time_idx"`
	Rider            User        `json:"-" gorm:"foreignKey:RiderID;constraint:OnDelete:RESTRICT"`
	Driver           User        `json:"-" gorm:"foreignKey:DriverID;constraint:OnDelete:RESTRICT"`
	Events           []RideEvent `json:"-" gorm:"foreignKey:RideID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name
func (Ride) TableName() string {
	return "ride"
}

// RideEvent is append-only; created_at is assigned by the server on insert.
type RideEvent struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RideID      uint      `json:"ride" gorm:"column:ride_id;not null;index:ride_event_ride_created_idx,priority:1"`
	Description string    `json:"description" gorm:"column:description;size:255;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;not null;autoCreateTime;index:ride_event_ride_created_idx,priority:2;index:ride_event_created_idx"`
}

// TableName specifies the table name
func (RideEvent) TableName() string {
	return "ride_event"
}
