package services

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chachabrian/ride-admin-backend/internal/models"
	"github.com/chachabrian/ride-admin-backend/internal/observability"
	"github.com/chachabrian/ride-admin-backend/pkg/utils"
)

// MaxDescriptionLength bounds RideEvent.Description in characters.
const MaxDescriptionLength = 255

// EventPublisher pushes appended ride events to the live feed.
type EventPublisher interface {
	PublishRideEvent(ctx context.Context, event models.RideEvent) error
}

// RideInput is the create/update payload. Nil fields are left unchanged on a
// partial update and are required on create.
type RideInput struct {
	Status           *models.RideStatus `json:"status"`
	RiderID          *uint              `json:"rider"`
	DriverID         *uint              `json:"driver"`
	PickupLatitude   *float64           `json:"pickup_latitude"`
	PickupLongitude  *float64           `json:"pickup_longitude"`
	DropoffLatitude  *float64           `json:"dropoff_latitude"`
	DropoffLongitude *float64           `json:"dropoff_longitude"`
	PickupTime       *time.Time         `json:"pickup_time"`
}

// RideDetail is a single ride with its full event history.
type RideDetail struct {
	ID               uint               `json:"id"`
	Status           models.RideStatus  `json:"status"`
	Rider            uint               `json:"rider"`
	Driver           uint               `json:"driver"`
	PickupLatitude   float64            `json:"pickup_latitude"`
	PickupLongitude  float64            `json:"pickup_longitude"`
	DropoffLatitude  float64            `json:"dropoff_latitude"`
	DropoffLongitude float64            `json:"dropoff_longitude"`
	PickupTime       time.Time          `json:"pickup_time"`
	RiderDetails     models.UserSummary `json:"rider_details"`
	DriverDetails    models.UserSummary `json:"driver_details"`
	Events           []models.RideEvent `json:"events"`
}

func detailOf(r *models.Ride) *RideDetail {
	events := r.Events
	if events == nil {
		events = []models.RideEvent{}
	}
	return &RideDetail{
		ID:               r.ID,
		Status:           r.Status,
		Rider:            r.RiderID,
		Driver:           r.DriverID,
		PickupLatitude:   r.PickupLatitude,
		PickupLongitude:  r.PickupLongitude,
		DropoffLatitude:  r.DropoffLatitude,
		DropoffLongitude: r.DropoffLongitude,
		PickupTime:       r.PickupTime,
		RiderDetails:     r.Rider.Summary(),
		DriverDetails:    r.Driver.Summary(),
		Events:           events,
	}
}

// EventQuery is a page of the read-only ride event listing.
type EventQuery struct {
	RideID  *uint
	Search  string
	OrderBy string
	Desc    bool
	Limit   int
	Offset  int
	Page    int
}

// ParseEventQuery validates ride, search, ordering and page parameters.
func ParseEventQuery(get func(string) string) (EventQuery, error) {
	q := EventQuery{OrderBy: "created_at", Desc: true, Limit: PageSize, Page: 1}

	if raw := strings.TrimSpace(get("ride")); raw != "" {
		id, err := ParseID(raw)
		if err != nil {
			return q, invalid("ride", "must be a positive integer")
		}
		q.RideID = &id
	}
	q.Search = strings.TrimSpace(get("search"))

	if raw := strings.TrimSpace(get("ordering")); raw != "" {
		field := strings.TrimPrefix(raw, "-")
		if field != "created_at" && field != "id" {
			return q, invalid("ordering", "must be one of created_at, -created_at, id, -id")
		}
		q.OrderBy = field
		q.Desc = strings.HasPrefix(raw, "-")
	}

	page, err := parsePage(get("page"))
	if err != nil {
		return q, err
	}
	q.Page = page
	q.Offset = (page - 1) * PageSize
	return q, nil
}

// ParseID parses a positive numeric path id.
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, invalid("id", "must be a positive integer")
	}
	return uint(id), nil
}

// RideService owns ride writes, the detail view and the event log.
type RideService struct {
	store     RideStore
	publisher EventPublisher
	logger    *slog.Logger
}

func NewRideService(store RideStore, publisher EventPublisher, logger *slog.Logger) *RideService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RideService{store: store, publisher: publisher, logger: logger}
}

// GetRide returns the ride with rider, driver and every event.
func (s *RideService) GetRide(ctx context.Context, id uint) (*RideDetail, error) {
	ride, err := s.store.GetRide(ctx, id)
	if err != nil {
		return nil, notFound("ride", err)
	}
	return detailOf(ride), nil
}

// requireAll rejects input missing any writable field.
func (in RideInput) requireAll() error {
	switch {
	case in.Status == nil:
		return invalid("status", "this field is required")
	case in.RiderID == nil:
		return invalid("rider", "this field is required")
	case in.DriverID == nil:
		return invalid("driver", "this field is required")
	case in.PickupLatitude == nil:
		return invalid("pickup_latitude", "this field is required")
	case in.PickupLongitude == nil:
		return invalid("pickup_longitude", "this field is required")
	case in.DropoffLatitude == nil:
		return invalid("dropoff_latitude", "this field is required")
	case in.DropoffLongitude == nil:
		return invalid("dropoff_longitude", "this field is required")
	case in.PickupTime == nil:
		return invalid("pickup_time", "this field is required")
	}
	return nil
}

// CreateRide validates a complete payload and persists it.
func (s *RideService) CreateRide(ctx context.Context, in RideInput) (*RideDetail, error) {
	if err := in.requireAll(); err != nil {
		return nil, err
	}

	ride := &models.Ride{}
	apply(ride, in)
	if err := s.validate(ctx, ride); err != nil {
		return nil, err
	}
	if err := s.store.CreateRide(ctx, ride); err != nil {
		return nil, err
	}
	return s.GetRide(ctx, ride.ID)
}

// UpdateRide applies the non-nil fields of in and re-validates the result.
func (s *RideService) UpdateRide(ctx context.Context, id uint, in RideInput) (*RideDetail, error) {
	ride, err := s.store.GetRide(ctx, id)
	if err != nil {
		return nil, notFound("ride", err)
	}
	apply(ride, in)
	if err := s.validate(ctx, ride); err != nil {
		return nil, err
	}
	if err := s.store.SaveRide(ctx, ride); err != nil {
		return nil, err
	}
	return s.GetRide(ctx, id)
}

// ReplaceRide overwrites every writable field of an existing ride.
func (s *RideService) ReplaceRide(ctx context.Context, id uint, in RideInput) (*RideDetail, error) {
	exists, err := s.store.RideExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &NotFoundError{Resource: "ride"}
	}
	if err := in.requireAll(); err != nil {
		return nil, err
	}
	return s.UpdateRide(ctx, id, in)
}

// DeleteRide removes the ride and, through the store, its events.
func (s *RideService) DeleteRide(ctx context.Context, id uint) error {
	return notFound("ride", s.store.DeleteRide(ctx, id))
}

func apply(ride *models.Ride, in RideInput) {
	if in.Status != nil {
		ride.Status = *in.Status
	}
	if in.RiderID != nil {
		ride.RiderID = *in.RiderID
	}
	if in.DriverID != nil {
		ride.DriverID = *in.DriverID
	}
	if in.PickupLatitude != nil {
		ride.PickupLatitude = *in.PickupLatitude
	}
	if in.PickupLongitude != nil {
		ride.PickupLongitude = *in.PickupLongitude
	}
	if in.DropoffLatitude != nil {
		ride.DropoffLatitude = *in.DropoffLatitude
	}
	if in.DropoffLongitude != nil {
		ride.DropoffLongitude = *in.DropoffLongitude
	}
	if in.PickupTime != nil {
		ride.PickupTime = *in.PickupTime
	}
}

func (s *RideService) validate(ctx context.Context, ride *models.Ride) error {
	if !ride.Status.Valid() {
		return invalid("status", "must be one of en-route, pickup, dropoff")
	}
	if !utils.ValidLatitude(ride.PickupLatitude) {
		return invalid("pickup_latitude", "must be between -90 and 90 degrees")
	}
	if !utils.ValidLongitude(ride.PickupLongitude) {
		return invalid("pickup_longitude", "must be between -180 and 180 degrees")
	}
	if !utils.ValidLatitude(ride.DropoffLatitude) {
		return invalid("dropoff_latitude", "must be between -90 and 90 degrees")
	}
	if !utils.ValidLongitude(ride.DropoffLongitude) {
		return invalid("dropoff_longitude", "must be between -180 and 180 degrees")
	}
	if ride.PickupTime.IsZero() {
		return invalid("pickup_time", "this field is required")
	}
	if ride.RiderID == ride.DriverID {
		return invalid("driver", "rider and driver must be different users")
	}

	users, err := s.store.FindUsers(ctx, []uint{ride.RiderID, ride.DriverID})
	if err != nil {
		return err
	}
	found := make(map[uint]bool, len(users))
	for _, u := range users {
		found[u.ID] = true
	}
	if !found[ride.RiderID] {
		return invalid("rider", "user %d does not exist", ride.RiderID)
	}
	if !found[ride.DriverID] {
		return invalid("driver", "user %d does not exist", ride.DriverID)
	}
	return nil
}

// AddEvent appends an event to the ride log and publishes it. A publish failure
// is logged and does not fail the append.
func (s *RideService) AddEvent(ctx context.Context, rideID uint, description string) (*models.RideEvent, error) {
	exists, err := s.store.RideExists(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &NotFoundError{Resource: "ride"}
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return nil, invalid("description", "this field is required")
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return nil, invalid("description", "must be at most %d characters", MaxDescriptionLength)
	}

	event := &models.RideEvent{RideID: rideID, Description: description}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, notFound("ride", err)
	}

	s.publish(ctx, *event)
	return event, nil
}

func (s *RideService) publish(ctx context.Context, event models.RideEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRideEvent(ctx, event); err != nil {
		observability.RideEventsPublished.WithLabelValues("error").Inc()
		s.logger.Warn("ride event publish failed", "ride_id", event.RideID, "event_id", event.ID, "error", err)
		return
	}
	observability.RideEventsPublished.WithLabelValues("ok").Inc()
}

// ListEvents returns one page of the event listing.
func (s *RideService) ListEvents(ctx context.Context, q EventQuery) ([]models.RideEvent, int64, error) {
	events, count, err := s.store.ListEvents(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	if q.Page > 1 && int64(q.Offset) >= count {
		return nil, 0, &NotFoundError{Resource: "page", Message: "invalid page"}
	}
	return events, count, nil
}

// GetUser loads a user profile.
func (s *RideService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, notFound("user", err)
	}
	return user, nil
}
