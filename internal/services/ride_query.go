package services

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chachabrian/ride-admin-backend/internal/models"
	"github.com/chachabrian/ride-admin-backend/internal/observability"
	"github.com/chachabrian/ride-admin-backend/pkg/utils"
)

// PageSize is the fixed number of results per list page.
const PageSize = 10

// MaxPage keeps the page offset within int range.
const MaxPage = math.MaxInt / PageSize

// Ride orderings accepted by the list endpoint.
const (
	OrderPickupTime = "pickup_time"
	OrderDistance   = "distance"
)

// RideOrdering is a parsed ordering value such as "-distance".
type RideOrdering struct {
	Field string
	Desc  bool
}

func (o RideOrdering) String() string {
	if o.Desc {
		return "-" + o.Field
	}
	return o.Field
}

func parseOrdering(raw string) (RideOrdering, error) {
	if raw == "" {
		return RideOrdering{Field: OrderPickupTime}, nil
	}
	o := RideOrdering{Field: strings.TrimPrefix(raw, "-"), Desc: strings.HasPrefix(raw, "-")}
	if o.Field != OrderPickupTime && o.Field != OrderDistance {
		return RideOrdering{}, invalid("ordering", "must be one of pickup_time, -pickup_time, distance, -distance")
	}
	return o, nil
}

// RideFilter holds exact-match filters.
type RideFilter struct {
	Status      string
	RiderEmail  string
	DriverEmail string
}

// RideListOptions is a validated ride list request.
type RideListOptions struct {
	Filter   RideFilter
	Ordering RideOrdering
	Point    *utils.Point
	RadiusKm float64
	Page     int
}

// ParseRideListOptions validates list query parameters. Distance ordering without
// a reference point is an error, never a silent fallback.
func ParseRideListOptions(values url.Values) (RideListOptions, error) {
	opts := RideListOptions{
		Filter: RideFilter{
			Status:      strings.TrimSpace(values.Get("status")),
			RiderEmail:  strings.TrimSpace(values.Get("rider_email")),
			DriverEmail: strings.TrimSpace(values.Get("driver_email")),
		},
		Page: 1,
	}

	ordering, err := parseOrdering(strings.TrimSpace(values.Get("ordering")))
	if err != nil {
		return opts, err
	}
	opts.Ordering = ordering

	latRaw := strings.TrimSpace(values.Get("latitude"))
	lngRaw := strings.TrimSpace(values.Get("longitude"))
	switch {
	case latRaw != "" && lngRaw != "":
		lat, err := strconv.ParseFloat(latRaw, 64)
		if err != nil {
			return opts, invalid("latitude", "a valid number is required")
		}
		lng, err := strconv.ParseFloat(lngRaw, 64)
		if err != nil {
			return opts, invalid("longitude", "a valid number is required")
		}
		p := utils.Point{Lat: lat, Lng: lng}
		if err := validatePoint(p); err != nil {
			return opts, err
		}
		opts.Point = &p
	case latRaw != "":
		return opts, invalid("longitude", "latitude and longitude must be supplied together")
	case lngRaw != "":
		return opts, invalid("latitude", "latitude and longitude must be supplied together")
	}

	if opts.Ordering.Field == OrderDistance && opts.Point == nil {
		return opts, invalid("ordering", "distance ordering requires a reference point")
	}

	if raw := strings.TrimSpace(values.Get("radius")); raw != "" {
		if opts.Point == nil {
			return opts, invalid("radius", "radius requires a reference point")
		}
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || !validRadius(r) {
			return opts, invalid("radius", "must be a positive number of kilometers")
		}
		opts.RadiusKm = r
	}

	page, err := parsePage(values.Get("page"))
	if err != nil {
		return opts, err
	}
	opts.Page = page

	return opts, nil
}

func parsePage(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, invalid("page", "must be a positive integer")
	}
	if page > MaxPage {
		return 0, invalid("page", "must be at most %d", MaxPage)
	}
	return page, nil
}

// RideQuery is the store-level plan for one list page.
type RideQuery struct {
	Filter   RideFilter
	Point    *utils.Point
	RadiusKm float64
	// Box pre-filters on the indexed pickup columns when RadiusKm is set.
	Box      *utils.BoundingBox
	Ordering RideOrdering
	Limit    int
	Offset   int
}

// ComposeRideQuery turns validated options into a bounded page plan.
func ComposeRideQuery(opts RideListOptions) RideQuery {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	q := RideQuery{
		Filter:   opts.Filter,
		Point:    opts.Point,
		Ordering: opts.Ordering,
		Limit:    PageSize,
		Offset:   (page - 1) * PageSize,
	}
	if opts.Point != nil && opts.RadiusKm > 0 {
		box := utils.GetBoundingBox(opts.Point.Lat, opts.Point.Lng, opts.RadiusKm)
		q.RadiusKm = opts.RadiusKm
		q.Box = &box
	}
	return q
}

// OrderClause renders the ORDER BY terms. Ride id is always the final key so
// equal pickup times or distances come back in a stable order.
func (q RideQuery) OrderClause() string {
	dir := "ASC"
	if q.Ordering.Desc {
		dir = "DESC"
	}
	if q.Ordering.Field == OrderDistance {
		return "distance_to_pickup " + dir + ", ride.id ASC"
	}
	return "ride.pickup_time " + dir + ", ride.id ASC"
}

// RideRow is a ride with rider and driver loaded, plus the computed distance
// when the query carried a reference point.
type RideRow struct {
	Ride             models.Ride
	DistanceToPickup *float64
}

// RideStore is the persistence surface the ride services need.
type RideStore interface {
	ListRides(ctx context.Context, q RideQuery) ([]RideRow, error)
	CountRides(ctx context.Context, q RideQuery) (int64, error)
	EventsForRides(ctx context.Context, rideIDs []uint, from, to time.Time) ([]models.RideEvent, error)

	GetRide(ctx context.Context, id uint) (*models.Ride, error)
	RideExists(ctx context.Context, id uint) (bool, error)
	CreateRide(ctx context.Context, ride *models.Ride) error
	SaveRide(ctx context.Context, ride *models.Ride) error
	DeleteRide(ctx context.Context, id uint) error

	CreateEvent(ctx context.Context, event *models.RideEvent) error
	ListEvents(ctx context.Context, q EventQuery) ([]models.RideEvent, int64, error)

	FindUsers(ctx context.Context, ids []uint) ([]models.User, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// RideSummary is one entry of the ride list.
type RideSummary struct {
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
	TodaysRideEvents []models.RideEvent `json:"todays_ride_events"`
	DistanceToPickup *float64           `json:"distance_to_pickup,omitempty"`
}

// RideListResult is one page of rides before link rendering.
type RideListResult struct {
	Count   int64
	Page    int
	Results []RideSummary
}

// RideQueryService runs the ride list: count, page, same-day events, assemble.
// Each call issues at most three store queries.
type RideQueryService struct {
	store    RideStore
	location *time.Location
	now      func() time.Time
}

func NewRideQueryService(store RideStore, location *time.Location) *RideQueryService {
	if location == nil {
		location = time.UTC
	}
	return &RideQueryService{store: store, location: location, now: time.Now}
}

// WithClock overrides the reference "now" used for the same-day window.
func (s *RideQueryService) WithClock(now func() time.Time) *RideQueryService {
	s.now = now
	return s
}

// ListRides returns one page. Either the whole page is returned or an error.
func (s *RideQueryService) ListRides(ctx context.Context, opts RideListOptions) (*RideListResult, error) {
	start := time.Now()
	defer func() {
		observability.RideListDuration.WithLabelValues(opts.Ordering.String()).Observe(time.Since(start).Seconds())
	}()

	q := ComposeRideQuery(opts)

	count, err := s.store.CountRides(ctx, q)
	if err != nil {
		return nil, err
	}
	if opts.Page > 1 && int64(q.Offset) >= count {
		return nil, &NotFoundError{Resource: "page", Message: "invalid page"}
	}

	result := &RideListResult{Count: count, Page: opts.Page, Results: []RideSummary{}}
	if count == 0 {
		return result, nil
	}

	rows, err := s.store.ListRides(ctx, q)
	if err != nil {
		return nil, err
	}

	events, err := s.attachTodaysEvents(ctx, rows)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result.Results = append(result.Results, summarize(row, events[row.Ride.ID]))
	}
	return result, nil
}

// DayWindow returns [start of today, start of tomorrow) in the service location.
func (s *RideQueryService) DayWindow() (time.Time, time.Time) {
	now := s.now().In(s.location)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	return start, start.AddDate(0, 0, 1)
}

// attachTodaysEvents fetches the page's same-day events in one batch, grouped
// by ride id. Every ride gets a non-nil slice.
func (s *RideQueryService) attachTodaysEvents(ctx context.Context, rows []RideRow) (map[uint][]models.RideEvent, error) {
	grouped := make(map[uint][]models.RideEvent, len(rows))
	if len(rows) == 0 {
		return grouped, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.Ride.ID)
		grouped[row.Ride.ID] = []models.RideEvent{}
	}

	from, to := s.DayWindow()
	events, err := s.store.EventsForRides(ctx, ids, from, to)
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		if _, ok := grouped[ev.RideID]; !ok {
			continue
		}
		if ev.CreatedAt.Before(from) || !ev.CreatedAt.Before(to) {
			continue
		}
		grouped[ev.RideID] = append(grouped[ev.RideID], ev)
	}
	return grouped, nil
}

func summarize(row RideRow, events []models.RideEvent) RideSummary {
	r := row.Ride
	if events == nil {
		events = []models.RideEvent{}
	}
	sum := RideSummary{
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
		TodaysRideEvents: events,
	}
	if row.DistanceToPickup != nil {
		d := utils.Round(*row.DistanceToPickup, DistancePrecision)
		sum.DistanceToPickup = &d
	}
	return sum
}
