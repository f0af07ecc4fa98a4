package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chachabrian/ride-admin-backend/internal/models"
	"github.com/chachabrian/ride-admin-backend/internal/services"
)

// GormStore implements services.RideStore on postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ services.RideStore = (*GormStore)(nil)

// rideColumns is the page projection: ride scalars plus the flattened rider
// and driver columns from the two user joins.
const rideColumns = `ride.id, ride.status, ride.rider_id, ride.driver_id,
ride.pickup_latitude, ride.pickup_longitude, ride.dropoff_latitude, ride.dropoff_longitude, ride.pickup_time,
rider.email AS rider_email, rider.role AS rider_role, rider.first_name AS rider_first_name,
rider.last_name AS rider_last_name, rider.phone_number AS rider_phone_number,
driver.email AS driver_email, driver.role AS driver_role, driver.first_name AS driver_first_name,
driver.last_name AS driver_last_name, driver.phone_number AS driver_phone_number`

type rideRow struct {
	ID               uint
	Status           models.RideStatus
	RiderID          uint
	DriverID         uint
	PickupLatitude   float64
	PickupLongitude  float64
	DropoffLatitude  float64
	DropoffLongitude float64
	PickupTime       time.Time

	RiderEmail       string
	RiderRole        models.UserRole
	RiderFirstName   string
	RiderLastName    string
	RiderPhoneNumber string

	DriverEmail       string
	DriverRole        models.UserRole
	DriverFirstName   string
	DriverLastName    string
	DriverPhoneNumber string

	DistanceToPickup *float64
}

func (r rideRow) toRow() services.RideRow {
	return services.RideRow{
		Ride: models.Ride{
			ID:               r.ID,
			Status:           r.Status,
			RiderID:          r.RiderID,
			DriverID:         r.DriverID,
			PickupLatitude:   r.PickupLatitude,
			PickupLongitude:  r.PickupLongitude,
			DropoffLatitude:  r.DropoffLatitude,
			DropoffLongitude: r.DropoffLongitude,
			PickupTime:       r.PickupTime,
			Rider: models.User{
				ID:          r.RiderID,
				Role:        r.RiderRole,
				Email:       r.RiderEmail,
				FirstName:   r.RiderFirstName,
				LastName:    r.RiderLastName,
				PhoneNumber: r.RiderPhoneNumber,
			},
			Driver: models.User{
				ID:          r.DriverID,
				Role:        r.DriverRole,
				Email:       r.DriverEmail,
				FirstName:   r.DriverFirstName,
				LastName:    r.DriverLastName,
				PhoneNumber: r.DriverPhoneNumber,
			},
		},
		DistanceToPickup: r.DistanceToPickup,
	}
}

// filtered applies the joins and WHERE terms shared by the page and count queries.
func (s *GormStore) filtered(ctx context.Context, q services.RideQuery) *gorm.DB {
	tx := s.db.WithContext(ctx).
		Table("ride").
		Joins(`JOIN "user" AS rider ON rider.id = ride.rider_id`).
		Joins(`JOIN "user" AS driver ON driver.id = ride.driver_id`)

	if q.Filter.Status != "" {
		tx = tx.Where("ride.status = ?", q.Filter.Status)
	}
	if q.Filter.RiderEmail != "" {
		tx = tx.Where("rider.email = ?", q.Filter.RiderEmail)
	}
	if q.Filter.DriverEmail != "" {
		tx = tx.Where("driver.email = ?", q.Filter.DriverEmail)
	}

	if q.Point != nil && q.Box != nil {
		tx = tx.Where("ride.pickup_latitude BETWEEN ? AND ?", q.Box.SouthWest.Lat, q.Box.NorthEast.Lat)
		if !q.Box.AllLongitudes {
			tx = tx.Where("ride.pickup_longitude BETWEEN ? AND ?", q.Box.SouthWest.Lng, q.Box.NorthEast.Lng)
		}
		expr, args := services.DistanceExpr(*q.Point)
		tx = tx.Where(expr+" <= ?", append(args, q.RadiusKm)...)
	}
	return tx
}

func (s *GormStore) CountRides(ctx context.Context, q services.RideQuery) (int64, error) {
	var count int64
	if err := s.filtered(ctx, q).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *GormStore) ListRides(ctx context.Context, q services.RideQuery) ([]services.RideRow, error) {
	tx := s.filtered(ctx, q)
	if q.Point != nil {
		expr, args := services.DistanceExpr(*q.Point)
		tx = tx.Select(rideColumns+", "+expr+" AS distance_to_pickup", args...)
	} else {
		tx = tx.Select(rideColumns)
	}

	var rows []rideRow
	err := tx.Order(q.OrderClause()).
		Limit(q.Limit).
		Offset(q.Offset).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]services.RideRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toRow())
	}
	return out, nil
}

func (s *GormStore) EventsForRides(ctx context.Context, rideIDs []uint, from, to time.Time) ([]models.RideEvent, error) {
	if len(rideIDs) == 0 {
		return nil, nil
	}
	var events []models.RideEvent
	err := s.db.WithContext(ctx).
		Where("ride_id IN ?", rideIDs).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}

func (s *GormStore) GetRide(ctx context.Context, id uint) (*models.Ride, error) {
	var ride models.Ride
	err := s.db.WithContext(ctx).
		Preload("Rider").
		Preload("Driver").
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&ride, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ride, nil
}

func (s *GormStore) RideExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Ride{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (s *GormStore) CreateRide(ctx context.Context, ride *models.Ride) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(ride).Error
}

func (s *GormStore) SaveRide(ctx context.Context, ride *models.Ride) error {
	res := s.db.WithContext(ctx).
		Model(&models.Ride{ID: ride.ID}).
		Updates(map[string]interface{}{
			"status":            ride.Status,
			"rider_id":          ride.RiderID,
			"driver_id":         ride.DriverID,
			"pickup_latitude":   ride.PickupLatitude,
			"pickup_longitude":  ride.PickupLongitude,
			"dropoff_latitude":  ride.DropoffLatitude,
			"dropoff_longitude": ride.DropoffLongitude,
			"pickup_time":       ride.PickupTime,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteRide(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Ride{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *GormStore) CreateEvent(ctx context.Context, event *models.RideEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func (s *GormStore) ListEvents(ctx context.Context, q services.EventQuery) ([]models.RideEvent, int64, error) {
	tx := s.db.WithContext(ctx).Model(&models.RideEvent{})
	if q.RideID != nil {
		tx = tx.Where("ride_id = ?", *q.RideID)
	}
	if q.Search != "" {
		tx = tx.Where("LOWER(description) LIKE ?", "%"+escapeLike(strings.ToLower(q.Search))+"%")
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	order := q.OrderBy + " " + dir
	if q.OrderBy != "id" {
		order += ", id " + dir
	}

	var events []models.RideEvent
	err := tx.Order(order).Limit(q.Limit).Offset(q.Offset).Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, count, nil
}

func (s *GormStore) FindUsers(ctx context.Context, ids []uint) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Ping checks the database connection.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrNotFound
	}
	return err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
