package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"

	"github.com/chachabrian/ride-admin-backend/internal/config"
	"github.com/chachabrian/ride-admin-backend/internal/database"
	"github.com/chachabrian/ride-admin-backend/internal/logging"
	"github.com/chachabrian/ride-admin-backend/internal/models"
	"github.com/chachabrian/ride-admin-backend/internal/services"
	"github.com/chachabrian/ride-admin-backend/pkg/utils"
)

var eventDescriptions = []string{
	"Status changed to pickup",
	"Status changed to dropoff",
	"Driver arrived at pickup",
	"Rider picked up",
	"Rider dropped off",
}

func main() {
	riders := flag.Int("riders", 20, "number of riders")
	drivers := flag.Int("drivers", 10, "number of drivers")
	rides := flag.Int("rides", 200, "number of rides")
	seed := flag.Int64("seed", 0, "random seed, 0 for random")
	adminEmail := flag.String("admin-email", "admin@example.com", "email of the admin account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel)

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	faker := gofakeit.New(*seed)
	ctx := context.Background()

	admin := models.User{Role: models.UserRoleAdmin, Email: *adminEmail, FirstName: "Admin", LastName: "User"}
	if err := db.Where(models.User{Email: admin.Email}).FirstOrCreate(&admin).Error; err != nil {
		logger.Error("failed to create admin", "error", err)
		os.Exit(1)
	}

	riderIDs, err := createUsers(db, faker, models.UserRoleRider, *riders)
	if err != nil {
		logger.Error("failed to create riders", "error", err)
		os.Exit(1)
	}
	driverIDs, err := createUsers(db, faker, models.UserRoleDriver, *drivers)
	if err != nil {
		logger.Error("failed to create drivers", "error", err)
		os.Exit(1)
	}

	svc := services.NewRideService(database.NewGormStore(db), nil, logger)
	statuses := []models.RideStatus{models.RideStatusEnRoute, models.RideStatusPickup, models.RideStatusDropoff}
	now := time.Now()

	created := 0
	for i := 0; i < *rides && len(riderIDs) > 0 && len(driverIDs) > 0; i++ {
		rider := riderIDs[faker.Number(0, len(riderIDs)-1)]
		driver := driverIDs[faker.Number(0, len(driverIDs)-1)]
		status := statuses[faker.Number(0, len(statuses)-1)]
		pickupLat, pickupLng := faker.Float64Range(-33.95, -33.85), faker.Float64Range(18.35, 18.55)
		dropoffLat, dropoffLng := faker.Float64Range(-33.95, -33.85), faker.Float64Range(18.35, 18.55)
		pickupTime := faker.DateRange(now.AddDate(0, 0, -30), now.AddDate(0, 0, 7))

		ride, err := svc.CreateRide(ctx, services.RideInput{
			Status:           &status,
			RiderID:          &rider,
			DriverID:         &driver,
			PickupLatitude:   &pickupLat,
			PickupLongitude:  &pickupLng,
			DropoffLatitude:  &dropoffLat,
			DropoffLongitude: &dropoffLng,
			PickupTime:       &pickupTime,
		})
		if err != nil {
			logger.Error("failed to create ride", "error", err)
			os.Exit(1)
		}
		created++

		for n := faker.Number(0, 3); n > 0; n-- {
			desc := eventDescriptions[faker.Number(0, len(eventDescriptions)-1)]
			if _, err := svc.AddEvent(ctx, ride.ID, desc); err != nil {
				logger.Error("failed to add ride event", "ride_id", ride.ID, "error", err)
				os.Exit(1)
			}
		}
	}

	token, err := utils.GenerateToken(&admin, cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Error("failed to sign admin token", "error", err)
		os.Exit(1)
	}

	logger.Info("seed complete", "riders", len(riderIDs), "drivers", len(driverIDs), "rides", created)
	fmt.Println(token)
}

func createUsers(db *gorm.DB, faker *gofakeit.Faker, role models.UserRole, n int) ([]uint, error) {
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		u := models.User{
			Role:        role,
			Email:       fmt.Sprintf("%s.%d.%s", role, i, faker.Email()),
			FirstName:   faker.FirstName(),
			LastName:    faker.LastName(),
			PhoneNumber: faker.Phone(),
		}
		if err := db.Create(&u).Error; err != nil {
			return nil, err
		}
		ids = append(ids, u.ID)
	}
	return ids, nil
}
