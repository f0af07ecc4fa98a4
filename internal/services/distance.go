package services

import (
	"fmt"
	"math"

	"github.com/chachabrian/ride-admin-backend/pkg/utils"
)

// DistancePrecision is the number of decimals kept in distance_to_pickup.
const DistancePrecision = 3

var distanceSQL = fmt.Sprintf(
	"(2 * %g * ASIN(LEAST(1.0, SQRT("+
		"POWER(SIN(RADIANS(ride.pickup_latitude - ?) / 2), 2) + "+
		"COS(RADIANS(?)) * COS(RADIANS(ride.pickup_latitude)) * "+
		"POWER(SIN(RADIANS(ride.pickup_longitude - ?) / 2), 2)))))",
	utils.EarthRadiusKm,
)

// DistanceExpr renders the haversine distance in kilometers from p to a ride's
// pickup coordinate as a SQL expression over the ride table, so the store can
// evaluate and order by it per row.
func DistanceExpr(p utils.Point) (string, []interface{}) {
	return distanceSQL, []interface{}{p.Lat, p.Lat, p.Lng}
}

// PickupDistance is the in-process equivalent of DistanceExpr.
func PickupDistance(p utils.Point, lat, lng float64) float64 {
	return utils.HaversineDistance(p.Lat, p.Lng, lat, lng)
}

func validatePoint(p utils.Point) error {
	if !utils.ValidLatitude(p.Lat) {
		return invalid("latitude", "must be between -90 and 90 degrees")
	}
	if !utils.ValidLongitude(p.Lng) {
		return invalid("longitude", "must be between -180 and 180 degrees")
	}
	return nil
}

func validRadius(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}
