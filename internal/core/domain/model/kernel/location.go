package kernel

import (
	"errors"
	"fmt"
	"math"

	"capacity/internal/pkg/errs"
	"capacity/internal/pkg/guard"
)

const (
	LatitudeMin  = -90.0
	LatitudeMax  = 90.0
	LongitudeMin = -180.0
	LongitudeMax = 180.0

	earthRadiusKm = 6371.0088
)

// ErrLocationIsNotConstructed is returned when a Location was not built by NewLocation.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError("location must be created via NewLocation")

// Location is a WGS84 point: the depot or the destination of a delivery stop.
//
//	loc, err := kernel.NewLocation(52.5200, 13.4050)
//	fmt.Println(loc) // Location(52.520000,13.405000)
type Location struct { //nolint:recvcheck // private setters use pointer receivers
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewLocation validates both coordinates and reports every violation at once.
func NewLocation(latitude, longitude float64) (Location, error) {
	loc := Location{guard: guard.NewConstructorGuard()}

	if err := errors.Join(loc.setLatitude(latitude), loc.setLongitude(longitude)); err != nil {
		return Location{}, err
	}
	return loc, nil
}

// MustNewLocation panics on invalid coordinates. Intended for configuration
// defaults and tests.
func MustNewLocation(latitude, longitude float64) Location {
	loc, err := NewLocation(latitude, longitude)
	if err != nil {
		panic(err)
	}
	return loc
}

func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

func (l Location) Latitude() float64 {
	return l.latitude
}

func (l Location) Longitude() float64 {
	return l.longitude
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%f,%f)", l.latitude, l.longitude)
}

// IsEqual compares coordinates. Both locations must be constructed.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}
	return l.latitude == other.latitude && l.longitude == other.longitude, nil
}

// GreatCircleKm returns the haversine distance in kilometres.
func (l Location) GreatCircleKm(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := radians(l.latitude)
	lat2 := radians(other.latitude)
	dLat := lat2 - lat1
	dLng := radians(other.longitude - l.longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h))), nil
}

func (l *Location) setLatitude(v float64) error {
	if math.IsNaN(v) || v < LatitudeMin || v > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("latitude", v, LatitudeMin, LatitudeMax)
	}
	l.latitude = v
	return nil
}

func (l *Location) setLongitude(v float64) error {
	if math.IsNaN(v) || v < LongitudeMin || v > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("longitude", v, LongitudeMin, LongitudeMax)
	}
	l.longitude = v
	return nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
