package errors

// Geographic bounds for coordinate validation.
const (
	minLon = -180.0
	maxLon = 180.0
	minLat = -90.0
	maxLat = 90.0
)

// MaxQueryDistance caps point-radius queries to keep extent sizes sane.
const MaxQueryDistance = 50000.0 // meters

// ValidateCoordinate validates a (lon, lat) pair.
func ValidateCoordinate(lon, lat float64) error {
	if lon < minLon || lon > maxLon {
		return New(ErrCodeInvalidExtent, "longitude %v out of range [%v, %v]", lon, minLon, maxLon)
	}
	if lat < minLat || lat > maxLat {
		return New(ErrCodeInvalidExtent, "latitude %v out of range [%v, %v]", lat, minLat, maxLat)
	}
	return nil
}

// ValidateBBox validates a bounding box given as west, south, east, north.
// The box must be non-degenerate and within geographic bounds.
func ValidateBBox(west, south, east, north float64) error {
	if err := ValidateCoordinate(west, south); err != nil {
		return err
	}
	if err := ValidateCoordinate(east, north); err != nil {
		return err
	}
	if west >= east {
		return New(ErrCodeInvalidExtent, "west (%v) must be less than east (%v)", west, east)
	}
	if south >= north {
		return New(ErrCodeInvalidExtent, "south (%v) must be less than north (%v)", south, north)
	}
	return nil
}

// ValidateDistance validates a point-radius query distance in meters.
func ValidateDistance(dist float64) error {
	if dist <= 0 {
		return New(ErrCodeInvalidExtent, "distance must be positive, got %v", dist)
	}
	if dist > MaxQueryDistance {
		return New(ErrCodeInvalidExtent, "distance %v exceeds maximum %v", dist, MaxQueryDistance)
	}
	return nil
}

// ValidateThreshold validates a non-negative numeric criteria threshold.
// name identifies the threshold in the error message.
func ValidateThreshold(name string, v float64) error {
	if v < 0 {
		return New(ErrCodeInvalidCriteria, "%s must be non-negative, got %v", name, v)
	}
	return nil
}
