package errors

import "testing"

func TestValidateCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		lon     float64
		lat     float64
		wantErr bool
	}{
		{"valid", 137.95, 36.11, false},
		{"valid negative", -122.4, -33.9, false},
		{"lon too large", 181, 0, true},
		{"lon too small", -181, 0, true},
		{"lat too large", 0, 91, true},
		{"lat too small", 0, -91, true},
		{"bounds inclusive", 180, 90, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinate(tt.lon, tt.lat)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinate(%v, %v) error = %v, wantErr %v", tt.lon, tt.lat, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidExtent) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidExtent)
			}
		})
	}
}

func TestValidateBBox(t *testing.T) {
	tests := []struct {
		name                     string
		west, south, east, north float64
		wantErr                  bool
	}{
		{"valid", 137.9, 36.1, 138.0, 36.2, false},
		{"west >= east", 138.0, 36.1, 137.9, 36.2, true},
		{"south >= north", 137.9, 36.2, 138.0, 36.1, true},
		{"degenerate", 137.9, 36.1, 137.9, 36.2, true},
		{"out of range", -200, 36.1, 138.0, 36.2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBBox(tt.west, tt.south, tt.east, tt.north)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBBox() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDistance(t *testing.T) {
	if err := ValidateDistance(500); err != nil {
		t.Errorf("ValidateDistance(500) = %v, want nil", err)
	}
	if err := ValidateDistance(0); err == nil {
		t.Error("ValidateDistance(0) = nil, want error")
	}
	if err := ValidateDistance(-10); err == nil {
		t.Error("ValidateDistance(-10) = nil, want error")
	}
	if err := ValidateDistance(MaxQueryDistance + 1); err == nil {
		t.Error("ValidateDistance(max+1) = nil, want error")
	}
}

func TestValidateThreshold(t *testing.T) {
	if err := ValidateThreshold("min_lane_width", 3.5); err != nil {
		t.Errorf("ValidateThreshold = %v, want nil", err)
	}
	err := ValidateThreshold("min_lane_width", -1)
	if err == nil {
		t.Fatal("ValidateThreshold(-1) = nil, want error")
	}
	if !Is(err, ErrCodeInvalidCriteria) {
		t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidCriteria)
	}
}
