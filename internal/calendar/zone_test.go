package calendar

import "testing"

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty string returns local", timezone: "", wantErr: false},
		{name: "Local returns local", timezone: "Local", wantErr: false},
		{name: "valid timezone UTC", timezone: "UTC", wantErr: false},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestTodayInTimezone(t *testing.T) {
	if _, err := TodayInTimezone("Invalid/Timezone"); err == nil {
		t.Error("expected error for invalid timezone")
	}
	day, err := TodayInTimezone("UTC")
	if err != nil {
		t.Fatalf("TodayInTimezone() error = %v", err)
	}
	if day.IsZero() {
		t.Error("TodayInTimezone() returned zero day")
	}
}
