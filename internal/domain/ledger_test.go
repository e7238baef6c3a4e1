package domain

import "testing"

func TestTeamServiceKeyRoundTrip(t *testing.T) {
	key := TeamServiceKey{TeamID: 12, ServiceID: 7}
	if got := key.String(); got != "12:7" {
		t.Fatalf("String() = %q, want %q", got, "12:7")
	}

	parsed, err := ParseTeamServiceKey("12:7")
	if err != nil {
		t.Fatalf("ParseTeamServiceKey() error = %v", err)
	}
	if parsed != key {
		t.Errorf("ParseTeamServiceKey() = %+v, want %+v", parsed, key)
	}
}

func TestParseTeamServiceKeyInvalid(t *testing.T) {
	for _, in := range []string{"", "12", "a:1", "1:b", ":"} {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseTeamServiceKey(in); err == nil {
				t.Errorf("ParseTeamServiceKey(%q) should fail", in)
			}
		})
	}
}

func TestTeamServiceConsistent(t *testing.T) {
	tests := []struct {
		name string
		row  TeamService
		want bool
	}{
		{"fresh row", TeamService{}, true},
		{"partial uptime", TeamService{TotalChecks: 3, SuccessfulChecks: 2, Points: 10}, true},
		{"more successes than checks", TeamService{TotalChecks: 2, SuccessfulChecks: 3}, false},
		{"negative total", TeamService{TotalChecks: -1}, false},
		{"negative points", TeamService{Points: -5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.row.Consistent(); got != tt.want {
				t.Errorf("Consistent() = %v, want %v", got, tt.want)
			}
		})
	}
}
