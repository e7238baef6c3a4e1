package domain

import "time"

// ServiceCheck is one immutable health-check outcome for a TeamService.
type ServiceCheck struct {
	Status    bool      `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
