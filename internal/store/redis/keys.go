package redis

import (
	"github.com/MrSnakeDoc/scoreboard/internal/domain"
)

const (
	// KeyTeams is the hash of team id -> team JSON
	KeyTeams = "scoreboard:teams"
	// KeyServices is the hash of service id -> service JSON
	KeyServices = "scoreboard:services"
	// KeyServiceNames is the hash of service name -> service id
	KeyServiceNames = "scoreboard:services:names"
	// KeyServiceSeq is the counter used to assign service ids
	KeyServiceSeq = "scoreboard:services:seq"
	// KeyLedger is the hash of "<team>:<service>" -> ledger row JSON
	KeyLedger = "scoreboard:ledger"
	// KeyPrefixChecks is the prefix of the per team-service check history
	// sorted sets, scored by check time in milliseconds
	KeyPrefixChecks = "scoreboard:checks:"
)

// ChecksKey returns the Redis key holding the check history of key.
func ChecksKey(key domain.TeamServiceKey) string {
	return KeyPrefixChecks + key.String()
}

// LedgerField returns the field of key inside the ledger hash.
func LedgerField(key domain.TeamServiceKey) string {
	return key.String()
}
