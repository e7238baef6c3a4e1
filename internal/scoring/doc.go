// Package scoring turns the ledger and check history written by the prober
// into the read-side projections shown on the dashboard: per-service uptime,
// the leaderboard, the team × service status matrix and the service listings.
//
// Every projection is computed from a single consistent read of the store
// per call. The package never writes to the store.
package scoring
