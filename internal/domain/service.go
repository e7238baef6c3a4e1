package domain

// Service represents one scored service running on a competition box.
//
// Services are shared by every team: each team runs its own copy on its own
// box, and the pairing is tracked by a TeamService ledger row.
type Service struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the unique catalog identifier assigned at provisioning time.
	ID int `json:"id"`

	// Name is unique across the catalog.
	// Example: web01_http
	Name string `json:"name"`

	// Box is the virtual machine the service runs on.
	// Example: web01
	Box string `json:"box"`

	// ─────────────────────────────
	// Probing
	// ─────────────────────────────

	// Port the prober connects to on each team's box.
	Port int `json:"port"`

	// Award is the number of points one successful check earns.
	Award int `json:"award"`

	// ─────────────────────────────
	// Visibility
	// ─────────────────────────────

	// Disabled hides the service from team-facing views.
	// Ledger rows and check history are retained.
	Disabled bool `json:"disabled"`
}
