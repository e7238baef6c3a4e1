package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"sync"
)

// Tokens resolves bearer tokens to callers. The admin token is fixed at
// startup; team tokens are replaced on every provisioning run.
type Tokens struct {
	admin [sha256.Size]byte
	mu    sync.RWMutex
	teams map[[sha256.Size]byte]int
}

// NewTokens creates a token table with the given admin token and no teams.
func NewTokens(adminToken string) *Tokens {
	return &Tokens{
		admin: sha256.Sum256([]byte(adminToken)),
		teams: make(map[[sha256.Size]byte]int),
	}
}

// SetTeamCredentials replaces the team tokens with creds (password -> team id).
func (t *Tokens) SetTeamCredentials(creds map[string]int) {
	teams := make(map[[sha256.Size]byte]int, len(creds))
	for password, teamID := range creds {
		if password == "" {
			continue
		}
		teams[sha256.Sum256([]byte(password))] = teamID
	}

	t.mu.Lock()
	t.teams = teams
	t.mu.Unlock()
}

// TeamCount returns the number of team tokens currently loaded.
func (t *Tokens) TeamCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.teams)
}

// Resolve maps token to a caller. ok is false for empty or unknown tokens.
func (t *Tokens) Resolve(token string) (Caller, bool) {
	if token == "" {
		return Caller{}, false
	}
	sum := sha256.Sum256([]byte(token))

	if subtle.ConstantTimeCompare(sum[:], t.admin[:]) == 1 {
		return Admin(), true
	}

	t.mu.RLock()
	teamID, ok := t.teams[sum]
	t.mu.RUnlock()
	if !ok {
		return Caller{}, false
	}
	return TeamMember(teamID), true
}
