package mmodel

// AccountStatus is the directory-derived status of a Principal's backing User.
type AccountStatus string

// Account statuses (§3: "Principal").
const (
	AccountActive   AccountStatus = "active"
	AccountDisabled AccountStatus = "disabled"
	AccountLocked   AccountStatus = "locked"
)

// Principal is the resolved identity of an authenticated caller, produced by
// the Principal Resolver (C2) from a verified claim set. A Principal exists
// only inside the scope of a single RPC; it is never shared by reference
// across calls.
type Principal struct {
	UserID        string
	Username      string
	Authorities   []string
	AccountStatus AccountStatus
}

// HasAuthority reports whether the principal holds the given authority.
func (p Principal) HasAuthority(authority string) bool {
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}

	return false
}

// Claims is the decoded, verified payload of a token, produced by the Token
// Codec (C1) and consumed by the Principal Resolver (C2).
type Claims struct {
	Subject   string
	Issuer    string
	Audience  string
	IssuedAt  int64
	ExpiresAt int64
	Roles     []string
	ID        string
}
