package mmodel

import "time"

// CacheEntry is a (userId, validForOrder) pair with a write-time deadline
// (§3). An entry whose Deadline has passed must be treated as absent.
type CacheEntry struct {
	UserID        string    `json:"userId"`
	ValidForOrder bool      `json:"validForOrder"`
	Deadline      time.Time `json:"deadline"`
}

// Expired reports whether the entry's deadline has passed as of now.
func (c CacheEntry) Expired(now time.Time) bool {
	return !now.Before(c.Deadline)
}
