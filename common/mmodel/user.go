package mmodel

import "time"

// maxFailedLoginAttempts is the threshold past which isValidForOrder (§3) denies.
const maxFailedLoginAttempts = 5

// CreateUserInput is the payload accepted by CreateUser.
type CreateUserInput struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"max=128"`
	LastName  string `json:"lastName" validate:"max=128"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// UpdateUserProfileInput is the payload accepted by UpdateUserProfile. Pointer
// fields are optional partial updates.
type UpdateUserProfileInput struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,max=128"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,max=128"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// User is the persisted identity record, keyed by a stable opaque id and
// unique on Username and Email (§6: "Persisted state layout").
type User struct {
	ID                  string
	Username            string
	Email               string
	PasswordHash        string
	FirstName           string
	LastName            string
	Phone               string
	IsActive            bool
	IsEmailVerified     bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	Roles               []string
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsValidForOrder implements the derived predicate from §3: "isValidForOrder
// := isActive ∧ isEmailVerified ∧ failedLoginAttempts < 5".
func (u User) IsValidForOrder() bool {
	return u.IsActive && u.IsEmailVerified && u.FailedLoginAttempts < maxFailedLoginAttempts
}

// AccountStatusAt derives the Principal-facing status from the User's
// directory fields (§3: "Principal"), evaluated at the given instant so
// callers can supply an injected clock rather than wall time.
func (u User) AccountStatusAt(now time.Time) AccountStatus {
	if u.LockedUntil != nil && now.Before(*u.LockedUntil) {
		return AccountLocked
	}

	if !u.IsActive {
		return AccountDisabled
	}

	return AccountActive
}

// Profile is the public, password-free view of a User returned across the
// RPC surface.
type Profile struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToProfile projects a User down to its public Profile view.
func (u User) ToProfile() Profile {
	return Profile{
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
}
