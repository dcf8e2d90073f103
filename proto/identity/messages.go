// Package identity holds the wire messages and generated-style gRPC stubs
// for the Identity Service (§6). Messages are plain structs, not
// protobuf-generated types: this repo carries a hand-authored JSON
// encoding.Codec (internal/transport) in place of a protoc toolchain
// dependency (see SPEC_FULL.md §4), so message shapes only need json tags.
package identity

import "time"

// Profile mirrors mmodel.Profile on the wire.
type Profile struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

// CreateUserRequest is CreateUser's input (§6).
type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

// CreateUserResponse is CreateUser's output (§6).
type CreateUserResponse struct {
	UserID    string    `json:"userId"`
	Profile   Profile   `json:"profile"`
	CreatedAt time.Time `json:"createdAt"`
	Message   string    `json:"message"`
}

// GetUserRequest is GetUser's input (§6).
type GetUserRequest struct {
	UserID string `json:"userId"`
}

// GetUserResponse is GetUser's output (§6).
type GetUserResponse struct {
	Profile Profile `json:"profile"`
}

// UpdateUserProfileRequest is UpdateUserProfile's input (§6). Pointer fields
// are optional: nil means "leave unchanged".
type UpdateUserProfileRequest struct {
	UserID    string  `json:"userId"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// UpdateUserProfileResponse is UpdateUserProfile's output (§6).
type UpdateUserProfileResponse struct {
	Profile Profile `json:"profile"`
}

// ValidateUserRequest is ValidateUser's input (§6).
type ValidateUserRequest struct {
	UserID string `json:"userId"`
}

// ValidateUserResponse is ValidateUser's output (§6).
type ValidateUserResponse struct {
	Valid   bool   `json:"valid"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// HealthCheckRequest is HealthCheck's (empty) input.
type HealthCheckRequest struct{}

// HealthCheckResponse is HealthCheck's output (§6).
type HealthCheckResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
