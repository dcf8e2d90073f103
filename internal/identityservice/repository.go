// Package identityservice implements the Identity Service (§6): a Postgres-
// backed user directory plus the CreateUser/GetUser/UpdateUserProfile/
// ValidateUser/HealthCheck gRPC surface. Grounded on
// components/ledger/internal/adapters/postgres/account/account.postgresql.go
// for the repository shape (connection+tableName struct, squirrel query
// building, pgconn.PgError classification); simplified from database/sql to
// the pgxpool wrapper already adapted in common/mpostgres, since this repo
// carries no dbresolver replica routing.
package identityservice

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/coreflux/idorder/common/apperrors"
	"github.com/coreflux/idorder/common/mmodel"
	"github.com/coreflux/idorder/common/mpostgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository provides persistence for User records, satisfying both
// internal/auth/principal.Directory (FindByUsername) and
// internal/validationcache.UserLookup (FindByID) so bootstrap wiring can
// hand the same concrete repository to both collaborators.
//
//go:generate mockgen --destination=repository.mock.go --package=identityservice . Repository
type Repository interface {
	Create(ctx context.Context, user mmodel.User) (mmodel.User, error)
	FindByID(ctx context.Context, userID string) (mmodel.User, error)
	FindByUsername(ctx context.Context, username string) (mmodel.User, error)
	FindByEmail(ctx context.Context, email string) (mmodel.User, error)
	Update(ctx context.Context, user mmodel.User) (mmodel.User, error)
}

const userEntity = "User"

// UserPostgreSQLRepository is a Postgres-specific implementation of Repository.
type UserPostgreSQLRepository struct {
	connection *mpostgres.PostgresConnection
	tableName  string
}

// NewUserPostgreSQLRepository returns a new instance of
// UserPostgreSQLRepository using the given Postgres connection.
func NewUserPostgreSQLRepository(pc *mpostgres.PostgresConnection) *UserPostgreSQLRepository {
	return &UserPostgreSQLRepository{
		connection: pc,
		tableName:  "identity_user",
	}
}

// userRow mirrors the identity_user table's columns, decoupling the wire/
// domain mmodel.User from the storage shape the way AccountPostgreSQLModel
// does for mmodel.Account.
type userRow struct {
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

func (r userRow) toEntity() mmodel.User {
	return mmodel.User{
		ID:                  r.ID,
		Username:            r.Username,
		Email:               r.Email,
		PasswordHash:        r.PasswordHash,
		FirstName:           r.FirstName,
		LastName:            r.LastName,
		Phone:               r.Phone,
		IsActive:            r.IsActive,
		IsEmailVerified:     r.IsEmailVerified,
		FailedLoginAttempts: r.FailedLoginAttempts,
		LockedUntil:         r.LockedUntil,
		Roles:               r.Roles,
		Version:             r.Version,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

var userColumns = []string{
	"id", "username", "email", "password_hash", "first_name", "last_name",
	"phone", "is_active", "is_email_verified", "failed_login_attempts",
	"locked_until", "roles", "version", "created_at", "updated_at",
}

func scanUserRow(row pgx.Row) (userRow, error) {
	var u userRow

	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName,
		&u.LastName, &u.Phone, &u.IsActive, &u.IsEmailVerified,
		&u.FailedLoginAttempts, &u.LockedUntil, &u.Roles, &u.Version,
		&u.CreatedAt, &u.UpdatedAt)

	return u, err
}

// Create persists a new User, assigning it a fresh id and initial version.
func (r *UserPostgreSQLRepository) Create(ctx context.Context, user mmodel.User) (mmodel.User, error) {
	pool, err := r.connection.GetPool(ctx)
	if err != nil {
		return mmodel.User{}, apperrors.Wrap(apperrors.KindUnexpected, "connect to postgres", err)
	}

	user.ID = uuid.New().String()
	user.Version = 1
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	insert := squirrel.Insert(r.tableName).
		Columns(userColumns...).
		Values(user.ID, user.Username, user.Email, user.PasswordHash, user.FirstName,
			user.LastName, user.Phone, user.IsActive, user.IsEmailVerified,
			user.FailedLoginAttempts, user.LockedUntil, user.Roles, user.Version,
			user.CreatedAt, user.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	query, args, err := insert.ToSql()
	if err != nil {
		return mmodel.User{}, apperrors.Wrap(apperrors.KindUnexpected, "build insert", err)
	}

	if _, err := pool.Exec(ctx, query, args...); err != nil {
		return mmodel.User{}, classifyPgError(err, user.Username)
	}

	return user, nil
}

// FindByID looks up a User by its opaque id.
func (r *UserPostgreSQLRepository) FindByID(ctx context.Context, userID string) (mmodel.User, error) {
	return r.findOneBy(ctx, "id", userID)
}

// FindByUsername looks up a User by its unique username.
func (r *UserPostgreSQLRepository) FindByUsername(ctx context.Context, username string) (mmodel.User, error) {
	return r.findOneBy(ctx, "username", username)
}

// FindByEmail looks up a User by its unique email address.
func (r *UserPostgreSQLRepository) FindByEmail(ctx context.Context, email string) (mmodel.User, error) {
	return r.findOneBy(ctx, "email", email)
}

func (r *UserPostgreSQLRepository) findOneBy(ctx context.Context, column, value string) (mmodel.User, error) {
	pool, err := r.connection.GetPool(ctx)
	if err != nil {
		return mmodel.User{}, apperrors.Wrap(apperrors.KindUnexpected, "connect to postgres", err)
	}

	sel := squirrel.Select(userColumns...).
		From(r.tableName).
		Where(squirrel.Expr(column+" = ?", value)).
		PlaceholderFormat(squirrel.Dollar)

	query, args, err := sel.ToSql()
	if err != nil {
		return mmodel.User{}, apperrors.Wrap(apperrors.KindUnexpected, "build select", err)
	}

	row, err := scanUserRow(pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return mmodel.User{}, apperrors.NewNotFound(userEntity, "user not found")
		}

		return mmodel.User{}, apperrors.Wrap(apperrors.KindUnexpected, "query user", err)
	}

	return row.toEntity(), nil
}

// Update persists changes to an existing User under optimistic concurrency:
// the write only applies if Version still matches the row's current value,
// and the caller's Version is bumped on success.
func (r *UserPostgreSQLRepository) Update(ctx context.Context, user mmodel.User) (mmodel.User, error) {
	pool, err := r.connection.GetPool(ctx)
	if err != nil {
		return mmodel.User{}, apperrors.Wrap(apperrors.KindUnexpected, "connect to postgres", err)
	}

	user.UpdatedAt = time.Now().UTC()
	newVersion := user.Version + 1

	update := squirrel.Update(r.tableName).
		Set("email", user.Email).
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("phone", user.Phone).
		Set("is_active", user.IsActive).
		Set("is_email_verified", user.IsEmailVerified).
		Set("failed_login_attempts", user.FailedLoginAttempts).
		Set("locked_until", user.LockedUntil).
		Set("roles", user.Roles).
		Set("version", newVersion).
		Set("updated_at", user.UpdatedAt).
		Where(squirrel.Eq{"id": user.ID, "version": user.Version}).
		PlaceholderFormat(squirrel.Dollar)

	query, args, err := update.ToSql()
	if err != nil {
		return mmodel.User{}, apperrors.Wrap(apperrors.KindUnexpected, "build update", err)
	}

	tag, err := pool.Exec(ctx, query, args...)
	if err != nil {
		return mmodel.User{}, classifyPgError(err, user.Username)
	}

	if tag.RowsAffected() == 0 {
		return mmodel.User{}, apperrors.NewVersionConflict(userEntity)
	}

	user.Version = newVersion

	return user, nil
}

// classifyPgError maps a pgconn.PgError into the §7 taxonomy the way
// services.ValidatePGError does for the teacher's accounts table: unique
// violations become AlreadyExists, everything else is Unexpected.
func classifyPgError(err error, conflictEntity string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperrors.NewAlreadyExists(userEntity, "username or email already registered: "+conflictEntity)
	}

	return apperrors.Wrap(apperrors.KindUnexpected, "postgres operation failed", err)
}
