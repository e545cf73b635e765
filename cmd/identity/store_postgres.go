package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements identity persistence over PostgreSQL.
//
// Design notes:
// - The pgx pool is owned by the caller; this store must NOT close it.
// - Schema/table identifiers are safely quoted to avoid SQL injection via identifiers.
// - Errors are mapped to identity sentinel kinds where appropriate.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func pgIdentIsValid(s string) bool { return pgIdentRe.MatchString(s) }

// WithSchema sets the Postgres schema used by the identity store (default "shop").
// The schema name is validated to be a legal PostgreSQL identifier.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentIsValid(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore with secure defaults.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "shop",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

func (s *PostgresStore) usersTable() string {
	return fmt.Sprintf("%q.%q", s.schema, "users")
}

const userColumns = `id, email, email_norm, name, role, active, email_verified, password_hash, verification_code_hash, created_at`

// CreateUser creates a new user row.
func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if s == nil || s.pool == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}
	if strings.TrimSpace(in.Password) == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password is required"}
	}
	role := in.Role
	if !role.Valid() {
		role = RoleCustomer
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := NewULID(now)
	if err != nil {
		return User{}, fmt.Errorf("%s: id: %w", op, err)
	}

	hash, err := HashPassword(in.Password, DefaultArgon2idParams())
	if err != nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: err.Error()}
	}

	// The one-time code itself is handed to the mail pipeline; only its hash
	// is persisted.
	code, err := NewVerificationCode(0)
	if err != nil {
		return User{}, fmt.Errorf("%s: code: %w", op, err)
	}
	codeHash := HashVerificationCodeHex(code)

	q := fmt.Sprintf(`
		INSERT INTO %s (id, email, email_norm, name, role, active, email_verified, password_hash, verification_code_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, FALSE, $6, $7, $8)
	`, s.usersTable())

	_, err = s.pool.Exec(ctx, q, id, email, NormalizeEmail(email), strings.TrimSpace(in.Name), string(role), hash, codeHash, now)
	if err != nil {
		if isPgUniqueViolation(err) {
			return User{}, ConflictError{Op: op, Field: "email"}
		}
		return User{}, fmt.Errorf("%s: %w", op, err)
	}

	return User{
		ID:                   id,
		Email:                email,
		Name:                 strings.TrimSpace(in.Name),
		Role:                 role,
		Active:               true,
		EmailVerified:        false,
		PasswordHash:         hash,
		VerificationCodeHash: codeHash,
		CreatedAt:            now,
	}, nil
}

// GetUserByID loads a user row by id, including deactivated users.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "empty id"}
	}

	q := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, userColumns, s.usersTable())
	return s.scanUser(ctx, op, q, id)
}

// GetUserByEmail loads a user row by normalized email.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	const op = "identity.GetUserByEmail"

	norm := NormalizeEmail(email)
	if norm == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "empty email"}
	}

	q := fmt.Sprintf(`SELECT %s FROM %s WHERE email_norm = $1`, userColumns, s.usersTable())
	return s.scanUser(ctx, op, q, norm)
}

// SetRole updates a user's role.
func (s *PostgresStore) SetRole(ctx context.Context, id string, role Role, now time.Time) error {
	const op = "identity.SetRole"

	if !role.Valid() {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "unknown role"}
	}
	return s.updateUserField(ctx, op, id, "role", string(role), now)
}

// SetActive activates or deactivates a user.
func (s *PostgresStore) SetActive(ctx context.Context, id string, active bool, now time.Time) error {
	const op = "identity.SetActive"
	return s.updateUserField(ctx, op, id, "active", active, now)
}

func (s *PostgresStore) updateUserField(ctx context.Context, op, id, column string, value any, now time.Time) error {
	if s == nil || s.pool == nil {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "empty id"}
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	q := fmt.Sprintf(`UPDATE %s SET %q = $1, updated_at = $2 WHERE id = $3`, s.usersTable(), column)
	tag, err := s.pool.Exec(ctx, q, value, now, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "user"}
	}
	return nil
}

func (s *PostgresStore) scanUser(ctx context.Context, op, query string, arg any) (User, error) {
	if s == nil || s.pool == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}

	var (
		u        User
		norm     string
		roleRaw  string
		codeHash *string
	)
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &norm, &u.Name, &roleRaw,
		&u.Active, &u.EmailVerified, &u.PasswordHash, &codeHash, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, fmt.Errorf("%s: %w", op, err)
	}

	// Unknown stored roles fail closed to customer.
	u.Role, _ = ParseRole(roleRaw)
	if codeHash != nil {
		u.VerificationCodeHash = *codeHash
	}
	return u, nil
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
