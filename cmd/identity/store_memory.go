package identity

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used for tests and DB-less dev mode.
// Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string // email_norm -> id
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
}

// CreateUser creates a user with a fresh ULID and hashed password.
func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

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
		return User{}, err
	}
	hash, err := HashPassword(in.Password, DefaultArgon2idParams())
	if err != nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: err.Error()}
	}

	code, err := NewVerificationCode(0)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:                   id,
		Email:                email,
		Name:                 strings.TrimSpace(in.Name),
		Role:                 role,
		Active:               true,
		PasswordHash:         hash,
		VerificationCodeHash: HashVerificationCodeHex(code),
		CreatedAt:            now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	norm := NormalizeEmail(email)
	if _, exists := s.byEmail[norm]; exists {
		return User{}, ConflictError{Op: op, Field: "email"}
	}
	s.byID[id] = u
	s.byEmail[norm] = id
	return u, nil
}

// GetUserByID returns the user row, including deactivated users.
func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return u, nil
}

// GetUserByEmail returns the user row matching the normalized email.
func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	const op = "identity.GetUserByEmail"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return s.byID[id], nil
}

// SetRole updates a user's role.
func (s *MemoryStore) SetRole(_ context.Context, id string, role Role, _ time.Time) error {
	const op = "identity.SetRole"

	if !role.Valid() {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "unknown role"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return NotFoundError{Op: op, Resource: "user"}
	}
	u.Role = role
	s.byID[u.ID] = u
	return nil
}

// SetActive activates or deactivates a user.
func (s *MemoryStore) SetActive(_ context.Context, id string, active bool, _ time.Time) error {
	const op = "identity.SetActive"

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return NotFoundError{Op: op, Resource: "user"}
	}
	u.Active = active
	s.byID[u.ID] = u
	return nil
}

// Delete removes a user entirely. Test helper for "user deleted after
// credential issuance" scenarios.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byEmail, NormalizeEmail(u.Email))
	delete(s.byID, id)
}
