package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claudiu-deving/APIServer/internal/identity"
)

const defaultVerifyTimeout = 10 * time.Second

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrMissingField          = errors.New("username or password is missing")
	ErrAudienceNotConfigured = errors.New("federated audience is not configured")
)

// Hasher is the salted password hashing primitive.
type Hasher interface {
	Hash(password string, salt []byte) []byte
	NewSalt() ([]byte, error)
}

// Service implements credential verification, registration, and federated
// login on top of the user store boundary. It holds no mutable state and is
// safe for concurrent use.
type Service struct {
	store         Store
	hasher        Hasher
	verifier      identity.Verifier
	audience      string
	verifyTimeout time.Duration
}

func NewService(store Store, hasher Hasher, verifier identity.Verifier, federatedAudience string) *Service {
	return &Service{
		store:         store,
		hasher:        hasher,
		verifier:      verifier,
		audience:      federatedAudience,
		verifyTimeout: defaultVerifyTimeout,
	}
}

// Verify checks a username/password pair against the store. An unknown
// username and a wrong password are indistinguishable to the caller so that
// account existence cannot be probed.
func (s *Service) Verify(ctx context.Context, username, password string) (Account, error) {
	account, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, fmt.Errorf("look up account: %w", err)
	}

	candidate := s.hasher.Hash(password, account.PasswordSalt)
	if subtle.ConstantTimeCompare(candidate, account.PasswordHash) != 1 {
		return Account{}, ErrInvalidCredentials
	}

	return account, nil
}

// Register creates a new account with the default role. The existence
// checks are an early exit only; the store's unique indexes are the final
// arbiter when two registrations race, and a late conflict comes back as
// the same duplicate error.
func (s *Service) Register(ctx context.Context, username, password, email string) (Account, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return Account{}, ErrMissingField
	}

	exists, err := s.store.UsernameExists(ctx, username)
	if err != nil {
		return Account{}, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return Account{}, ErrDuplicateUsername
	}

	exists, err = s.store.EmailExists(ctx, email)
	if err != nil {
		return Account{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return Account{}, ErrDuplicateEmail
	}

	salt, err := s.hasher.NewSalt()
	if err != nil {
		return Account{}, fmt.Errorf("generate salt: %w", err)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return Account{}, fmt.Errorf("generate account id: %w", err)
	}

	now := time.Now().UTC()
	account := Account{
		ID:           id.String(),
		Username:     username,
		Email:        email,
		PasswordHash: s.hasher.Hash(password, salt),
		PasswordSalt: salt,
		Role:         RoleDefault,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Create(ctx, account); err != nil {
		return Account{}, err
	}

	return account, nil
}

// FederatedLogin resolves a third-party identity assertion to a local
// account by verified email. It never creates accounts: only users who
// already registered with the asserted email can log in this way.
func (s *Service) FederatedLogin(ctx context.Context, assertion string) (Account, error) {
	if s.audience == "" {
		return Account{}, ErrAudienceNotConfigured
	}

	verifyCtx, cancel := context.WithTimeout(ctx, s.verifyTimeout)
	defer cancel()

	email, err := s.verifier.Verify(verifyCtx, assertion, s.audience)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidAssertion) {
			return Account{}, err
		}
		return Account{}, fmt.Errorf("verify assertion: %w", err)
	}

	account, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Account{}, err
		}
		return Account{}, fmt.Errorf("look up account by email: %w", err)
	}

	return account, nil
}

// Lookup returns the account stored under username.
func (s *Service) Lookup(ctx context.Context, username string) (Account, error) {
	return s.store.GetByUsername(ctx, username)
}

// Get returns the account stored under id.
func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	return s.store.GetByID(ctx, id)
}
