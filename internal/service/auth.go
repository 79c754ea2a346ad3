package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/msomdec/task-manager/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input beyond this many bytes.
const maxPasswordBytes = 72

// TokenConfig controls how session tokens are signed and validated.
type TokenConfig struct {
	Secret     string
	Issuer     string
	Audience   string
	Expiration time.Duration
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=100"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// AuthService handles registration, login, logout and session token
// verification.
type AuthService struct {
	users       domain.UserRepository
	revocations domain.RevocationStore
	validate    *validator.Validate
	tokens      TokenConfig
	jwtSecret   []byte
	bcryptCost  int
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService creates a new AuthService. revocations may be nil, in which
// case Logout is a no-op and tokens stay valid until they expire.
func NewAuthService(users domain.UserRepository, revocations domain.RevocationStore, tokens TokenConfig, bcryptCost int) *AuthService {
	return &AuthService{
		users:       users,
		revocations: revocations,
		validate:    newValidator(),
		tokens:      tokens,
		jwtSecret:   []byte(tokens.Secret),
		bcryptCost:  bcryptCost,
		now:         time.Now,
	}
}

// Register creates a new user account and issues a session token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, &domain.ValidationError{Fields: map[string]string{
			"password": fmt.Sprintf("must be at most %d bytes", maxPasswordBytes),
		}}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(user)
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	// bcrypt ignores everything past 72 bytes, and Register never accepts
	// such a password, so a longer one can only be wrong.
	if len(password) > maxPasswordBytes {
		_ = bcrypt.CompareHashAndPassword(s.dummyPasswordHash(), []byte(password[:maxPasswordBytes]))
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Spend the same bcrypt work as for a real account.
			_ = bcrypt.CompareHashAndPassword(s.dummyPasswordHash(), []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user)
}

// VerifyToken checks the signature, expiry, issuer, audience and revocation
// status of a session token and returns the identity it asserts. Every
// rejection is domain.ErrUnauthenticated; other errors come from the
// revocation store.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (domain.Identity, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return s.jwtSecret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.tokens.Issuer),
		jwt.WithAudience(s.tokens.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 || claims.ID == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return domain.Identity{}, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return domain.Identity{}, domain.ErrUnauthenticated
		}
	}

	return domain.Identity{
		UserID:    userID,
		Email:     claims.Email,
		Name:      claims.Name,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the token the identity was verified from.
func (s *AuthService) Logout(ctx context.Context, id domain.Identity) error {
	if s.revocations == nil || id.TokenID == "" {
		return nil
	}
	if err := s.revocations.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	now := s.now()
	expiresAt := now.Add(s.tokens.Expiration)

	claims := sessionClaims{
		Email: user.Email,
		Name:  user.FirstName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.NewString(),
			Issuer:    s.tokens.Issuer,
			Audience:  jwt.ClaimStrings{s.tokens.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) dummyPasswordHash() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.bcryptCost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}
