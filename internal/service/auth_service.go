package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kilimo-tech/farmgate-pos/internal/core"
	"github.com/kilimo-tech/farmgate-pos/internal/state"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenLifetime      = 24 * time.Hour
	enhanceTimeout     = 5 * time.Second
	tempPasswordLength = 10
)

// SessionClaims are the token-embedded claims a session-derived AuthUser is
// reconstructed from before the authoritative row arrives.
type SessionClaims struct {
	UserID            string `json:"user_id"`
	Username          string `json:"username"`
	Role              string `json:"role"`
	FirstLogin        bool   `json:"first_login"`
	TemporaryPassword bool   `json:"temporary_password"`
	jwt.RegisteredClaims
}

// AuthService owns session identity: credential operations, the optimistic
// claims-derived user value, and its background reconciliation against the
// authoritative users row.
type AuthService struct {
	userRepo  core.UserRepository
	cache     core.ReportCache
	authState *state.AuthState
	jwtSecret string
	now       core.Clock
}

// NewAuthService creates a new auth service. A nil clock defaults to
// time.Now.
func NewAuthService(userRepo core.UserRepository, cache core.ReportCache, authState *state.AuthState, jwtSecret string, now core.Clock) *AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		userRepo:  userRepo,
		cache:     cache,
		authState: authState,
		jwtSecret: jwtSecret,
		now:       now,
	}
}

// AuthState exposes the session state container for subscribers.
func (s *AuthService) AuthState() *state.AuthState {
	return s.authState
}

// Login verifies credentials and returns a signed token plus the optimistic
// session-derived user. The authoritative enhancement runs in the
// background; its result overwrites the optimistic value when it lands, and
// its failure is logged and swallowed.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *core.AuthUser, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", core.ErrAuth)
	}
	if !user.IsActive {
		return "", nil, fmt.Errorf("%w: account disabled", core.ErrAuth)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", core.ErrAuth)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	optimistic := &core.AuthUser{
		ID:                user.ID,
		Username:          user.Username,
		Role:              user.Role,
		FirstLogin:        user.FirstLogin,
		TemporaryPassword: user.TemporaryPassword,
	}
	s.authState.Set(optimistic)

	go s.enhanceAuthUser(user.ID)

	return token, optimistic, nil
}

// enhanceAuthUser fetches the authoritative row and merges it over the
// optimistic value. Runs detached from the request context: the enhancement
// is a background reconciliation, not part of the login result.
func (s *AuthService) enhanceAuthUser(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), enhanceTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		log.Printf("auth enhancement fetch failed for user %s: %v", userID, err)
		return
	}

	current := s.authState.Current()
	if current == nil || current.ID != userID {
		// Signed out (or re-signed-in as someone else) while the fetch
		// was in flight; drop the result.
		return
	}

	s.authState.Set(MergeAuthUser(current, user))
}

// MergeAuthUser overlays the authoritative user row onto the optimistic
// session value. Authoritative fields always win; only session-side extras
// (device type) survive from the optimistic value.
func MergeAuthUser(optimistic *core.AuthUser, authoritative *core.User) *core.AuthUser {
	merged := &core.AuthUser{
		ID:                authoritative.ID,
		Username:          authoritative.Username,
		Role:              authoritative.Role,
		Title:             authoritative.Title,
		FirstName:         authoritative.FirstName,
		LastName:          authoritative.LastName,
		Email:             authoritative.Email,
		EmployeeID:        authoritative.EmployeeID,
		PhoneNumber:       authoritative.PhoneNumber,
		FirstLogin:        authoritative.FirstLogin,
		TemporaryPassword: authoritative.TemporaryPassword,
	}
	if optimistic != nil {
		merged.DeviceType = optimistic.DeviceType
	}
	return merged
}

// SignupRequest carries the fields needed to create an account.
type SignupRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	Title       string `json:"title"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	EmployeeID  string `json:"employee_id"`
	PhoneNumber string `json:"phone_number"`
}

// Signup creates a new account with a hashed password and first-login set.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*core.User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", core.ErrValidation)
	}

	roleJSON, err := json.Marshal(req.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to encode role: %w", err)
	}
	role, err := core.NormalizeRole(roleJSON)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &core.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		Title:        req.Title,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		EmployeeID:   req.EmployeeID,
		PhoneNumber:  req.PhoneNumber,
		FirstLogin:   true,
		IsActive:     true,
		CreatedAt:    s.now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout clears the signed-out user's cached report namespace and resets
// the session state container. Other users' cached entries are untouched.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.cache.ClearUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear user cache: %w", err)
	}
	s.authState.Clear()
	return nil
}

// ChangePassword verifies the old password and stores a hash of the new
// one, clearing the temporary-password and first-login flags.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", core.ErrAuth)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash), false); err != nil {
		return err
	}
	if user.FirstLogin {
		if err := s.userRepo.ClearFirstLogin(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}

// RequestPasswordReset issues a temporary password for the account matching
// the email and flags it as temporary. The caller is responsible for
// delivering it out of band.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		return "", fmt.Errorf("failed to generate temporary password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash), true); err != nil {
		return "", err
	}
	return tempPassword, nil
}

// AdminResetPassword resets another user's password through the server-side
// stored procedure, which also raises the temporary-password flag.
func (s *AuthService) AdminResetPassword(ctx context.Context, userID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.ResetPassword(ctx, userID, string(hash))
}

// CurrentUser reconstructs the session user from token claims, then merges
// the authoritative row when the store is reachable. Store failures return
// the optimistic value: an identity is already in hand.
func (s *AuthService) CurrentUser(ctx context.Context, tokenString string) (*core.AuthUser, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	optimistic := &core.AuthUser{
		ID:                claims.UserID,
		Username:          claims.Username,
		Role:              claims.Role,
		FirstLogin:        claims.FirstLogin,
		TemporaryPassword: claims.TemporaryPassword,
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		log.Printf("authoritative user fetch failed for %s: %v", claims.UserID, err)
		return optimistic, nil
	}
	return MergeAuthUser(optimistic, user), nil
}

// ValidateToken parses and verifies a session token.
func (s *AuthService) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrAuth, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", core.ErrAuth)
	}
	return claims, nil
}

func (s *AuthService) generateToken(user *core.User) (string, error) {
	now := s.now()
	claims := &SessionClaims{
		UserID:            user.ID,
		Username:          user.Username,
		Role:              user.Role,
		FirstLogin:        user.FirstLogin,
		TemporaryPassword: user.TemporaryPassword,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// generateTempPassword builds a random alphanumeric temporary password.
func generateTempPassword() (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"
	out := make([]byte, tempPasswordLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
