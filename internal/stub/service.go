package stub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bitevents/bitevents/internal/model"
)

// Service applies the validation and orchestration the real backend performs
// in front of persistence: credential checks, token issuing, field trims,
// and ownership rules.
type Service struct {
	store       *Store
	jwtSecret   []byte
	tokenExpiry time.Duration
}

// NewService constructs a Service issuing HS256 tokens with the given expiry.
func NewService(store *Store, jwtSecret string, tokenExpiry time.Duration) *Service {
	return &Service{store: store, jwtSecret: []byte(jwtSecret), tokenExpiry: tokenExpiry}
}

// Register creates an account and returns a fresh token alongside it.
func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FullName == "" {
		return nil, fmt.Errorf("full name is required")
	}
	if !isValidEmail(req.Email) {
		return nil, fmt.Errorf("email is not a valid address")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, req.FullName, req.Email, string(hash), req.IsOrganizer)
	if err != nil {
		return nil, err
	}
	return s.authResponse(user)
}

// Login verifies credentials and returns a fresh token.
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	user, hash, err := s.store.Credentials(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		return nil, ErrBadCredentials
	}
	return s.authResponse(user)
}

// ChangePassword verifies the current password before storing the new hash.
func (s *Service) ChangePassword(ctx context.Context, userID int64, req model.ChangePasswordRequest) error {
	hash, err := s.store.PasswordHash(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.CurrentPassword)) != nil {
		return ErrBadCredentials
	}
	if len(req.NewPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.UpdatePassword(ctx, userID, string(newHash))
}

// ValidateEvent checks an organizer event payload before it reaches the store.
func (s *Service) ValidateEvent(req *model.EventRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Type = strings.TrimSpace(req.Type)
	req.Venue.City = strings.TrimSpace(req.Venue.City)
	switch {
	case req.Name == "":
		return fmt.Errorf("event name is required")
	case req.Description == "":
		return fmt.Errorf("event description is required")
	case req.Type == "":
		return fmt.Errorf("event type is required")
	case req.StartDateTime.IsZero():
		return fmt.Errorf("start date is required")
	case req.EndDateTime != nil && req.EndDateTime.Before(req.StartDateTime):
		return fmt.Errorf("end date must not precede start date")
	case req.Capacity != nil && *req.Capacity < 0:
		return fmt.Errorf("capacity must be a non-negative integer")
	case req.Price < 0:
		return fmt.Errorf("price must not be negative")
	case req.Venue.Name == "" || req.Venue.City == "":
		return fmt.Errorf("venue name and city are required")
	}
	return nil
}

// ParseToken verifies an HS256 bearer token and returns the user id claim.
func (s *Service) ParseToken(token string) (int64, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, fmt.Errorf("invalid token: %w", err)
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("token missing user_id claim")
	}
	return int64(userID), nil
}

func (s *Service) authResponse(user *model.User) (*model.AuthResponse, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenExpiry).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &model.AuthResponse{Token: signed, User: *user}, nil
}

// isValidEmail does a basic structural check, matching the client's own
// pre-submission validation.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
