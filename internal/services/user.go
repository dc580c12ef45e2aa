package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	maxNameLength   = 100
	maxShortLength  = 50
	maxBioLength    = 500
	defaultTokenTTL = 365 * 24 * time.Hour
)

// UserService handles user-related business logic
type UserService struct {
	users     repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository, jwtSecret string, tokenTTL time.Duration) *UserService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &UserService{
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// CreateUserRequest represents a request to register a profile
type CreateUserRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Gender string `json:"gender"`
	City   string `json:"city"`
	Bio    string `json:"bio"`
}

// UpdateProfileRequest represents the editable profile fields
type UpdateProfileRequest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Gender string `json:"gender"`
	City   string `json:"city"`
	Bio    string `json:"bio"`
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

// CreateUser registers a profile and issues its token
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, string, error) {
	user := &models.User{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Gender:    strings.TrimSpace(req.Gender),
		City:      strings.TrimSpace(req.City),
		Bio:       strings.TrimSpace(req.Bio),
		CreatedAt: time.Now().UTC(),
	}
	if errs := validateProfile(user); errs.HasErrors() {
		return nil, "", errs
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", unavailable(fmt.Errorf("failed to create user: %w", err))
	}

	log.Info().Str("user_id", user.ID).Msg("User created")
	return user, token, nil
}

// GetProfile returns userID's profile. Contact fields are only kept for the owner.
func (s *UserService) GetProfile(ctx context.Context, viewerID, userID string) (*models.User, error) {
	if viewerID == "" {
		return nil, ErrIdentityMissing
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, unavailable(err)
	}
	if viewerID != userID {
		return user.PublicProfile(), nil
	}
	return user, nil
}

// UpdateProfile overwrites the caller's editable fields
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*models.User, error) {
	if userID == "" {
		return nil, ErrIdentityMissing
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, unavailable(err)
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Phone = strings.TrimSpace(req.Phone)
	user.Gender = strings.TrimSpace(req.Gender)
	user.City = strings.TrimSpace(req.City)
	user.Bio = strings.TrimSpace(req.Bio)
	if errs := validateProfile(user); errs.HasErrors() {
		return nil, errs
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, unavailable(fmt.Errorf("failed to update user: %w", err))
	}
	return user, nil
}

// UpdatePushToken sets the device token used for push notifications; empty clears it
func (s *UserService) UpdatePushToken(ctx context.Context, userID, pushToken string) error {
	if userID == "" {
		return ErrIdentityMissing
	}

	var token *string
	if t := strings.TrimSpace(pushToken); t != "" {
		token = &t
	}
	if err := s.users.UpdatePushToken(ctx, userID, token); err != nil {
		return unavailable(fmt.Errorf("failed to update push token: %w", err))
	}
	return nil
}

func validateProfile(u *models.User) ValidationErrors {
	errs := make(ValidationErrors)

	if u.Name == "" {
		errs.Add("name", "Name is required")
	} else if utf8.RuneCountInString(u.Name) > maxNameLength {
		errs.Add("name", "Name is too long")
	}

	if u.Email != "" {
		if _, err := mail.ParseAddress(u.Email); err != nil {
			errs.Add("email", "Invalid email address")
		}
	}

	if utf8.RuneCountInString(u.Gender) > maxShortLength {
		errs.Add("gender", "Gender is too long")
	}
	if utf8.RuneCountInString(u.City) > maxShortLength {
		errs.Add("city", "City is too long")
	}
	if utf8.RuneCountInString(u.Bio) > maxBioLength {
		errs.Add("bio", "Bio is too long")
	}

	return errs
}
