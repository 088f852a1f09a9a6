package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"foodgram/internal/models"
	"foodgram/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and token validation.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
	}
}

// RegisterUser hashes the user's password and stores the account.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Username = strings.TrimSpace(user.Username)

	if _, err := s.userRepo.GetByUsername(ctx, user.Username); err == nil {
		return ConflictError(RuleUsernameTaken, fmt.Sprintf("username '%s' already taken", user.Username))
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if _, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil {
		return ConflictError(RuleEmailTaken, fmt.Sprintf("email '%s' already registered", user.Email))
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	user.Role = models.RoleUser

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return ConflictError(RuleAlreadyExists, "user with this username or email already exists")
		}
		return fmt.Errorf("failed to register user: %w", err)
	}
	zap.L().Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return nil
}

func invalidCredentials() *Error {
	return &Error{Kind: ErrPermission, Rule: RuleInvalidCredentials, Message: "invalid credentials"}
}

// LoginUser checks the email and password and returns a signed JWT.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", invalidCredentials()
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", invalidCredentials()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(s.tokenDurat).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// MinPasswordLength is the shortest password an account may have.
const MinPasswordLength = 6

// SetPassword replaces the caller's password after checking the current one.
func (s *AuthService) SetPassword(ctx context.Context, caller Caller, currentPassword, newPassword string) error {
	if !caller.Authenticated() {
		return errAuthenticationRequired()
	}
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return ValidationError("new_password", RuleTooShort,
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NotFoundError("user", caller.UserID)
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return ValidationError("current_password", RuleInvalidCredentials, "current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	zap.L().Info("password changed", zap.String("user_id", user.ID))
	return nil
}

// ValidateToken parses and validates a JWT, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		zap.L().Debug("token validation failed", zap.Error(err))
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// CallerFromClaims turns validated claims into a Caller.
func CallerFromClaims(claims jwt.MapClaims) (Caller, error) {
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Anonymous, fmt.Errorf("token has no user_id claim")
	}
	role, _ := claims["role"].(string)
	return Caller{UserID: userID, IsAdmin: role == models.RoleAdmin}, nil
}
