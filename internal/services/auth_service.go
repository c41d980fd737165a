package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kakpu/IT-onboarding/internal/authz"
	"github.com/kakpu/IT-onboarding/internal/config"
	"github.com/kakpu/IT-onboarding/internal/dto"
	"github.com/kakpu/IT-onboarding/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 8
	maxNameLength     = 100
)

type AuthService struct {
	db    *gorm.DB
	cfg   *config.Config
	entra *EntraVerifier
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	s := &AuthService{db: db, cfg: cfg}
	if cfg.EntraEnabled() {
		s.entra = NewEntraVerifier(cfg.AzureTenantID, cfg.AzureClientID)
	}
	return s
}

// Signup creates a local-credential user with the user role. It does not
// start a session.
func (s *AuthService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.UserResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)

	var errs fieldErrors
	switch {
	case name == "":
		errs.add("name", "is required")
	case utf8.RuneCountInString(name) > maxNameLength:
		errs.add("name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	}
	if !validEmail(email) {
		errs.add("email", "must be a valid email address")
	}
	if len(req.Password) < minPasswordLength {
		errs.add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx)
	var existing int64
	if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	h := string(hash)

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: &h,
		Role:         string(authz.RoleUser),
	}
	if err := tx.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &dto.UserResponse{ID: user.ID, Email: user.Email, Name: user.Name}, nil
}

func (s *AuthService) Signin(ctx context.Context, req *dto.SigninRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(ctx, &user)
}

// Refresh rotates a refresh token. The new access token carries the role as
// currently stored, so role changes apply at the next refresh.
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	if req.RefreshToken == "" {
		return nil, ErrInvalidToken
	}
	tx := s.db.WithContext(ctx)
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := tx.Where("token_hash = ? AND revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if err := tx.Model(&stored).Update("revoked", true).Error; err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := tx.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}

	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Signout(ctx context.Context, req *dto.SignoutRequest) error {
	if req.RefreshToken == "" {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(req.RefreshToken)).
		Update("revoked", true).Error
}

// EntraSignin exchanges a Microsoft Entra ID token for a session. Users are
// matched by object id only; an unknown object id creates a user with the
// user role unless its email already belongs to another account.
func (s *AuthService) EntraSignin(ctx context.Context, req *dto.EntraSigninRequest) (*dto.AuthResponse, error) {
	if s.entra == nil {
		return nil, ErrEntraDisabled
	}
	if req.IDToken == "" {
		return nil, &ValidationError{Fields: []dto.FieldError{{Field: "id_token", Message: "is required"}}}
	}

	claims, err := s.entra.Verify(req.IDToken)
	if err != nil {
		slog.Warn("entra token verification failed", "error", err)
		return nil, ErrInvalidCredentials
	}

	oid := claims.ObjectID()
	email := normalizeEmail(claims.Mail())
	if !validEmail(email) {
		return nil, ErrInvalidCredentials
	}

	tx := s.db.WithContext(ctx)
	var user models.User
	err = tx.Where("entra_id = ?", oid).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// The email claim is directory-controlled and mutable, so it never
		// grants access to an account created another way.
		var n int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("check entra email: %w", err)
		}
		if n > 0 {
			slog.Warn("entra sign-in for email owned by another account", "oid", oid)
			return nil, ErrEmailTaken
		}

		name := strings.TrimSpace(claims.Name)
		if name == "" {
			name = strings.Split(email, "@")[0]
		}
		user = models.User{
			Name:    name,
			Email:   email,
			EntraID: &oid,
			Role:    string(authz.RoleUser),
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrEmailTaken
			}
			return nil, fmt.Errorf("failed to create entra user: %w", err)
		}
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("load entra user: %w", err)
	}

	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().UTC().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail accepts a bare address only, no display name.
func validEmail(email string) bool {
	if email == "" || len(email) > 255 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
