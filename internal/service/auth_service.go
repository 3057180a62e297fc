package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/config"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/dto"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is deactivated")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserLimit          = errors.New("subscription plan user limit reached")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const bcryptCost = 12

// Claims carried in access and refresh tokens. CompanyID is empty for
// platform managers.
type Claims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
	TokenUse  string `json:"token_use"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// AuthService issues JWTs and manages company users.
type AuthService struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	cfg         *config.Config
}

func NewAuthService(userRepo repository.UserRepository, companyRepo repository.CompanyRepository, cfg *config.Config) *AuthService {
	return &AuthService{userRepo: userRepo, companyRepo: companyRepo, cfg: cfg}
}

// Login verifies credentials and returns an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrUserInactive
	}
	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.LoginResponse, error) {
	claims, err := s.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenUse != "refresh" {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !user.Active {
		return nil, ErrUserInactive
	}
	return s.issueTokens(user)
}

// ParseToken validates signature and expiry and returns the claims.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) issueTokens(user *model.User) (*dto.LoginResponse, error) {
	accessTTL := time.Duration(s.cfg.JWTExpirationHours) * time.Hour
	refreshTTL := time.Duration(s.cfg.JWTRefreshHours) * time.Hour

	access, err := s.signToken(user, "access", accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signToken(user, "refresh", refreshTTL)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(accessTTL.Seconds()),
		User:         UserToResponse(user),
	}, nil
}

func (s *AuthService) signToken(user *model.User, use string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Role:     user.Role,
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   user.ID.String(),
		},
	}
	if user.CompanyID != nil {
		claims.CompanyID = user.CompanyID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// CreateUser adds a company user, enforcing the plan's user cap.
func (s *AuthService) CreateUser(ctx context.Context, companyID uuid.UUID, req dto.CreateUserRequest) (*model.User, error) {
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	}

	sub, err := s.companyRepo.FindSubscription(ctx, companyID)
	if err == nil && sub.Plan != nil && sub.Plan.MaxUsers > 0 {
		count, err := s.userRepo.CountByCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}
		if count >= int64(sub.Plan.MaxUsers) {
			return nil, ErrUserLimit
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		CompanyID:    &companyID,
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetUser returns a company user.
func (s *AuthService) GetUser(ctx context.Context, companyID, id uuid.UUID) (*model.User, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.CompanyID == nil || *u.CompanyID != companyID {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// ListUsers returns the company's users.
func (s *AuthService) ListUsers(ctx context.Context, companyID uuid.UUID, includeInactive bool) ([]model.User, error) {
	return s.userRepo.ListByCompany(ctx, companyID, includeInactive)
}

// UpdateUser applies partial changes, rehashing the password if given.
func (s *AuthService) UpdateUser(ctx context.Context, companyID, id uuid.UUID, req dto.UpdateUserRequest) (*model.User, error) {
	u, err := s.GetUser(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Email != nil {
		u.Email = req.Email
	}
	if req.Phone != nil {
		u.Phone = req.Phone
	}
	if req.Role != "" {
		u.Role = req.Role
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeactivateUser soft-deletes a user; their ledger history stays intact.
func (s *AuthService) DeactivateUser(ctx context.Context, companyID, id uuid.UUID) error {
	if _, err := s.GetUser(ctx, companyID, id); err != nil {
		return err
	}
	return s.userRepo.SoftDelete(ctx, id)
}

// ReactivateUser brings a deactivated user back.
func (s *AuthService) ReactivateUser(ctx context.Context, companyID, id uuid.UUID) error {
	if _, err := s.GetUser(ctx, companyID, id); err != nil {
		return err
	}
	return s.userRepo.Reactivate(ctx, id)
}

// UserToResponse maps a user to its API shape.
func UserToResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:            u.ID.String(),
		Username:      u.Username,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		Debt:          u.Debt,
		ProductsCount: u.ProductsCount,
		Active:        u.Active,
	}
}
