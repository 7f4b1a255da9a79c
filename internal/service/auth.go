package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/campusmarket/backend/internal/domain"
	"github.com/campusmarket/backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles seller registration, login, and JWT verification.
type AuthService struct {
	jwtSecret     string
	adminEmail    string
	adminPassword string
	sellerRepo    *repository.SellerRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(jwtSecret, adminEmail, adminPassword string, sellerRepo *repository.SellerRepository) *AuthService {
	return &AuthService{
		jwtSecret:     jwtSecret,
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
		sellerRepo:    sellerRepo,
	}
}

// SeedAdmin creates the default admin account if it doesn't exist.
func (s *AuthService) SeedAdmin(ctx context.Context) error {
	exists, err := s.sellerRepo.Exists(ctx, s.adminEmail)
	if err != nil {
		return fmt.Errorf("failed to check admin existence: %w", err)
	}
	if exists {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(s.adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now()
	admin := &domain.Seller{
		ID:          domain.NewSellerID(),
		Email:       s.adminEmail,
		Password:    string(hashedPassword),
		DisplayName: "Marketplace Admin",
		Verified:    true,
		Role:        "admin",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.sellerRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	log.Printf("admin account created (%s)", s.adminEmail)
	return nil
}

// Register creates a new seller account.
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.SellerResponse, error) {
	exists, err := s.sellerRepo.Exists(ctx, req.Email)
	if err != nil {
		return nil, domain.ErrInternal("failed to check seller", err)
	}
	if exists {
		return nil, domain.ErrBadRequest("email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("failed to hash password", err)
	}

	now := time.Now()
	seller := &domain.Seller{
		ID:          domain.NewSellerID(),
		Email:       req.Email,
		Password:    string(hashedPassword),
		DisplayName: req.DisplayName,
		Verified:    false,
		Role:        "seller",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.sellerRepo.Create(ctx, seller); err != nil {
		return nil, domain.ErrInternal("failed to create seller", err)
	}

	return sellerResponse(seller), nil
}

// Login validates credentials and returns a signed JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	seller, err := s.sellerRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInternal("failed to find seller", err)
	}
	if seller == nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(seller.Password), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	claims := jwt.MapClaims{
		"sub":   seller.ID,
		"email": seller.Email,
		"role":  seller.Role,
		"exp":   time.Now().Add(7 * 24 * time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, domain.ErrInternal("failed to sign token", err)
	}

	return &domain.LoginResponse{
		Token:  signed,
		Seller: *sellerResponse(seller),
	}, nil
}

// VerifyToken validates a JWT token and returns the claims.
func (s *AuthService) VerifyToken(tokenStr string) (*domain.JWTClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, domain.ErrUnauthorized("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized("invalid token claims")
	}

	return &domain.JWTClaims{
		Sub:   getClaimString(claims, "sub"),
		Email: getClaimString(claims, "email"),
		Role:  getClaimString(claims, "role"),
	}, nil
}

func getClaimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// GetSellerByID returns a seller profile (for /api/auth/me).
func (s *AuthService) GetSellerByID(ctx context.Context, id string) (*domain.SellerResponse, error) {
	seller, err := s.sellerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.ErrInternal("failed to find seller", err)
	}
	if seller == nil {
		return nil, domain.ErrNotFound("seller not found")
	}
	return sellerResponse(seller), nil
}

// ListSellers returns all seller accounts (admin only).
func (s *AuthService) ListSellers(ctx context.Context) ([]*domain.SellerResponse, error) {
	sellers, err := s.sellerRepo.ListAll(ctx)
	if err != nil {
		return nil, domain.ErrInternal("failed to list sellers", err)
	}

	responses := make([]*domain.SellerResponse, len(sellers))
	for i, seller := range sellers {
		responses[i] = sellerResponse(seller)
	}
	return responses, nil
}

// SetVerified marks a seller profile verified or not (admin only).
func (s *AuthService) SetVerified(ctx context.Context, id string, verified bool) error {
	seller, err := s.sellerRepo.FindByID(ctx, id)
	if err != nil {
		return domain.ErrInternal("failed to find seller", err)
	}
	if seller == nil {
		return domain.ErrNotFound("seller not found")
	}
	if err := s.sellerRepo.SetVerified(ctx, id, verified); err != nil {
		return domain.ErrInternal("failed to update seller", err)
	}
	return nil
}

func sellerResponse(s *domain.Seller) *domain.SellerResponse {
	return &domain.SellerResponse{
		ID:          s.ID,
		Email:       s.Email,
		DisplayName: s.DisplayName,
		Verified:    s.Verified,
		Role:        s.Role,
		CreatedAt:   s.CreatedAt,
	}
}
