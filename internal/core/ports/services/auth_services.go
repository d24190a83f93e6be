package services

import (
	"context"
	"time"

	"github.com/SimpleBankSys/sbs_backend/internal/core/domain"
	"github.com/SimpleBankSys/sbs_backend/internal/dto"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
	GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error)
	// ValidateAndParseRefreshToken validates a refresh token string against a user's stored token details.
	// It returns the user if the token is valid and not expired.
	ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error)
}

// GoogleOAuthHandlerSvcFacade defines the interface for Google OAuth operations.
type GoogleOAuthHandlerSvcFacade interface {
	// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)
	// GetUserInfo uses the access token to get user information from Google.
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*domain.GoogleUserInfo, error)
	// ValidateGoogleIDToken validates an ID token string from Google and returns its payload.
	ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error)
}

// AuthSvcFacade defines the registration and login flows.
type AuthSvcFacade interface {
	// Register creates a new user together with their bank account, credited
	// with the configured opening balance, and returns fresh tokens.
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenPairResponse, error)

	// Login authenticates a user by username and password and issues tokens.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenPairResponse, error)

	// Refresh exchanges a valid refresh token for a new token pair.
	Refresh(ctx context.Context, req dto.RefreshTokenRequest) (*dto.TokenPairResponse, error)

	// LoginWithGoogle signs a user in via a Google OAuth authorization code,
	// creating the user and their account on first sign-in.
	LoginWithGoogle(ctx context.Context, code string) (*dto.TokenPairResponse, error)

	// Logout invalidates the user's refresh token.
	Logout(ctx context.Context, userID string) error
}
