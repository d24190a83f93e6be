package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SimpleBankSys/sbs_backend/internal/apperrors"
	"github.com/SimpleBankSys/sbs_backend/internal/core/domain"
	portssvc "github.com/SimpleBankSys/sbs_backend/internal/core/ports/services"
	"github.com/SimpleBankSys/sbs_backend/internal/dto"
	"github.com/SimpleBankSys/sbs_backend/internal/middleware"
	"github.com/SimpleBankSys/sbs_backend/internal/utils"
	"github.com/SimpleBankSys/sbs_backend/pkg/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// tokenService implements the TokenSvcFacade for handling JWT and refresh tokens.
type tokenService struct {
	cfg     *config.Config
	userSvc portssvc.UserSvcFacade
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config, userSvc portssvc.UserSvcFacade) portssvc.TokenSvcFacade {
	return &tokenService{
		cfg:     cfg,
		userSvc: userSvc,
	}
}

// GenerateAccessToken creates a new JWT access token for the given user.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	expiryTime := time.Now().Add(s.cfg.JWTExpiryDuration)
	accessToken, err := utils.GenerateJWT(user.UserID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, err
	}
	return accessToken, expiryTime, nil
}

// GenerateRefreshToken creates a new opaque refresh token for the given
// user. The token carries the user ID as a prefix so the refresh endpoint
// can locate the stored hash without any other credential.
func (s *tokenService) GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	random, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	expiryTime := time.Now().Add(s.cfg.RefreshTokenExpiryDuration)
	return fmt.Sprintf("%s.%s", user.UserID, random), expiryTime, nil
}

// ValidateAndParseRefreshToken validates a refresh token string against a
// user's stored token hash and expiry.
func (s *tokenService) ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error) {
	user, err := s.userSvc.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to retrieve user for refresh token validation: %w", err)
	}

	if user.RefreshTokenHash == "" || user.RefreshTokenExpiryTime == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if time.Now().After(*user.RefreshTokenExpiryTime) {
		return nil, apperrors.ErrRefreshTokenExpired
	}
	if !utils.CheckRefreshTokenHash(refreshTokenString, user.RefreshTokenHash) {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}

// googleOAuthHandlerService implements the GoogleOAuthHandlerSvcFacade.
type googleOAuthHandlerService struct {
	cfg          *config.Config
	oauth2Config *oauth2.Config
}

// NewGoogleOAuthHandlerService creates a new instance of googleOAuthHandlerService.
func NewGoogleOAuthHandlerService(cfg *config.Config) portssvc.GoogleOAuthHandlerSvcFacade {
	return &googleOAuthHandlerService{
		cfg: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
func (s *googleOAuthHandlerService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code for token: %w", err)
	}
	return token, nil
}

// GetUserInfo uses the access token to get user information from Google.
func (s *googleOAuthHandlerService) GetUserInfo(ctx context.Context, token *oauth2.Token) (*domain.GoogleUserInfo, error) {
	client := s.oauth2Config.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to get user info from google: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google api returned non-200 status for userinfo: %s", resp.Status)
	}

	var userInfo domain.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info from google: %w", err)
	}
	return &userInfo, nil
}

// ValidateGoogleIDToken validates an ID token received from Google and returns the payload if valid.
func (s *googleOAuthHandlerService) ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error) {
	if s.cfg.GoogleClientID == "" {
		return nil, errors.New("google client ID is not configured in the application")
	}
	payload, err := idtoken.Validate(ctx, idTokenString, s.cfg.GoogleClientID)
	if err != nil {
		return nil, fmt.Errorf("google ID token validation failed: %w", err)
	}
	return payload, nil
}

// authService stitches users, accounts, and tokens into the registration and
// login flows. Registration always provisions the user's bank account along
// with the user record.
type authService struct {
	userSvc    portssvc.UserSvcFacade
	accountSvc portssvc.AccountSvcFacade
	tokenSvc   portssvc.TokenSvcFacade
	googleSvc  portssvc.GoogleOAuthHandlerSvcFacade
}

// NewAuthService creates a new AuthService.
func NewAuthService(userSvc portssvc.UserSvcFacade, accountSvc portssvc.AccountSvcFacade, tokenSvc portssvc.TokenSvcFacade, googleSvc portssvc.GoogleOAuthHandlerSvcFacade) portssvc.AuthSvcFacade {
	return &authService{
		userSvc:    userSvc,
		accountSvc: accountSvc,
		tokenSvc:   tokenSvc,
		googleSvc:  googleSvc,
	}
}

// Ensure authService implements the portssvc.AuthSvcFacade interface
var _ portssvc.AuthSvcFacade = (*authService)(nil)

// issueTokenPair generates and persists a fresh access/refresh token pair.
func (s *authService) issueTokenPair(ctx context.Context, user *domain.User) (*dto.TokenPairResponse, error) {
	accessToken, accessExpiry, err := s.tokenSvc.GenerateAccessToken(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, refreshExpiry, err := s.tokenSvc.GenerateRefreshToken(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	if err := s.userSvc.UpdateRefreshToken(ctx, user.UserID, utils.HashRefreshToken(refreshToken), refreshExpiry); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.TokenPairResponse{
		AccessToken:        accessToken,
		AccessTokenExpiry:  accessExpiry,
		RefreshToken:       refreshToken,
		RefreshTokenExpiry: refreshExpiry,
		User:               dto.ToUserResponse(user),
	}, nil
}

// Register creates a new user together with their bank account and issues tokens.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenPairResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userSvc.CreateUser(ctx, req)
	if err != nil {
		return nil, err
	}

	if _, err := s.accountSvc.ProvisionAccount(ctx, user.UserID); err != nil {
		// The user row exists but has no account; surface the failure rather
		// than leaving them in a half-registered state silently.
		logger.Error("Failed to provision account during registration", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	return s.issueTokenPair(ctx, user)
}

// Login authenticates a user by username and password and issues tokens.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenPairResponse, error) {
	user, err := s.userSvc.AuthenticateUser(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issueTokenPair(ctx, user)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *authService) Refresh(ctx context.Context, req dto.RefreshTokenRequest) (*dto.TokenPairResponse, error) {
	userID, _, found := strings.Cut(req.RefreshToken, ".")
	if !found || userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	user, err := s.tokenSvc.ValidateAndParseRefreshToken(ctx, userID, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	return s.issueTokenPair(ctx, user)
}

// LoginWithGoogle signs a user in via a Google OAuth authorization code,
// creating the user and their account on first sign-in.
func (s *authService) LoginWithGoogle(ctx context.Context, code string) (*dto.TokenPairResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	token, err := s.googleSvc.ExchangeCodeForToken(ctx, code)
	if err != nil {
		logger.Warn("Google code exchange failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: invalid authorization code", apperrors.ErrUnauthorized)
	}

	info, err := s.googleSvc.GetUserInfo(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch google user info: %w", err)
	}
	if !info.VerifiedEmail {
		return nil, fmt.Errorf("%w: google account email not verified", apperrors.ErrUnauthorized)
	}

	user, err := s.findOrCreateGoogleUser(ctx, info)
	if err != nil {
		return nil, err
	}
	return s.issueTokenPair(ctx, user)
}

// findOrCreateGoogleUser resolves the Google identity to a local user. An
// existing user with the same email gets the Google ID linked; otherwise a
// new user and account are provisioned.
func (s *authService) findOrCreateGoogleUser(ctx context.Context, info *domain.GoogleUserInfo) (*domain.User, error) {
	user, err := s.userSvc.GetUserByGoogleID(ctx, info.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up google user: %w", err)
	}

	user, err = s.userSvc.GetUserByEmail(ctx, info.Email)
	if err == nil {
		if linkErr := s.userSvc.LinkGoogleAccount(ctx, user.UserID, info.ID); linkErr != nil {
			return nil, fmt.Errorf("failed to link google account: %w", linkErr)
		}
		user.GoogleID = info.ID
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	user, err = s.userSvc.CreateUserFromGoogle(ctx, info)
	if err != nil {
		return nil, err
	}
	if _, err := s.accountSvc.ProvisionAccount(ctx, user.UserID); err != nil {
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}
	return user, nil
}

// Logout invalidates the user's refresh token.
func (s *authService) Logout(ctx context.Context, userID string) error {
	return s.userSvc.ClearRefreshToken(ctx, userID)
}
