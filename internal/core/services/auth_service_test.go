package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SimpleBankSys/sbs_backend/internal/apperrors"
	"github.com/SimpleBankSys/sbs_backend/internal/core/domain"
	portssvc "github.com/SimpleBankSys/sbs_backend/internal/core/ports/services"
	"github.com/SimpleBankSys/sbs_backend/internal/core/services"
	"github.com/SimpleBankSys/sbs_backend/internal/dto"
	"github.com/SimpleBankSys/sbs_backend/internal/utils"
	"github.com/SimpleBankSys/sbs_backend/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// MockUserSvc is a mock type for the UserSvcFacade interface
type MockUserSvc struct {
	mock.Mock
}

func (m *MockUserSvc) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserSvc) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserSvc) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserSvc) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserSvc) CreateUser(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserSvc) CreateUserFromGoogle(ctx context.Context, info *domain.GoogleUserInfo) (*domain.User, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserSvc) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserSvc) LinkGoogleAccount(ctx context.Context, userID string, googleID string) error {
	args := m.Called(ctx, userID, googleID)
	return args.Error(0)
}

func (m *MockUserSvc) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	args := m.Called(ctx, userID, refreshTokenHash, refreshTokenExpiryTime)
	return args.Error(0)
}

func (m *MockUserSvc) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserSvc) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockAccountSvc is a mock type for the AccountSvcFacade interface
type MockAccountSvc struct {
	mock.Mock
}

func (m *MockAccountSvc) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountSvc) GetAccountForUser(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountSvc) ProvisionAccount(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountSvc) DeactivateAccount(ctx context.Context, accountNumber string) error {
	args := m.Called(ctx, accountNumber)
	return args.Error(0)
}

// MockGoogleSvc is a mock type for the GoogleOAuthHandlerSvcFacade interface
type MockGoogleSvc struct {
	mock.Mock
}

func (m *MockGoogleSvc) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

func (m *MockGoogleSvc) GetUserInfo(ctx context.Context, token *oauth2.Token) (*domain.GoogleUserInfo, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GoogleUserInfo), args.Error(1)
}

func (m *MockGoogleSvc) ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error) {
	args := m.Called(ctx, idTokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*idtoken.Payload), args.Error(1)
}

// --- Test Suite Setup ---

type AuthServiceTestSuite struct {
	suite.Suite
	mockUserSvc    *MockUserSvc
	mockAccountSvc *MockAccountSvc
	mockGoogleSvc  *MockGoogleSvc
	tokenSvc       portssvc.TokenSvcFacade
	service        portssvc.AuthSvcFacade
	cfg            *config.Config
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.mockUserSvc = new(MockUserSvc)
	suite.mockAccountSvc = new(MockAccountSvc)
	suite.mockGoogleSvc = new(MockGoogleSvc)
	suite.cfg = &config.Config{
		JWTSecret:                  "test-secret",
		JWTExpiryDuration:          15 * time.Minute,
		JWTIssuer:                  "sbs-backend",
		RefreshTokenExpiryDuration: 24 * time.Hour,
	}
	suite.tokenSvc = services.NewTokenService(suite.cfg, suite.mockUserSvc)
	suite.service = services.NewAuthService(suite.mockUserSvc, suite.mockAccountSvc, suite.tokenSvc, suite.mockGoogleSvc)
}

// --- Test Cases ---

func (suite *AuthServiceTestSuite) TestRegister_Success() {
	ctx := context.Background()
	req := dto.RegisterRequest{
		Username: "newuser",
		Email:    "new@example.com",
		Password: "supersecret",
	}
	user := &domain.User{UserID: uuid.NewString(), Username: "newuser", Email: "new@example.com", IsActive: true}
	account := &domain.Account{AccountNumber: "100000000001", UserID: user.UserID, IsActive: true}

	suite.mockUserSvc.On("CreateUser", ctx, req).Return(user, nil).Once()
	suite.mockAccountSvc.On("ProvisionAccount", ctx, user.UserID).Return(account, nil).Once()
	suite.mockUserSvc.On("UpdateRefreshToken", ctx, user.UserID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	pair, err := suite.service.Register(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(pair)
	suite.NotEmpty(pair.AccessToken)
	suite.NotEmpty(pair.RefreshToken)
	suite.Equal(user.UserID, pair.User.UserID)

	// The access token must carry the user as subject.
	claims, err := utils.ParseAndValidateJWT(pair.AccessToken, suite.cfg.JWTSecret)
	suite.Require().NoError(err)
	suite.Equal(user.UserID, claims.Subject)
	suite.Equal(suite.cfg.JWTIssuer, claims.Issuer)

	// The refresh token is prefixed with the user ID.
	prefix, _, found := strings.Cut(pair.RefreshToken, ".")
	suite.True(found)
	suite.Equal(user.UserID, prefix)

	suite.mockUserSvc.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestRegister_ProvisioningFailure() {
	ctx := context.Background()
	req := dto.RegisterRequest{Username: "newuser", Email: "new@example.com", Password: "supersecret"}
	user := &domain.User{UserID: uuid.NewString(), Username: "newuser", IsActive: true}

	suite.mockUserSvc.On("CreateUser", ctx, req).Return(user, nil).Once()
	suite.mockAccountSvc.On("ProvisionAccount", ctx, user.UserID).Return(nil, apperrors.ErrInternal).Once()

	pair, err := suite.service.Register(ctx, req)

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrInternal)
	suite.mockUserSvc.AssertNotCalled(suite.T(), "UpdateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestLogin_Success() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString(), Username: "testuser", IsActive: true}

	suite.mockUserSvc.On("AuthenticateUser", ctx, "testuser", "supersecret").Return(user, nil).Once()
	suite.mockUserSvc.On("UpdateRefreshToken", ctx, user.UserID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	pair, err := suite.service.Login(ctx, dto.LoginRequest{Username: "testuser", Password: "supersecret"})

	suite.Require().NoError(err)
	suite.Require().NotNil(pair)
	suite.NotEmpty(pair.AccessToken)
	suite.mockUserSvc.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestLogin_BadCredentials() {
	ctx := context.Background()

	suite.mockUserSvc.On("AuthenticateUser", ctx, "testuser", "wrong").Return(nil, apperrors.ErrUnauthorized).Once()

	pair, err := suite.service.Login(ctx, dto.LoginRequest{Username: "testuser", Password: "wrong"})

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestRefresh_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	refreshToken := userID + ".abcdef0123456789"
	expiry := time.Now().Add(time.Hour)
	user := &domain.User{
		UserID:                 userID,
		Username:               "testuser",
		IsActive:               true,
		RefreshTokenHash:       utils.HashRefreshToken(refreshToken),
		RefreshTokenExpiryTime: &expiry,
	}

	suite.mockUserSvc.On("GetUserByID", ctx, userID).Return(user, nil).Once()
	suite.mockUserSvc.On("UpdateRefreshToken", ctx, userID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	pair, err := suite.service.Refresh(ctx, dto.RefreshTokenRequest{RefreshToken: refreshToken})

	suite.Require().NoError(err)
	suite.Require().NotNil(pair)
	suite.NotEqual(refreshToken, pair.RefreshToken)
	suite.mockUserSvc.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestRefresh_MalformedToken() {
	ctx := context.Background()

	pair, err := suite.service.Refresh(ctx, dto.RefreshTokenRequest{RefreshToken: "no-separator-here"})

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.mockUserSvc.AssertNotCalled(suite.T(), "GetUserByID", mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestRefresh_Expired() {
	ctx := context.Background()
	userID := uuid.NewString()
	refreshToken := userID + ".abcdef0123456789"
	expiry := time.Now().Add(-time.Minute)
	user := &domain.User{
		UserID:                 userID,
		IsActive:               true,
		RefreshTokenHash:       utils.HashRefreshToken(refreshToken),
		RefreshTokenExpiryTime: &expiry,
	}

	suite.mockUserSvc.On("GetUserByID", ctx, userID).Return(user, nil).Once()

	pair, err := suite.service.Refresh(ctx, dto.RefreshTokenRequest{RefreshToken: refreshToken})

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrRefreshTokenExpired)
}

func (suite *AuthServiceTestSuite) TestRefresh_HashMismatch() {
	ctx := context.Background()
	userID := uuid.NewString()
	expiry := time.Now().Add(time.Hour)
	user := &domain.User{
		UserID:                 userID,
		IsActive:               true,
		RefreshTokenHash:       utils.HashRefreshToken(userID + ".the-real-token"),
		RefreshTokenExpiryTime: &expiry,
	}

	suite.mockUserSvc.On("GetUserByID", ctx, userID).Return(user, nil).Once()

	pair, err := suite.service.Refresh(ctx, dto.RefreshTokenRequest{RefreshToken: userID + ".a-stolen-guess"})

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestLoginWithGoogle_ExistingGoogleUser() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString(), Username: "jane", GoogleID: "google-sub-123", IsActive: true}
	token := &oauth2.Token{AccessToken: "ya29.token"}
	info := &domain.GoogleUserInfo{ID: "google-sub-123", Email: "jane@example.com", VerifiedEmail: true}

	suite.mockGoogleSvc.On("ExchangeCodeForToken", ctx, "auth-code").Return(token, nil).Once()
	suite.mockGoogleSvc.On("GetUserInfo", ctx, token).Return(info, nil).Once()
	suite.mockUserSvc.On("GetUserByGoogleID", ctx, "google-sub-123").Return(user, nil).Once()
	suite.mockUserSvc.On("UpdateRefreshToken", ctx, user.UserID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	pair, err := suite.service.LoginWithGoogle(ctx, "auth-code")

	suite.Require().NoError(err)
	suite.Require().NotNil(pair)
	suite.mockUserSvc.AssertNotCalled(suite.T(), "CreateUserFromGoogle", mock.Anything, mock.Anything)
	suite.mockAccountSvc.AssertNotCalled(suite.T(), "ProvisionAccount", mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestLoginWithGoogle_LinksExistingEmailUser() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString(), Username: "jane", Email: "jane@example.com", IsActive: true}
	token := &oauth2.Token{AccessToken: "ya29.token"}
	info := &domain.GoogleUserInfo{ID: "google-sub-123", Email: "jane@example.com", VerifiedEmail: true}

	suite.mockGoogleSvc.On("ExchangeCodeForToken", ctx, "auth-code").Return(token, nil).Once()
	suite.mockGoogleSvc.On("GetUserInfo", ctx, token).Return(info, nil).Once()
	suite.mockUserSvc.On("GetUserByGoogleID", ctx, "google-sub-123").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserSvc.On("GetUserByEmail", ctx, "jane@example.com").Return(user, nil).Once()
	suite.mockUserSvc.On("LinkGoogleAccount", ctx, user.UserID, "google-sub-123").Return(nil).Once()
	suite.mockUserSvc.On("UpdateRefreshToken", ctx, user.UserID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	pair, err := suite.service.LoginWithGoogle(ctx, "auth-code")

	suite.Require().NoError(err)
	suite.Require().NotNil(pair)
	suite.mockUserSvc.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertNotCalled(suite.T(), "ProvisionAccount", mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestLoginWithGoogle_FirstSignInProvisionsAccount() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString(), Username: "jane", Email: "jane@example.com", GoogleID: "google-sub-123", IsActive: true}
	account := &domain.Account{AccountNumber: "100000000001", UserID: user.UserID, IsActive: true}
	token := &oauth2.Token{AccessToken: "ya29.token"}
	info := &domain.GoogleUserInfo{ID: "google-sub-123", Email: "jane@example.com", VerifiedEmail: true}

	suite.mockGoogleSvc.On("ExchangeCodeForToken", ctx, "auth-code").Return(token, nil).Once()
	suite.mockGoogleSvc.On("GetUserInfo", ctx, token).Return(info, nil).Once()
	suite.mockUserSvc.On("GetUserByGoogleID", ctx, "google-sub-123").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserSvc.On("GetUserByEmail", ctx, "jane@example.com").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserSvc.On("CreateUserFromGoogle", ctx, info).Return(user, nil).Once()
	suite.mockAccountSvc.On("ProvisionAccount", ctx, user.UserID).Return(account, nil).Once()
	suite.mockUserSvc.On("UpdateRefreshToken", ctx, user.UserID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	pair, err := suite.service.LoginWithGoogle(ctx, "auth-code")

	suite.Require().NoError(err)
	suite.Require().NotNil(pair)
	suite.mockUserSvc.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestLoginWithGoogle_UnverifiedEmail() {
	ctx := context.Background()
	token := &oauth2.Token{AccessToken: "ya29.token"}
	info := &domain.GoogleUserInfo{ID: "google-sub-123", Email: "jane@example.com", VerifiedEmail: false}

	suite.mockGoogleSvc.On("ExchangeCodeForToken", ctx, "auth-code").Return(token, nil).Once()
	suite.mockGoogleSvc.On("GetUserInfo", ctx, token).Return(info, nil).Once()

	pair, err := suite.service.LoginWithGoogle(ctx, "auth-code")

	suite.Require().Error(err)
	suite.Nil(pair)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.mockUserSvc.AssertNotCalled(suite.T(), "GetUserByGoogleID", mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestLogout() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockUserSvc.On("ClearRefreshToken", ctx, userID).Return(nil).Once()

	err := suite.service.Logout(ctx, userID)

	suite.Require().NoError(err)
	suite.mockUserSvc.AssertExpectations(suite.T())
}

// --- Run Test Suite ---

func TestAuthService(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
