package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/mini_tweeter_server/config"
	"github.com/qs3c/mini_tweeter_server/internal/model/dto"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/jwt"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/oauth"
	"github.com/qs3c/mini_tweeter_server/internal/repository"
	"github.com/qs3c/mini_tweeter_server/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:        "test-secret-key-for-testing",
			Issuer:        "mini-tweeter",
			ExpireMinutes: 60,
		},
		Quota: config.QuotaConfig{
			DailyTweetLimit: 3,
			RetentionDays:   30,
		},
		Payment: config.PaymentConfig{
			PendingTTLHours: 24,
			DefaultCurrency: "USD",
			WebhookSecret:   testutil.TestWebhookSecret,
		},
	}
}

type fakeGoogle struct {
	user *oauth.GoogleUser
	err  error

	lastIDToken string
	lastCode    string
}

func (f *fakeGoogle) VerifyIDToken(_ context.Context, raw string) (*oauth.GoogleUser, error) {
	f.lastIDToken = raw
	return f.user, f.err
}

func (f *fakeGoogle) ExchangeCode(_ context.Context, code, _ string) (*oauth.GoogleUser, error) {
	f.lastCode = code
	return f.user, f.err
}

func setupAuthService(t *testing.T) (*AuthService, *fakeGoogle, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	google := &fakeGoogle{}
	service := NewAuthService(repository.NewUserRepository(db), google, testConfig())

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return service, google, cleanup
}

func registerRequest(username, email string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Username:  username,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "password123",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	service, _, cleanup := setupAuthService(t)
	defer cleanup()

	user, err := service.Register(context.Background(), registerRequest("newuser", "  NewUser@Example.com "))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "newuser", user.Username)
	assert.Equal(t, "newuser@example.com", user.Email)
	assert.NotEmpty(t, user.CreatedAt)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	service, _, cleanup := setupAuthService(t)
	defer cleanup()

	_, err := service.Register(context.Background(), registerRequest("user1", "duplicate@example.com"))
	require.NoError(t, err)

	_, err = service.Register(context.Background(), registerRequest("user2", "DUPLICATE@example.com"))
	assert.Equal(t, ErrEmailExists, err)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	service, _, cleanup := setupAuthService(t)
	defer cleanup()

	_, err := service.Register(context.Background(), registerRequest("sameusername", "user1@example.com"))
	require.NoError(t, err)

	_, err = service.Register(context.Background(), registerRequest("sameusername", "user2@example.com"))
	assert.Equal(t, ErrUsernameExists, err)
}

func TestAuthService_Register_InvalidInput(t *testing.T) {
	service, _, cleanup := setupAuthService(t)
	defer cleanup()

	tests := []struct {
		name    string
		mutate  func(*dto.RegisterRequest)
		wantErr error
	}{
		{"short password", func(r *dto.RegisterRequest) { r.Password = "12345" }, ErrPasswordTooShort},
		{"password with space", func(r *dto.RegisterRequest) { r.Password = "pass word" }, ErrPasswordHasSpace},
		{"short username", func(r *dto.RegisterRequest) { r.Username = "ab" }, ErrInvalidUsername},
		{"username with space", func(r *dto.RegisterRequest) { r.Username = "a b c" }, ErrInvalidUsername},
		{"missing last name", func(r *dto.RegisterRequest) { r.LastName = " " }, ErrInvalidName},
		{"bad email", func(r *dto.RegisterRequest) { r.Email = "not-an-email" }, ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := registerRequest("validname", "valid@example.com")
			tt.mutate(req)

			_, err := service.Register(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	service, _, cleanup := setupAuthService(t)
	defer cleanup()

	registered, err := service.Register(context.Background(), registerRequest("loginuser", "login@example.com"))
	require.NoError(t, err)

	t.Run("by email", func(t *testing.T) {
		resp, err := service.Login(context.Background(), &dto.LoginRequest{
			EmailOrUsername: "Login@Example.com",
			Password:        "password123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Access)
		assert.Equal(t, registered.ID, resp.User.ID)

		claims, err := jwt.ParseToken(resp.Access, JWTOptions(testConfig().JWT))
		require.NoError(t, err)
		assert.Equal(t, registered.ID, claims.UserID)
		assert.Equal(t, "loginuser", claims.Username)
	})

	t.Run("by username", func(t *testing.T) {
		resp, err := service.Login(context.Background(), &dto.LoginRequest{
			EmailOrUsername: "LOGINUSER",
			Password:        "password123",
		})
		require.NoError(t, err)
		assert.Equal(t, registered.ID, resp.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(context.Background(), &dto.LoginRequest{
			EmailOrUsername: "loginuser",
			Password:        "wrongpassword",
		})
		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := service.Login(context.Background(), &dto.LoginRequest{
			EmailOrUsername: "nobody",
			Password:        "password123",
		})
		assert.Equal(t, ErrInvalidCredentials, err)
	})
}

func TestAuthService_GoogleAuth_CreatesUser(t *testing.T) {
	service, google, cleanup := setupAuthService(t)
	defer cleanup()

	google.user = &oauth.GoogleUser{
		Subject:       "sub-1",
		Email:         "Jane.Doe@gmail.com",
		EmailVerified: true,
		GivenName:     "Jane",
		FamilyName:    "Doe",
	}

	resp, err := service.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{IDToken: "raw-token"})
	require.NoError(t, err)
	assert.Equal(t, "raw-token", google.lastIDToken)
	assert.NotEmpty(t, resp.Access)
	assert.Equal(t, "jane.doe", resp.User.Username)
	assert.Equal(t, "jane.doe@gmail.com", resp.User.Email)
	assert.Equal(t, "Jane", resp.User.FirstName)
	assert.Equal(t, "Doe", resp.User.LastName)

	// 第二次登录复用同一账号
	again, err := service.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{IDToken: "raw-token"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, again.User.ID)
}

func TestAuthService_GoogleAuth_UsernameCollision(t *testing.T) {
	service, google, cleanup := setupAuthService(t)
	defer cleanup()

	_, err := service.Register(context.Background(), registerRequest("jane", "jane@example.com"))
	require.NoError(t, err)

	google.user = &oauth.GoogleUser{Email: "jane@gmail.com", EmailVerified: true}

	resp, err := service.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{Code: "auth-code"})
	require.NoError(t, err)
	assert.Equal(t, "auth-code", google.lastCode)
	assert.Equal(t, "jane1", resp.User.Username)
	assert.Equal(t, "Google", resp.User.FirstName)
	assert.Equal(t, "User", resp.User.LastName)
}

func TestAuthService_GoogleAuth_ExistingEmailLogsIn(t *testing.T) {
	service, google, cleanup := setupAuthService(t)
	defer cleanup()

	registered, err := service.Register(context.Background(), registerRequest("existing", "existing@example.com"))
	require.NoError(t, err)

	google.user = &oauth.GoogleUser{Email: "Existing@Example.com", EmailVerified: true}

	resp, err := service.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{IDToken: "t"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, resp.User.ID)
}

func TestAuthService_GoogleAuth_Errors(t *testing.T) {
	service, google, cleanup := setupAuthService(t)
	defer cleanup()

	t.Run("unverified email", func(t *testing.T) {
		google.user = &oauth.GoogleUser{Email: "x@gmail.com", EmailVerified: false}
		google.err = nil

		_, err := service.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{IDToken: "t"})
		assert.Equal(t, ErrGoogleEmailNotVerified, err)
	})

	t.Run("verification failure", func(t *testing.T) {
		google.user = nil
		google.err = errors.New("bad signature")

		_, err := service.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{IDToken: "t"})
		assert.ErrorIs(t, err, ErrGoogleAuthFailed)
	})

	t.Run("not configured", func(t *testing.T) {
		google.err = oauth.ErrNotConfigured

		_, err := service.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{IDToken: "t"})
		assert.Equal(t, ErrGoogleNotConfigured, err)
	})

	t.Run("missing token and code", func(t *testing.T) {
		_, err := service.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestAuthService_UniqueUsername_Fallbacks(t *testing.T) {
	service, _, cleanup := setupAuthService(t)
	defer cleanup()

	name, err := service.uniqueUsername(context.Background(), "@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user", name)

	name, err = service.uniqueUsername(context.Background(), "ab@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ab0", name)

	long := strings.Repeat("x", 150) + "@example.com"
	name, err = service.uniqueUsername(context.Background(), long)
	require.NoError(t, err)
	assert.Len(t, name, maxNameLength)
}
