package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOpts = Options{
	Secret:        "test-secret-key-for-testing",
	Issuer:        "mini-tweeter",
	Audience:      "mini-tweeter-client",
	ExpireMinutes: 60,
}

func TestGenerateToken(t *testing.T) {
	t.Run("generate valid token", func(t *testing.T) {
		token, err := GenerateToken(Subject{UserID: 123, Username: "alice", Email: "alice@example.com"}, testOpts)

		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := ParseToken(token, testOpts)
		require.NoError(t, err)
		assert.Equal(t, int64(123), claims.UserID)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.Equal(t, "123", claims.Subject)
		assert.Equal(t, "mini-tweeter", claims.Issuer)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("every token has a unique id", func(t *testing.T) {
		token1, err := GenerateToken(Subject{UserID: 1}, testOpts)
		require.NoError(t, err)
		token2, err := GenerateToken(Subject{UserID: 1}, testOpts)
		require.NoError(t, err)

		assert.NotEqual(t, token1, token2)
	})

	t.Run("default expiry when not configured", func(t *testing.T) {
		opts := testOpts
		opts.ExpireMinutes = 0

		token, err := GenerateToken(Subject{UserID: 1}, opts)
		require.NoError(t, err)

		claims, err := ParseToken(token, opts)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(120*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
	})

	t.Run("empty secret is rejected", func(t *testing.T) {
		opts := testOpts
		opts.Secret = ""

		token, err := GenerateToken(Subject{UserID: 123}, opts)

		assert.ErrorIs(t, err, ErrEmptySecret)
		assert.Empty(t, token)
	})
}

func TestParseToken(t *testing.T) {
	t.Run("parse token with wrong secret", func(t *testing.T) {
		token, _ := GenerateToken(Subject{UserID: 123}, testOpts)

		opts := testOpts
		opts.Secret = "wrong-secret"
		claims, err := ParseToken(token, opts)

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("parse token with wrong issuer", func(t *testing.T) {
		token, _ := GenerateToken(Subject{UserID: 123}, testOpts)

		opts := testOpts
		opts.Issuer = "someone-else"
		claims, err := ParseToken(token, opts)

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("parse token with wrong audience", func(t *testing.T) {
		token, _ := GenerateToken(Subject{UserID: 123}, testOpts)

		opts := testOpts
		opts.Audience = "other-client"
		claims, err := ParseToken(token, opts)

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("parse invalid token string", func(t *testing.T) {
		claims, err := ParseToken("invalid.token.string", testOpts)

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("parse empty token", func(t *testing.T) {
		claims, err := ParseToken("", testOpts)

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("parse expired token", func(t *testing.T) {
		claims := Claims{
			UserID: 123,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    testOpts.Issuer,
				Audience:  jwt.ClaimStrings{testOpts.Audience},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
				NotBefore: jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			},
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenString, _ := token.SignedString([]byte(testOpts.Secret))

		result, err := ParseToken(tokenString, testOpts)

		assert.ErrorIs(t, err, ErrExpiredToken)
		assert.Nil(t, result)
	})

	t.Run("parse token without expiry", func(t *testing.T) {
		claims := Claims{
			UserID: 123,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:   testOpts.Issuer,
				Audience: jwt.ClaimStrings{testOpts.Audience},
			},
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenString, _ := token.SignedString([]byte(testOpts.Secret))

		result, err := ParseToken(tokenString, testOpts)

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, result)
	})

	t.Run("parse token with none signing method", func(t *testing.T) {
		claims := Claims{
			UserID: 123,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
		tokenString, _ := token.SignedString(jwt.UnsafeAllowNoneSignatureType)

		result, err := ParseToken(tokenString, testOpts)

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, result)
	})
}

func TestErrors(t *testing.T) {
	assert.Equal(t, "invalid token", ErrInvalidToken.Error())
	assert.Equal(t, "token has expired", ErrExpiredToken.Error())
}
