package oauth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

var (
	ErrNotConfigured  = errors.New("google oauth is not configured")
	ErrMissingIDToken = errors.New("token response has no id_token")
)

type GoogleUser struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	GivenName     string
	FamilyName    string
	Picture       string
}

// GoogleVerifier 校验 Google 身份，服务层依赖此接口以便测试替换
type GoogleVerifier interface {
	VerifyIDToken(ctx context.Context, rawIDToken string) (*GoogleUser, error)
	ExchangeCode(ctx context.Context, code, redirectURI string) (*GoogleUser, error)
}

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

type GoogleOAuth struct {
	config   *oauth2.Config
	validate validateFunc
}

func NewGoogleOAuth(clientID, clientSecret, redirectURI string) *GoogleOAuth {
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		validate: idtoken.Validate,
	}
}

// VerifyIDToken 校验 ID token 的签名、过期时间和 audience（client id）
func (g *GoogleOAuth) VerifyIDToken(ctx context.Context, rawIDToken string) (*GoogleUser, error) {
	if g.config.ClientID == "" {
		return nil, ErrNotConfigured
	}

	payload, err := g.validate(ctx, rawIDToken, g.config.ClientID)
	if err != nil {
		return nil, fmt.Errorf("validate google id token: %w", err)
	}

	return userFromClaims(payload.Subject, payload.Claims), nil
}

// ExchangeCode 用授权码换取 token，并校验其中的 id_token
func (g *GoogleOAuth) ExchangeCode(ctx context.Context, code, redirectURI string) (*GoogleUser, error) {
	if g.config.ClientID == "" || g.config.ClientSecret == "" {
		return nil, ErrNotConfigured
	}

	cfg := *g.config
	if redirectURI != "" {
		cfg.RedirectURL = redirectURI
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange google auth code: %w", err)
	}

	rawIDToken, _ := token.Extra("id_token").(string)
	if rawIDToken == "" {
		return nil, ErrMissingIDToken
	}

	return g.VerifyIDToken(ctx, rawIDToken)
}

func userFromClaims(subject string, claims map[string]interface{}) *GoogleUser {
	str := func(key string) string {
		s, _ := claims[key].(string)
		return s
	}

	// email_verified 可能是布尔值或字符串
	verified := false
	switch v := claims["email_verified"].(type) {
	case bool:
		verified = v
	case string:
		verified, _ = strconv.ParseBool(v)
	}

	return &GoogleUser{
		Subject:       subject,
		Email:         str("email"),
		EmailVerified: verified,
		Name:          str("name"),
		GivenName:     str("given_name"),
		FamilyName:    str("family_name"),
		Picture:       str("picture"),
	}
}
