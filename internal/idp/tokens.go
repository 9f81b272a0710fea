package idp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// Tokens is the provider's response to a successful grant.
type Tokens struct {
	AccessToken  string
	IDToken      string
	RefreshToken string

	// ExpiresIn is the declared access/ID token lifetime.
	ExpiresIn time.Duration
}

// ErrExchangeFailed wraps any token-endpoint failure. The provider's raw
// error text stays server-side; callers map this to a generic client error.
var ErrExchangeFailed = errors.New("idp: code exchange failed")

// Exchange redeems an authorization code plus PKCE verifier at the token
// endpoint. The redirect URI must match the one used on the authorize leg.
func (p *Provider) Exchange(ctx context.Context, code, verifier, redirectURI string) (*Tokens, error) {
	conf := p.oauthConfig(redirectURI)

	// Route the exchange through our bounded client.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.http)

	tok, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return nil, fmt.Errorf("%w: response has no id_token", ErrExchangeFailed)
	}

	expiresIn := time.Until(tok.Expiry)
	if expiresIn <= 0 {
		expiresIn = time.Hour
	}

	return &Tokens{
		AccessToken:  tok.AccessToken,
		IDToken:      idToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}
