package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// initiateAuthTarget is the direct-API operation header for the password
// grant.
const initiateAuthTarget = "AWSCognitoIdentityProviderService.InitiateAuth"

// ErrNotAuthorized is the provider's "wrong username or password" answer.
// Kept distinct from other failures so callers can return the generic
// invalid-credentials message without leaking which field was wrong.
var ErrNotAuthorized = errors.New("idp: not authorized")

// ErrAuthFailed wraps every other password-grant failure.
var ErrAuthFailed = errors.New("idp: password auth failed")

type initiateAuthRequest struct {
	AuthFlow       string            `json:"AuthFlow"`
	ClientID       string            `json:"ClientId"`
	AuthParameters map[string]string `json:"AuthParameters"`
}

type initiateAuthResponse struct {
	AuthenticationResult struct {
		AccessToken  string `json:"AccessToken"`
		IDToken      string `json:"IdToken"`
		RefreshToken string `json:"RefreshToken"`
		ExpiresIn    int    `json:"ExpiresIn"`
		TokenType    string `json:"TokenType"`
	} `json:"AuthenticationResult"`
}

type apiErrorResponse struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

// PasswordAuth runs the resource-owner-password grant against the direct
// API. Confidential clients send the secret hash alongside the credentials.
func (p *Provider) PasswordAuth(ctx context.Context, username, password string) (*Tokens, error) {
	params := map[string]string{
		"USERNAME": username,
		"PASSWORD": password,
	}
	if h := p.SecretHash(username); h != "" {
		params["SECRET_HASH"] = h
	}

	body, err := json.Marshal(initiateAuthRequest{
		AuthFlow:       "USER_PASSWORD_AUTH",
		ClientID:       p.cfg.ClientID,
		AuthParameters: params,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiEndpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-amz-json-1.1")
	req.Header.Set("X-Amz-Target", initiateAuthTarget)

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	if resp.StatusCode/100 != 2 {
		var apiErr apiErrorResponse
		_ = json.Unmarshal(raw, &apiErr)
		if isNotAuthorized(apiErr.Type) {
			return nil, ErrNotAuthorized
		}
		return nil, fmt.Errorf("%w: http %d: %s", ErrAuthFailed, resp.StatusCode, apiErr.Type)
	}

	var out initiateAuthResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	res := out.AuthenticationResult
	if res.IDToken == "" {
		return nil, fmt.Errorf("%w: response has no id token", ErrAuthFailed)
	}

	expiresIn := time.Duration(res.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = time.Hour
	}

	return &Tokens{
		AccessToken:  res.AccessToken,
		IDToken:      res.IDToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// isNotAuthorized matches the provider error types that mean "bad
// credentials" rather than an operational failure.
func isNotAuthorized(errType string) bool {
	t := errType
	if i := strings.IndexByte(t, '#'); i >= 0 {
		t = t[i+1:]
	}
	switch t {
	case "NotAuthorizedException", "UserNotFoundException", "PasswordResetRequiredException":
		return true
	}
	return false
}
