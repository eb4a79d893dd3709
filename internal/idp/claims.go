package idp

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/lightfoot-dev/idbroker/internal/identity"
)

// Claims verifies the ID token from an exchanged token set and returns its
// claims. For the retail realm, access metadata lives on the access token
// rather than the ID token, so missing params are filled in from there.
func (c *Client) Claims(ctx context.Context, tok *oauth2.Token) (map[string]any, error) {
	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		return nil, errors.New("idp: token response has no id_token")
	}

	idTok, err := c.verifier.Verify(ctx, rawID)
	if err != nil {
		return nil, fmt.Errorf("idp: verify id_token: %w", err)
	}

	claims := map[string]any{}
	if err := idTok.Claims(&claims); err != nil {
		return nil, fmt.Errorf("idp: decode id_token claims: %w", err)
	}

	if c.provider == identity.ProviderKeycloakRetail {
		if _, ok := claims["params"]; !ok {
			if extra, err := accessTokenClaims(tok.AccessToken); err == nil {
				if p, ok := extra["params"]; ok {
					claims["params"] = p
				}
			}
		}
	}

	if _, ok := claims["email"]; !ok {
		if info, err := c.userinfo.UserInfo(ctx, oauth2.StaticTokenSource(tok)); err == nil && info.Email != "" {
			claims["email"] = info.Email
		}
	}

	return claims, nil
}

// accessTokenClaims decodes the payload of the upstream access token without
// verifying it. The token was just received over the code exchange, so its
// origin is already trusted; local verification keys are not available for it.
func accessTokenClaims(raw string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("idp: decode access token: %w", err)
	}
	return claims, nil
}
