package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/aussiebroadwan/atriahub/pkg/jwtx"
	"github.com/pquerna/otp/totp"
)

// NeedsMFA reports whether the session is at aal1 while the user has a
// verified TOTP factor, i.e. the provider expects a step-up. It returns that
// factor.
func NeedsMFA(session *Session) (Factor, bool) {
	if !session.Valid() {
		return Factor{}, false
	}

	claims, err := jwtx.ParseUnverified(session.AccessToken)
	if err != nil || claims.AAL == "aal2" {
		return Factor{}, false
	}

	for _, f := range session.User.Factors {
		if f.FactorType == FactorTypeTOTP && f.Status == FactorStatusVerified {
			return f, true
		}
	}
	return Factor{}, false
}

// Challenge opens an MFA challenge for factorID.
func (c *SDKClient) Challenge(ctx context.Context, session *Session, factorID string) (*Challenge, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/factors/"+url.PathEscape(factorID)+"/challenge",
		struct{}{}, session.AccessToken)
	if err != nil {
		return nil, err
	}

	var challenge Challenge
	if err := decodeJSON(resp, &challenge, http.StatusOK); err != nil {
		return nil, err
	}

	return &challenge, nil
}

// VerifyTOTP challenges factorID and verifies code, upgrading the session to
// aal2. The upgraded session replaces the stored one.
func (c *SDKClient) VerifyTOTP(ctx context.Context, session *Session, factorID, code string) (*Session, error) {
	challenge, err := c.Challenge(ctx, session, factorID)
	if err != nil {
		return nil, fmt.Errorf("mfa challenge: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/factors/"+url.PathEscape(factorID)+"/verify",
		verifyRequest{ChallengeID: challenge.ID, Code: code}, session.AccessToken)
	if err != nil {
		return nil, err
	}

	return c.acceptSession(ctx, resp)
}

// TOTPCode returns the current 6-digit code for a base32 TOTP secret.
func TOTPCode(secret string, at time.Time) (string, error) {
	code, err := totp.GenerateCode(secret, at)
	if err != nil {
		return "", fmt.Errorf("generate totp code: %w", err)
	}
	return code, nil
}
