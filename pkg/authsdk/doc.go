/*
Package authsdk is a client for the GoTrue-compatible identity API that fronts
the Atria hub.

# Overview

SDKClient talks to the identity endpoints under {base_url}/auth/v1. Every
request carries the project's anonymous API key in the apikey header. Calls
that act on behalf of a user additionally carry the user's access token.

	client := authsdk.NewSDKClient("https://hub.example.com/auth/v1", anonKey,
		authsdk.WithStorage(store),
	)

	// Exchange an email and password for a session
	session, err := client.SignInWithPassword(ctx, "alice@example.com", "secret")

	// Later, possibly in another process
	session, err = client.GetSession(ctx)

# Session persistence

The client owns the session. Successful sign-in, sign-up (when the provider
auto-confirms), MFA verification and refresh all write the serialized session
to the configured secretstore.Store under StorageKey. GetSession reads it back,
refreshes it when the access token is about to expire and returns nil when no
usable session exists. Callers should not keep their own copy: asking the
client every time keeps them consistent with sign-out in other processes.

A session is either complete (it has a user ID and an access token) or it does
not exist. Partial sessions read from storage are discarded.

# Multi-factor authentication

When a user has verified TOTP factors, a password sign-in yields an "aal1"
session. NeedsMFA reports this, and VerifyTOTP performs the challenge/verify
exchange that upgrades the session to "aal2". TOTPCode computes the current
code from a base32 secret for unattended logins.

# Errors

Non-success responses are returned as *AuthError carrying the HTTP status and
the provider's error code. ErrNoSession is returned by operations that require
a stored session when there is none.
*/
package authsdk
