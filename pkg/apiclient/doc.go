/*
Package apiclient is the REST client for the Atria hub backend.

A Client is either anonymous or authenticated. Anonymous clients send only
the project API key (apiKey header) and are used for public endpoints such as
the health check. Authenticated clients additionally send a bearer token that
is fetched from an oauth2.TokenSource for every request, so the token always
reflects the identity provider's current session:

	anon := apiclient.NewClient(baseURL, anonKey)
	authed := apiclient.NewClient(baseURL, anonKey, apiclient.WithTokenSource(ts))

# Errors

Every call translates failures into *ResponseError. A non-success status
keeps the status code and response body. Transport and decoding failures are
reported with status 500 and the error text as content, and Transport set to
true, so callers only ever need to handle one error type:

	ds, err := authed.FindDataset(ctx, "alice", "ds1")
	if apiclient.IsNotFound(err) {
		// create it
	}
*/
package apiclient
