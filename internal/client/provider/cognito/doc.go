// Package cognito implements provider.Client on top of an AWS Cognito user
// pool.
//
// Sign-in uses the USER_PASSWORD_AUTH flow of a public app client (an
// optional client secret is supported through SECRET_HASH). Tokens are kept in
// the client database's metadata table, so a session outlives the process.
// Expired access tokens are refreshed with REFRESH_TOKEN_AUTH, either lazily
// in CurrentAuthenticatedUser or ahead of time by StartRefresher.
//
// Lifecycle events are dispatched on provider.AuthChannel: signIn,
// signIn_failure, signUp, signOut, tokenRefresh and tokenRefresh_failure.
// Events are always dispatched after internal locks are released, so
// listeners may call back into the client.
package cognito
