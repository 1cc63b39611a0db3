// Package google manages the OAuth credential lifecycle for the Gmail API.
//
// It covers three durable artifacts: the OAuth client-secret file (with a
// fallback discovery scan of the user's Downloads folder), the persisted
// token file, and the authenticated HTTP client built from them. A valid
// token is always persisted before a client handle is constructed from it,
// so a crash after handle construction never loses a freshly obtained token.
//
// The interactive consent step sits behind the Authorizer interface so
// tests can substitute a canned token for the browser round trip.
package google
