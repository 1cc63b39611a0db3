// Package config loads the YAML configuration document for gmailpoll.
//
// The document has four sections: auth (OAuth file locations and scopes),
// gmail (lookback window and poll interval), processing (sender and subject
// filters) and the optional logging/observability sections. Settings are
// loaded once at startup and passed into each component explicitly; there
// is no package-level configuration state.
package config
