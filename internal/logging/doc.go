// Package logging provides the slog setup and shared log attribute helpers.
//
// The application logs to stderr and to an append-mode log file in the
// configured log directory, mirroring the dual console/file output the
// poller has always produced. Attribute helpers keep key names consistent
// across packages.
package logging
