// Package cmd implements the gmailpoll command line interface.
//
// Commands:
//   - poll: run a poll pass (default when no subcommand is given);
//     --watch repeats passes until interrupted
//   - auth: force the interactive OAuth flow and persist a fresh token
//   - version: display version information
package cmd
