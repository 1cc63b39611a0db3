// Package gmail provides the Gmail API client and the unread-message
// poll loop.
//
// The Client wraps the Gmail Users service for the three operations the
// poller needs: listing message ids by query, fetching full messages and
// removing the UNREAD label. The Poller runs one pass per call: it builds
// the search query from the configured filters, fetches every matching
// unread message, extracts its plain-text body, marks it read and logs a
// structured summary, then sleeps for the configured interval.
//
// Gmail's own unread filter is the only dedup mechanism: once a message
// is marked read it no longer matches the query, so no message is
// processed twice across passes.
package gmail
