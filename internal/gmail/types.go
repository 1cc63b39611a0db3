package gmail

// Fallback values used when a message lacks the corresponding header.
const (
	NoSubject     = "No Subject"
	UnknownSender = "Unknown"
	UnknownDate   = "Unknown"
)

// Message is a fetched mail message, read-only once built. The provider
// keeps the only durable state (the UNREAD flag); nothing is persisted
// locally.
type Message struct {
	// ID is the opaque provider-assigned message id.
	ID string

	// Subject, From and Date come from the message headers, with the
	// fallback constants substituted when a header is absent.
	Subject string
	From    string
	Date    string

	// Body is the extracted plain-text body, possibly empty.
	Body string

	// Snippet is the provider-supplied preview.
	Snippet string
}
