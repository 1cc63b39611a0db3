package gmail

import (
	"encoding/base64"
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"
)

const (
	mimeTextPlain = "text/plain"
	mimeTextHTML  = "text/html"
)

// ExtractBody returns the best available plain-text body from a message
// payload tree. Children are scanned depth-first, left to right: a
// text/plain leaf carrying data wins immediately and stops the whole
// traversal; a text/html leaf is held as a fallback until a later plain
// sibling replaces it; a nested multipart child is recursed into and a
// non-empty result adopted. A leaf payload's own data is used when there
// are no children. The function is pure; undecodable data is treated as
// absent rather than aborting the message.
func ExtractBody(payload *gmailapi.MessagePart) string {
	body, _ := extractBody(payload)
	return body
}

// extractBody additionally reports how many parts failed to decode.
func extractBody(payload *gmailapi.MessagePart) (string, int) {
	if payload == nil {
		return "", 0
	}

	failures := 0

	if len(payload.Parts) > 0 {
		body := ""
		for _, part := range payload.Parts {
			switch {
			case part.MimeType == mimeTextPlain:
				if !hasData(part) {
					continue
				}
				text, err := decodeData(part.Body.Data)
				if err != nil {
					failures++
					continue
				}
				// Plain text is final; stop the entire traversal.
				return text, failures

			case part.MimeType == mimeTextHTML && body == "":
				if !hasData(part) {
					continue
				}
				text, err := decodeData(part.Body.Data)
				if err != nil {
					failures++
					continue
				}
				body = text

			case len(part.Parts) > 0:
				nested, n := extractBody(part)
				failures += n
				if nested != "" {
					return nested, failures
				}
			}
		}
		return body, failures
	}

	if hasData(payload) {
		text, err := decodeData(payload.Body.Data)
		if err != nil {
			return "", failures + 1
		}
		return text, failures
	}

	return "", failures
}

func hasData(part *gmailapi.MessagePart) bool {
	return part.Body != nil && part.Body.Data != ""
}

// decodeData decodes base64url payload data. Gmail emits unpadded
// base64url, but some payloads arrive padded or in the standard
// alphabet, so the other encodings are tried as fallbacks. Invalid UTF-8
// sequences are replaced rather than propagated.
func decodeData(data string) (string, error) {
	var firstErr error
	for _, enc := range []*base64.Encoding{
		base64.URLEncoding,
		base64.RawURLEncoding,
		base64.StdEncoding,
	} {
		decoded, err := enc.DecodeString(data)
		if err == nil {
			return strings.ToValidUTF8(string(decoded), "�"), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", firstErr
}
