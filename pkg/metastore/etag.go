package metastore

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// timestampLayout matches the wire format Timestamp properties carry:
// an ISO-8601 instant with 100ns-tick precision, the same shape Azure
// Table Storage uses.
const timestampLayout = "2006-01-02T15:04:05.0000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// newETag derives an opaque, monotonically informative ETag from the
// write timestamp plus a random suffix, in the weak-validator shape
// ("W/\"datetime'...'\"") real Table Storage clients send back as
// If-Match — which is exactly why its embedded colons exercise the
// urlencode-colons comparison quirk below.
func newETag(t time.Time) string {
	return `W/"datetime'` + formatTimestamp(t) + `'` + uuid.NewString()[:8] + `"`
}

// urlencodeLeadingColons replaces at most the first two ':' characters
// in s with "%3A". Preserved verbatim from the source behavior: some
// clients URL-encode the ETag's colons before sending it back as
// If-Match, and the store must recognize both forms as equal.
func urlencodeLeadingColons(s string) string {
	var b strings.Builder
	replaced := 0
	for _, r := range s {
		if r == ':' && replaced < 2 {
			b.WriteString("%3A")
			replaced++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// etagMatchesURLEncoded implements the update/merge precondition check:
// both sides are normalized by urlencodeLeadingColons before comparing.
// An absent or "*" ifMatch always matches.
func etagMatchesURLEncoded(stored, ifMatch string) bool {
	if ifMatch == "" || ifMatch == "*" {
		return true
	}
	return urlencodeLeadingColons(stored) == urlencodeLeadingColons(ifMatch)
}

// etagMatchesRaw implements deleteTableEntity's precondition check,
// which compares ETags raw rather than URL-encoding colons first. This
// asymmetry with etagMatchesURLEncoded is inherited, not a local bug:
// delete and update intentionally disagree on ETag normalization to
// stay wire-compatible with existing clients.
func etagMatchesRaw(stored, ifMatch string) bool {
	if ifMatch == "" || ifMatch == "*" {
		return true
	}
	return stored == ifMatch
}
