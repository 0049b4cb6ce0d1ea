// fingerprint.go generates stable hashes for grouping similar captures.

package logwatch

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Regex patterns for variable message data
var (
	// Match UUIDs like "3f2b8c1e-..."
	uuidPattern = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

	// Match memory addresses like "0x1234abcd"
	memAddrPattern = regexp.MustCompile(`0x[0-9a-fA-F]+`)

	// Match numbers like "42" or "3.14"
	numberPattern = regexp.MustCompile(`\d+(\.\d+)?`)

	// Match quoted strings
	quotedPattern = regexp.MustCompile(`"[^"]*"|'[^']*'`)
)

// Fingerprint generates a hash for grouping similar captures.
// The fingerprint is based on the level and the message with variable data
// (numbers, ids, addresses, quoted values) removed. Extra data is ignored.
func Fingerprint(record CaptureRecord) string {
	return hashParts(string(record.Level), normalizeMessage(record.Message))
}

// ExceptionFingerprint generates a grouping hash for a captured error,
// based on its concrete type and normalized message.
func ExceptionFingerprint(err error) string {
	if err == nil {
		return hashParts("exception")
	}
	return hashParts("exception", ErrorType(err), normalizeMessage(err.Error()))
}

func hashParts(parts ...string) string {
	input := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(input))

	// Return hex-encoded first 16 bytes (32 hex chars)
	return hex.EncodeToString(hash[:16])
}

// normalizeMessage strips variable data from a message.
func normalizeMessage(msg string) string {
	msg = quotedPattern.ReplaceAllString(msg, "?")
	msg = uuidPattern.ReplaceAllString(msg, "?")
	msg = memAddrPattern.ReplaceAllString(msg, "?")
	msg = numberPattern.ReplaceAllString(msg, "?")
	return strings.Join(strings.Fields(msg), " ")
}
