package domain

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// CachedPage is a previously fetched source page, keyed by canonical URL.
// A few extracted columns are denormalized at write time so listing
// collaborators can read them without re-parsing the body.
type CachedPage struct {
	URL             string
	Body            string
	Checksum        string
	VideoCodec      string
	VideoResolution string
	DiscFormat      DiscFormat
	RuntimeMinutes  int
	FetchedAt       time.Time
	LastAccessed    time.Time
}

// BodyChecksum returns the hex BLAKE2b-256 digest of a page body, used to
// detect source page changes between fetches.
func BodyChecksum(body []byte) string {
	sum := blake2b.Sum256(body)
	return hex.EncodeToString(sum[:])
}
