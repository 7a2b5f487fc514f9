package atproto

import (
	"fmt"
	"regexp"

	"github.com/bluesky-social/indigo/atproto/syntax"
)

// NSID (Namespaced Identifier) constants for the brew log lexicon.
// The domain is reversed following ATProto conventions: arabica.social -> social.arabica
const (
	// NSIDBase is the base namespace for all lexicons we publish
	NSIDBase = "social.arabica.alpha"

	// NSIDBrewLog is the collection brew log entries export to
	NSIDBrewLog = NSIDBase + ".brewlog"

	// MaxRKeyLength is the maximum allowed length for a record key
	MaxRKeyLength = 512
)

// rkeyRegex validates AT Protocol record keys (rkeys).
// TIDs are the most common format: 13 lowercase base32 characters (e.g., "3kfk4slgu6s2h").
var rkeyRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._:-]{0,511}$`)

// ValidateRKey checks if an rkey is valid according to AT Protocol spec.
func ValidateRKey(rkey string) bool {
	if rkey == "" || len(rkey) > MaxRKeyLength {
		return false
	}
	if rkey == "." || rkey == ".." {
		return false
	}
	return rkeyRegex.MatchString(rkey)
}

// BuildATURI constructs an AT-URI from a DID, collection NSID, and record key
func BuildATURI(did, collection, rkey string) string {
	return fmt.Sprintf("at://%s/%s/%s", did, collection, rkey)
}

// ATURIComponents holds the parsed components of an AT-URI
type ATURIComponents struct {
	DID        string
	Collection string
	RKey       string
}

// ResolveATURI parses an AT-URI and returns its components
// AT-URI format: at://did:plc:abc123/social.arabica.alpha.brewlog/3jxyabc
func ResolveATURI(uri string) (*ATURIComponents, error) {
	atURI, err := syntax.ParseATURI(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid AT-URI: %w", err)
	}

	return &ATURIComponents{
		DID:        atURI.Authority().String(),
		Collection: atURI.Collection().String(),
		RKey:       atURI.RecordKey().String(),
	}, nil
}

// ParseDID validates a DID string
func ParseDID(didStr string) (syntax.DID, error) {
	return syntax.ParseDID(didStr)
}
