// Package identity turns free-text contributor strings from proposal headers
// into a display name and an optional link.
package identity

// Scheme names the contributor-string format that produced an Identity.
type Scheme string

// Supported schemes, in resolution priority order.
const (
	SchemeEmail             Scheme = "email"
	SchemeWeb               Scheme = "web"
	SchemeGitHub            Scheme = "github"
	SchemeFediverse         Scheme = "fediverse"
	SchemeCredential        Scheme = "credential"
	SchemeCredentialDisplay Scheme = "credential-display"
	SchemeRaw               Scheme = "raw"
)

// Identity is the parsed form of a contributor string.
type Identity struct {
	// DisplayName is the text a renderer shows.
	DisplayName string `json:"display_name"`

	// Link is the hyperlink target. Empty means the name renders as plain text.
	Link string `json:"link,omitempty"`

	// Scheme is the format that matched.
	Scheme Scheme `json:"scheme"`
}

// HasLink reports whether the identity renders as a hyperlink.
func (i Identity) HasLink() bool {
	return i.Link != ""
}
