package identity

import (
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// CredentialScheme is the URI scheme of CorePass credential links.
const CredentialScheme = "corepass"

// credentialSuffix is appended to the truncated identifier in display form.
const credentialSuffix = "@" + CredentialScheme

var (
	emailPattern             = regexp.MustCompile(`<\s*([^\s<>@:/]+@[^\s<>@/]+\.[^\s<>@/]+)\s*>`)
	anglePattern             = regexp.MustCompile(`<\s*([^\s<>]+)\s*>`)
	githubPattern            = regexp.MustCompile(`\(\s*@([^\s@()]+)\s*\)`)
	fediversePattern         = regexp.MustCompile(`\(\s*@([^\s@()]+)@([^\s@()]+)\s*\)`)
	credentialPattern        = regexp.MustCompile(`\[\s*(?i:corepass):([A-Za-z]{2}[0-9A-Fa-f]{40})\s*\]`)
	credentialDisplayPattern = regexp.MustCompile(`\[\s*([A-Za-z]{2}[0-9A-Fa-f]{2}…[0-9A-Fa-f]{4}@(?i:corepass))\s*\]`)

	absoluteURLPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://[^\s/?#]+\S*$`)
	ensPattern         = regexp.MustCompile(`^(?i)[a-z0-9-]+(?:\.[a-z0-9-]+)*\.eth$`)
	tldPattern         = regexp.MustCompile(`^(?:[a-z]{2,63}|xn--[a-z0-9-]+)$`)
)

// Rule is one contributor-string format. Match reports false when the format
// does not apply so the next rule can try.
type Rule struct {
	Scheme Scheme
	Match  func(raw string) (Identity, bool)
}

// Resolver evaluates rules in order; the first match wins.
type Resolver struct {
	rules []Rule
}

// NewResolver creates a resolver over the given rules. With no rules it uses
// DefaultRules.
func NewResolver(rules ...Rule) *Resolver {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Resolver{rules: rules}
}

var defaultResolver = NewResolver()

// Resolve parses raw with the default rule set.
func Resolve(raw string) Identity {
	return defaultResolver.Resolve(raw)
}

// Resolve parses raw. It never fails: unmatched input is returned verbatim
// as a plain display name.
func (r *Resolver) Resolve(raw string) Identity {
	for _, rule := range r.rules {
		if id, ok := rule.Match(raw); ok {
			id.Scheme = rule.Scheme
			return id
		}
	}
	return Identity{DisplayName: raw, Scheme: SchemeRaw}
}

// DefaultRules returns the built-in formats, highest priority first.
func DefaultRules() []Rule {
	return []Rule{
		{Scheme: SchemeEmail, Match: matchEmail},
		{Scheme: SchemeWeb, Match: matchWeb},
		{Scheme: SchemeGitHub, Match: matchGitHub},
		{Scheme: SchemeFediverse, Match: matchFediverse},
		{Scheme: SchemeCredential, Match: matchCredential},
		{Scheme: SchemeCredentialDisplay, Match: matchCredentialDisplay},
	}
}

// matchEmail handles "Name <user@domain>".
func matchEmail(raw string) (Identity, bool) {
	loc := emailPattern.FindStringSubmatchIndex(raw)
	if loc == nil {
		return Identity{}, false
	}
	addr := raw[loc[2]:loc[3]]
	return Identity{
		DisplayName: displayName(raw, loc, "", addr),
		Link:        "mailto:" + addr,
	}, true
}

// matchWeb handles "Name <target>" where target is a URL, an ipfs:// URI,
// an ENS name or a bare domain.
func matchWeb(raw string) (Identity, bool) {
	for _, loc := range anglePattern.FindAllStringSubmatchIndex(raw, -1) {
		target := raw[loc[2]:loc[3]]
		link, ok := webLink(target)
		if !ok {
			continue
		}
		return Identity{
			DisplayName: displayName(raw, loc, "", target),
			Link:        link,
		}, true
	}
	return Identity{}, false
}

func webLink(target string) (string, bool) {
	lower := strings.ToLower(target)
	switch {
	case strings.HasPrefix(lower, "ipfs://"):
		return target, len(target) > len("ipfs://")
	case absoluteURLPattern.MatchString(target):
		return target, true
	case ensPattern.MatchString(target):
		return "https://" + lower + ".link", true
	}

	host, rest := target, ""
	if i := strings.Index(target, "/"); i >= 0 {
		host, rest = target[:i], target[i:]
	}
	ascii, ok := bareDomain(host)
	if !ok {
		return "", false
	}
	return "https://" + ascii + rest, true
}

// bareDomain validates a "word.tld" host and returns its ASCII form.
func bareDomain(host string) (string, bool) {
	if !strings.Contains(host, ".") || strings.ContainsAny(host, "@:") {
		return "", false
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", false
	}
	labels := strings.Split(ascii, ".")
	for _, label := range labels {
		if label == "" {
			return "", false
		}
	}
	if !tldPattern.MatchString(labels[len(labels)-1]) {
		return "", false
	}
	return ascii, true
}

// matchGitHub handles "Name (@handle)".
func matchGitHub(raw string) (Identity, bool) {
	loc := githubPattern.FindStringSubmatchIndex(raw)
	if loc == nil {
		return Identity{}, false
	}
	handle := raw[loc[2]:loc[3]]
	return Identity{
		DisplayName: displayName(raw, loc, "", "@"+handle),
		Link:        "https://github.com/" + handle,
	}, true
}

// matchFediverse handles "Name (@nick@host)".
func matchFediverse(raw string) (Identity, bool) {
	loc := fediversePattern.FindStringSubmatchIndex(raw)
	if loc == nil {
		return Identity{}, false
	}
	nick, host := raw[loc[2]:loc[3]], raw[loc[4]:loc[5]]
	return Identity{
		DisplayName: displayName(raw, loc, "", "@"+nick+"@"+host),
		Link:        "https://" + host + "/@" + nick,
	}, true
}

// matchCredential handles "Name [corepass:<id>]".
func matchCredential(raw string) (Identity, bool) {
	loc := credentialPattern.FindStringSubmatchIndex(raw)
	if loc == nil {
		return Identity{}, false
	}
	id := raw[loc[2]:loc[3]]
	token := "[" + TruncateCredential(id) + credentialSuffix + "]"
	return Identity{
		DisplayName: displayName(raw, loc, token, token),
		Link:        CredentialScheme + ":" + id,
	}, true
}

// matchCredentialDisplay handles an already truncated "[abcd…wxyz@corepass]"
// token. The display is the token alone; the full identifier is gone, so
// there is no link.
func matchCredentialDisplay(raw string) (Identity, bool) {
	loc := credentialDisplayPattern.FindStringSubmatchIndex(raw)
	if loc == nil {
		return Identity{}, false
	}
	return Identity{DisplayName: "[" + raw[loc[2]:loc[3]] + "]"}, true
}

// TruncateCredential shortens an identifier to its first and last four
// characters joined by an ellipsis.
func TruncateCredential(id string) string {
	r := []rune(id)
	if len(r) <= 8 {
		return id
	}
	return string(r[:4]) + "…" + string(r[len(r)-4:])
}

// displayName replaces the matched span of raw and normalizes whitespace.
// When nothing is left it falls back to fallback.
func displayName(raw string, loc []int, replacement, fallback string) string {
	name := strings.Join(strings.Fields(raw[:loc[0]]+" "+replacement+" "+raw[loc[1]:]), " ")
	if name == "" {
		return fallback
	}
	return name
}
