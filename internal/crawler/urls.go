package crawler

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// NormalizeURL returns the canonical form of an absolute http(s) URL: scheme
// and host lower-cased, default port and fragment removed, and an empty path
// replaced by "/".
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parsing url %q: %w", raw, err)
	}
	return normalize(u)
}

func normalize(u *url.URL) (string, error) {
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("unsupported scheme in %q", u.String())
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", u.String())
	}
	out := *u
	out.Scheme = scheme
	out.Host = canonicalHost(scheme, u.Host)
	out.Fragment = ""
	out.RawFragment = ""
	out.User = nil
	if out.Path == "" {
		out.Path = "/"
		out.RawPath = ""
	}
	return out.String(), nil
}

func canonicalHost(scheme, hostport string) string {
	host := strings.ToLower(hostport)
	h, port, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		if strings.Contains(h, ":") {
			return "[" + h + "]"
		}
		return h
	}
	return host
}

// URLPolicy decides which normalised URLs belong to the crawled site.
type URLPolicy struct {
	prefix string
}

// NewURLPolicy returns a policy that accepts URLs starting with prefix. An
// empty prefix means "same scheme and host as seed".
func NewURLPolicy(prefix, seed string) (URLPolicy, error) {
	if prefix == "" {
		u, err := url.Parse(seed)
		if err != nil {
			return URLPolicy{}, fmt.Errorf("parsing seed %q: %w", seed, err)
		}
		prefix = u.Scheme + "://" + u.Host + "/"
	}
	norm, err := NormalizeURL(prefix)
	if err != nil {
		return URLPolicy{}, fmt.Errorf("internal prefix: %w", err)
	}
	return URLPolicy{prefix: norm}, nil
}

// Prefix returns the normalised internal prefix.
func (p URLPolicy) Prefix() string {
	return p.prefix
}

// IsInternal reports whether the normalised URL u belongs to the site.
func (p URLPolicy) IsInternal(u string) bool {
	return strings.HasPrefix(u, p.prefix)
}
