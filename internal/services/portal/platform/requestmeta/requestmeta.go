// Package requestmeta provides normalized request metadata helpers.
package requestmeta

import (
	"net/http"
	"net/url"
	"strings"
)

// SchemePolicy controls how request metadata resolves the request scheme.
//
// TrustForwardedProto must be explicitly enabled before X-Forwarded-Proto is
// consulted; the header is client-controlled unless a proxy strips it.
type SchemePolicy struct {
	TrustForwardedProto bool
}

// IsHTTPS reports whether a request should be treated as HTTPS.
func IsHTTPS(r *http.Request) bool {
	return IsHTTPSWithPolicy(r, SchemePolicy{})
}

// IsHTTPSWithPolicy reports whether a request should be treated as HTTPS
// under the provided scheme policy.
func IsHTTPSWithPolicy(r *http.Request, policy SchemePolicy) bool {
	return requestScheme(r, policy) == "https"
}

// HasSameOriginProof reports whether Origin or Referer proves same-origin.
func HasSameOriginProof(r *http.Request) bool {
	return HasSameOriginProofWithPolicy(r, SchemePolicy{})
}

// HasSameOriginProofWithPolicy reports whether Origin or Referer proves
// same-origin under the provided scheme policy. Origin wins when both
// headers are present.
func HasSameOriginProofWithPolicy(r *http.Request, policy SchemePolicy) bool {
	if r == nil {
		return false
	}
	request := requestOrigin(r, policy)
	if request.host == "" {
		return false
	}
	proof := strings.TrimSpace(r.Header.Get("Origin"))
	if proof == "" {
		proof = strings.TrimSpace(r.Header.Get("Referer"))
	}
	if proof == "" {
		return false
	}
	return parseProofOrigin(proof).sameAs(request)
}

// originParts is a normalized scheme/host/port triple.
type originParts struct {
	scheme string
	host   string
	port   string
}

func (o originParts) complete() bool {
	return o.scheme != "" && o.host != "" && o.port != ""
}

func (o originParts) withDefaultPort() originParts {
	if o.port == "" {
		o.port = defaultPort(o.scheme)
	}
	return o
}

// sameAs requires both triples to be fully resolved. A proof whose port
// cannot be determined never matches.
func (o originParts) sameAs(other originParts) bool {
	if !o.complete() || !other.complete() {
		return false
	}
	return o.scheme == other.scheme && o.host == other.host && o.port == other.port
}

func parseProofOrigin(raw string) originParts {
	parsed, err := url.Parse(raw)
	if err != nil {
		return originParts{}
	}
	return originParts{
		scheme: strings.ToLower(strings.TrimSpace(parsed.Scheme)),
		host:   strings.ToLower(strings.TrimSpace(parsed.Hostname())),
		port:   strings.TrimSpace(parsed.Port()),
	}.withDefaultPort()
}

func requestOrigin(r *http.Request, policy SchemePolicy) originParts {
	o := originParts{scheme: requestScheme(r, policy)}
	o.host, o.port = splitHostPort(r.Host)
	if o.host == "" && r.URL != nil {
		o.host, o.port = splitHostPort(r.URL.Host)
	}
	return o.withDefaultPort()
}

func requestScheme(r *http.Request, policy SchemePolicy) string {
	if r == nil {
		return ""
	}
	candidates := make([]string, 0, 2)
	if policy.TrustForwardedProto {
		candidates = append(candidates, r.Header.Get("X-Forwarded-Proto"))
	}
	if r.URL != nil {
		candidates = append(candidates, r.URL.Scheme)
	}
	for _, candidate := range candidates {
		if scheme := strings.ToLower(strings.TrimSpace(candidate)); scheme == "http" || scheme == "https" {
			return scheme
		}
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func defaultPort(scheme string) string {
	switch scheme {
	case "https":
		return "443"
	case "http":
		return "80"
	}
	return ""
}

func splitHostPort(rawHost string) (string, string) {
	parsed, err := url.Parse("//" + strings.TrimSpace(rawHost))
	if err != nil {
		return "", ""
	}
	return strings.ToLower(parsed.Hostname()), parsed.Port()
}
