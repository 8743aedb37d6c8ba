package hostrouter

import (
	"net/http"
	"strings"
)

// GetDomain returns the request host without port, lowercased.
//
//	"example.com:8080" -> "example.com"
//	"[::1]:8080"       -> "[::1]"
func GetDomain(r *http.Request) string {
	return normalizeHost(r.Host)
}

// GetSubdomain returns the part of the request host in front of baseDomain,
// or "" when the host is baseDomain itself or lies outside it.
//
//	GetSubdomain(req, "example.com") // "bar.foo.example.com" -> "bar.foo"
func GetSubdomain(r *http.Request, baseDomain string) string {
	base := normalizeName(baseDomain)
	if base == "" {
		return ""
	}
	sub, ok := strings.CutSuffix(normalizeHost(r.Host), "."+base)
	if !ok {
		return ""
	}
	return sub
}
