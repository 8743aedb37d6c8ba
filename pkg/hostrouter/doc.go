// Package hostrouter dispatches HTTP requests on their Host header.
//
// Patterns are exact ("api.example.com") or wildcards ("*.example.com",
// matching any depth of subdomain but not example.com itself). Exact patterns
// win, then the most specific wildcard. Matching ignores case, ports and a
// trailing dot; IPv6 literals such as "[::1]:8080" keep their brackets.
//
//	router := hostrouter.New(hostrouter.Routes{
//	    "api.example.com": api,
//	    "*.example.com":   tenants,
//	}, landing)
//
// husca.Run builds one of these from its Domain options.
package hostrouter
