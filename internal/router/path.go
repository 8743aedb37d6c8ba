package router

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// defaultSegment matches a single path segment.
const defaultSegment = `[^/]+?`

// specialChars disable the literal fast path when present in a pattern.
const specialChars = `:()*?+\`

var multiSlash = regexp.MustCompile(`/{2,}`)

// normalizePath joins prefix and uri, collapses repeated slashes and strips
// the trailing slash of everything but the root.
func normalizePath(prefix, uri string) string {
	p := multiSlash.ReplaceAllString("/"+prefix+uri, "/")
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// pattern is one compiled URI of a route.
type pattern struct {
	re      *regexp.Regexp
	path    string
	literal string
	names   []string
	isLit   bool
}

// token is either a literal chunk or a parameter of a pattern.
type token struct {
	literal  string
	name     string
	expr     string
	prefix   string
	modifier byte
	param    bool
}

// compilePattern compiles a normalized path.
//
// Supported syntax:
//
//	/users/:id            named parameter, one segment
//	/users/:id(\d+)       named parameter with a custom expression
//	/files/:path*         zero or more segments
//	/files/:path+         one or more segments
//	/posts/:slug?         optional segment
//	/assets/*             unnamed wildcard, captured as "0", "1", ...
//	/(foo|bar)            unnamed group
//
// Matching is case-sensitive and tolerates one trailing slash.
func compilePattern(path string) (*pattern, error) {
	tokens, err := tokenize(path)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, path, err)
	}

	p := &pattern{path: path}
	if !strings.ContainsAny(path, specialChars) {
		p.literal = path
		p.isLit = true
	}

	var sb strings.Builder
	sb.WriteString("^")
	for _, t := range tokens {
		if !t.param {
			sb.WriteString(regexp.QuoteMeta(t.literal))
			continue
		}
		p.names = append(p.names, t.name)

		prefix := regexp.QuoteMeta(t.prefix)
		switch t.modifier {
		case '?':
			fmt.Fprintf(&sb, "(?:%s(%s))?", prefix, t.expr)
		case '+':
			fmt.Fprintf(&sb, "%s((?:%s)(?:%s(?:%s))*)", prefix, t.expr, prefix, t.expr)
		case '*':
			fmt.Fprintf(&sb, "(?:%s((?:%s)(?:%s(?:%s))*))?", prefix, t.expr, prefix, t.expr)
		default:
			fmt.Fprintf(&sb, "%s(%s)", prefix, t.expr)
		}
	}
	if !strings.HasSuffix(path, "/") {
		sb.WriteString("/?")
	}
	sb.WriteString("$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, path, err)
	}
	p.re = re
	return p, nil
}

// match returns the decoded parameters of path, or false.
func (p *pattern) match(path string) (map[string]string, bool) {
	if p.isLit && p.literal == path {
		return map[string]string{}, true
	}

	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	if len(m)-1 < len(p.names) {
		return map[string]string{}, true
	}

	params := make(map[string]string, len(p.names))
	for i, name := range p.names {
		v := m[i+1]
		if v == "" {
			continue
		}
		params[name] = decodeParam(v)
	}
	return params, true
}

// matchPath reports whether path matches without extracting parameters.
func (p *pattern) matchPath(path string) bool {
	if p.isLit && p.literal == path {
		return true
	}
	return p.re.MatchString(path)
}

// decodeParam percent-decodes v, returning it unchanged when it is malformed.
func decodeParam(v string) string {
	d, err := url.PathUnescape(v)
	if err != nil {
		return v
	}
	return d
}

func tokenize(path string) ([]token, error) {
	var (
		tokens  []token
		lit     strings.Builder
		unnamed int
	)

	emit := func(t token) {
		l := lit.String()
		if strings.HasSuffix(l, "/") {
			t.prefix = "/"
			l = l[:len(l)-1]
		}
		if l != "" {
			tokens = append(tokens, token{literal: l})
		}
		lit.Reset()
		t.param = true
		tokens = append(tokens, t)
	}

	for i := 0; i < len(path); {
		c := path[i]
		switch c {
		case '\\':
			if i+1 >= len(path) {
				return nil, fmt.Errorf("trailing escape at %d", i)
			}
			lit.WriteByte(path[i+1])
			i += 2

		case ':':
			j := i + 1
			for j < len(path) && isNameChar(path[j]) {
				j++
			}
			if j == i+1 {
				return nil, fmt.Errorf("missing parameter name at %d", i)
			}
			t := token{name: path[i+1 : j], expr: defaultSegment}
			i = j
			if i < len(path) && path[i] == '(' {
				expr, n, err := readGroup(path, i)
				if err != nil {
					return nil, err
				}
				t.expr = expr
				i = n
			}
			if i < len(path) && isModifier(path[i]) {
				t.modifier = path[i]
				i++
			}
			emit(t)

		case '(':
			expr, n, err := readGroup(path, i)
			if err != nil {
				return nil, err
			}
			t := token{name: strconv.Itoa(unnamed), expr: expr}
			unnamed++
			i = n
			if i < len(path) && isModifier(path[i]) {
				t.modifier = path[i]
				i++
			}
			emit(t)

		case '*':
			emit(token{name: strconv.Itoa(unnamed), expr: `.*`})
			unnamed++
			i++

		case '?', '+', ')':
			return nil, fmt.Errorf("unexpected %q at %d", c, i)

		default:
			lit.WriteByte(c)
			i++
		}
	}

	if lit.Len() > 0 {
		tokens = append(tokens, token{literal: lit.String()})
	}
	return tokens, nil
}

// readGroup reads a balanced "( ... )" group starting at path[start] and
// returns its content and the index right after the closing parenthesis.
func readGroup(path string, start int) (string, int, error) {
	depth := 0
	for i := start; i < len(path); i++ {
		switch path[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				expr := path[start+1 : i]
				if expr == "" {
					return "", 0, fmt.Errorf("empty group at %d", start)
				}
				re, err := regexp.Compile(expr)
				if err != nil {
					return "", 0, err
				}
				if re.NumSubexp() > 0 {
					return "", 0, fmt.Errorf("capturing group inside parameter at %d, use (?:...)", start)
				}
				return expr, i + 1, nil
			}
		}
	}
	return "", 0, fmt.Errorf("unbalanced group at %d", start)
}

func isNameChar(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isModifier(c byte) bool {
	return c == '?' || c == '*' || c == '+'
}
