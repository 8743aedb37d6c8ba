package middlewares

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/slot"
)

// jwtClaimsKey is the context key for the parsed claims.
type jwtClaimsKey struct{}

// JWTConfig configures the JWT middleware.
type JWTConfig struct {
	Extractor    internal.Extractor
	Issuer       string
	Audience     string
	Leeway       time.Duration
	extractorSet bool
}

// JWTOption configures JWTConfig.
type JWTOption func(*JWTConfig)

// WithJWTExtractor sets a custom token extractor chain.
func WithJWTExtractor(ext internal.Extractor) JWTOption {
	return func(cfg *JWTConfig) {
		cfg.Extractor = ext
		cfg.extractorSet = true
	}
}

// WithJWTIssuer requires the iss claim to match.
func WithJWTIssuer(iss string) JWTOption {
	return func(cfg *JWTConfig) {
		cfg.Issuer = iss
	}
}

// WithJWTAudience requires the aud claim to contain aud.
func WithJWTAudience(aud string) JWTOption {
	return func(cfg *JWTConfig) {
		cfg.Audience = aud
	}
}

// WithJWTLeeway allows for clock skew when checking exp, nbf and iat.
func WithJWTLeeway(d time.Duration) JWTOption {
	return func(cfg *JWTConfig) {
		cfg.Leeway = d
	}
}

// JWT returns a slot that extracts a token from the request, verifies its
// HS256 signature with secret and stores the parsed claims in the context.
// C is the claims type, e.g. jwt.RegisteredClaims or a struct embedding it.
// Requests without a valid token fail with 401.
//
// Example:
//
//	type Claims struct {
//	    jwt.RegisteredClaims
//	    Role string `json:"role"`
//	}
//
//	router.New(router.WithSlots(middlewares.JWT[Claims](secret)))
func JWT[C any, PC interface {
	*C
	jwt.Claims
}](secret []byte, opts ...JWTOption) *slot.Slot {
	if len(secret) == 0 {
		panic(ErrEmptySecret)
	}

	cfg := &JWTConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Default extractor: Bearer token from Authorization header
	if !cfg.extractorSet {
		cfg.Extractor = internal.NewExtractor(internal.FromBearerToken())
	}

	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Leeway > 0 {
		parserOpts = append(parserOpts, jwt.WithLeeway(cfg.Leeway))
	}
	parser := jwt.NewParser(parserOpts...)
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return internal.Web(func(c internal.Context, next internal.Next) (any, error) {
		token, ok := cfg.Extractor.Extract(c)
		if !ok || token == "" {
			return nil, internal.ErrUnauthorized("missing authentication token")
		}

		claims := PC(new(C))
		if _, err := parser.ParseWithClaims(token, claims, keyFunc); err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return nil, internal.ErrUnauthorized("token expired", internal.WithError(err))
			}
			return nil, internal.ErrUnauthorized("invalid token", internal.WithError(err))
		}

		c.Set(jwtClaimsKey{}, (*C)(claims))
		return next()
	})
}

// GetJWTClaims extracts parsed JWT claims from the context.
// Returns nil if the JWT middleware is not applied or the type doesn't match.
func GetJWTClaims[C any](c internal.Context) *C {
	v, ok := c.Get(jwtClaimsKey{}).(*C)
	if !ok {
		return nil
	}
	return v
}

// SignJWT issues an HS256 token for claims, the counterpart of JWT.
func SignJWT(secret []byte, claims jwt.Claims) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
