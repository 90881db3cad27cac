package jwtverifier

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	platformclock "github.com/campflow/camp-registration-api/internal/platform/clock"
	"github.com/campflow/camp-registration-api/internal/platform/config"
	clockport "github.com/campflow/camp-registration-api/internal/ports/out/clock"
)

// ErrUnauthorized is returned for every token that fails verification. The cause is not exposed.
var ErrUnauthorized = errors.New("unauthorized")

// Verifier validates RS256 bearer tokens against keys published at a JWKS endpoint and yields
// the subject that camp users are provisioned under. It is safe for concurrent use.
type Verifier struct {
	cfg    config.JWTConfig
	client *http.Client
	clock  clockport.Clock
	parser *jwt.Parser

	fetches singleflight.Group

	mu      sync.RWMutex
	keys    keySet
	fetched time.Time
}

func New(cfg config.JWTConfig) *Verifier {
	return NewWithOptions(cfg, nil, nil)
}

// NewWithOptions allows injecting the JWKS HTTP client and the clock used for
// exp/nbf checks and refresh scheduling. Nil values fall back to defaults.
func NewWithOptions(cfg config.JWTConfig, httpClient *http.Client, clock clockport.Clock) *Verifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	clock = platformclock.OrSystem(clock)
	return &Verifier{
		cfg:    cfg,
		client: httpClient,
		clock:  clock,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(cfg.ClockSkew),
			jwt.WithTimeFunc(clock.Now),
		),
		keys: keySet{},
	}
}

// Verify checks signature, iss, aud, exp and nbf, and returns the `sub` claim.
func (v *Verifier) Verify(ctx context.Context, token string) (string, error) {
	var claims jwt.RegisteredClaims
	tok, err := v.parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid")
		}
		return v.key(ctx, kid)
	})
	if err != nil || !tok.Valid || claims.Subject == "" {
		return "", ErrUnauthorized
	}
	return claims.Subject, nil
}

// key resolves kid, fetching the JWKS when the cache is stale or kid is unknown.
func (v *Verifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	now := v.clock.Now()

	v.mu.RLock()
	pub := v.keys[kid]
	stale := v.fetched.IsZero() || (v.cfg.JWKSRefreshInterval > 0 && now.Sub(v.fetched) >= v.cfg.JWKSRefreshInterval)
	// Unknown kids trigger at most one fetch per min refresh interval.
	retryUnknown := pub == nil && (v.cfg.JWKSMinRefreshInterval <= 0 || now.Sub(v.fetched) >= v.cfg.JWKSMinRefreshInterval)
	v.mu.RUnlock()

	if stale || retryUnknown {
		ch := v.fetches.DoChan("jwks", func() (any, error) {
			return nil, v.fetch(context.WithoutCancel(ctx))
		})
		select {
		case res := <-ch:
			if res.Err != nil {
				return nil, res.Err
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		v.mu.RLock()
		pub = v.keys[kid]
		v.mu.RUnlock()
	}
	if pub == nil {
		return nil, fmt.Errorf("unknown kid %q", kid)
	}
	return pub, nil
}

func (v *Verifier) fetch(ctx context.Context) error {
	if v.cfg.HTTPTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.cfg.HTTPTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.cfg.JWKSURL, nil)
	if err != nil {
		return err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("jwks fetch failed: status=%d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	keys, err := parseKeySet(body)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.keys = keys
	v.fetched = v.clock.Now()
	v.mu.Unlock()
	return nil
}
