package idp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	jose "github.com/go-jose/go-jose/v3"
	"golang.org/x/sync/singleflight"

	"github.com/classpoint/gateway/internal/cache"
	"github.com/classpoint/gateway/internal/observability/logger"
)

// ErrKeyNotFound means no published key matches the token's kid, even after
// a forced refresh.
var ErrKeyNotFound = errors.New("idp: signing key not found")

const jwksCacheKey = "idp:jwks"

// KeySet is the process-wide view of the provider's published signing keys.
// It is read-mostly: requests share the parsed set under an RWMutex, cache
// misses and kid misses funnel through singleflight so only one fetch is in
// flight at a time, and the raw document is mirrored into the shared cache
// so restarts and sibling replicas skip the network round trip.
type KeySet struct {
	url   string
	ttl   time.Duration
	http  *http.Client
	cache cache.Client

	group singleflight.Group

	mu      sync.RWMutex
	keys    *jose.JSONWebKeySet
	fetched time.Time
}

// NewKeySet creates a key set for the provider's JWKS URL.
func NewKeySet(p *Provider, c cache.Client, ttl time.Duration) *KeySet {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &KeySet{
		url:   p.JWKSURL(),
		ttl:   ttl,
		http:  p.http,
		cache: c,
	}
}

// Key returns the public key for a kid, fetching or refreshing the set as
// needed. An unknown kid forces one refresh before giving up, to cover
// provider-side key rotation.
func (s *KeySet) Key(ctx context.Context, kid string) (interface{}, error) {
	if k := s.lookup(kid); k != nil {
		return k, nil
	}

	if err := s.refresh(ctx, kid); err != nil {
		return nil, err
	}

	if k := s.lookup(kid); k != nil {
		return k, nil
	}
	return nil, ErrKeyNotFound
}

func (s *KeySet) lookup(kid string) interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.keys == nil || time.Since(s.fetched) > s.ttl {
		return nil
	}
	for _, k := range s.keys.Keys {
		if k.KeyID == kid && k.Valid() {
			return k.Key
		}
	}
	return nil
}

// refresh loads the key set, coalescing concurrent callers. The kid is part
// of the singleflight key so a rotation-triggered refresh is not deduplicated
// against a plain TTL refresh that already missed it.
func (s *KeySet) refresh(ctx context.Context, kid string) error {
	_, err, _ := s.group.Do("refresh:"+kid, func() (interface{}, error) {
		raw, fromCache, err := s.load(ctx)
		if err != nil {
			return nil, err
		}

		set, err := parseJWKS(raw)
		if err != nil {
			return nil, err
		}

		// A kid miss on a cached document means the pool rotated since the
		// cache entry was written; go to the source once.
		if fromCache && kid != "" && !hasKid(set, kid) {
			if raw, err = s.fetch(ctx); err != nil {
				return nil, err
			}
			if set, err = parseJWKS(raw); err != nil {
				return nil, err
			}
		}

		s.mu.Lock()
		s.keys = set
		s.fetched = time.Now()
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

// load returns the raw JWKS document, preferring the shared cache.
func (s *KeySet) load(ctx context.Context) (raw []byte, fromCache bool, err error) {
	if s.cache != nil {
		if v, err := s.cache.Get(ctx, jwksCacheKey); err == nil && v != "" {
			return []byte(v), true, nil
		}
	}
	raw, err = s.fetch(ctx)
	return raw, false, err
}

// fetch pulls the document from the provider and mirrors it into the cache.
func (s *KeySet) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("idp: jwks request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("idp: jwks fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("idp: jwks fetch: http %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("idp: jwks read: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, jwksCacheKey, string(raw), s.ttl); err != nil {
			logger.From(ctx).Warn("jwks cache write failed", logger.Err(err))
		}
	}
	return raw, nil
}

func parseJWKS(raw []byte) (*jose.JSONWebKeySet, error) {
	var set jose.JSONWebKeySet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("idp: jwks parse: %w", err)
	}
	return &set, nil
}

func hasKid(set *jose.JSONWebKeySet, kid string) bool {
	for _, k := range set.Keys {
		if k.KeyID == kid {
			return true
		}
	}
	return false
}
