package oidc

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	jwksFetchTimeout  = 5 * time.Second
	jwksFetchAttempts = 3
	jwksRetryBase     = 200 * time.Millisecond
	jwksRetryMax      = 2 * time.Second
)

var errSigningKeyUnknown = errors.New("signing key unknown")

// keySetOptions tune how long fetched signing keys are trusted. Both
// windows come from configuration so operators can match the provider's
// rotation cadence.
type keySetOptions struct {
	TTL      time.Duration
	MaxStale time.Duration
}

// keySet caches the provider's RSA signing keys. A fresh snapshot is
// served directly; once the TTL lapses the old snapshot keeps serving for
// the stale window while one fetch replaces it, so a slow JWKS endpoint
// never stalls token verification.
type keySet struct {
	url    string
	client *http.Client
	ttl    time.Duration
	stale  time.Duration
	now    func() time.Time

	group singleflight.Group

	mu   sync.RWMutex
	snap *keySnapshot
}

// keySnapshot is immutable once published; readers hold it without locks.
type keySnapshot struct {
	keys       map[string]*rsa.PublicKey
	freshUntil time.Time
	staleUntil time.Time
}

func newKeySet(url string, client *http.Client, opts keySetOptions) *keySet {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	stale := opts.MaxStale
	if stale <= 0 {
		stale = 15 * time.Minute
	}
	return &keySet{
		url:    url,
		client: client,
		ttl:    ttl,
		stale:  stale,
		now:    time.Now,
	}
}

// signingKey returns the key for kid, refreshing the set when the kid is
// unknown or the snapshot has fully expired.
func (ks *keySet) signingKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if kid == "" {
		return nil, errors.New("token names no signing key")
	}
	if key, fresh := ks.cached(kid, ks.now()); key != nil {
		if !fresh {
			ks.refreshInBackground()
		}
		return key, nil
	}
	if err := ks.refresh(ctx); err != nil {
		return nil, err
	}
	if key, _ := ks.cached(kid, ks.now()); key != nil {
		return key, nil
	}
	return nil, errSigningKeyUnknown
}

// cached reports the key and whether the snapshot is still fresh. A
// snapshot past its stale window serves nothing at all.
func (ks *keySet) cached(kid string, now time.Time) (*rsa.PublicKey, bool) {
	ks.mu.RLock()
	snap := ks.snap
	ks.mu.RUnlock()
	if snap == nil || now.After(snap.staleUntil) {
		return nil, false
	}
	key, ok := snap.keys[kid]
	if !ok {
		return nil, false
	}
	return key, now.Before(snap.freshUntil)
}

func (ks *keySet) refreshInBackground() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), jwksFetchTimeout)
		defer cancel()
		_ = ks.refresh(ctx)
	}()
}

// refresh collapses concurrent callers into one fetch; followers share
// the leader's result or give up when their own context expires.
func (ks *keySet) refresh(ctx context.Context) error {
	ch := ks.group.DoChan("jwks", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.Background(), jwksFetchTimeout)
		defer cancel()
		keys, err := ks.fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		ks.publish(keys)
		return nil, nil
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (ks *keySet) publish(keys map[string]*rsa.PublicKey) {
	now := ks.now()
	snap := &keySnapshot{
		keys:       keys,
		freshUntil: now.Add(ks.ttl),
		staleUntil: now.Add(ks.ttl + ks.stale),
	}
	ks.mu.Lock()
	ks.snap = snap
	ks.mu.Unlock()
}

// fetch retries transient failures with exponential backoff inside the
// caller's deadline.
func (ks *keySet) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	var lastErr error
	backoff := jwksRetryBase
	for attempt := 1; attempt <= jwksFetchAttempts; attempt++ {
		keys, err := ks.fetchOnce(ctx)
		if err == nil {
			return keys, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == jwksFetchAttempts {
			break
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		if backoff *= 2; backoff > jwksRetryMax {
			backoff = jwksRetryMax
		}
	}
	return nil, lastErr
}

type jwksDocument struct {
	Keys []jwkEntry `json:"keys"`
}

type jwkEntry struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (ks *keySet) fetchOnce(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ks.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := ks.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("jwks endpoint returned non-2xx")
	}
	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, err
	}
	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, entry := range doc.Keys {
		if entry.Kty != "RSA" || entry.Kid == "" {
			continue
		}
		key, err := entry.rsaPublicKey()
		if err != nil {
			continue
		}
		keys[entry.Kid] = key
	}
	if len(keys) == 0 {
		return nil, errors.New("jwks document holds no usable keys")
	}
	return keys, nil
}

func (e jwkEntry) rsaPublicKey() (*rsa.PublicKey, error) {
	if e.N == "" || e.E == "" {
		return nil, errors.New("jwk missing rsa parameters")
	}
	nBytes, err := base64.RawURLEncoding.DecodeString(e.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(e.E)
	if err != nil {
		return nil, err
	}
	exponent := new(big.Int).SetBytes(eBytes).Int64()
	if exponent <= 0 || exponent > int64(^uint32(0)) {
		return nil, errors.New("jwk exponent out of range")
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(exponent),
	}, nil
}
