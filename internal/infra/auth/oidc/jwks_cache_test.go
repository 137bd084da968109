package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestKeySet(t *testing.T, transport roundTripperFunc, opts keySetOptions) *keySet {
	t.Helper()
	return newKeySet("https://jwks.test/keys", &http.Client{Transport: transport}, opts)
}

func TestKeySet_UnknownKidTriggersRefetch(t *testing.T) {
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	jwks1 := buildJWKS(t, &privKey.PublicKey, "kid-1")
	jwks2 := buildJWKS(t, &privKey.PublicKey, "kid-2")
	var calls int32
	ks := newTestKeySet(t, func(*http.Request) (*http.Response, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return jsonResponse(http.StatusOK, jwks1), nil
		}
		return jsonResponse(http.StatusOK, jwks2), nil
	}, keySetOptions{})

	if _, err := ks.signingKey(context.Background(), "kid-1"); err != nil {
		t.Fatalf("kid-1: %v", err)
	}
	if _, err := ks.signingKey(context.Background(), "kid-2"); err != nil {
		t.Fatalf("kid-2 after rotation: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got < 2 {
		t.Fatalf("fetches = %d, want refetch on unknown kid", got)
	}
}

func TestKeySet_ConfiguredWindows(t *testing.T) {
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	jwks := buildJWKS(t, &privKey.PublicKey, "kid-1")
	var calls int32
	ks := newTestKeySet(t, func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return jsonResponse(http.StatusOK, jwks), nil
	}, keySetOptions{TTL: time.Minute, MaxStale: 4 * time.Minute})

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ks.now = func() time.Time { return now }

	if _, err := ks.signingKey(context.Background(), "kid-1"); err != nil {
		t.Fatal(err)
	}
	// still fresh: second lookup hits the snapshot
	now = now.Add(30 * time.Second)
	if _, err := ks.signingKey(context.Background(), "kid-1"); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("fetches = %d, want cached lookup", got)
	}
	// past TTL but inside the stale window: served, refreshed behind
	now = now.Add(2 * time.Minute)
	if _, err := ks.signingKey(context.Background(), "kid-1"); err != nil {
		t.Fatalf("stale lookup: %v", err)
	}
}

func TestKeySet_StaleWindowEndsService(t *testing.T) {
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	ks := newTestKeySet(t, func(*http.Request) (*http.Response, error) {
		return nil, errors.New("endpoint down")
	}, keySetOptions{TTL: time.Minute, MaxStale: 4 * time.Minute})

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ks.now = func() time.Time { return now }
	ks.publish(map[string]*rsa.PublicKey{"kid-1": &privKey.PublicKey})

	// past TTL, inside the stale window
	now = now.Add(2 * time.Minute)
	if _, err := ks.signingKey(context.Background(), "kid-1"); err != nil {
		t.Fatalf("stale key should still verify: %v", err)
	}

	// past TTL + MaxStale: nothing is served and the fetch fails
	now = now.Add(4 * time.Minute)
	if _, err := ks.signingKey(context.Background(), "kid-1"); err == nil {
		t.Fatal("expected failure past the stale window")
	}
}

func TestKeySet_ConcurrentLookupsShareOneFetch(t *testing.T) {
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	jwks := buildJWKS(t, &privKey.PublicKey, "kid-1")
	var calls int32
	ks := newTestKeySet(t, func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return jsonResponse(http.StatusOK, jwks), nil
	}, keySetOptions{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ks.signingKey(ctx, "kid-1"); err != nil {
				t.Errorf("signing key: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("fetches = %d, want one shared fetch", got)
	}
}
