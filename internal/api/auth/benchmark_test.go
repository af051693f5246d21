package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/FACorreiaa/go-auth-api/app/observability/metrics"
	"github.com/FACorreiaa/go-auth-api/internal/types"
)

func BenchmarkArgon2Verify(b *testing.B) {
	ctx := context.Background()
	h := NewArgon2Hasher(HasherConfig{})
	hash, err := h.Hash(ctx, "secret123")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if ok, err := h.Verify(ctx, hash, "secret123"); err != nil || !ok {
				b.Fatalf("verify failed: ok=%v err=%v", ok, err)
			}
		}
	})
}

func BenchmarkAuthenticate(b *testing.B) {
	tokens, err := NewTokenService(TokenConfig{Secret: "bench-secret", TTL: time.Hour}, discardLogger)
	if err != nil {
		b.Fatal(err)
	}
	token, err := tokens.Issue(1, types.RoleUser)
	if err != nil {
		b.Fatal(err)
	}

	gate := Authenticate(discardLogger, tokens, metrics.NewNoop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		gate.ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			b.Fatalf("unexpected status %d", w.Code)
		}
	}
}
