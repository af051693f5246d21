package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

// ErrMalformedHash is returned by Verify when the stored hash cannot be parsed.
var ErrMalformedHash = errors.New("password: malformed argon2id hash")

const (
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

// PasswordHasher derives and checks self-describing password hashes.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, encodedHash, password string) (bool, error)
}

// HasherConfig holds the Argon2id cost parameters.
type HasherConfig struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	// MaxConcurrent bounds simultaneous hash computations; <= 0 means runtime.NumCPU().
	MaxConcurrent int64
}

func (c *HasherConfig) applyDefaults() {
	if c.Time == 0 {
		c.Time = 1
	}
	if c.Memory == 0 {
		c.Memory = 64 * 1024
	}
	if c.Threads == 0 {
		c.Threads = 4
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = int64(runtime.NumCPU())
	}
}

var _ PasswordHasher = (*Argon2Hasher)(nil)

// Argon2Hasher implements PasswordHasher with argon2id.
type Argon2Hasher struct {
	cfg  HasherConfig
	slot *semaphore.Weighted
	rand io.Reader
}

func NewArgon2Hasher(cfg HasherConfig) *Argon2Hasher {
	cfg.applyDefaults()
	return &Argon2Hasher{
		cfg:  cfg,
		slot: semaphore.NewWeighted(cfg.MaxConcurrent),
		rand: rand.Reader,
	}
}

// Hash encodes as $argon2id$v=19$m=MEMORY,t=TIME,p=THREADS$SALT$KEY with a fresh salt per call.
func (h *Argon2Hasher) Hash(ctx context.Context, password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("password: generate salt: %w", err)
	}

	if err := h.slot.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("password: waiting for hash slot: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, h.cfg.Time, h.cfg.Memory, h.cfg.Threads, argon2KeyLen)
	h.slot.Release(1)

	return h.encode(salt, key), nil
}

// DummyHash returns a well-formed hash with the configured cost that no password matches.
// Verifying against it costs the same as verifying a real user's hash.
func (h *Argon2Hasher) DummyHash() string {
	return h.encode(make([]byte, argon2SaltLen), make([]byte, argon2KeyLen))
}

func (h *Argon2Hasher) encode(salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.cfg.Memory, h.cfg.Time, h.cfg.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

// Verify recomputes the key with the parameters embedded in encodedHash.
// A mismatch is (false, nil); an unparsable hash is (false, ErrMalformedHash).
func (h *Argon2Hasher) Verify(ctx context.Context, encodedHash, password string) (bool, error) {
	p, err := decodeArgon2Hash(encodedHash)
	if err != nil {
		return false, err
	}

	if err := h.slot.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("password: waiting for hash slot: %w", err)
	}
	key := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	h.slot.Release(1)

	return subtle.ConstantTimeCompare(key, p.key) == 1, nil
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func decodeArgon2Hash(encoded string) (*argon2Params, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, ErrMalformedHash
	}

	p := &argon2Params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return nil, ErrMalformedHash
	}
	if p.memory == 0 || p.time == 0 || p.threads == 0 {
		return nil, ErrMalformedHash
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(p.salt) == 0 {
		return nil, ErrMalformedHash
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(p.key) == 0 {
		return nil, ErrMalformedHash
	}
	return p, nil
}
