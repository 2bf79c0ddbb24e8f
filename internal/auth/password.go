package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrInvalidHash is returned when a stored password hash cannot be decoded.
var ErrInvalidHash = errors.New("invalid password hash")

const (
	hashKeyLen  uint32 = 32
	hashSaltLen        = 16
)

// PasswordParams are the argon2id cost settings used for new hashes.
type PasswordParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// PasswordHasher hashes and checks account passwords with argon2id. Hashes
// carry their own parameters, so changing the settings only affects new
// hashes.
type PasswordHasher struct {
	params PasswordParams
}

// NewPasswordHasher creates a hasher using params for new hashes.
func NewPasswordHasher(params PasswordParams) *PasswordHasher {
	return &PasswordHasher{params: params}
}

// Hash returns the PHC-encoded argon2id hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, hashSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	encoded := passwordHash{
		params: h.params,
		salt:   salt,
		key:    argon2.IDKey([]byte(password), salt, h.params.Time, h.params.MemoryKiB, h.params.Threads, hashKeyLen),
	}
	return encoded.String(), nil
}

// Check reports whether password matches the encoded hash.
func (h *PasswordHasher) Check(encoded, password string) (bool, error) {
	stored, err := parsePasswordHash(encoded)
	if err != nil {
		return false, err
	}

	p := stored.params
	key := argon2.IDKey([]byte(password), stored.salt, p.Time, p.MemoryKiB, p.Threads, uint32(len(stored.key)))
	return subtle.ConstantTimeCompare(key, stored.key) == 1, nil
}

type passwordHash struct {
	params PasswordParams
	salt   []byte
	key    []byte
}

func (ph passwordHash) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		ph.params.MemoryKiB, ph.params.Time, ph.params.Threads,
		base64.RawStdEncoding.EncodeToString(ph.salt),
		base64.RawStdEncoding.EncodeToString(ph.key))
}

// parsePasswordHash decodes $argon2id$v=19$m=..,t=..,p=..$salt$key.
func parsePasswordHash(encoded string) (passwordHash, error) {
	var ph passwordHash

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return ph, fmt.Errorf("%w: unexpected format", ErrInvalidHash)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return ph, fmt.Errorf("%w: unsupported version %q", ErrInvalidHash, parts[2])
	}

	p := &ph.params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Time, &p.Threads); err != nil {
		return ph, fmt.Errorf("%w: bad parameters: %w", ErrInvalidHash, err)
	}

	var err error
	if ph.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return ph, fmt.Errorf("%w: bad salt: %w", ErrInvalidHash, err)
	}
	if ph.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return ph, fmt.Errorf("%w: bad key: %w", ErrInvalidHash, err)
	}
	if len(ph.key) == 0 {
		return ph, fmt.Errorf("%w: empty key", ErrInvalidHash)
	}

	return ph, nil
}
