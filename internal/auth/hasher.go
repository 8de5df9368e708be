// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code(CodeEmptyPassword).Errorf("password cannot be empty")

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted argon2id hash of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or a
	// CorruptCredential error when the stored hash cannot be parsed.
	Verify(password, hash string) (bool, error)

	// NeedsUpgrade returns true if the hash was produced with weaker or
	// different parameters than the current ones.
	NeedsUpgrade(hash string) bool
}

// Argon2idHasher implements PasswordHasher using argon2id.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id hash of the password in PHC string format:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// argon2Params holds the values decoded from a PHC string.
type argon2Params struct {
	version int
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

// decodeHash parses a PHC-formatted argon2id hash.
func decodeHash(encodedHash string) (*argon2Params, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, oops.Code(CodeCorruptCredential).Errorf("invalid hash format")
	}

	if parts[1] != "argon2id" {
		return nil, oops.Code(CodeCorruptCredential).Errorf("unsupported hash algorithm: %s", parts[1])
	}

	p := &argon2Params{}
	if _, err := fmt.Sscanf(parts[2], "v=%d", &p.version); err != nil {
		return nil, oops.Code(CodeCorruptCredential).With("segment", "version").Wrap(err)
	}
	if p.version != argon2.Version {
		return nil, oops.Code(CodeCorruptCredential).Errorf("unsupported argon2 version: %d", p.version)
	}

	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &threads); err != nil {
		return nil, oops.Code(CodeCorruptCredential).With("segment", "params").Wrap(err)
	}
	// threads must fit in uint8 without silent truncation
	if threads == 0 || threads > 255 {
		return nil, oops.Code(CodeCorruptCredential).Errorf("threads value %d out of range", threads)
	}
	p.threads = uint8(threads)
	if p.time == 0 || p.memory == 0 {
		return nil, oops.Code(CodeCorruptCredential).Errorf("time and memory must be positive")
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, oops.Code(CodeCorruptCredential).With("segment", "salt").Wrap(err)
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, oops.Code(CodeCorruptCredential).With("segment", "hash").Wrap(err)
	}

	if keyLen := len(p.key); keyLen == 0 || keyLen > 1<<30 {
		return nil, oops.Code(CodeCorruptCredential).Errorf("invalid hash key length: %d", keyLen)
	}

	return p, nil
}

// Verify checks if the password matches the hash.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	p, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))

	return subtle.ConstantTimeCompare(computed, p.key) == 1, nil
}

// NeedsUpgrade returns true if the hash is not argon2id or was produced with
// parameters other than the current ones.
func (h *Argon2idHasher) NeedsUpgrade(encodedHash string) bool {
	p, err := decodeHash(encodedHash)
	if err != nil {
		return true
	}
	return p.memory != argon2Memory ||
		p.time != argon2Time ||
		p.threads != argon2Threads ||
		len(p.key) != argon2KeyLen
}
