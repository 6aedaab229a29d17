package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

const argHashLen = 32

// GenerateKey creates a cache key with prefix and ID.
func GenerateKey(prefix string, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// HashArgs returns a stable hex digest of the JSON encoding of args. Struct
// fields encode in declaration order and map keys are sorted, so equal values
// give equal digests.
func HashArgs(args ...any) (string, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("hash args: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:argHashLen], nil
}

// OperationKey derives the memoization key of op called with args.
func OperationKey(op string, args ...any) (string, error) {
	h, err := HashArgs(args...)
	if err != nil {
		return "", err
	}
	return GenerateKey(op, h), nil
}

// BuildPattern creates a glob pattern for every key under prefix.
func BuildPattern(prefix string) string {
	return fmt.Sprintf("%s:*", prefix)
}
