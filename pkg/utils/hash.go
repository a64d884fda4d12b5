package utils

import (
	"crypto/sha256"
	"encoding/json"
)

// SumSHA256 returns the SHA-256 checksum of the provided data.
func SumSHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// SumJSON hashes the JSON encoding of v. Values that fail to encode hash to the zero sum.
func SumJSON(v any) [32]byte {
	b, err := json.Marshal(v)
	if err != nil {
		return [32]byte{}
	}
	return SumSHA256(b)
}
