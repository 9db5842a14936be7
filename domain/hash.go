package domain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/sha3"
)

// ContentHash computes the SHA3-256 of the canonical JSON form of an action, hash field excluded.
// Object keys are sorted by re-encoding through a map, so two nodes hashing
// the same payload always agree.
func ContentHash(action ActionMessage) (string, error) {
	raw, err := json.Marshal(action)
	if err != nil {
		return "", err
	}
	var fields map[string]any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err = decoder.Decode(&fields); err != nil {
		return "", err
	}
	delete(fields, "hash")
	canonical, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	sum := sha3.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// VerifyHash checks the hash carried by an action against its content.
func VerifyHash(action ActionMessage) (bool, error) {
	hash, err := ContentHash(action)
	if err != nil {
		return false, err
	}
	return hash == action.ContentHash(), nil
}
