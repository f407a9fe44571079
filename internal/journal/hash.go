package journal

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// entryDomain is the domain prefix for content-addressed entry identity.
// Version suffix enables future algorithm migration.
const entryDomain = "sensai/action/v1"

// EntryID computes the content-addressed identifier for one action entry:
// SHA256(domain + 0x00 + action + 0x00 + canonical(payload)). The null
// separators prevent boundary ambiguity between the parts.
//
// Identity derives from content, not from a generated token: a retried
// completion handler re-records the exact same action and payload, produces
// the same ID, and is deduplicated by the ON CONFLICT clause. Two distinct
// events never collide because canonical records carry their own timestamps
// and server IDs.
func EntryID(action string, payload []byte) (string, error) {
	canonical, err := canonicalize(payload)
	if err != nil {
		return "", fmt.Errorf("entry id for %s: %w", action, err)
	}

	h := sha256.New()
	h.Write([]byte(entryDomain))
	h.Write([]byte{0x00})
	h.Write([]byte(action))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// canonicalize re-encodes a JSON document deterministically: object keys
// sorted, insignificant whitespace stripped, numbers preserved verbatim.
func canonicalize(payload []byte) ([]byte, error) {
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()

	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}

	// encoding/json sorts map keys, which gives the canonical form.
	canonical, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}
	return canonical, nil
}
