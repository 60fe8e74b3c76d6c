// Package docsig signs generated documents with an HTML-comment metadata
// block so downstream consumers can detect manual edits.
package docsig

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// TagStart is the start of the signature block.
	TagStart = "<!-- DOCSIG_START"
	// TagEnd is the end of the signature block.
	TagEnd = "DOCSIG_END -->"
)

// Signature verification errors.
var (
	ErrNoSignatureBlock = errors.New("no signature block found")
	ErrNoHashFound      = errors.New("no hash found in signature")
	ErrHashMismatch     = errors.New("hash mismatch")
)

// Signature carries the provenance of a generated document.
type Signature struct {
	RunID     string
	Generated time.Time
	Hash      string
}

// signatureRegex matches the entire signature block including tags.
var signatureRegex = regexp.MustCompile(`(?s)<!--\s*DOCSIG_START\s*\n(.*?)\n\s*DOCSIG_END\s*-->`)

// Extract removes the signature block from content and returns both the
// signature and the cleaned content. The cleaned content is what gets
// hashed.
func Extract(content string) (*Signature, string) {
	match := signatureRegex.FindStringSubmatch(content)
	cleanContent := signatureRegex.ReplaceAllString(content, "")
	// Trim trailing newlines from cleaned content for consistent hashing
	cleanContent = strings.TrimRight(cleanContent, "\n")

	if len(match) < 2 {
		return nil, cleanContent
	}

	sig := &Signature{}

	lines := strings.SplitSeq(match[1], "\n")
	for line := range lines {
		parts := strings.SplitN(strings.TrimSpace(line), ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])

		switch key {
		case "RUN_ID":
			sig.RunID = val
		case "GENERATED":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				sig.Generated = t
			}
		case "HASH":
			sig.Hash = val
		}
	}

	return sig, cleanContent
}

// CalculateHash computes the SHA-256 hash of the content (excluding any
// signature block).
func CalculateHash(content string) string {
	_, clean := Extract(content)
	hash := sha256.Sum256([]byte(clean))

	return hex.EncodeToString(hash[:])
}

// Sign appends or replaces the signature block with a fresh hash and
// timestamp attributing the document to the given run.
func Sign(content, runID string) string {
	_, clean := Extract(content)

	hash := CalculateHash(clean)

	now := time.Now().UTC().Format(time.RFC3339)

	newBlock := fmt.Sprintf("\n\n%s\nRUN_ID: %s\nGENERATED: %s\nHASH: %s\n%s",
		TagStart, runID, now, hash, TagEnd)

	return clean + newBlock
}

// Verify checks whether the content matches the hash in its signature.
func Verify(content string) (bool, error) {
	sig, clean := Extract(content)
	if sig == nil {
		return false, ErrNoSignatureBlock
	}

	if sig.Hash == "" {
		return false, ErrNoHashFound
	}

	calculated := CalculateHash(clean)
	if calculated != sig.Hash {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, sig.Hash, calculated)
	}

	return true, nil
}
