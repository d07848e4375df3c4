package llm

import (
	"errors"
	"strings"
	"sync"

	"quiz-ai-cache/internal/config"
)

// Credential is one API key with its position in the pool.
type Credential struct {
	Index int
	Key   string
}

// Masked returns the key with all but its last characters hidden, for logs.
func (c Credential) Masked() string {
	return config.Mask(c.Key)
}

// CredentialPool hands out API keys round-robin. It is safe for concurrent use.
type CredentialPool struct {
	mu     sync.Mutex
	keys   []string
	cursor int
}

// NewCredentialPool builds a pool from keys, trimming blanks and duplicates.
func NewCredentialPool(keys []string) (*CredentialPool, error) {
	seen := make(map[string]struct{}, len(keys))
	clean := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		clean = append(clean, k)
	}
	if len(clean) == 0 {
		return nil, errors.New("credential pool needs at least one API key")
	}
	return &CredentialPool{keys: clean}, nil
}

// Len returns the number of credentials.
func (p *CredentialPool) Len() int {
	return len(p.keys)
}

// Next returns the credential at the cursor and advances it.
func (p *CredentialPool) Next() Credential {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := p.cursor
	p.cursor = (p.cursor + 1) % len(p.keys)
	return Credential{Index: idx, Key: p.keys[idx]}
}

// NextExcluding returns the first credential at or after the cursor that is not in
// tried, and moves the cursor past it. It reports false once every credential is tried.
func (p *CredentialPool) NextExcluding(tried map[int]bool) (Credential, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.keys)
	for step := 0; step < n; step++ {
		idx := (p.cursor + step) % n
		if tried[idx] {
			continue
		}
		p.cursor = (idx + 1) % n
		return Credential{Index: idx, Key: p.keys[idx]}, true
	}
	return Credential{}, false
}
