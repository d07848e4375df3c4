package llm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCredentialPool(t *testing.T) {
	pool, err := NewCredentialPool([]string{" k1 ", "", "k2", "k1"})
	require.NoError(t, err)
	assert.Equal(t, 2, pool.Len())

	_, err = NewCredentialPool([]string{" ", ""})
	assert.Error(t, err)
}

func TestCredentialPool_NextRoundRobin(t *testing.T) {
	pool, err := NewCredentialPool([]string{"k1", "k2", "k3"})
	require.NoError(t, err)

	var got []string
	for i := 0; i < 4; i++ {
		got = append(got, pool.Next().Key)
	}
	assert.Equal(t, []string{"k1", "k2", "k3", "k1"}, got)
}

func TestCredentialPool_NextExcluding(t *testing.T) {
	pool, err := NewCredentialPool([]string{"k1", "k2", "k3"})
	require.NoError(t, err)

	tried := map[int]bool{}
	var order []int
	for {
		cred, ok := pool.NextExcluding(tried)
		if !ok {
			break
		}
		tried[cred.Index] = true
		order = append(order, cred.Index)
	}
	assert.Equal(t, []int{0, 1, 2}, order)

	// the cursor wrapped, so a fresh round starts from the first key again
	cred, ok := pool.NextExcluding(map[int]bool{})
	require.True(t, ok)
	assert.Equal(t, 0, cred.Index)

	// skips tried keys and lands after them
	cred, ok = pool.NextExcluding(map[int]bool{1: true})
	require.True(t, ok)
	assert.Equal(t, 2, cred.Index)
}

func TestCredentialPool_ConcurrentNext(t *testing.T) {
	pool, err := NewCredentialPool([]string{"k1", "k2", "k3", "k4"})
	require.NoError(t, err)

	var mu sync.Mutex
	counts := map[int]int{}
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cred := pool.Next()
			mu.Lock()
			counts[cred.Index]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	for idx := 0; idx < 4; idx++ {
		assert.Equal(t, 10, counts[idx], "credential %d", idx)
	}
}

func TestCredential_Masked(t *testing.T) {
	assert.Equal(t, "****wxyz", Credential{Key: "AIzaSy-abcdwxyz"}.Masked())
}
