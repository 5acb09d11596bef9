package threadsafe

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashSet(t *testing.T) {
	set := NewHashSet[string]()

	assert.True(t, set.Add("a"))
	assert.False(t, set.Add("a"))
	assert.True(t, set.Contains("a"))
	assert.Equal(t, 1, set.Len())

	assert.True(t, set.Remove("a"))
	assert.False(t, set.Remove("a"))
	assert.False(t, set.Contains("a"))
	assert.Equal(t, 0, set.Len())
}

func TestFlagSingleOwner(t *testing.T) {
	var (
		flag    Flag
		winners atomic.Int32
		wg      sync.WaitGroup
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if flag.TrySet() {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
	assert.True(t, flag.IsSet())

	flag.Reset()
	assert.False(t, flag.IsSet())
	assert.True(t, flag.TrySet())
}
