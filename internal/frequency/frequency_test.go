package frequency

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	values map[string]float64
	calls  atomic.Int64
}

func (s *countingSource) Zipf(word string) float64 {
	s.calls.Add(1)
	return s.values[word]
}

func TestCached_Frequency(t *testing.T) {
	src := &countingSource{values: map[string]float64{"你好": 5.6389, "的": 7.781}}
	c, err := NewCached(src, 0)
	require.NoError(t, err)

	v, ok := c.Frequency("你好")
	assert.True(t, ok)
	assert.Equal(t, 5.64, v)

	v, ok = c.Frequency("你好")
	assert.True(t, ok)
	assert.Equal(t, 5.64, v)
	assert.EqualValues(t, 1, src.calls.Load(), "第二次应命中缓存")

	// 未收录的词同样被缓存
	_, ok = c.Frequency("龘龘")
	assert.False(t, ok)
	_, ok = c.Frequency("龘龘")
	assert.False(t, ok)
	assert.EqualValues(t, 2, src.calls.Load())
	assert.Equal(t, 2, c.Len())
}

func TestCached_Bounded(t *testing.T) {
	src := &countingSource{values: map[string]float64{}}
	c, err := NewCached(src, 2)
	require.NoError(t, err)

	for _, w := range []string{"a", "b", "c", "d"} {
		c.Frequency(w)
	}
	assert.Equal(t, 2, c.Len())
}

func TestCached_Concurrent(t *testing.T) {
	src := &countingSource{values: map[string]float64{"中国": 6.12}}
	c, err := NewCached(src, 10)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, ok := c.Frequency("中国")
			assert.True(t, ok)
			assert.Equal(t, 6.12, v)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, src.calls.Load(), int64(50))
}

func TestTier(t *testing.T) {
	tests := []struct {
		zipf float64
		ok   bool
		want string
	}{
		{7.2, true, TierVeryCommon},
		{6, true, TierVeryCommon},
		{5.99, true, TierCommon},
		{4, true, TierCommon},
		{3.1, true, TierUncommon},
		{1.5, true, TierRare},
		{0, false, TierUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Tier(tt.zipf, tt.ok), "zipf=%.2f", tt.zipf)
	}
}
