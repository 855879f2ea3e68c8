package dictionary

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCEDICT = `# CC-CEDICT
# comment line
中國 中国 [Zhong1 guo2] /China/Middle Kingdom/
你好 你好 [ni3 hao3] /hello/hi/
不是 不是 [bu4 shi4] /no/is not/
一個 一个 [yi1 ge4] /one/a/an/
媽媽 妈妈 [ma1 ma5] /mama/mommy/
中文 中文 [Zhong1 wen2] /Chinese language/
中間 中间 [zhong1 jian1] /between/middle/
綠 绿 [lu:4] /green/
AA制 AA制 [A A zhi4] /to split the bill/
invalid line without brackets
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "cedict.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedStore(t *testing.T, s *Store) {
	t.Helper()
	im := &Importer{Store: s, BatchSize: 3}
	n, err := im.Load(context.Background(), strings.NewReader(sampleCEDICT), map[string]int{"中国": 1, "你好": 1, "中间": 2})
	require.NoError(t, err)
	require.Equal(t, 9, n)
}

func TestStore_LookupSimplified(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)
	ctx := context.Background()

	e, err := s.Lookup(ctx, "中国")
	require.NoError(t, err)
	assert.Equal(t, "中国", e.Simplified)
	assert.Equal(t, "中國", e.Traditional)
	assert.Equal(t, "zhong1 guo2", e.Pinyin)
	assert.Equal(t, []int{1, 2}, e.Tones)
	assert.Equal(t, 1, e.HSKLevel)
	assert.Equal(t, []string{"China", "Middle Kingdom"}, e.Definitions())

	e, err = s.Lookup(ctx, "妈妈")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5}, e.Tones)
	assert.Equal(t, 0, e.HSKLevel)
}

func TestStore_LookupMissing(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	_, err := s.Lookup(context.Background(), "不存在")
	assert.ErrorIs(t, err, ErrNotFound)

	// Lookup 只匹配简体
	_, err = s.Lookup(context.Background(), "中國")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_LookupAnyTraditional(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	e, err := s.LookupAny(context.Background(), "媽媽")
	require.NoError(t, err)
	assert.Equal(t, "妈妈", e.Simplified)
}

func TestStore_Related(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	related, err := s.Related(context.Background(), "中国", 5)
	require.NoError(t, err)
	// HSK 等级高者优先
	assert.Equal(t, []string{"中间", "中文"}, related)

	related, err = s.Related(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestStore_WordsAndCount(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)
	ctx := context.Background()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	words, err := s.Words(ctx)
	require.NoError(t, err)
	assert.Len(t, words, 9)
	assert.Contains(t, words, "AA制")
}

func TestStore_InsertBatchSkipsInvalid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.InsertBatch(ctx, []Entry{
		{Simplified: "好", Pinyin: "hao3", Tones: []int{3}},
		{Simplified: "", Pinyin: "x1", Tones: []int{1}},
		{Simplified: "坏", Pinyin: "", Tones: nil},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	e, err := s.Lookup(ctx, "好")
	require.NoError(t, err)
	assert.Empty(t, e.Traditional)
	assert.Empty(t, e.Definition)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cedict.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = s.InsertBatch(ctx, []Entry{{Simplified: "好", Pinyin: "hao3", Tones: []int{3}}})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// 再次打开时迁移应为空操作
	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Ping(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
