package segment

import (
	"reflect"
	"strings"
	"testing"
)

func TestMaxMatch_Segment(t *testing.T) {
	m := NewMaxMatch([]string{"中国", "中国人", "你好", "学习", "中文", " ", ""}, 0)
	if m.Len() != 5 {
		t.Errorf("词表大小 = %d, 期望 5", m.Len())
	}

	tests := []struct {
		text string
		want []string
	}{
		{"你好中国人", []string{"你好", "中国人"}},
		{"我学习中文", []string{"我", "学习", "中文"}},
		{"中国，abc123好", []string{"中国", "，", "abc123", "好"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := m.Segment(tt.text); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Segment(%q) = %v, 期望 %v", tt.text, got, tt.want)
		}
	}
}

func TestMaxMatch_MaxLen(t *testing.T) {
	m := NewMaxMatch([]string{"中华人民共和国"}, 2)
	got := m.Segment("中华人民共和国")
	if len(got) != 7 {
		t.Errorf("超过最大词长的词不应被匹配，得到 %v", got)
	}
}

func TestGse(t *testing.T) {
	if testing.Short() {
		t.Skip("加载分词词典较慢")
	}
	g, err := NewGse()
	if err != nil {
		t.Fatalf("NewGse 失败: %v", err)
	}

	text := "我爱学习中文"
	tokens := g.Segment(text)
	if strings.Join(tokens, "") != text {
		t.Errorf("分词结果拼接后应等于原文，得到 %v", tokens)
	}
	if g.Segment("") != nil {
		t.Error("空文本应返回 nil")
	}

	common := g.Zipf("的")
	if common < 5 {
		t.Errorf("“的”的 Zipf 频率应较高，得到 %.2f", common)
	}
	word := g.Zipf("你好")
	if word <= 0 || word >= common {
		t.Errorf("期望 Zipf(的) > Zipf(你好) > 0，得到 %.2f / %.2f", common, word)
	}
	if z := g.Zipf("不存在的词语组合xyz"); z != 0 {
		t.Errorf("未收录词应为 0，得到 %.2f", z)
	}
}
