package dictionary

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseCEDICTLine(t *testing.T) {
	e, ok := ParseCEDICTLine("中國 中国 [Zhong1 guo2] /China/Middle Kingdom/")
	if !ok {
		t.Fatal("期望解析成功")
	}
	if e.Simplified != "中国" || e.Traditional != "中國" {
		t.Errorf("简繁体不正确: %+v", e)
	}
	if e.Pinyin != "zhong1 guo2" {
		t.Errorf("拼音应转为小写，得到 %q", e.Pinyin)
	}
	if !reflect.DeepEqual(e.Tones, []int{1, 2}) {
		t.Errorf("声调不正确: %v", e.Tones)
	}
	if e.Definition != "China; Middle Kingdom" {
		t.Errorf("释义不正确: %q", e.Definition)
	}
}

func TestParseCEDICTLine_Skips(t *testing.T) {
	lines := []string{
		"",
		"   ",
		"# CC-CEDICT comment",
		"no brackets here /def/",
		"中國 中国 [zhong1 guo2] no slashes",
	}
	for _, l := range lines {
		if _, ok := ParseCEDICTLine(l); ok {
			t.Errorf("期望跳过 %q", l)
		}
	}
}

func TestParseCEDICTLine_NeutralAndMissingTones(t *testing.T) {
	e, ok := ParseCEDICTLine("AA制 AA制 [A A zhi4] /to split the bill/")
	if !ok {
		t.Fatal("期望解析成功")
	}
	if !reflect.DeepEqual(e.Tones, []int{5, 5, 4}) {
		t.Errorf("缺少数字的音节应为 5，得到 %v", e.Tones)
	}
}

func TestParseCEDICT_Count(t *testing.T) {
	var words []string
	n, err := ParseCEDICT(strings.NewReader(sampleCEDICT), func(e Entry) error {
		words = append(words, e.Simplified)
		return nil
	})
	if err != nil {
		t.Fatalf("ParseCEDICT 失败: %v", err)
	}
	if n != 9 || len(words) != 9 {
		t.Errorf("期望 9 条，得到 %d", n)
	}
}

func TestParseHSK(t *testing.T) {
	csvData := "ID,Simplified,Traditional,Pinyin,POS,Level,WebNo\n" +
		"1,爱,愛,ài,V,1,1\n" +
		"2,爸爸|爸,爸爸|爸,bàba,N,1,2\n" +
		"3,把握,把握,bǎwò,V,7-9,3\n" +
		"4,爱,愛,ài,V,3,4\n" +
		"5,坏,壞,huài,A,x,5\n" +
		"6,short\n"

	levels, err := ParseHSK(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ParseHSK 失败: %v", err)
	}
	want := map[string]int{"爱": 1, "爸爸": 1, "爸": 1, "把握": 7}
	if !reflect.DeepEqual(levels, want) {
		t.Errorf("ParseHSK = %v, 期望 %v", levels, want)
	}
}

func TestParseTones(t *testing.T) {
	if got := ParseTones("3, 3,x,,9,5"); !reflect.DeepEqual(got, []int{3, 3, 5}) {
		t.Errorf("ParseTones = %v", got)
	}
	if got := ParseTones(""); got != nil {
		t.Errorf("空串应返回 nil，得到 %v", got)
	}
	if got := FormatTones([]int{1, 2, 5}); got != "1,2,5" {
		t.Errorf("FormatTones = %q", got)
	}
}

func TestEntryValidate(t *testing.T) {
	valid := Entry{Simplified: "你好", Pinyin: "ni3 hao3", Tones: []int{3, 3}}
	if err := valid.Validate(); err != nil {
		t.Errorf("期望校验通过: %v", err)
	}
	// 声调数与字数不一致仍然合法
	short := Entry{Simplified: "你好吗", Pinyin: "ni3 hao3", Tones: []int{3, 3}}
	if err := short.Validate(); err != nil {
		t.Errorf("声调数不一致不应报错: %v", err)
	}
	bad := []Entry{
		{Pinyin: "ni3"},
		{Simplified: "你"},
		{Simplified: "你", Pinyin: "ni3", HSKLevel: -1},
		{Simplified: "你", Pinyin: "ni3", Tones: []int{7}},
	}
	for _, e := range bad {
		if err := e.Validate(); err == nil {
			t.Errorf("期望校验失败: %+v", e)
		}
	}
}
