package sandhi

import (
	"errors"
	"reflect"
	"testing"
)

func split(word string) []string {
	var chars []string
	for _, r := range word {
		chars = append(chars, string(r))
	}
	return chars
}

func TestApply_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		word      string
		tones     []int
		want      []int
		wantChain []string
	}{
		{"third_tone", "你好", []int{3, 3}, []int{2, 3}, []string{RuleThirdTone}},
		{"bu", "不是", []int{4, 4}, []int{2, 4}, []string{RuleBu}},
		{"yi_before_fourth", "一个", []int{1, 4}, []int{2, 4}, []string{RuleYi}},
		{"yi_before_first", "一天", []int{1, 1}, []int{4, 1}, []string{RuleYi}},
		{"yi_before_second", "一年", []int{1, 2}, []int{4, 2}, []string{RuleYi}},
		{"yi_before_third", "一起", []int{1, 3}, []int{4, 3}, []string{RuleYi}},
		{"yi_before_neutral", "一个", []int{1, 5}, []int{1, 5}, nil},
		{"reduplication", "妈妈", []int{1, 1}, []int{1, 5}, []string{RuleReduplication}},
		{"no_sandhi", "中国", []int{1, 2}, []int{1, 2}, nil},
		{"triple_third", "展览馆", []int{3, 3, 3}, []int{2, 2, 3}, []string{RuleThirdTone}},
		{"bu_not_before_fourth", "不好", []int{4, 3}, []int{4, 3}, nil},
		{"bu_in_phrase", "我不去", []int{3, 4, 4}, []int{3, 2, 4}, []string{RuleBu}},
		{"single_char", "好", []int{3}, []int{3}, nil},
		{"empty", "", []int{}, []int{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Apply(split(tt.word), tt.tones)
			if err != nil {
				t.Fatalf("Apply 返回错误: %v", err)
			}
			if !reflect.DeepEqual(res.ModifiedTones, tt.want) {
				t.Errorf("ModifiedTones = %v, 期望 %v", res.ModifiedTones, tt.want)
			}
			if !reflect.DeepEqual(res.RuleChain, tt.wantChain) {
				t.Errorf("RuleChain = %v, 期望 %v", res.RuleChain, tt.wantChain)
			}
			if res.HasSandhi != (len(res.RuleChain) > 0) {
				t.Errorf("HasSandhi = %v 与 RuleChain %v 不一致", res.HasSandhi, res.RuleChain)
			}
			if !reflect.DeepEqual(res.OriginalTones, tt.tones) {
				t.Errorf("OriginalTones = %v, 期望 %v", res.OriginalTones, tt.tones)
			}
		})
	}
}

func TestApply_RulesCompound(t *testing.T) {
	// 一 变调后的 4 声不会再触发其他规则，但三声变调仍作用于后面的音节
	res, err := Apply(split("一起走"), []int{1, 3, 3})
	if err != nil {
		t.Fatalf("Apply 返回错误: %v", err)
	}
	if want := []int{4, 2, 3}; !reflect.DeepEqual(res.ModifiedTones, want) {
		t.Errorf("ModifiedTones = %v, 期望 %v", res.ModifiedTones, want)
	}
	if want := []string{RuleYi, RuleThirdTone}; !reflect.DeepEqual(res.RuleChain, want) {
		t.Errorf("RuleChain = %v, 期望 %v", res.RuleChain, want)
	}
	if got := res.RuleDescription(); got != "yi_sandhi + third_tone_sandhi" {
		t.Errorf("RuleDescription = %q", got)
	}
}

func TestApply_BuThenReduplication(t *testing.T) {
	res, err := Apply(split("不不"), []int{4, 4})
	if err != nil {
		t.Fatalf("Apply 返回错误: %v", err)
	}
	// 不 变调后再叠字轻声
	if want := []int{2, 5}; !reflect.DeepEqual(res.ModifiedTones, want) {
		t.Errorf("ModifiedTones = %v, 期望 %v", res.ModifiedTones, want)
	}
	if want := []string{RuleBu, RuleReduplication}; !reflect.DeepEqual(res.RuleChain, want) {
		t.Errorf("RuleChain = %v, 期望 %v", res.RuleChain, want)
	}
}

func TestApply_ReduplicationOnlyForTwoIdenticalChars(t *testing.T) {
	tests := []struct {
		word  string
		tones []int
		fires bool
	}{
		{"妈妈", []int{1, 1}, true},
		{"谢谢", []int{4, 4}, true},
		{"宝宝", []int{3, 3}, true},
		{"哈哈", []int{1, 5}, true},
		{"中国", []int{1, 2}, false},
		{"哈哈哈", []int{1, 1, 1}, false},
		{"好", []int{3}, false},
	}
	for _, tt := range tests {
		res, err := Apply(split(tt.word), tt.tones)
		if err != nil {
			t.Fatalf("%s: Apply 返回错误: %v", tt.word, err)
		}
		fired := false
		for _, r := range res.RuleChain {
			if r == RuleReduplication {
				fired = true
			}
		}
		if fired != tt.fires {
			t.Errorf("%s: 叠字规则触发 = %v, 期望 %v", tt.word, fired, tt.fires)
		}
		if fired && res.ModifiedTones[1] != 5 {
			t.Errorf("%s: 第二个音节应为轻声，得到 %d", tt.word, res.ModifiedTones[1])
		}
	}
}

func TestApply_ThirdToneWithReduplication(t *testing.T) {
	// 宝宝 [3,3]：三声变调 → [2,3]，叠字 → [2,5]
	res, err := Apply(split("宝宝"), []int{3, 3})
	if err != nil {
		t.Fatalf("Apply 返回错误: %v", err)
	}
	if want := []int{2, 5}; !reflect.DeepEqual(res.ModifiedTones, want) {
		t.Errorf("ModifiedTones = %v, 期望 %v", res.ModifiedTones, want)
	}
	if want := []string{RuleThirdTone, RuleReduplication}; !reflect.DeepEqual(res.RuleChain, want) {
		t.Errorf("RuleChain = %v, 期望 %v", res.RuleChain, want)
	}
}

func TestApply_LengthMismatch(t *testing.T) {
	_, err := Apply([]string{"你", "好"}, []int{3})
	if err == nil {
		t.Fatal("期望长度不一致时返回错误")
	}
	if !errors.Is(err, ErrInputLengthMismatch) {
		t.Errorf("期望 ErrInputLengthMismatch，得到 %v", err)
	}
	var lm *LengthMismatchError
	if !errors.As(err, &lm) || lm.Chars != 2 || lm.Tones != 1 {
		t.Errorf("LengthMismatchError 字段不正确: %+v", lm)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	tones := []int{3, 3}
	if _, err := Apply(split("你好"), tones); err != nil {
		t.Fatalf("Apply 返回错误: %v", err)
	}
	if tones[0] != 3 || tones[1] != 3 {
		t.Errorf("输入被修改: %v", tones)
	}
}

func TestApply_TonesStayInRange(t *testing.T) {
	words := []string{"不一", "一不", "一一", "不不不", "你你你"}
	for _, w := range words {
		chars := split(w)
		for mask := 0; mask < 625; mask++ {
			tones := make([]int, len(chars))
			m := mask
			for i := range tones {
				tones[i] = m%5 + 1
				m /= 5
			}
			res, err := Apply(chars, tones)
			if err != nil {
				t.Fatalf("Apply 返回错误: %v", err)
			}
			if len(res.ModifiedTones) != len(chars) || len(res.OriginalTones) != len(chars) {
				t.Fatalf("%s %v: 长度不一致", w, tones)
			}
			for _, tone := range res.ModifiedTones {
				if tone < 1 || tone > 5 {
					t.Fatalf("%s %v: 声调越界 %d", w, tones, tone)
				}
			}
		}
	}
}
