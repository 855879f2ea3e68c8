// Package sandhi 实现普通话变调规则。
//
// 四条规则按固定顺序依次作用在上一条规则的结果上：
//
//	不 变调:   4 + 4 → 2 + 4        (不是 bù shì → bú shì)
//	一 变调:   一 + 4 → 2，一 + 1/2/3 → 4  (一个 yí gè，一天 yì tiān)
//	三声变调:  3 + 3 → 2 + 3        (你好 nǐ hǎo → ní hǎo)
//	叠字轻声:  AA → A + 轻声        (妈妈 māma)
package sandhi

import (
	"errors"
	"fmt"
	"strings"
)

// 规则标识，按应用顺序出现在 RuleChain 中。
const (
	RuleBu            = "bu_sandhi"
	RuleYi            = "yi_sandhi"
	RuleThirdTone     = "third_tone_sandhi"
	RuleReduplication = "reduplication_sandhi"
)

// ErrInputLengthMismatch 字符数与声调数不一致（调用方违约）。
var ErrInputLengthMismatch = errors.New("sandhi: 字符数与声调数不一致")

// LengthMismatchError 记录不一致的长度。
type LengthMismatchError struct {
	Chars int
	Tones int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("sandhi: 字符数 %d 与声调数 %d 不一致", e.Chars, e.Tones)
}

// Is 使 errors.Is(err, ErrInputLengthMismatch) 成立。
func (e *LengthMismatchError) Is(target error) bool {
	return target == ErrInputLengthMismatch
}

// Result 变调结果。
type Result struct {
	OriginalTones []int
	ModifiedTones []int
	HasSandhi     bool
	RuleChain     []string
}

// RuleDescription 返回以 " + " 连接的规则链，未变调时返回空串。
func (r Result) RuleDescription() string {
	return strings.Join(r.RuleChain, " + ")
}

// rule 读取上一步的声调序列 in，返回新序列及是否生效；不得修改 in。
type rule struct {
	name  string
	apply func(chars []string, in []int) ([]int, bool)
}

// rules 固定顺序，后一条规则看到的是前一条规则的输出。
var rules = [...]rule{
	{RuleBu, applyBu},
	{RuleYi, applyYi},
	{RuleThirdTone, applyThirdTone},
	{RuleReduplication, applyReduplication},
}

// Apply 对一个词的声调序列应用全部变调规则。
func Apply(chars []string, tones []int) (Result, error) {
	if len(chars) != len(tones) {
		return Result{}, &LengthMismatchError{Chars: len(chars), Tones: len(tones)}
	}

	original := make([]int, len(tones))
	copy(original, tones)
	current := make([]int, len(tones))
	copy(current, tones)
	var chain []string

	for _, r := range rules {
		next, changed := r.apply(chars, current)
		if changed {
			chain = append(chain, r.name)
			current = next
		}
	}

	return Result{
		OriginalTones: original,
		ModifiedTones: current,
		HasSandhi:     len(chain) > 0,
		RuleChain:     chain,
	}, nil
}

func applyBu(chars []string, in []int) ([]int, bool) {
	out := append([]int(nil), in...)
	changed := false
	for i := 0; i+1 < len(in); i++ {
		if chars[i] == "不" && in[i] == 4 && in[i+1] == 4 {
			out[i] = 2
			changed = true
		}
	}
	return out, changed
}

func applyYi(chars []string, in []int) ([]int, bool) {
	out := append([]int(nil), in...)
	changed := false
	for i := 0; i+1 < len(in); i++ {
		if chars[i] != "一" || in[i] != 1 {
			continue
		}
		switch in[i+1] {
		case 4:
			out[i] = 2
			changed = true
		case 1, 2, 3:
			out[i] = 4
			changed = true
		}
	}
	return out, changed
}

// applyThirdTone 每一对都按规则开始前的声调判断，3-3-3 → 2-2-3。
func applyThirdTone(_ []string, in []int) ([]int, bool) {
	out := append([]int(nil), in...)
	changed := false
	for i := 0; i+1 < len(in); i++ {
		if in[i] == 3 && in[i+1] == 3 {
			out[i] = 2
			changed = true
		}
	}
	return out, changed
}

// applyReduplication 仅对两个相同字组成的词生效，第二个音节无论原调都读轻声。
func applyReduplication(chars []string, in []int) ([]int, bool) {
	if len(chars) != 2 || chars[0] != chars[1] {
		return in, false
	}
	return []int{in[0], 5}, true
}
