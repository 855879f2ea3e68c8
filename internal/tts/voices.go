package tts

// DefaultVoice 默认音色 ID。
const DefaultVoice = "female1"

// Voice 音色。Neural 为 Edge/Azure 神经网络音色名，TencentType 为腾讯云音色编号。
type Voice struct {
	ID          string `json:"-"`
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	Locale      string `json:"locale"`
	Neural      string `json:"-"`
	TencentType int64  `json:"-"`
}

var voices = []Voice{
	{"female1", "Xiaoxiao", "female", "zh-CN", "zh-CN-XiaoxiaoNeural", 1001},
	{"female2", "Xiaochen", "female", "zh-CN", "zh-CN-XiaochenNeural", 1002},
	{"female3", "Xiaohan", "female", "zh-CN", "zh-CN-XiaohanNeural", 1005},
	{"female4", "Xiaoyan", "female", "zh-CN", "zh-CN-XiaoyanNeural", 1003},
	{"male1", "Yunxi", "male", "zh-CN", "zh-CN-YunxiNeural", 1004},
	{"male2", "Yunyang", "male", "zh-CN", "zh-CN-YunyangNeural", 1010},
	{"male3", "Yunjian", "male", "zh-CN", "zh-CN-YunjianNeural", 1018},
}

// Voices 返回全部音色（按 ID 固定顺序）。
func Voices() []Voice {
	out := make([]Voice, len(voices))
	copy(out, voices)
	return out
}

// LookupVoice 按 ID 查找音色，未知 ID 回退为默认音色，ok 表示 ID 是否有效。
func LookupVoice(id string) (Voice, bool) {
	for _, v := range voices {
		if v.ID == id {
			return v, true
		}
	}
	return voices[0], false
}
