package assistant

// Mode 食譜生成模式
type Mode string

const (
	// ModeMinimalist 食材少，只用使用者提供的食材，不檢索資料集
	ModeMinimalist Mode = "minimalist"
	// ModeDataset 食材多，先從資料集找靈感
	ModeDataset Mode = "dataset"
)

// DefaultMinimalistMax 食材數量不超過此值時使用極簡模式
const DefaultMinimalistMax = 4

// SelectMode 依食材數量選擇模式
func SelectMode(tokens []string) Mode {
	return SelectModeWithLimit(tokens, DefaultMinimalistMax)
}

// SelectModeWithLimit 同 SelectMode，但可指定極簡模式上限
func SelectModeWithLimit(tokens []string, minimalistMax int) Mode {
	if len(tokens) <= minimalistMax {
		return ModeMinimalist
	}
	return ModeDataset
}

// Notice 模式提示訊息
func (m Mode) Notice() string {
	switch m {
	case ModeMinimalist:
		return "Bahannya simpel nih, Bestie! Aku bikinin resep minimalis yang sat-set-sat-set ya!"
	case ModeDataset:
		return "Mantap, bahannya lumayan lengkap! Aku cari inspirasi dari buku resepku dulu ya, Foodie!"
	default:
		return ""
	}
}
