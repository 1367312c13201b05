package recipe

// Record 資料集中的一筆食譜，載入後不可變
type Record struct {
	Title          string   `json:"title"`
	RawIngredients string   `json:"raw_ingredients"`
	Ingredients    []string `json:"ingredients"`
	Steps          string   `json:"steps,omitempty"`
	Category       string   `json:"category,omitempty"`
	URL            string   `json:"url,omitempty"`
}

// Match 相似度查詢結果
type Match struct {
	Record Record  `json:"record"`
	Index  int     `json:"index"`
	Score  float64 `json:"score"`
}

// Substitution 食材替代建議
type Substitution struct {
	Ingredient string `json:"ingredient"`
	Substitute string `json:"substitute"`
	Reason     string `json:"reason"`
}
