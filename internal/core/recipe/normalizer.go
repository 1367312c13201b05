package recipe

import (
	"sort"
	"strings"
)

// Clean 以逗號切分食材，去除空白並轉小寫，保留原始順序
func Clean(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Normalize 回傳排序後的食材清單，不去重
func Normalize(text string) []string {
	out := Clean(text)
	sort.Strings(out)
	return out
}
