package recipe

import (
	"regexp"
	"strings"
)

// DefaultFilename 找不到標題時使用
const DefaultFilename = "resep_sobat_dapur.txt"

var (
	headingPattern   = regexp.MustCompile(`(?m)^#\s*(.*)`)
	titleStripper    = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}-]`)
	separatorPattern = regexp.MustCompile(`[-\s\p{Z}]+`)
)

// Filename 依回覆中的第一個 Markdown 標題產生下載檔名
func Filename(text string) string {
	m := headingPattern.FindStringSubmatch(text)
	if m == nil {
		return DefaultFilename
	}

	title := strings.TrimSpace(m[1])
	title = strings.ToLower(strings.TrimSpace(titleStripper.ReplaceAllString(title, "")))
	title = separatorPattern.ReplaceAllString(title, "_")
	if title == "" {
		return DefaultFilename
	}
	return "resep_" + title + ".txt"
}
