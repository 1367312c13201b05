package recipe

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"cooksy/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultRelevanceThreshold 最高分必須超過此值才回傳結果
const DefaultRelevanceThreshold = 0.15

// 至少兩個字元的字母、數字或底線
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Index TF-IDF 向量空間，第 i 列對應第 i 筆食譜；建立後唯讀，可併發查詢
type Index struct {
	records    []Record
	vocabulary map[string]int
	idf        []float64
	rows       []sparseVector
	threshold  float64
}

// sparseVector 已 L2 正規化的稀疏向量，terms 依欄位遞增
type sparseVector struct {
	terms   []int
	weights []float64
}

// IndexOption 索引選項
type IndexOption func(*Index)

// WithThreshold 設定相關度門檻
func WithThreshold(threshold float64) IndexOption {
	return func(ix *Index) {
		ix.threshold = threshold
	}
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func countTerms(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return counts
}

// BuildIndex 以食譜的食材建立 TF-IDF 索引
// idf = ln((1+n)/(1+df)) + 1，tf 為原始次數
func BuildIndex(records []Record, opts ...IndexOption) *Index {
	ix := &Index{
		records:   records,
		threshold: DefaultRelevanceThreshold,
	}
	for _, opt := range opts {
		opt(ix)
	}

	docs := make([]map[string]int, len(records))
	df := make(map[string]int)
	for i, rec := range records {
		docs[i] = countTerms(tokenize(strings.Join(rec.Ingredients, " ")))
		for term := range docs[i] {
			df[term]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(records))
	ix.vocabulary = make(map[string]int, len(terms))
	ix.idf = make([]float64, len(terms))
	for col, term := range terms {
		ix.vocabulary[term] = col
		ix.idf[col] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	ix.rows = make([]sparseVector, len(records))
	for i, counts := range docs {
		ix.rows[i] = ix.vectorize(counts)
	}

	common.LogInfo("相似度索引已建立",
		zap.Int("records", len(records)),
		zap.Int("vocabulary", len(terms)),
	)
	return ix
}

// vectorize 將詞頻投影到詞彙表，未知詞忽略
func (ix *Index) vectorize(counts map[string]int) sparseVector {
	byColumn := make(map[int]int, len(counts))
	var vec sparseVector
	for term, count := range counts {
		col, ok := ix.vocabulary[term]
		if !ok {
			continue
		}
		byColumn[col] = count
		vec.terms = append(vec.terms, col)
	}
	sort.Ints(vec.terms)

	vec.weights = make([]float64, len(vec.terms))
	var norm float64
	for i, col := range vec.terms {
		w := float64(byColumn[col]) * ix.idf[col]
		vec.weights[i] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec.weights {
			vec.weights[i] /= norm
		}
	}
	return vec
}

// Search 回傳與食材最相近的 topN 筆食譜；最高分未超過門檻時回傳空結果
// 同分時依資料集順序，topN <= 0 視為 1
func (ix *Index) Search(tokens []string, topN int) []Match {
	if topN <= 0 {
		topN = 1
	}
	if len(ix.rows) == 0 {
		return nil
	}

	query := ix.vectorize(countTerms(tokenize(strings.Join(tokens, " "))))
	weights := make(map[int]float64, len(query.terms))
	for i, col := range query.terms {
		weights[col] = query.weights[i]
	}

	scores := make([]float64, len(ix.rows))
	best := 0.0
	for i, row := range ix.rows {
		var dot float64
		for j, col := range row.terms {
			if w, ok := weights[col]; ok {
				dot += w * row.weights[j]
			}
		}
		scores[i] = dot
		if dot > best {
			best = dot
		}
	}

	if best <= ix.threshold {
		return []Match{}
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if topN > len(order) {
		topN = len(order)
	}
	matches := make([]Match, 0, topN)
	for _, i := range order[:topN] {
		matches = append(matches, Match{
			Record: ix.records[i],
			Index:  i,
			Score:  scores[i],
		})
	}
	return matches
}

// Len 索引中的食譜數量
func (ix *Index) Len() int {
	return len(ix.records)
}

// VocabularySize 詞彙表大小
func (ix *Index) VocabularySize() int {
	return len(ix.vocabulary)
}

// Threshold 相關度門檻
func (ix *Index) Threshold() float64 {
	return ix.threshold
}
