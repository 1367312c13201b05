package recipe

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cooksy/internal/pkg/common"

	"go.uber.org/zap"
)

// 資料集欄位
const (
	ColumnTitle       = "Title Cleaned"
	ColumnIngredients = "Ingredients"
	ColumnSteps       = "Steps"
	ColumnCategory    = "Category"
	ColumnURL         = "URL"
)

// LoadCorpus 讀取 CSV 資料集
func LoadCorpus(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, common.DataUnavailable(fmt.Sprintf("File '%s' tidak ditemukan.", path), err)
	}
	defer file.Close()

	records, err := ReadCorpus(file)
	if err != nil {
		return nil, err
	}

	common.LogInfo("食譜資料集已載入",
		zap.String("path", path),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// ReadCorpus 從 reader 解析資料集，第一列為欄位名稱
func ReadCorpus(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, common.DataUnavailable("recipe corpus is empty", nil)
		}
		return nil, common.DataUnavailable("failed to read recipe corpus header", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		columns[strings.TrimSpace(name)] = i
	}

	for _, required := range []string{ColumnTitle, ColumnIngredients} {
		if _, ok := columns[required]; !ok {
			return nil, common.DataUnavailable(fmt.Sprintf("recipe corpus is missing column %q", required), nil)
		}
	}

	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, common.DataUnavailable(fmt.Sprintf("failed to read recipe corpus at line %d", line), err)
		}

		raw := field(row, ColumnIngredients)
		records = append(records, Record{
			Title:          field(row, ColumnTitle),
			RawIngredients: raw,
			Ingredients:    Clean(raw),
			Steps:          field(row, ColumnSteps),
			Category:       field(row, ColumnCategory),
			URL:            field(row, ColumnURL),
		})
	}

	if len(records) == 0 {
		return nil, common.DataUnavailable("recipe corpus is empty", nil)
	}
	return records, nil
}
