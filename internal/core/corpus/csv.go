package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// CSVLoader 讀取分隔檔，需有標題列以及 title、ingredients 欄位；id 欄位可省略
type CSVLoader struct {
	path      string
	delimiter rune
}

// NewCSVLoader 建立分隔檔來源，delimiter 為空時使用逗號
func NewCSVLoader(path, delimiter string) *CSVLoader {
	return &CSVLoader{path: path, delimiter: parseDelimiter(delimiter)}
}

// Load 讀取檔案
func (l *CSVLoader) Load(ctx context.Context) ([]Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ParseCSV(f, l.delimiter)
}

// Source 資料來源描述
func (l *CSVLoader) Source() string {
	return "csv:" + l.path
}

// Path 檔案路徑
func (l *CSVLoader) Path() string {
	return l.path
}

func parseDelimiter(s string) rune {
	if s == "" {
		return ','
	}
	if s == `\t` || s == "tab" {
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// ParseCSV 解析分隔資料。食材欄位是以逗號串接的字串
func ParseCSV(r io.Reader, delimiter rune) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv is empty")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		cols[h] = i
	}
	titleCol, ok := cols["title"]
	if !ok {
		return nil, errors.New(`csv missing required column "title"`)
	}
	ingCol, ok := cols["ingredients"]
	if !ok {
		return nil, errors.New(`csv missing required column "ingredients"`)
	}
	idCol, hasID := cols["id"]

	var records []Record
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", row, err)
		}

		id := row
		if hasID {
			id, err = strconv.Atoi(strings.TrimSpace(fields[idCol]))
			if err != nil {
				return nil, fmt.Errorf("csv row %d: invalid id %q", row, fields[idCol])
			}
		}

		records = append(records, Record{
			ID:          id,
			Title:       strings.TrimSpace(fields[titleCol]),
			Ingredients: splitIngredients(fields[ingCol]),
		})
	}

	return records, nil
}

// splitIngredients 以逗號切開並去除空白
func splitIngredients(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
