package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/VastSea0/italiano-sub000/internal/entity"
)

// listSeparator splits multi-value cells such as present forms or examples.
const listSeparator = ";"

var listColumns = map[string]bool{"present": true, "past": true, "examples": true}

// DecodeWorkbook reads an xlsx workbook with one sheet per category. The first
// row of every sheet is a header using the same field names as the JSON format.
func DecodeWorkbook(r io.Reader) (entity.VocabularyDataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return entity.VocabularyDataset{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var dataset entity.VocabularyDataset
	for _, sheet := range f.GetSheetList() {
		category := entity.ParseCategory(sheet)
		if !category.Valid() {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return entity.VocabularyDataset{}, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}
		header := lo.Map(rows[0], func(cell string, _ int) string {
			return strings.ToLower(strings.TrimSpace(cell))
		})
		for _, row := range rows[1:] {
			fields := rowFields(header, row)
			if len(fields) == 0 {
				continue
			}
			dataset.Append(category, entryFromFields(category, fields))
		}
	}
	dataset.Normalize()
	return dataset, nil
}

func rowFields(header, row []string) map[string]any {
	fields := make(map[string]any, len(header))
	for i, cell := range row {
		if i >= len(header) || header[i] == "" || strings.TrimSpace(cell) == "" {
			continue
		}
		if listColumns[header[i]] {
			parts := lo.Map(strings.Split(cell, listSeparator), func(part string, _ int) string {
				return strings.TrimSpace(part)
			})
			fields[header[i]] = lo.ToAnySlice(lo.Compact(parts))
			continue
		}
		fields[header[i]] = cell
	}
	return fields
}
