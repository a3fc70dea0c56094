package fileio

import (
	"bytes"
	"errors"
	"io"

	xls "github.com/extrame/xls"
)

// Row.LastCol() у .xls из учётных систем врёт, поэтому ширину листа меряем сами.
const xlsProbeCols = 256

func readXLS(r io.Reader, headerRow int) ([][]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var wb *xls.WorkBook
	lastErr := errors.New("xls: failed to open workbook")
	for _, cs := range []string{"utf-8", "windows-1252", "windows-1251"} {
		if wb, err = xls.OpenReader(bytes.NewReader(b), cs); err == nil && wb != nil {
			break
		}
		if err != nil {
			lastErr = err
		}
	}
	if wb == nil {
		return nil, lastErr
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	width := xlsWidth(sheet, headerRow)
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		cols := make([]string, width)
		if row := sheet.Row(i); row != nil {
			for j := 0; j < width; j++ {
				cols[j] = normalizeCell(row.Col(j))
			}
		}
		rows = append(rows, cols)
	}
	return rows, nil
}

// xlsWidth - самая правая непустая колонка; шапка проверяется первой, т.к. она обычно самая широкая.
func xlsWidth(sheet *xls.WorkSheet, headerRow int) int {
	width := 0
	probe := func(i int) {
		if i < 0 || i > int(sheet.MaxRow) {
			return
		}
		row := sheet.Row(i)
		if row == nil {
			return
		}
		for j := width; j < xlsProbeCols; j++ {
			if normalizeCell(row.Col(j)) != "" {
				width = j + 1
			}
		}
	}
	probe(headerRow - 1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		probe(i)
	}
	if width == 0 {
		width = 1
	}
	return width
}
