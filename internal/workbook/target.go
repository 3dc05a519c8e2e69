package workbook

import (
	"strconv"
	"strings"

	"github.com/nconklindev/ttvfill/internal/types"

	"github.com/xuri/excelize/v2"
)

// ParseTarget validates the raw form values describing where a side is written.
func ParseTarget(sheet, column, startRow string) (types.SheetTarget, error) {
	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		return types.SheetTarget{}, types.ConfigError("Sheet name must not be empty.")
	}

	col, err := ParseColumn(column)
	if err != nil {
		return types.SheetTarget{}, err
	}

	row, err := ParseStartRow(startRow)
	if err != nil {
		return types.SheetTarget{}, err
	}

	return types.SheetTarget{Sheet: sheet, Column: col, StartRow: row}, nil
}

// ParseColumn upper-cases a column letter designation and checks it is a
// valid worksheet column (A through XFD).
func ParseColumn(s string) (string, error) {
	col := strings.ToUpper(strings.TrimSpace(s))
	if _, err := excelize.ColumnNameToNumber(col); err != nil {
		return "", types.ConfigError("Invalid column %q: use a column letter such as D.", s)
	}
	return col, nil
}

// ParseStartRow parses a 1-based worksheet row number.
func ParseStartRow(s string) (int, error) {
	row, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, types.ConfigError("Start row must be an integer.")
	}
	if row < 1 || row > excelize.TotalRows {
		return 0, types.ConfigError("Start row must be between 1 and %d.", excelize.TotalRows)
	}
	return row, nil
}
