package answerkey

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mikey/exam-grader/internal/core"
	"github.com/mikey/exam-grader/internal/utils"
	"github.com/xuri/excelize/v2"
)

var headerCells = map[string]bool{
	"question": true,
	"questao":  true,
	"questoes": true,
	"id":       true,
	"q":        true,
}

// ParseSpreadsheet reads an XLSX key with the columns question, step and
// weight on every sheet. A header row is skipped when present, an empty
// question cell continues the previous question and an empty weight counts 1.
func ParseSpreadsheet(data []byte) (*core.AnswerKey, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open spreadsheet: %v", core.ErrMalformedAnswerKey, err)
	}
	defer func() { _ = f.Close() }()

	b := newBuilder()
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		current := ""
		for i, row := range rows {
			if i == 0 && len(row) > 0 && headerCells[utils.Normalize(row[0])] {
				continue
			}
			cells := make([]string, 3)
			for j := 0; j < len(row) && j < 3; j++ {
				cells[j] = strings.TrimSpace(row[j])
			}
			if cells[0] != "" {
				current = questionID(cells[0])
			}
			if current == "" || cells[1] == "" {
				continue
			}
			weight := 1.0
			if cells[2] != "" {
				if weight, err = parseWeight(cells[2]); err != nil {
					return nil, fmt.Errorf("%w: sheet %s row %d: invalid weight %q",
						core.ErrMalformedAnswerKey, sheet, i+1, cells[2])
				}
			}
			b.step(current, core.Step{Text: cells[1], Weight: weight})
		}
	}
	return b.build()
}
