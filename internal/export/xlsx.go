package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/claude/fitlog/internal/library"
	"github.com/xuri/excelize/v2"
)

var baseHeaders = []string{"#", "Workout", "Exercise", "Mode", "Sets", "Target", "Weight"}

// WriteRoutine writes the active workouts of view as an .xlsx workbook with
// one row per exercise. Deleted workouts and exercises are not exported.
func WriteRoutine(w io.Writer, view library.RoutineView) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(view.Name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	maxSets := 0
	for _, wv := range view.Workouts {
		for _, ev := range wv.Exercises {
			maxSets = max(maxSets, len(ev.SetReps))
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	weightStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		return fmt.Errorf("creating weight style: %w", err)
	}

	headers := make([]any, 0, len(baseHeaders)+maxSets)
	for _, h := range baseHeaders {
		headers = append(headers, h)
	}
	for i := range maxSets {
		headers = append(headers, fmt.Sprintf("Set %d", i+1))
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("styling header row: %w", err)
	}

	row := 2
	for wi, wv := range view.Workouts {
		for _, ev := range wv.Exercises {
			values := []any{wi + 1, wv.Name, ev.Name, string(ev.Mode), ev.Sets, ev.TargetReps, ev.Weight}
			for _, sr := range ev.SetReps {
				values = append(values, sr.Reps)
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
			weightCell, _ := excelize.CoordinatesToCellName(len(baseHeaders), row)
			if err := f.SetCellStyle(sheet, weightCell, weightCell, weightStyle); err != nil {
				return fmt.Errorf("styling row %d: %w", row, err)
			}
			row++
		}
	}

	f.SetColWidth(sheet, "A", "A", 5)
	f.SetColWidth(sheet, "B", "C", 28)
	f.SetColWidth(sheet, "D", "G", 12)
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// SheetName turns a routine name into a valid worksheet name: at most 31
// characters and none of : \ / ? * [ ].
func SheetName(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	clean = strings.Trim(clean, "'")
	if r := []rune(clean); len(r) > 31 {
		clean = string(r[:31])
	}
	if clean == "" {
		return "Routine"
	}
	return clean
}
