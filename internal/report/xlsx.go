// Package report renders access data into files the dashboard offers for
// download.
package report

import (
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

const accessLogSheet = "Access log"

var accessLogHeader = []any{"Date", "Time", "Person", "Document", "Terminal", "Schedule", "Result", "Reason"}

// WriteAccessLog writes entries as a single-sheet workbook to w, with
// timestamps shown in loc. It returns the number of rows written.
func WriteAccessLog(w io.Writer, entries iter.Seq2[types.AccessLogEntry, error], loc *time.Location) (int, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", accessLogSheet); err != nil {
		return 0, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return 0, err
	}
	deniedStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#C00000"},
	})
	if err != nil {
		return 0, err
	}

	_ = f.SetColWidth(accessLogSheet, "A", "B", 12)
	_ = f.SetColWidth(accessLogSheet, "C", "C", 28)
	_ = f.SetColWidth(accessLogSheet, "D", "F", 18)
	_ = f.SetColWidth(accessLogSheet, "G", "G", 10)
	_ = f.SetColWidth(accessLogSheet, "H", "H", 22)

	if err := f.SetSheetRow(accessLogSheet, "A1", &accessLogHeader); err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(accessLogSheet, "A1", "H1", headerStyle); err != nil {
		return 0, err
	}

	n := 0
	for e, err := range entries {
		if err != nil {
			return n, fmt.Errorf("read access log: %w", err)
		}
		row := n + 2
		at := e.Timestamp.In(loc)
		result := "Allowed"
		if !e.Allowed {
			result = "Denied"
		}
		terminal := e.TerminalName
		if terminal == "" {
			terminal = e.TerminalID
		}
		values := []any{
			at.Format("2006-01-02"),
			at.Format("15:04"),
			e.PersonName,
			e.DocumentID,
			terminal,
			e.ScheduleID,
			result,
			string(e.Reason),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(accessLogSheet, cell, &values); err != nil {
			return n, err
		}
		if !e.Allowed {
			resultCell, _ := excelize.CoordinatesToCellName(7, row)
			_ = f.SetCellStyle(accessLogSheet, resultCell, resultCell, deniedStyle)
		}
		n++
	}

	if err := f.Write(w); err != nil {
		return n, fmt.Errorf("write workbook: %w", err)
	}
	return n, nil
}
