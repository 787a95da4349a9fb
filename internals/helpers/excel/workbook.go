package excel

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Missing renders blank values the same way in every export.
const Missing = "-"

type SheetOptions struct {
	CenterHeader bool
	AutoWidth    bool
	FreezeHeader bool
}

// Sheet writes one header row plus data rows into a fresh workbook.
type Sheet struct {
	name    string
	headers []string
	rows    [][]any
	opts    SheetOptions
}

func NewSheet(name string, headers []string, opts SheetOptions) *Sheet {
	return &Sheet{name: name, headers: headers, opts: opts}
}

func (s *Sheet) AddRow(values ...any) {
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = OrMissing(v)
	}
	s.rows = append(s.rows, row)
}

func (s *Sheet) Len() int { return len(s.rows) }

// Bytes renders the workbook to xlsx bytes.
func (s *Sheet) Bytes() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
		return nil, err
	}

	header := make([]any, len(s.headers))
	for i, h := range s.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return nil, err
	}
	for i, row := range s.rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		r := row
		if err := f.SetSheetRow(s.name, cell, &r); err != nil {
			return nil, err
		}
	}

	style := &excelize.Style{Font: &excelize.Font{Bold: true}}
	if s.opts.CenterHeader {
		style.Alignment = &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	}
	styleID, err := f.NewStyle(style)
	if err != nil {
		return nil, err
	}
	if len(s.headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(s.headers), 1)
		if err := f.SetCellStyle(s.name, "A1", last, styleID); err != nil {
			return nil, err
		}
	}

	if s.opts.AutoWidth {
		for col, w := range s.columnWidths() {
			name, _ := excelize.ColumnNumberToName(col + 1)
			if err := f.SetColWidth(s.name, name, name, w); err != nil {
				return nil, err
			}
		}
	}

	if s.opts.FreezeHeader {
		err := f.SetPanes(s.name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
		if err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// columnWidths: longest rendered value in the column + 2.
func (s *Sheet) columnWidths() []float64 {
	widths := make([]float64, len(s.headers))
	measure := func(col int, v any) {
		if col >= len(widths) {
			return
		}
		n := float64(utf8.RuneCountInString(fmt.Sprint(v)) + 2)
		if n > widths[col] {
			widths[col] = n
		}
	}
	for i, h := range s.headers {
		measure(i, h)
	}
	for _, row := range s.rows {
		for i, v := range row {
			measure(i, v)
		}
	}
	for i, w := range widths {
		if w > 255 {
			widths[i] = 255
		}
	}
	return widths
}

// Send writes the sheet as an attachment download.
func (s *Sheet) Send(c *fiber.Ctx, filename string) error {
	data, err := s.Bytes()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, ContentTypeXLSX)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}

// OrMissing maps empty strings and nil pointers to "-".
func OrMissing(v any) any {
	switch t := v.(type) {
	case nil:
		return Missing
	case string:
		if strings.TrimSpace(t) == "" {
			return Missing
		}
		return t
	case *string:
		if t == nil || strings.TrimSpace(*t) == "" {
			return Missing
		}
		return *t
	case fmt.Stringer:
		s := t.String()
		if strings.TrimSpace(s) == "" {
			return Missing
		}
		return s
	default:
		return v
	}
}

var titleCaser = cases.Title(language.English)

// Humanize turns enum values like "fresher" or "on_hold" into "Fresher", "On Hold".
func Humanize(v string) string {
	v = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(v))
	if v == "" {
		return ""
	}
	return titleCaser.String(v)
}
