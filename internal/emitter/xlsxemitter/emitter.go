// Package xlsxemitter renders the generated documentation as a spreadsheet
// with one sheet for resources, one for operations and one for models.
package xlsxemitter

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mark3labs/routedoc/internal/docgen"
	"github.com/mark3labs/routedoc/internal/emitter"
	"github.com/mark3labs/routedoc/internal/swagger"
)

// Sheet names.
const (
	SheetResources  = "Resources"
	SheetOperations = "Operations"
	SheetModels     = "Models"

	DefaultFileName = "api.xlsx"
)

// Options controls how the spreadsheet is written.
type Options struct {
	OutDir   string // required; target directory
	FileName string // defaults to api.xlsx
	Force    bool   // overwrite a non-empty directory
	DryRun   bool   // don't write, only plan
}

// Result returns the planned file and the number of rows per sheet.
type Result struct {
	Operations int
	Models     int
	Planned    []emitter.PlannedFile
}

// Emit builds the workbook for res.
func Emit(ctx context.Context, res *docgen.Result, opts Options) (*Result, error) {
	if res == nil {
		return nil, fmt.Errorf("xlsxemitter: nil result")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("xlsxemitter: OutDir is required")
	}
	name := strings.TrimSpace(opts.FileName)
	if name == "" {
		name = DefaultFileName
	}
	if !strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		name += ".xlsx"
	}

	f := excelize.NewFile()
	defer f.Close()
	w, err := newWorkbook(f)
	if err != nil {
		return nil, fmt.Errorf("xlsxemitter: styles: %w", err)
	}

	w.resources(res)
	ops, err := w.operations(ctx, res)
	if err != nil {
		return nil, err
	}
	models := w.models(res.Definitions)
	if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx != -1 {
		w.check(f.DeleteSheet("Sheet1"))
	}
	if w.err != nil {
		return nil, fmt.Errorf("xlsxemitter: %w", w.err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsxemitter: encode workbook: %w", err)
	}
	files := map[string][]byte{name: buf.Bytes()}
	planned := emitter.Plan(files)
	if !opts.DryRun {
		if err := emitter.WriteFiles("xlsxemitter", opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}
	return &Result{Operations: ops, Models: models, Planned: planned}, nil
}

// workbook writes rows and keeps the first excelize error.
type workbook struct {
	f   *excelize.File
	s   *styler
	err error
}

func newWorkbook(f *excelize.File) (*workbook, error) {
	s, err := newStyler(f)
	if err != nil {
		return nil, err
	}
	return &workbook{f: f, s: s}, nil
}

func (w *workbook) check(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func (w *workbook) sheet(name string, headers []string, widths map[string]float64) {
	_, err := w.f.NewSheet(name)
	w.check(err)
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	w.row(name, 1, row, w.s.header)
	w.check(w.f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}))
	for col, width := range widths {
		w.check(w.f.SetColWidth(name, col, col, width))
	}
}

func (w *workbook) row(sheet string, row int, values []any, style int) {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			w.check(err)
			return
		}
		w.check(w.f.SetCellValue(sheet, cell, v))
		w.check(w.f.SetCellStyle(sheet, cell, cell, style))
	}
}

func (w *workbook) resources(res *docgen.Result) {
	w.sheet(SheetResources, []string{"Resource", "Description", "Operations", "Models"},
		map[string]float64{"A": 25, "B": 50})
	// Listing entries and declarations are built in lockstep.
	for i, entry := range res.Listing.APIs {
		ops, models := 0, 0
		if i < len(res.Declarations) {
			ops, models = res.Declarations[i].Operations(), len(res.Declarations[i].Models)
		}
		w.row(SheetResources, i+2, []any{entry.Path, entry.Description, ops, models}, w.s.plain)
	}
}

func (w *workbook) operations(ctx context.Context, res *docgen.Result) (int, error) {
	w.sheet(SheetOperations, []string{"Resource", "Method", "Path", "Nickname", "Summary", "Parameters", "Returns"},
		map[string]float64{"C": 35, "D": 35, "E": 40, "F": 45, "G": 25})
	row := 2
	for i := range res.Declarations {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		decl := &res.Declarations[i]
		for _, api := range decl.APIs {
			for _, op := range api.Operations {
				w.row(SheetOperations, row, []any{
					decl.Class, op.Method, api.Path, op.Nickname, op.Summary,
					formatParams(op.Parameters), formatType(op.Type, op.Items),
				}, w.s.plain)
				w.check(w.f.SetCellStyle(SheetOperations, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), w.s.resource))
				row++
			}
		}
	}
	return row - 2, nil
}

func (w *workbook) models(defs swagger.Definitions) int {
	w.sheet(SheetModels, []string{"Model", "Property", "Type", "Format", "Required", "Description"},
		map[string]float64{"A": 25, "B": 25, "C": 20, "F": 50})
	row := 2
	for _, name := range defs.Names() {
		def := defs[name]
		required := make(map[string]bool, len(def.Required))
		for _, r := range def.Required {
			required[r] = true
		}
		for _, prop := range def.PropertyNames() {
			s := def.Properties[prop]
			desc, _ := s.Extra["description"].(string)
			style := w.s.plain
			if required[prop] {
				style = w.s.required
			}
			w.row(SheetModels, row, []any{name, prop, formatType(s.Type, s.Items), s.Format, required[prop], desc}, style)
			row++
		}
	}
	return len(defs)
}

// formatParams renders one parameter per line: "id (path, string, required)".
func formatParams(params []swagger.Parameter) string {
	lines := make([]string, 0, len(params))
	for _, p := range params {
		attrs := []string{p.Location, formatType(p.Type, p.Items)}
		if p.Required {
			attrs = append(attrs, "required")
		}
		lines = append(lines, fmt.Sprintf("%s (%s)", p.Name, strings.Join(attrs, ", ")))
	}
	return strings.Join(lines, "\n")
}

// formatType spells out array element types: "array of Widget".
func formatType(typ string, items *swagger.Schema) string {
	if typ == swagger.TypeArray && items != nil {
		return "array of " + formatType(items.Type, items.Items)
	}
	return typ
}
