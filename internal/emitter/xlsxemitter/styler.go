package xlsxemitter

import "github.com/xuri/excelize/v2"

// styler holds the cell styles registered on a workbook.
type styler struct {
	header   int
	resource int
	required int
	plain    int
}

func newStyler(f *excelize.File) (*styler, error) {
	s := &styler{}
	var err error

	// Bold on gray, centered.
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#000000"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border(),
	})
	if err != nil {
		return nil, err
	}

	s.resource, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#0000FF"},
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    border(),
	})
	if err != nil {
		return nil, err
	}

	s.required, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: "#D32F2F"},
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    border(),
	})
	if err != nil {
		return nil, err
	}

	s.plain, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		Border:    border(),
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func border() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "D4D4D4", Style: 1},
		{Type: "top", Color: "D4D4D4", Style: 1},
		{Type: "bottom", Color: "D4D4D4", Style: 1},
		{Type: "right", Color: "D4D4D4", Style: 1},
	}
}
