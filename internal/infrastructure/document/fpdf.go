package document

import (
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/sangkips/billdesk/internal/domain/entity"
)

// A4 in points.
const (
	A4Width  = 595.28
	A4Height = 841.89
)

// FPDFCanvas is the production Canvas backed by go-pdf/fpdf.
type FPDFCanvas struct {
	pdf    *fpdf.Fpdf
	family string
	size   float64
	tr     func(string) string
}

// NewFPDFCanvas opens a one-page A4 document using the layout's font.
func NewFPDFCanvas(layout Layout) *FPDFCanvas {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: A4Width, Ht: A4Height},
	})
	pdf.SetMargins(layout.Margin, layout.Margin, layout.Margin)
	pdf.SetAutoPageBreak(false, layout.Margin)
	pdf.AddPage()
	pdf.SetFont(layout.FontFamily, "", layout.FontSize)
	return &FPDFCanvas{
		pdf:    pdf,
		family: layout.FontFamily,
		size:   layout.FontSize,
		// core fonts are cp1252; this maps UTF-8 input onto it
		tr: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (c *FPDFCanvas) DrawText(x, y float64, text string) {
	// y is the top of the line; fpdf places text on its baseline
	c.pdf.Text(x, y+c.size, c.tr(text))
}

func (c *FPDFCanvas) DrawTable(x, y float64, widths []float64, rows [][]string, rowHeight float64) {
	for r, row := range rows {
		cx := x
		cy := y + float64(r)*rowHeight
		for i, w := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			align := "R"
			if i == 0 {
				align = "L"
			}
			c.pdf.SetXY(cx, cy)
			c.pdf.CellFormat(w, rowHeight, c.tr(cell), "1", 0, align, false, 0, "")
			cx += w
		}
	}
}

func (c *FPDFCanvas) NewPage() {
	c.pdf.AddPage()
	c.pdf.SetFont(c.family, "", c.size)
}

func (c *FPDFCanvas) SetFont(style string, size float64) {
	c.size = size
	c.pdf.SetFont(c.family, style, size)
}

func (c *FPDFCanvas) PageSize() (float64, float64) {
	w, h, _ := c.pdf.PageSize(c.pdf.PageNo())
	return w, h
}

func (c *FPDFCanvas) Save(path string) error {
	if err := c.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("document: save pdf: %w", err)
	}
	return nil
}

// WritePDF renders the receipt with the default layout and saves it to path.
func WritePDF(path string, r *entity.Receipt) error {
	layout := DefaultLayout()
	c := NewFPDFCanvas(layout)
	if err := RenderPDF(c, r, layout); err != nil {
		return err
	}
	if err := c.pdf.Error(); err != nil {
		return fmt.Errorf("document: render pdf: %w", err)
	}
	return c.Save(path)
}
