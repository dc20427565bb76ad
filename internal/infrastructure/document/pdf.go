package document

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sangkips/billdesk/internal/domain/entity"
)

// Canvas is the drawing surface a receipt is rendered onto. Coordinates are
// points measured from the top-left corner of the page.
type Canvas interface {
	DrawText(x, y float64, text string)
	DrawTable(x, y float64, widths []float64, rows [][]string, rowHeight float64)
	NewPage()
	SetFont(style string, size float64)
	PageSize() (width, height float64)
	Save(path string) error
}

// Layout controls the page geometry of a rendered receipt.
type Layout struct {
	Margin       float64
	LineHeight   float64
	FontFamily   string
	FontSize     float64
	ColumnWidths []float64
}

// DefaultLayout is A4 with Courier 9 in six columns.
func DefaultLayout() Layout {
	return Layout{
		Margin:       40,
		LineHeight:   12,
		FontFamily:   "Courier",
		FontSize:     9,
		ColumnWidths: []float64{220, 60, 60, 50, 40, 75},
	}
}

var tableHeader = []string{"Item", "MRP", "Rate", "Disc%", "Qty", "Total"}

// courierAdvance is the width of one Courier glyph relative to font size.
const courierAdvance = 0.6

// nameChars is how many characters of an item name fit in the first column.
func (l Layout) nameChars() int {
	if len(l.ColumnWidths) == 0 || l.FontSize <= 0 {
		return itemColumnWidth
	}
	n := int((l.ColumnWidths[0] - 4) / (l.FontSize * courierAdvance))
	if n < 1 {
		n = 1
	}
	return n
}

type pdfWriter struct {
	c       Canvas
	layout  Layout
	bottom  float64
	y       float64
	inTable bool
}

// ensureLine starts a new page when less than one line height is left.
// Inside the item table the column header is repeated on the new page.
func (w *pdfWriter) ensureLine() {
	if w.bottom-w.y >= w.layout.LineHeight {
		return
	}
	w.c.NewPage()
	w.c.SetFont("", w.layout.FontSize)
	w.y = w.layout.Margin
	if w.inTable {
		w.headerRow()
	}
}

func (w *pdfWriter) text(s string) {
	w.ensureLine()
	w.c.DrawText(w.layout.Margin, w.y, s)
	w.y += w.layout.LineHeight
}

func (w *pdfWriter) row(cells []string) {
	w.ensureLine()
	w.c.DrawTable(w.layout.Margin, w.y, w.layout.ColumnWidths, [][]string{cells}, w.layout.LineHeight)
	w.y += w.layout.LineHeight
}

func (w *pdfWriter) headerRow() {
	w.c.SetFont("B", w.layout.FontSize)
	w.c.DrawTable(w.layout.Margin, w.y, w.layout.ColumnWidths, [][]string{tableHeader}, w.layout.LineHeight)
	w.c.SetFont("", w.layout.FontSize)
	w.y += w.layout.LineHeight
}

func (w *pdfWriter) gap() {
	w.y += w.layout.LineHeight / 2
}

// RenderPDF draws the receipt onto c. Item names longer than the first
// column continue on following rows; a row is never dropped.
func RenderPDF(c Canvas, r *entity.Receipt, layout Layout) error {
	if r == nil {
		return fmt.Errorf("document: nil receipt")
	}
	if layout.LineHeight <= 0 || len(layout.ColumnWidths) != len(tableHeader) {
		return fmt.Errorf("document: invalid layout")
	}
	_, height := c.PageSize()
	w := &pdfWriter{
		c:      c,
		layout: layout,
		bottom: height - layout.Margin,
		y:      layout.Margin,
	}

	header := headerLines(r.Header)
	if len(header) > 0 {
		c.SetFont("B", layout.FontSize+5)
		w.text(header[0])
		c.SetFont("", layout.FontSize)
		for _, line := range header[1:] {
			w.text(line)
		}
		w.gap()
	}
	c.SetFont("", layout.FontSize)
	w.text("Bill No: " + r.BillNumber)
	w.text("Date: " + formatDate(r.Date))
	if line := customerLine(r); line != "" {
		w.text(line)
	}
	w.gap()

	w.ensureLine()
	w.headerRow()
	w.inTable = true
	width := layout.nameChars()
	for _, it := range r.Items {
		parts := wrap(it.Name, width)
		w.row([]string{
			parts[0],
			Money(it.MRP),
			Money(it.Rate),
			Money(it.DiscountPercent),
			fmt.Sprintf("%d", it.Quantity),
			Money(it.Total),
		})
		for _, part := range parts[1:] {
			w.row([]string{part, "", "", "", "", ""})
		}
	}
	w.inTable = false
	w.gap()

	for _, line := range totalLines(r) {
		w.text(line)
	}
	return nil
}

// wrap splits s into pieces of at most width runes, preferring word
// boundaries. It always returns at least one piece.
func wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			curLen = 0
		}
	}
	for _, word := range words {
		for utf8.RuneCountInString(word) > width {
			flush()
			runes := []rune(word)
			lines = append(lines, string(runes[:width]))
			word = string(runes[width:])
		}
		n := utf8.RuneCountInString(word)
		if curLen > 0 && curLen+1+n > width {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += n
	}
	flush()
	return lines
}
