package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/sangkips/billdesk/internal/domain/entity"
)

// ReadCSV parses a delimited product master. The first record is the header.
// A malformed record becomes a Row with Err set and reading continues with
// the next record; only an unreadable header fails the whole file.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sheet: read csv header: %w", err)
	}
	m := mapColumns(header)

	var rows []Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return rows, fmt.Errorf("sheet: read csv: %w", err)
			}
			rows = append(rows, Row{Line: perr.StartLine, Err: perr.Err})
			continue
		}
		if blank(record) {
			continue
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, Row{Line: line, Product: m.product(record)})
	}
	return rows, nil
}

// WriteCSV writes products in Header order.
func WriteCSV(w io.Writer, products []entity.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("sheet: write csv: %w", err)
	}
	for i := range products {
		if err := cw.Write(productRecord(&products[i])); err != nil {
			return fmt.Errorf("sheet: write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
