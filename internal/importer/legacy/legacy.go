package legacy

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	enc "github.com/tobiaswld/werkstatt/internal/encoding"

	"github.com/tobiaswld/werkstatt/internal/billing"
)

// Expected column headers in the export. The desktop app writes German
// headers regardless of the machine locale.
const (
	colNumber  = "Belegnummer"
	colType    = "Typ"
	colDate    = "Datum"
	colName    = "Name"
	colCompany = "Firma"
	colEmail   = "E-Mail"
	colAmount  = "Betrag"
	colDesc    = "Beschreibung"
)

// Parser reads CSV exports from the predecessor desktop application and
// produces billing document import params. One row is one document with a
// single line item. The export prepends a variable-length preamble (shop
// address, export date), so the header row is located by scanning.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]billing.ImportParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cols, headerIdx, ok := findHeader(rows)
	if !ok {
		return nil, fmt.Errorf("no header row found: expected columns %s, %s and %s", colNumber, colDate, colAmount)
	}

	return parseRows(cols, rows[headerIdx+1:])
}

// colIndex maps column names to their index in the header row.
type colIndex map[string]int

// findHeader scans rows for one that carries at least the number, date and
// amount columns. Returns the column map and the header's row index.
func findHeader(rows [][]string) (colIndex, int, bool) {
	required := []string{colNumber, colDate, colAmount}

	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		matches := 0

		for _, name := range required {
			if _, ok := cols[name]; ok {
				matches++
			}
		}

		if matches == len(required) {
			return cols, rowIdx, true
		}
	}

	return nil, 0, false
}

func parseRows(cols colIndex, rows [][]string) ([]billing.ImportParams, error) {
	var docs []billing.ImportParams

	for _, row := range rows {
		number := cellValue(row, cols, colNumber)
		if number == "" {
			// Footer rows (totals, blank separators) carry no number.
			continue
		}

		dateStr := cellValue(row, cols, colDate)

		issuedAt, err := time.Parse("02.01.2006", dateStr)
		if err != nil {
			continue
		}

		amount, err := parseEuropeanAmount(cellValue(row, cols, colAmount))
		if err != nil {
			continue
		}

		docType, ok := parseDocType(cellValue(row, cols, colType))
		if !ok {
			continue
		}

		desc := cellValue(row, cols, colDesc)

		docs = append(docs, billing.ImportParams{
			Number: number,
			Type:   docType,
			Customer: billing.CustomerSnapshot{
				Name:    cellValue(row, cols, colName),
				Company: cellValue(row, cols, colCompany),
				Email:   cellValue(row, cols, colEmail),
			},
			Lines:    []billing.LineItem{{Description: desc, Amount: amount}},
			IssuedAt: issuedAt,
		})
	}

	return docs, nil
}

// parseDocType maps the export's German type labels to document types.
// An empty cell means an invoice; that is all older exports produced.
func parseDocType(s string) (billing.DocType, bool) {
	switch strings.ToLower(s) {
	case "", "rechnung":
		return billing.DocTypeInvoice, true
	case "angebot", "kostenvoranschlag":
		return billing.DocTypeQuote, true
	case "einkauf", "eingangsrechnung":
		return billing.DocTypePurchase, true
	default:
		return "", false
	}
}

func cellValue(row []string, cols colIndex, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
