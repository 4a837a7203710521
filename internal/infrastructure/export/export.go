package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"go-order-hub/internal/domain"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"

	sheetName  = "Orders"
	timeLayout = "2006-01-02 15:04"
)

var header = []string{"ID", "Customer Name", "Number of Crates", "Price", "Due Time", "Created At", "Status"}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName returns the download name, e.g. orders_2025-01-08.csv.
func (f Format) FileName(now time.Time) string {
	return fmt.Sprintf("orders_%s.%s", now.UTC().Format("2006-01-02"), f)
}

// Exporter renders the order book for download.
type Exporter struct {
	printer *message.Printer
}

func New() *Exporter {
	return &Exporter{printer: message.NewPrinter(language.English)}
}

func (e *Exporter) Write(w io.Writer, f Format, orders []domain.Order) error {
	switch f {
	case FormatCSV:
		return e.WriteCSV(w, orders)
	case FormatXLSX:
		return e.WriteXLSX(w, orders)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

// WriteCSV writes one row per order with prices grouped by thousands.
func (e *Exporter) WriteCSV(w io.Writer, orders []domain.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, o := range orders {
		record := []string{
			strconv.FormatInt(o.ID, 10),
			o.CustomerName,
			strconv.Itoa(o.NumberOfCrates),
			e.printer.Sprintf("%d", o.Price),
			o.DueTime.UTC().Format(timeLayout),
			o.CreatedAt.UTC().Format(timeLayout),
			string(o.Status),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", o.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single "Orders" sheet. Numbers stay numeric; the price
// column carries a thousands-separator format.
func (e *Exporter) WriteXLSX(w io.Writer, orders []domain.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "G1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, o := range orders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			o.ID,
			o.CustomerName,
			o.NumberOfCrates,
			o.Price,
			o.DueTime.UTC().Format(timeLayout),
			o.CreatedAt.UTC().Format(timeLayout),
			string(o.Status),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", o.ID, err)
		}
	}

	if len(orders) > 0 {
		thousands, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
		if err != nil {
			return fmt.Errorf("create price style: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(4, len(orders)+1)
		if err := f.SetCellStyle(sheetName, "D2", last, thousands); err != nil {
			return fmt.Errorf("style prices: %w", err)
		}
	}
	if err := f.SetColWidth(sheetName, "B", "B", 28); err != nil {
		return fmt.Errorf("size columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
