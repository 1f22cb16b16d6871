package renderer

import (
	"fmt"
	"io"
	"strconv"

	"github.com/etnz/kap"
	"github.com/xuri/excelize/v2"
)

// SummarySheet is the name of the first sheet of the workbook.
const SummarySheet = "Summary"

var eventHeader = []any{
	"Tax Year", "Date", "Kind", "Symbol", "ISIN", "Quantity", "Proceeds",
	"Fees", "Cost", "Deemed Credit", "Quota", "Raw", "Taxable", "Withheld",
}

var summaryHeader = []any{
	"Tax Year", "Sales", "Deemed", "Dividends", "Interest", "Total",
	"Withholding", "Estimated Tax", "Due",
}

// WriteWorkbook writes an xlsx workbook: a summary sheet with one row per
// year, then one sheet of events per year.
func WriteWorkbook(w io.Writer, years []int, events []kap.TaxEvent) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	summary := [][]any{summaryHeader}
	for _, year := range years {
		s := kap.Summarize(year, events)
		summary = append(summary, []any{
			year,
			amount(s.Sales), amount(s.Deemed), amount(s.Dividends), amount(s.Interest),
			amount(s.Total()), amount(s.Withholding), amount(s.EstimatedTax()), amount(s.Due()),
		})
	}
	if err := writeRows(f, SummarySheet, summary); err != nil {
		return err
	}

	for _, year := range years {
		sheet := strconv.Itoa(year)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("cannot create sheet %s: %w", sheet, err)
		}
		rows := [][]any{eventHeader}
		for _, e := range events {
			if e.TaxYear != year {
				continue
			}
			rows = append(rows, eventRow(e))
		}
		if err := writeRows(f, sheet, rows); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func eventRow(e kap.TaxEvent) []any {
	row := []any{e.TaxYear, e.Date.String(), string(e.Kind), e.Symbol, e.ISIN}
	if e.Kind == kap.SaleEvent {
		row = append(row, e.QuantitySold.Decimal().InexactFloat64(), amount(e.Proceeds), amount(e.SaleFees), amount(e.AcquisitionCost), amount(e.UsedVap))
	} else {
		row = append(row, nil, nil, nil, nil, nil)
	}
	return append(row, e.Quota.Decimal().InexactFloat64(), amount(e.Raw), amount(e.Taxable), amount(e.ForeignWithholding))
}

// writeRows writes rows from A1 and declares them as a table.
func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("cannot write sheet %s: %w", sheet, err)
		}
	}
	if len(rows) < 2 {
		return nil
	}
	lowerRight, err := excelize.CoordinatesToCellName(len(rows[0]), len(rows))
	if err != nil {
		return err
	}
	return f.AddTable(sheet, &excelize.Table{
		Range:     "A1:" + lowerRight,
		Name:      "Table_" + sheet,
		StyleName: "TableStyleMedium2",
	})
}

// amount returns money rounded to the cent as a spreadsheet number.
func amount(m kap.Money) float64 {
	return m.Round().Decimal().InexactFloat64()
}
