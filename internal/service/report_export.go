package service

import (
	"context"
	"fmt"
	"io"

	"go-remedyflow/internal/model"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	stockSheet  = "Stock"
	expirySheet = "Expiry"
)

// ExportStockXLSX writes a workbook with the stock report and the expiry alerts.
func (s *reportService) ExportStockXLSX(ctx context.Context, w io.Writer, threshold int) error {
	stock, err := s.AllStock(ctx, threshold)
	if err != nil {
		return err
	}
	alerts, err := s.ExpiryAlerts(ctx, 0)
	if err != nil {
		return err
	}

	file, err := buildStockWorkbook(stock, alerts)
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.log.Warn("close workbook", zap.Error(err))
		}
	}()

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func buildStockWorkbook(stock []model.StockInfo, alerts []model.ExpiryAlert) (*excelize.File, error) {
	file := excelize.NewFile()
	if err := file.SetSheetName("Sheet1", stockSheet); err != nil {
		file.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := file.NewSheet(expirySheet); err != nil {
		file.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}

	stockRows := [][]interface{}{{"Product", "Purchased", "Sold", "Current stock", "Low stock", "Out of stock"}}
	for _, i := range stock {
		stockRows = append(stockRows, []interface{}{
			i.ProductName, i.TotalPurchases, i.TotalSales, i.CurrentStock, yesNo(i.IsLowStock), yesNo(i.IsOutOfStock),
		})
	}
	expiryRows := [][]interface{}{{"Product", "Batch", "Expiry date", "Days left", "Current stock", "Severity"}}
	for _, a := range alerts {
		batch := ""
		if a.BatchNumber != nil {
			batch = *a.BatchNumber
		}
		expiryRows = append(expiryRows, []interface{}{
			a.ProductName, batch, a.ExpiryDate.Format("2006-01-02"), a.DaysUntilExpiry, a.CurrentStock, string(a.Severity),
		})
	}

	if err := writeRows(file, stockSheet, stockRows, bold); err != nil {
		file.Close()
		return nil, err
	}
	if err := writeRows(file, expirySheet, expiryRows, bold); err != nil {
		file.Close()
		return nil, err
	}
	return file, nil
}

func writeRows(file *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := file.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := file.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
