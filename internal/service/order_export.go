package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx"
)

var orderExportHeaders = []string{
	"ID", "OrderNumber", "UserID", "Email", "Status", "PaymentMethod", "PaymentStatus",
	"Subtotal", "Tax", "ShippingCost", "TotalAmount", "Items", "ShipTo", "CreatedAt",
}

// ExportOrdersForAdmin writes every order as one row of an xlsx workbook.
func (s *orderServiceImpl) ExportOrdersForAdmin(ctx context.Context, w io.Writer) error {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("list orders for export: %w", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("create export sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range orderExportHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()

		row.AddCell().SetValue(o.ID)
		row.AddCell().SetValue(o.OrderNumber)
		row.AddCell().SetValue(o.UserID)
		row.AddCell().SetValue(o.Email)
		row.AddCell().SetValue(string(o.Status))
		row.AddCell().SetValue(o.PaymentMethod)
		row.AddCell().SetValue(string(o.PaymentStatus))
		row.AddCell().SetFloat(o.Subtotal.Round(2).InexactFloat64())
		row.AddCell().SetFloat(o.Tax.Round(2).InexactFloat64())
		row.AddCell().SetFloat(o.ShippingCost.Round(2).InexactFloat64())
		row.AddCell().SetFloat(o.TotalAmount.Round(2).InexactFloat64())

		var items []string
		for _, item := range o.Items {
			items = append(items, fmt.Sprintf("%dx %s", item.Quantity, item.ProductName))
		}
		row.AddCell().SetValue(strings.Join(items, ", "))
		row.AddCell().SetValue(fmt.Sprintf("%s, %s %s, %s", o.Street, o.PostalCode, o.City, o.Country))
		row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
