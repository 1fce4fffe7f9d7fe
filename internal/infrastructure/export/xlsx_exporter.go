package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/entity"
)

const (
	sheetName     = "Document"
	linesStartRow = 16
	dateLayout    = "2006-01-02"
)

var lineHeaders = []string{"#", "Item", "Description", "UOM", "Vendor", "Qty", "Unit Price", "Discount", "Discount Amount", "Net Amount"}

// XLSXExporter renders a document into a single-sheet workbook. With a
// template path the first sheet of the template is filled instead.
type XLSXExporter struct {
	templatePath string
	companyName  string
	logger       *zap.Logger
}

// NewXLSXExporter creates an exporter. templatePath may be empty.
func NewXLSXExporter(templatePath, companyName string, logger *zap.Logger) *XLSXExporter {
	return &XLSXExporter{templatePath: templatePath, companyName: companyName, logger: logger}
}

func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileName is the document number, or kind and id for an unnumbered document.
func (e *XLSXExporter) FileName(doc *entity.DocumentRecord) string {
	if doc.DocNo != "" {
		return doc.DocNo + ".xlsx"
	}
	return fmt.Sprintf("%s-%d.xlsx", doc.Kind, doc.ID)
}

// Export writes the workbook to w.
func (e *XLSXExporter) Export(ctx context.Context, doc *entity.DocumentRecord, w io.Writer) error {
	if doc == nil {
		return fmt.Errorf("document is required")
	}
	e.logger.Info("Exporting document",
		zap.Int64("id", doc.ID),
		zap.String("doc_no", doc.DocNo))

	f, sheet, err := e.open()
	if err != nil {
		return err
	}
	defer f.Close()

	e.setCell(f, sheet, "A1", e.companyName)
	e.setCell(f, sheet, "A2", kindTitle(doc.Kind))

	header := [][2]interface{}{
		{"Document No.", doc.DocNo},
		{"Status", string(doc.Status)},
		{"Document Date", formatDate(doc.DocDate)},
		{"Due Date", formatDate(doc.DueDate)},
		{"Requester", doc.RequesterID},
		{"Cost Center", doc.CostCenterID},
		{"Project", doc.ProjectID},
		{"Vendor", doc.VendorID},
		{"Purpose", doc.Purpose},
		{"Currency", currencyLabel(doc)},
		{"Remark", doc.Remark},
	}
	for i, kv := range header {
		row := 4 + i
		e.setCell(f, sheet, cell(1, row), kv[0])
		e.setCell(f, sheet, cell(2, row), kv[1])
	}

	for col, h := range lineHeaders {
		e.setCell(f, sheet, cell(col+1, linesStartRow), h)
	}
	row := linesStartRow
	for _, l := range doc.Items {
		row++
		values := []interface{}{
			l.LineNo, l.ItemID, l.Description, l.UOM, l.VendorID,
			l.Quantity.String(), l.UnitPrice.StringFixed(2), l.Discount,
			l.DiscountAmount.StringFixed(2), l.NetAmount.StringFixed(2),
		}
		for col, v := range values {
			e.setCell(f, sheet, cell(col+1, row), v)
		}
	}

	row += 2
	totals := [][2]string{
		{"Subtotal", doc.Subtotal.StringFixed(2)},
		{"Discount", doc.DiscountAmount.StringFixed(2)},
		{"VAT", doc.TaxAmount.StringFixed(2)},
		{"Grand Total", doc.GrandTotal.StringFixed(2)},
	}
	for _, kv := range totals {
		e.setCell(f, sheet, cell(9, row), kv[0])
		e.setCell(f, sheet, cell(10, row), kv[1])
		row++
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (e *XLSXExporter) open() (*excelize.File, string, error) {
	if e.templatePath == "" {
		f := excelize.NewFile()
		if err := f.SetSheetName("Sheet1", sheetName); err != nil {
			_ = f.Close()
			return nil, "", fmt.Errorf("failed to name sheet: %w", err)
		}
		return f, sheetName, nil
	}

	f, err := excelize.OpenFile(e.templatePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open template: %w", err)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, "", fmt.Errorf("template has no sheets")
	}
	return f, sheets[0], nil
}

func (e *XLSXExporter) setCell(f *excelize.File, sheet, ref string, value interface{}) {
	if err := f.SetCellValue(sheet, ref, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", ref),
			zap.Error(err))
	}
}

func cell(col, row int) string {
	ref, _ := excelize.CoordinatesToCellName(col, row)
	return ref
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func currencyLabel(doc *entity.DocumentRecord) string {
	if !doc.IsMulticurrency || doc.ExchangeRate == nil {
		return doc.CurrencyCode
	}
	return fmt.Sprintf("%s/%s @ %s", doc.CurrencyCode, doc.QuoteCurrencyCode, doc.ExchangeRate.String())
}

func kindTitle(k entity.DocumentKind) string {
	switch k {
	case entity.KindPurchaseRequisition:
		return "Purchase Requisition"
	case entity.KindRequestForQuotation:
		return "Request for Quotation"
	case entity.KindVendorQuotation:
		return "Vendor Quotation"
	case entity.KindPurchaseOrder:
		return "Purchase Order"
	case entity.KindGoodsReceipt:
		return "Goods Receipt"
	case entity.KindQualityControl:
		return "Quality Control"
	}
	return string(k)
}

var _ port.DocumentExporter = (*XLSXExporter)(nil)
