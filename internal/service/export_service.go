package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/storage"
)

// ExportFormat of the orders export.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ordersSheet     = "Orders"
)

// Export is a generated file. When an archive is configured DownloadURL is
// a presigned link and Data may be ignored by the caller.
type Export struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	DownloadURL string `json:"download_url,omitempty"`
	Data        []byte `json:"-"`
}

type ExportService interface {
	ExportOrders(ctx context.Context, sid string, format ExportFormat) (*Export, error)
}

type exportService struct {
	backends Backends
	archive  storage.ArchiveStorage // nil: stream only
	expiry   time.Duration
	now      func() time.Time
}

// NewExportService creates the export service. archive may be nil.
func NewExportService(backends Backends, archive storage.ArchiveStorage, expiry time.Duration) ExportService {
	return &exportService{backends: backends, archive: archive, expiry: expiry, now: time.Now}
}

// ExportOrders downloads the backend CSV, converts it when asked, and
// archives it when a bucket is configured.
func (s *exportService) ExportOrders(ctx context.Context, sid string, format ExportFormat) (*Export, error) {
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, domain.NewValidationError("format", "must be csv or xlsx")
	}

	// 1. Fetch the backend export
	raw, err := s.backends.For(sid).ExportOrdersCSV(ctx)
	if err != nil {
		return nil, err
	}

	// 2. Convert
	exp := &Export{
		FileName:    fmt.Sprintf("orders-%s.%s", s.now().Format("2006-01-02"), format),
		ContentType: contentTypeCSV,
		Data:        raw,
	}
	if format == FormatXLSX {
		data, err := OrdersCSVToXLSX(raw)
		if err != nil {
			return nil, err
		}
		exp.ContentType = contentTypeXLSX
		exp.Data = data
	}

	// 3. Archive
	if s.archive == nil {
		return exp, nil
	}
	key := fmt.Sprintf("exports/%s-%s", uuid.NewString(), exp.FileName)
	if err := s.archive.PutObject(ctx, key, exp.ContentType, bytes.NewReader(exp.Data), int64(len(exp.Data))); err != nil {
		log.Printf("WARN: Export archive unavailable, streaming instead: %v", err)
		return exp, nil
	}
	url, err := s.archive.GeneratePresignedDownloadURL(ctx, key, s.expiry)
	if err != nil {
		log.Printf("WARN: Failed to presign export %s, streaming instead: %v", key, err)
		if delErr := s.archive.DeleteObject(ctx, key); delErr != nil {
			log.Printf("WARN: Failed to remove unreachable export %s: %v", key, delErr)
		}
		return exp, nil
	}
	exp.DownloadURL = url
	return exp, nil
}

// OrdersCSVToXLSX converts a CSV export into a one-sheet workbook with a
// bold header row. Numeric cells are written as numbers.
func OrdersCSVToXLSX(raw []byte) ([]byte, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse orders export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ordersSheet)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, row := range rows {
		for j, value := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			if i > 0 {
				if n, err := strconv.ParseFloat(value, 64); err == nil {
					f.SetCellValue(ordersSheet, cell, n)
					continue
				}
			}
			f.SetCellValue(ordersSheet, cell, value)
		}
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
			Font: &excelize.Font{Bold: true},
		})
		if err == nil {
			last, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
			f.SetCellStyle(ordersSheet, "A1", last, style)
		}
		lastCol, _ := excelize.ColumnNumberToName(len(rows[0]))
		f.SetColWidth(ordersSheet, "A", lastCol, 20)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
