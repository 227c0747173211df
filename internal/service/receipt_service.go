package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/location"
)

var ErrOrderNotFound = errors.New("order not found")

// Receipt is a rendered PDF.
type Receipt struct {
	FileName string
	Data     []byte
}

type ReceiptService interface {
	BookingReceipt(ctx context.Context, sid, bookingID string) (*Receipt, error)
	OrderReceipt(ctx context.Context, sid, orderID string) (*Receipt, error)
}

type receiptService struct {
	backends Backends
	merchant string
}

func NewReceiptService(backends Backends, merchantName string) ReceiptService {
	return &receiptService{backends: backends, merchant: merchantName}
}

func (s *receiptService) BookingReceipt(ctx context.Context, sid, bookingID string) (*Receipt, error) {
	b, err := s.backends.For(sid).GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	data, err := RenderBookingReceipt(s.merchant, *b)
	if err != nil {
		return nil, err
	}
	return &Receipt{FileName: "booking-" + b.ID + ".pdf", Data: data}, nil
}

// OrderReceipt looks the order up in the caller's history (or in all
// orders for an admin); the backend has no single-order endpoint.
func (s *receiptService) OrderReceipt(ctx context.Context, sid, orderID string) (*Receipt, error) {
	sess, err := s.backends.Sessions().Load(ctx, sid)
	if err != nil {
		return nil, err
	}
	api := s.backends.For(sid)
	var orders []domain.Order
	if sess.IsAdmin() {
		orders, err = api.AllOrders(ctx)
	} else {
		orders, err = api.MyOrders(ctx)
	}
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.ID == orderID {
			data, err := RenderOrderReceipt(s.merchant, o)
			if err != nil {
				return nil, err
			}
			return &Receipt{FileName: "order-" + o.ID + ".pdf", Data: data}, nil
		}
	}
	return nil, ErrOrderNotFound
}

// receiptQR encodes what a front desk needs to look the record up.
func receiptQR(kind, id string, status domain.PaymentStatus) ([]byte, error) {
	return qrcode.Encode(fmt.Sprintf("fitsphere|%s|%s|%s", kind, id, status), qrcode.Medium, 256)
}

type receiptLine struct {
	label, value string
}

func renderReceipt(merchant, title, kind, id string, status domain.PaymentStatus, lines []receiptLine) ([]byte, error) {
	qrPNG, err := receiptQR(kind, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, merchant+" - "+title)
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 12)
	for _, l := range lines {
		if l.value == "" {
			continue
		}
		pdf.Cell(0, 8, fmt.Sprintf("%s: %s", l.label, l.value))
		pdf.Ln(8)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 30, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderBookingReceipt draws a one-page booking receipt.
func RenderBookingReceipt(merchant string, b domain.Booking) ([]byte, error) {
	attendance := "Gym"
	var where string
	if b.AttendanceType == domain.AttendanceHomeVisit {
		attendance = "Home Visit"
		v := location.Display(b.UserLocation)
		where = v.Address
		if !v.Available {
			where = v.Placeholder
		}
	}
	lines := []receiptLine{
		{"Booking ID", b.ID},
		{"Program", b.ProgramTitle},
		{"Trainer", b.TrainerName},
		{"Member", b.UserName},
		{"Date", b.BookingDate},
		{"Time slot", b.TimeSlot},
		{"Attendance", attendance},
		{"Location", where},
		{"Amount", formatAmount(b.TotalAmount)},
		{"Payment", strings.ToUpper(string(b.PaymentStatus))},
		{"Status", string(b.Status)},
	}
	return renderReceipt(merchant, "Booking Receipt", "booking", b.ID, b.PaymentStatus, lines)
}

// RenderOrderReceipt draws an order receipt with one line per item.
func RenderOrderReceipt(merchant string, o domain.Order) ([]byte, error) {
	lines := []receiptLine{
		{"Order ID", o.ID},
		{"Customer", o.Name},
		{"Email", o.Email},
		{"Phone", o.Phone},
		{"Address", o.Address},
	}
	for _, it := range o.Items {
		lines = append(lines, receiptLine{
			label: it.ProductName,
			value: fmt.Sprintf("%d x %s", it.Quantity, formatAmount(it.Price)),
		})
	}
	lines = append(lines,
		receiptLine{"Total", formatAmount(o.TotalAmount)},
		receiptLine{"Payment", strings.ToUpper(string(o.PaymentStatus))},
		receiptLine{"Status", string(o.OrderStatus)},
	)
	return renderReceipt(merchant, "Order Receipt", "order", o.ID, o.PaymentStatus, lines)
}

func formatAmount(v float64) string {
	return fmt.Sprintf("INR %.2f", v)
}
