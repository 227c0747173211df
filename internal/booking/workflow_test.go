package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/location"
	"github.com/vikrantan5/FitSphere-sub000/internal/payment"
)

type stubBackend struct {
	mu sync.Mutex

	slots    map[string][]string
	slotsErr error
	slotHook func(trainerID, date string)

	createResult *domain.Booking
	createErr    error
	lastDraft    domain.BookingDraft
	createCalls  int

	paymentResult *domain.PaymentOrder
	paymentErr    error
	paymentCalls  int

	verifyResult *domain.PaymentVerification
	verifyErr    error
	verifyCalls  int
	lastConf     payment.Confirmation

	slotCalls []string
}

func (s *stubBackend) AvailableSlots(_ context.Context, trainerID, date string) ([]string, error) {
	if s.slotHook != nil {
		s.slotHook(trainerID, date)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slotCalls = append(s.slotCalls, trainerID+"@"+date)
	return s.slots[trainerID+"@"+date], s.slotsErr
}

func (s *stubBackend) CreateBooking(_ context.Context, draft domain.BookingDraft) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	s.lastDraft = draft
	return s.createResult, s.createErr
}

func (s *stubBackend) CreateBookingPayment(_ context.Context, _ string) (*domain.PaymentOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentCalls++
	return s.paymentResult, s.paymentErr
}

func (s *stubBackend) VerifyBookingPayment(_ context.Context, _ string, conf payment.Confirmation) (*domain.PaymentVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifyCalls++
	s.lastConf = conf
	return s.verifyResult, s.verifyErr
}

var fixedNow = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

func homeVisitProgram() domain.Program {
	return domain.Program{
		ID:                        "prog-1",
		Title:                     "Strength Basics",
		Price:                     1000,
		SupportsGymAttendance:     true,
		SupportsHomeVisit:         true,
		HomeVisitAdditionalCharge: 200,
	}
}

func newBackend() *stubBackend {
	return &stubBackend{
		slots: map[string][]string{
			"tr-1@2026-03-02": {"09:00-10:00", "10:00-11:00"},
			"tr-2@2026-03-02": {"18:00-19:00"},
			"tr-1@2026-03-03": {"07:00-08:00"},
		},
		createResult:  &domain.Booking{ID: "bk-1", ProgramID: "prog-1", Status: domain.BookingPending, PaymentStatus: domain.PaymentPending},
		paymentResult: &domain.PaymentOrder{GatewayOrderID: "order_abc", Amount: 120000, Currency: "INR"},
		verifyResult:  &domain.PaymentVerification{Success: true},
	}
}

func newWorkflow(p domain.Program, b Backend) *Workflow {
	return New(p, b, Options{
		Merchant:         payment.Merchant{KeyID: "rzp_test", Name: "FitSphere", Currency: "INR"},
		Prefill:          payment.Prefill{Name: "Asha", Email: "asha@example.com"},
		FallbackLocation: location.Point{Latitude: 28.6139, Longitude: 77.2090},
		Now:              fixedNow,
	})
}

func configure(t *testing.T, w *Workflow) {
	t.Helper()
	ctx := context.Background()
	if err := w.SelectTrainer(ctx, "tr-1"); err != nil {
		t.Fatalf("SelectTrainer: %v", err)
	}
	if err := w.SelectDate(ctx, "2026-03-02"); err != nil {
		t.Fatalf("SelectDate: %v", err)
	}
	if err := w.SelectSlot("09:00-10:00"); err != nil {
		t.Fatalf("SelectSlot: %v", err)
	}
}

func TestNewDefaultsAttendance(t *testing.T) {
	w := newWorkflow(homeVisitProgram(), newBackend())
	if got := w.Snapshot().Draft.AttendanceType; got != domain.AttendanceGym {
		t.Fatalf("expected gym default, got %s", got)
	}
	if w.State() != StateConfiguring {
		t.Fatalf("expected configuring, got %s", w.State())
	}

	homeOnly := homeVisitProgram()
	homeOnly.SupportsGymAttendance = false
	w = newWorkflow(homeOnly, newBackend())
	if got := w.Snapshot().Draft.AttendanceType; got != domain.AttendanceHomeVisit {
		t.Fatalf("expected home_visit default, got %s", got)
	}
}

func TestTotalFollowsAttendanceMode(t *testing.T) {
	w := newWorkflow(homeVisitProgram(), newBackend())

	if err := w.SetAttendance(domain.AttendanceHomeVisit); err != nil {
		t.Fatalf("SetAttendance: %v", err)
	}
	if got := w.Total(); got != 1200 {
		t.Fatalf("expected 1200, got %v", got)
	}
	if err := w.SetAttendance(domain.AttendanceGym); err != nil {
		t.Fatalf("SetAttendance: %v", err)
	}
	if got := w.Total(); got != 1000 {
		t.Fatalf("expected 1000, got %v", got)
	}
}

func TestSetAttendanceRejectsUnsupportedMode(t *testing.T) {
	p := homeVisitProgram()
	p.SupportsHomeVisit = false
	w := newWorkflow(p, newBackend())
	if err := w.SetAttendance(domain.AttendanceHomeVisit); !domain.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestChangingTrainerOrDateClearsSlot(t *testing.T) {
	backend := newBackend()
	w := newWorkflow(homeVisitProgram(), backend)
	configure(t, w)

	if err := w.SelectDate(context.Background(), "2026-03-03"); err != nil {
		t.Fatalf("SelectDate: %v", err)
	}
	v := w.Snapshot()
	if v.Draft.TimeSlot != "" {
		t.Fatalf("slot should be cleared after date change, got %q", v.Draft.TimeSlot)
	}
	if len(v.AvailableSlots) != 1 || v.AvailableSlots[0] != "07:00-08:00" {
		t.Fatalf("unexpected slots %v", v.AvailableSlots)
	}
	if w.CanSubmit() {
		t.Fatal("submit must be disabled without a slot")
	}

	if err := w.SelectSlot("07:00-08:00"); err != nil {
		t.Fatalf("SelectSlot: %v", err)
	}
	if err := w.SelectTrainer(context.Background(), "tr-2"); err != nil {
		t.Fatalf("SelectTrainer: %v", err)
	}
	if got := w.Snapshot().Draft.TimeSlot; got != "" {
		t.Fatalf("slot should be cleared after trainer change, got %q", got)
	}
}

func TestSlotFetchedOncePerPair(t *testing.T) {
	backend := newBackend()
	w := newWorkflow(homeVisitProgram(), backend)
	ctx := context.Background()

	_ = w.SelectTrainer(ctx, "tr-1")
	_ = w.SelectDate(ctx, "2026-03-02")
	_ = w.SelectDate(ctx, "2026-03-02")
	_ = w.SelectTrainer(ctx, "tr-1")

	if len(backend.slotCalls) != 1 {
		t.Fatalf("expected one slot fetch, got %v", backend.slotCalls)
	}
}

func TestStaleSlotResponseIsDropped(t *testing.T) {
	backend := newBackend()
	w := newWorkflow(homeVisitProgram(), backend)
	ctx := context.Background()
	_ = w.SelectTrainer(ctx, "tr-1")

	// While the tr-1 fetch is in flight the user switches to tr-2.
	backend.slotHook = func(trainerID, _ string) {
		if trainerID == "tr-1" {
			backend.slotHook = nil
			if err := w.SelectTrainer(ctx, "tr-2"); err != nil {
				t.Errorf("SelectTrainer: %v", err)
			}
		}
	}
	if err := w.SelectDate(ctx, "2026-03-02"); err != nil {
		t.Fatalf("SelectDate: %v", err)
	}

	v := w.Snapshot()
	if v.Draft.TrainerID != "tr-2" {
		t.Fatalf("expected tr-2, got %s", v.Draft.TrainerID)
	}
	if len(v.AvailableSlots) != 1 || v.AvailableSlots[0] != "18:00-19:00" {
		t.Fatalf("stale slots leaked: %v", v.AvailableSlots)
	}
}

func TestSelectSlotMustBeAvailable(t *testing.T) {
	w := newWorkflow(homeVisitProgram(), newBackend())
	_ = w.SelectTrainer(context.Background(), "tr-1")
	_ = w.SelectDate(context.Background(), "2026-03-02")
	if err := w.SelectSlot("23:00-24:00"); !domain.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSelectDateRejectsPast(t *testing.T) {
	w := newWorkflow(homeVisitProgram(), newBackend())
	if err := w.SelectDate(context.Background(), "2026-02-28"); !domain.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHomeVisitWithoutLocationNeverCreates(t *testing.T) {
	backend := newBackend()
	w := newWorkflow(homeVisitProgram(), backend)
	if err := w.SetAttendance(domain.AttendanceHomeVisit); err != nil {
		t.Fatalf("SetAttendance: %v", err)
	}
	configure(t, w)

	_, err := w.Submit(context.Background())
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "user_location" {
		t.Fatalf("expected user_location validation error, got %v", err)
	}
	if backend.createCalls != 0 {
		t.Fatalf("create-booking must not be called, got %d calls", backend.createCalls)
	}
	if w.State() != StateConfiguring {
		t.Fatalf("expected configuring, got %s", w.State())
	}
}

func TestHomeVisitWithPickerLocationSubmits(t *testing.T) {
	backend := newBackend()
	w := newWorkflow(homeVisitProgram(), backend)
	_ = w.SetAttendance(domain.AttendanceHomeVisit)
	configure(t, w)

	if err := w.SetLocation(location.Point{Latitude: 19.07, Longitude: 72.87}, "Flat 4, Sea View"); err != nil {
		t.Fatalf("SetLocation: %v", err)
	}
	opts, err := w.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if opts.OrderID != "order_abc" || opts.Key != "rzp_test" {
		t.Fatalf("unexpected options %+v", opts)
	}
	if backend.lastDraft.UserLocation == nil || backend.lastDraft.UserLocation.Address != "Flat 4, Sea View" {
		t.Fatalf("location not sent: %+v", backend.lastDraft.UserLocation)
	}
	if w.State() != StateAwaitingGatewayResult {
		t.Fatalf("expected awaiting gateway result, got %s", w.State())
	}
}

func TestGymNeverRequiresLocation(t *testing.T) {
	backend := newBackend()
	w := newWorkflow(homeVisitProgram(), backend)
	configure(t, w)

	if err := w.SetLocation(location.Point{}, ""); !domain.IsValidationError(err) {
		t.Fatalf("expected location to be refused in gym mode, got %v", err)
	}
	if _, err := w.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if backend.lastDraft.UserLocation != nil {
		t.Fatalf("gym booking should not carry a location")
	}
}

func TestCreateFailureReturnsToConfiguring(t *testing.T) {
	backend := newBackend()
	backend.createErr = errors.New("slot already taken")
	w := newWorkflow(homeVisitProgram(), backend)
	configure(t, w)

	if _, err := w.Submit(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if w.State() != StateConfiguring {
		t.Fatalf("expected configuring, got %s", w.State())
	}
	if backend.paymentCalls != 0 {
		t.Fatal("payment must not be initiated after a failed create")
	}
}

func TestPaymentInitFailureDefersPayment(t *testing.T) {
	backend := newBackend()
	backend.paymentErr = errors.New("gateway down")
	w := newWorkflow(homeVisitProgram(), backend)
	configure(t, w)

	_, err := w.Submit(context.Background())
	if !errors.Is(err, ErrPaymentDeferred) {
		t.Fatalf("expected ErrPaymentDeferred, got %v", err)
	}
	if w.State() != StatePaymentDeferred {
		t.Fatalf("expected payment_deferred, got %s", w.State())
	}
	if b := w.Booking(); b == nil || b.ID != "bk-1" {
		t.Fatalf("booking should be kept, got %+v", b)
	}
}

func TestDismissLeavesPaymentPending(t *testing.T) {
	backend := newBackend()
	w := newWorkflow(homeVisitProgram(), backend)
	configure(t, w)
	if _, err := w.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	outcome, err := w.Resolve(context.Background(), payment.Dismissal())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if outcome != OutcomeDismissed {
		t.Fatalf("expected dismissed outcome, got %s", outcome)
	}
	if w.State() != StateCompleted {
		t.Fatalf("expected completed, got %s", w.State())
	}
	if b := w.Booking(); b.PaymentStatus != domain.PaymentPending {
		t.Fatalf("payment status should stay pending, got %s", b.PaymentStatus)
	}
	if backend.verifyCalls != 0 {
		t.Fatal("dismissal must not verify")
	}

	// A late success callback for the same attempt is refused.
	if _, err := w.Resolve(context.Background(), payment.Succeeded(payment.Confirmation{OrderID: "o", PaymentID: "p", Signature: "s"})); err == nil {
		t.Fatal("expected second result to be rejected")
	}
}

func TestSuccessfulPaymentVerifiesOnce(t *testing.T) {
	backend := newBackend()
	w := newWorkflow(homeVisitProgram(), backend)
	configure(t, w)
	if _, err := w.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	conf := payment.Confirmation{OrderID: "order_abc", PaymentID: "pay_1", Signature: "sig"}
	outcome, err := w.Resolve(context.Background(), payment.Succeeded(conf))
	if err != nil || outcome != OutcomePaid {
		t.Fatalf("expected paid, got %s %v", outcome, err)
	}
	if backend.verifyCalls != 1 || backend.lastConf != conf {
		t.Fatalf("expected a single verify with the confirmation, got %d %+v", backend.verifyCalls, backend.lastConf)
	}
	if b := w.Booking(); b.PaymentStatus != domain.PaymentSuccess {
		t.Fatalf("expected success, got %s", b.PaymentStatus)
	}

	if _, err := w.Resolve(context.Background(), payment.Succeeded(conf)); err == nil {
		t.Fatal("expected repeated result to fail")
	}
	if backend.verifyCalls != 1 {
		t.Fatalf("verify must not be repeated, got %d", backend.verifyCalls)
	}
}

func TestVerificationFailureIsTerminal(t *testing.T) {
	backend := newBackend()
	backend.verifyResult = &domain.PaymentVerification{Success: false, Message: "signature mismatch"}
	w := newWorkflow(homeVisitProgram(), backend)
	configure(t, w)
	if _, err := w.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	outcome, err := w.Resolve(context.Background(), payment.Succeeded(payment.Confirmation{OrderID: "o", PaymentID: "p", Signature: "s"}))
	if !errors.Is(err, ErrVerificationFailed) || outcome != OutcomeVerificationFailed {
		t.Fatalf("expected verification failure, got %s %v", outcome, err)
	}
	if w.State() != StateVerificationFailed {
		t.Fatalf("expected verification_failed, got %s", w.State())
	}
	if b := w.Booking(); b.PaymentStatus != domain.PaymentPending {
		t.Fatalf("payment should remain pending, got %s", b.PaymentStatus)
	}
}

func TestIncompleteConfirmationFailsWithoutVerify(t *testing.T) {
	backend := newBackend()
	w := newWorkflow(homeVisitProgram(), backend)
	configure(t, w)
	if _, err := w.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	outcome, err := w.Resolve(context.Background(), payment.Succeeded(payment.Confirmation{OrderID: "order_abc"}))
	if !errors.Is(err, ErrVerificationFailed) || outcome != OutcomeVerificationFailed {
		t.Fatalf("expected verification failure, got %s %v", outcome, err)
	}
	if backend.verifyCalls != 0 {
		t.Fatalf("incomplete confirmation must not reach the backend, got %d calls", backend.verifyCalls)
	}
}

func TestPayExistingBookingStartsAtPayment(t *testing.T) {
	backend := newBackend()
	existing := domain.Booking{ID: "bk-9", ProgramID: "prog-1", ProgramTitle: "Yoga", PaymentStatus: domain.PaymentPending, Status: domain.BookingPending}

	w, err := ForExistingBooking(existing, backend, Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("ForExistingBooking: %v", err)
	}
	if _, err := w.Submit(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("existing booking must not be created again, got %v", err)
	}
	if _, err := w.InitiatePayment(context.Background()); err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}
	if backend.createCalls != 0 || backend.paymentCalls != 1 {
		t.Fatalf("unexpected calls create=%d payment=%d", backend.createCalls, backend.paymentCalls)
	}

	paid := existing
	paid.PaymentStatus = domain.PaymentSuccess
	if _, err := ForExistingBooking(paid, backend, Options{}); !errors.Is(err, ErrNotPayable) {
		t.Fatalf("expected ErrNotPayable, got %v", err)
	}
}

func TestAbandonDropsLateResults(t *testing.T) {
	backend := newBackend()
	w := newWorkflow(homeVisitProgram(), backend)
	configure(t, w)
	w.Abandon()

	if _, err := w.Submit(context.Background()); !errors.Is(err, ErrAbandoned) {
		t.Fatalf("expected ErrAbandoned, got %v", err)
	}
	if backend.createCalls != 0 {
		t.Fatal("abandoned attempt must not create a booking")
	}
}
