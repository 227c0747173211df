// Package booking drives one program purchase from attendance selection to
// a paid, or payable-later, booking.
//
// The attempt moves through explicit states:
//
//	Idle -> Configuring -> Creating -> InitiatingPayment -> AwaitingGatewayResult -> Completed
//	                                         |                        |
//	                                         v                        v
//	                                  PaymentDeferred         VerificationFailed
//
// Nothing is retried automatically and nothing is undone server side: a
// booking that was created but not paid stays payable from the booking list.
package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/location"
	"github.com/vikrantan5/FitSphere-sub000/internal/payment"
)

// State of one booking attempt.
type State string

const (
	StateIdle                  State = "idle"
	StateConfiguring           State = "configuring"
	StateCreating              State = "creating"
	StateInitiatingPayment     State = "initiating_payment"
	StateAwaitingGatewayResult State = "awaiting_gateway_result"
	StateCompleted             State = "completed"
	StateVerificationFailed    State = "verification_failed"
	StatePaymentDeferred       State = "payment_deferred"
)

// Terminal states end the attempt; a new attempt starts from Idle.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateVerificationFailed || s == StatePaymentDeferred
}

// Outcome of the gateway step.
type Outcome string

const (
	OutcomePaid               Outcome = "paid"
	OutcomeDismissed          Outcome = "payment_dismissed"
	OutcomeVerificationFailed Outcome = "verification_failed"
)

var (
	ErrInvalidTransition  = errors.New("action not allowed at this step of the booking")
	ErrInFlight           = errors.New("a request for this booking is already in progress")
	ErrAbandoned          = errors.New("booking attempt was abandoned")
	ErrPaymentDeferred    = errors.New("booking created but payment could not be started; you can pay later from your bookings")
	ErrVerificationFailed = errors.New("payment verification failed")
	ErrNotPayable         = errors.New("booking is not awaiting payment")
)

// Backend is the slice of the REST facade the workflow needs.
type Backend interface {
	AvailableSlots(ctx context.Context, trainerID, date string) ([]string, error)
	CreateBooking(ctx context.Context, draft domain.BookingDraft) (*domain.Booking, error)
	CreateBookingPayment(ctx context.Context, bookingID string) (*domain.PaymentOrder, error)
	VerifyBookingPayment(ctx context.Context, bookingID string, conf payment.Confirmation) (*domain.PaymentVerification, error)
}

// Options are the per-attempt settings.
type Options struct {
	Merchant         payment.Merchant
	Prefill          payment.Prefill
	FallbackLocation location.Point
	Now              func() time.Time
}

// Workflow is one booking attempt. It is safe for concurrent use; every
// network call happens outside the lock and its result is only committed if
// the attempt is still alive and the call is still current.
type Workflow struct {
	mu      sync.Mutex
	backend Backend
	opts    Options

	program domain.Program
	draft   domain.BookingDraft
	picker  *location.Picker

	slots        []string
	slotGen      uint64
	slotsLoading bool

	state     State
	busy      bool
	abandoned bool

	booking  *domain.Booking
	checkout *payment.Options
	cont     *payment.Continuation
}

// New opens an attempt for program. Attendance defaults to gym when the
// program supports it, otherwise home visit.
func New(program domain.Program, backend Backend, opts Options) *Workflow {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	w := &Workflow{
		backend: backend,
		opts:    opts,
		program: program,
		state:   StateIdle,
	}
	w.picker = location.NewPicker(opts.FallbackLocation, w.applyLocation)
	w.open()
	return w
}

func (w *Workflow) open() {
	w.draft = domain.BookingDraft{
		ProgramID:      w.program.ID,
		AttendanceType: w.program.DefaultAttendance(),
	}
	w.state = StateConfiguring
}

// ForExistingBooking re-enters at payment initiation for a booking that
// already exists ("Pay Now" on the booking list).
func ForExistingBooking(b domain.Booking, backend Backend, opts Options) (*Workflow, error) {
	if !b.Payable() {
		return nil, ErrNotPayable
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	w := &Workflow{
		backend: backend,
		opts:    opts,
		program: domain.Program{ID: b.ProgramID, Title: b.ProgramTitle, Price: b.TotalAmount},
		draft: domain.BookingDraft{
			ProgramID:      b.ProgramID,
			TrainerID:      b.TrainerID,
			BookingDate:    b.BookingDate,
			TimeSlot:       b.TimeSlot,
			AttendanceType: b.AttendanceType,
			UserLocation:   b.UserLocation,
			Notes:          b.Notes,
		},
		state:   StateInitiatingPayment,
		booking: &b,
	}
	w.picker = location.NewPickerFrom(opts.FallbackLocation, b.UserLocation, nil)
	return w, nil
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Program returns the program being booked.
func (w *Workflow) Program() domain.Program {
	return w.program
}

// Booking returns the server-confirmed booking once it exists.
func (w *Workflow) Booking() *domain.Booking {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.booking == nil {
		return nil
	}
	b := *w.booking
	return &b
}

// InFlight reports whether a backend call of this attempt is pending.
func (w *Workflow) InFlight() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// Abandon marks the attempt dead, as when the user closes the dialog.
// Results of calls still in flight are dropped when they arrive.
func (w *Workflow) Abandon() {
	w.mu.Lock()
	w.abandoned = true
	w.mu.Unlock()
}

func (w *Workflow) configuringLocked() error {
	if w.abandoned {
		return ErrAbandoned
	}
	if w.state != StateConfiguring {
		return ErrInvalidTransition
	}
	if w.busy {
		return ErrInFlight
	}
	return nil
}

// SetAttendance switches between gym and home visit. The total follows.
func (w *Workflow) SetAttendance(mode domain.AttendanceType) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.configuringLocked(); err != nil {
		return err
	}
	if mode != domain.AttendanceGym && mode != domain.AttendanceHomeVisit {
		return domain.NewValidationError("attendance_type", "must be gym or home_visit")
	}
	if !w.program.Supports(mode) {
		return domain.NewValidationError("attendance_type", fmt.Sprintf("%s is not offered for this program", mode))
	}
	w.draft.AttendanceType = mode
	return nil
}

// SelectTrainer sets the trainer, clears the slot and, when a date is
// already chosen, fetches that trainer's open slots.
func (w *Workflow) SelectTrainer(ctx context.Context, trainerID string) error {
	w.mu.Lock()
	if err := w.configuringLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if trainerID == w.draft.TrainerID {
		w.mu.Unlock()
		return nil
	}
	w.draft.TrainerID = trainerID
	return w.refreshSlotsLocked(ctx)
}

// SelectDate sets the date (YYYY-MM-DD, not in the past), clears the slot
// and, when a trainer is already chosen, fetches open slots.
func (w *Workflow) SelectDate(ctx context.Context, date string) error {
	day, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return domain.NewValidationError("booking_date", "must be formatted as YYYY-MM-DD")
	}

	w.mu.Lock()
	if err := w.configuringLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	today := w.opts.Now().Format(domain.DateLayout)
	if day.Format(domain.DateLayout) < today {
		w.mu.Unlock()
		return domain.NewValidationError("booking_date", "cannot be in the past")
	}
	if date == w.draft.BookingDate {
		w.mu.Unlock()
		return nil
	}
	w.draft.BookingDate = date
	return w.refreshSlotsLocked(ctx)
}

// refreshSlotsLocked is entered with w.mu held and releases it. It issues
// exactly one fetch for the new (trainer, date) pair; a response that is
// overtaken by a newer pair is discarded.
func (w *Workflow) refreshSlotsLocked(ctx context.Context) error {
	w.draft.TimeSlot = ""
	w.slots = nil
	w.slotGen++
	gen := w.slotGen
	trainerID, date := w.draft.TrainerID, w.draft.BookingDate
	if trainerID == "" || date == "" {
		w.slotsLoading = false
		w.mu.Unlock()
		return nil
	}
	w.slotsLoading = true
	w.mu.Unlock()

	slots, err := w.backend.AvailableSlots(ctx, trainerID, date)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.abandoned {
		return ErrAbandoned
	}
	if gen != w.slotGen {
		return nil
	}
	w.slotsLoading = false
	if err != nil {
		return err
	}
	if slots == nil {
		slots = []string{}
	}
	w.slots = slots
	return nil
}

// SelectSlot picks one of the slots last fetched.
func (w *Workflow) SelectSlot(slot string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.configuringLocked(); err != nil {
		return err
	}
	if !slices.Contains(w.slots, slot) {
		return domain.NewValidationError("time_slot", "is not available for the selected trainer and date")
	}
	w.draft.TimeSlot = slot
	return nil
}

// SetNotes stores free-text notes for the trainer.
func (w *Workflow) SetNotes(notes string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.configuringLocked(); err != nil {
		return err
	}
	w.draft.Notes = notes
	return nil
}

func (w *Workflow) homeVisitCheck() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.configuringLocked(); err != nil {
		return err
	}
	if w.draft.AttendanceType != domain.AttendanceHomeVisit {
		return domain.NewValidationError("user_location", "location is only needed for home visits")
	}
	return nil
}

// SetLocation moves the picker point and sets the address. Only allowed in
// home visit mode.
func (w *Workflow) SetLocation(pt location.Point, address string) error {
	if err := w.homeVisitCheck(); err != nil {
		return err
	}
	if err := w.picker.SetPoint(pt); err != nil {
		return err
	}
	w.picker.SetAddress(address)
	return nil
}

// UseDeviceLocation fills the picker from platform geolocation.
func (w *Workflow) UseDeviceLocation(ctx context.Context, g location.Geolocator) error {
	if err := w.homeVisitCheck(); err != nil {
		return err
	}
	return w.picker.UseDeviceLocation(ctx, g)
}

// applyLocation receives every picker change as the live draft location.
func (w *Workflow) applyLocation(loc domain.Location) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateConfiguring || w.abandoned {
		return
	}
	w.draft.UserLocation = &loc
}

// Total is the program price plus the home-visit surcharge when applicable.
func (w *Workflow) Total() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.program.PriceFor(w.draft.AttendanceType)
}

// CanSubmit is true once trainer, date and slot are all set.
func (w *Workflow) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canSubmitLocked()
}

func (w *Workflow) canSubmitLocked() bool {
	return w.state == StateConfiguring && !w.busy && !w.abandoned &&
		w.draft.TrainerID != "" && w.draft.BookingDate != "" && w.draft.TimeSlot != ""
}

// Submit validates the draft, creates the booking and starts payment. It
// returns the widget options the browser must open.
//
// A validation failure makes no backend call and leaves the attempt in
// Configuring. A create failure returns to Configuring. A payment initiation
// failure ends the attempt in PaymentDeferred with the booking payable later.
func (w *Workflow) Submit(ctx context.Context) (payment.Options, error) {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return payment.Options{}, ErrInFlight
	}
	if err := w.configuringLocked(); err != nil {
		w.mu.Unlock()
		return payment.Options{}, err
	}
	if err := w.draft.Validate(); err != nil {
		w.mu.Unlock()
		return payment.Options{}, err
	}
	if !w.program.Supports(w.draft.AttendanceType) {
		w.mu.Unlock()
		return payment.Options{}, domain.NewValidationError("attendance_type", "is not offered for this program")
	}
	draft := w.draft
	if draft.UserLocation != nil {
		loc := *draft.UserLocation
		draft.UserLocation = &loc
	}
	w.state = StateCreating
	w.busy = true
	w.mu.Unlock()

	created, err := w.backend.CreateBooking(ctx, draft)

	w.mu.Lock()
	w.busy = false
	if w.abandoned {
		w.mu.Unlock()
		return payment.Options{}, ErrAbandoned
	}
	if err != nil {
		w.state = StateConfiguring
		w.mu.Unlock()
		return payment.Options{}, err
	}
	w.booking = created
	w.state = StateInitiatingPayment
	w.mu.Unlock()

	return w.InitiatePayment(ctx)
}

// InitiatePayment obtains the gateway order handle for the booking and
// prepares the widget options.
func (w *Workflow) InitiatePayment(ctx context.Context) (payment.Options, error) {
	w.mu.Lock()
	if w.abandoned {
		w.mu.Unlock()
		return payment.Options{}, ErrAbandoned
	}
	if w.busy {
		w.mu.Unlock()
		return payment.Options{}, ErrInFlight
	}
	if w.state != StateInitiatingPayment || w.booking == nil {
		w.mu.Unlock()
		return payment.Options{}, ErrInvalidTransition
	}
	bookingID := w.booking.ID
	w.busy = true
	w.mu.Unlock()

	order, err := w.backend.CreateBookingPayment(ctx, bookingID)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	if w.abandoned {
		return payment.Options{}, ErrAbandoned
	}
	if err != nil {
		w.state = StatePaymentDeferred
		return payment.Options{}, fmt.Errorf("%w: %w", ErrPaymentDeferred, err)
	}

	opts := payment.NewOptions(w.opts.Merchant, *order, w.description(), w.opts.Prefill)
	w.checkout = &opts
	w.cont = payment.NewContinuation()
	w.state = StateAwaitingGatewayResult
	return opts, nil
}

func (w *Workflow) description() string {
	title := w.program.Title
	if title == "" {
		title = "Program"
	}
	if w.draft.AttendanceType == domain.AttendanceHomeVisit {
		return title + " (Home Visit)"
	}
	return title + " (Gym)"
}

// Resolve feeds the widget result into the attempt. A confirmation is
// verified exactly once; a dismissal completes the attempt with payment
// still pending. A second result for the same attempt is rejected.
func (w *Workflow) Resolve(ctx context.Context, res payment.Result) (Outcome, error) {
	w.mu.Lock()
	if w.abandoned {
		w.mu.Unlock()
		return "", ErrAbandoned
	}
	if w.state != StateAwaitingGatewayResult || w.cont == nil {
		w.mu.Unlock()
		return "", ErrInvalidTransition
	}
	if err := w.cont.Resolve(res); err != nil {
		w.mu.Unlock()
		return "", err
	}
	if res.Dismissed {
		w.state = StateCompleted
		w.mu.Unlock()
		return OutcomeDismissed, nil
	}
	bookingID := w.booking.ID
	w.busy = true
	w.mu.Unlock()

	verification, err := w.verify(ctx, bookingID, res.Confirmation)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	if w.abandoned {
		return "", ErrAbandoned
	}
	if err != nil {
		w.state = StateVerificationFailed
		return OutcomeVerificationFailed, err
	}
	w.booking.PaymentStatus = domain.PaymentSuccess
	if verification.PaymentStatus != "" {
		w.booking.PaymentStatus = verification.PaymentStatus
	}
	w.state = StateCompleted
	return OutcomePaid, nil
}

func (w *Workflow) verify(ctx context.Context, bookingID string, conf payment.Confirmation) (*domain.PaymentVerification, error) {
	if err := domain.Validate(conf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}
	v, err := w.backend.VerifyBookingPayment(ctx, bookingID, conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}
	if !v.Success {
		msg := v.Message
		if msg == "" {
			msg = "payment was not confirmed"
		}
		return nil, fmt.Errorf("%w: %s", ErrVerificationFailed, msg)
	}
	return v, nil
}

// View is a snapshot for rendering.
type View struct {
	State          State               `json:"state"`
	Program        domain.Program      `json:"program"`
	Draft          domain.BookingDraft `json:"draft"`
	AvailableSlots []string            `json:"available_slots"`
	SlotsLoading   bool                `json:"slots_loading"`
	Total          float64             `json:"total"`
	CanSubmit      bool                `json:"can_submit"`
	Processing     bool                `json:"processing"`
	Location       location.View       `json:"location"`
	Booking        *domain.Booking     `json:"booking,omitempty"`
	Checkout       *payment.Options    `json:"checkout,omitempty"`
}

// Snapshot copies the current state.
func (w *Workflow) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := View{
		State:          w.state,
		Program:        w.program,
		Draft:          w.draft,
		AvailableSlots: append([]string(nil), w.slots...),
		SlotsLoading:   w.slotsLoading,
		Total:          w.program.PriceFor(w.draft.AttendanceType),
		CanSubmit:      w.canSubmitLocked(),
		Processing:     w.busy,
		Location:       location.Display(w.draft.UserLocation),
	}
	if v.AvailableSlots == nil {
		v.AvailableSlots = []string{}
	}
	if w.booking != nil {
		b := *w.booking
		v.Booking = &b
	}
	if w.checkout != nil {
		c := *w.checkout
		v.Checkout = &c
	}
	return v
}
