package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookrent/rental-service/internal/errs"
	"github.com/bookrent/rental-service/internal/model"
	"github.com/bookrent/rental-service/internal/repository/memstore"
)

const (
	userA = "user-a"
	userB = "user-b"
)

func newTestService(t *testing.T) (*Service, *memstore.Store) {
	t.Helper()
	store, err := memstore.New()
	require.NoError(t, err)
	svc := NewService(store, zap.NewExample().Named("test"), Config{FinePerDay: 10})
	return svc, store
}

func seedBook(t *testing.T, store *memstore.Store, total int) model.Book {
	t.Helper()
	book := model.Book{
		ID:        uuid.NewString(),
		Title:     "The Go Programming Language",
		Author:    "Alan A. A. Donovan",
		Status:    model.BookAvailable,
		Total:     total,
		Available: total,
		PriceDay3: 30,
		PriceDay5: 45,
		PriceDay7: 60,
	}
	require.NoError(t, store.AddBook(book))
	return book
}

func TestService_Rent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)
	book := seedBook(t, store, 2)

	rental, err := svc.Rent(ctx, model.CreateRentalRequest{BookID: book.ID, Days: 3, UserID: userA})
	require.NoError(t, err)
	require.Equal(t, model.RentalBooked, rental.Status)
	require.Equal(t, model.PaymentPending, rental.PaymentStatus)
	require.Equal(t, 30, rental.Cost)
	require.Equal(t, rental.BorrowDate.AddDate(0, 0, 3), rental.DueDate)

	got, err := store.GetBook(book.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Available)

	_, err = svc.Rent(ctx, model.CreateRentalRequest{BookID: book.ID, Days: 4, UserID: userA})
	require.ErrorIs(t, err, errs.ErrInvalidDays)

	_, err = svc.Rent(ctx, model.CreateRentalRequest{BookID: "not-a-uuid", Days: 3, UserID: userA})
	require.ErrorIs(t, err, errs.ErrInvalidID)

	_, err = svc.Rent(ctx, model.CreateRentalRequest{BookID: uuid.NewString(), Days: 3, UserID: userA})
	require.ErrorIs(t, err, errs.ErrBookNotAvailable)

	// a failed attempt must not touch stock
	got, err = store.GetBook(book.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Available)
}

func TestService_Rent_DisabledBook(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)
	book := seedBook(t, store, 2)
	book.Status = model.BookDisabled
	require.NoError(t, store.AddBook(book))

	// administratively disabled titles fail the same way as missing stock
	_, err := svc.Rent(ctx, model.CreateRentalRequest{BookID: book.ID, Days: 5, UserID: userA})
	require.ErrorIs(t, err, errs.ErrBookNotAvailable)
}

func TestService_CostSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)
	book := seedBook(t, store, 2)

	rental, err := svc.Rent(ctx, model.CreateRentalRequest{BookID: book.ID, Days: 5, UserID: userA})
	require.NoError(t, err)
	require.Equal(t, 45, rental.Cost)

	// catalog price edit after booking
	book.Available = 1
	book.PriceDay5 = 99
	require.NoError(t, store.AddBook(book))

	got, err := store.GetRental(ctx, rental.ID)
	require.NoError(t, err)
	require.Equal(t, 45, got.Cost)
}

func TestService_Pickup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)
	book := seedBook(t, store, 1)

	rental, err := svc.Rent(ctx, model.CreateRentalRequest{BookID: book.ID, Days: 3, UserID: userA})
	require.NoError(t, err)

	_, err = svc.Pickup(ctx, rental.ID)
	require.ErrorIs(t, err, errs.ErrPaymentNotConfirmed)

	require.NoError(t, store.ConfirmRentalPayment(rental.ID, model.PaymentPaid))

	picked, err := svc.Pickup(ctx, rental.ID)
	require.NoError(t, err)
	require.Equal(t, model.RentalRented, picked.Status)
	// due date computed at booking stays untouched
	require.Equal(t, rental.DueDate, picked.DueDate)

	_, err = svc.Pickup(ctx, rental.ID)
	require.ErrorIs(t, err, errs.ErrNotBooked)

	_, err = svc.Pickup(ctx, uuid.NewString())
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = svc.Pickup(ctx, "oops")
	require.ErrorIs(t, err, errs.ErrInvalidID)
}

func TestService_Return(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)
	book := seedBook(t, store, 1)

	rental, err := svc.Rent(ctx, model.CreateRentalRequest{BookID: book.ID, Days: 3, UserID: userA})
	require.NoError(t, err)
	require.NoError(t, store.ConfirmRentalPayment(rental.ID, model.PaymentPaid))
	_, err = svc.Pickup(ctx, rental.ID)
	require.NoError(t, err)

	// 25 hours late: partial day rounds up to 2 whole days
	svc.now = func() time.Time { return rental.DueDate.Add(25 * time.Hour) }

	returned, err := svc.Return(ctx, rental.ID)
	require.NoError(t, err)
	require.Equal(t, model.RentalReturned, returned.Status)
	require.Equal(t, 20, returned.Fine)
	require.NotNil(t, returned.ReturnDate)

	got, err := store.GetBook(book.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Available)

	// no double release
	_, err = svc.Return(ctx, rental.ID)
	require.ErrorIs(t, err, errs.ErrNotRented)
	got, err = store.GetBook(book.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Available)
}

func TestService_Return_Early(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)
	book := seedBook(t, store, 1)

	rental, err := svc.Rent(ctx, model.CreateRentalRequest{BookID: book.ID, Days: 7, UserID: userA})
	require.NoError(t, err)
	require.NoError(t, store.ConfirmRentalPayment(rental.ID, model.PaymentPaid))
	_, err = svc.Pickup(ctx, rental.ID)
	require.NoError(t, err)

	svc.now = func() time.Time { return rental.DueDate.Add(-time.Hour) }

	returned, err := svc.Return(ctx, rental.ID)
	require.NoError(t, err)
	require.Equal(t, 0, returned.Fine)
}

func TestService_Cancel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)
	book := seedBook(t, store, 1)

	rental, err := svc.Rent(ctx, model.CreateRentalRequest{BookID: book.ID, Days: 3, UserID: userA})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, rental.ID, userB)
	require.ErrorIs(t, err, errs.ErrNotOwner)

	cancelled, err := svc.Cancel(ctx, rental.ID, userA)
	require.NoError(t, err)
	require.Equal(t, model.RentalCancelled, cancelled.Status)
	// nothing was paid, nothing to refund
	require.Equal(t, model.PaymentCancelled, cancelled.PaymentStatus)

	got, err := store.GetBook(book.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Available)

	_, err = svc.Cancel(ctx, rental.ID, userA)
	require.ErrorIs(t, err, errs.ErrNotCancellable)
}

func TestService_Cancel_AfterPayment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)
	book := seedBook(t, store, 1)

	rental, err := svc.Rent(ctx, model.CreateRentalRequest{BookID: book.ID, Days: 3, UserID: userA})
	require.NoError(t, err)
	require.NoError(t, store.ConfirmRentalPayment(rental.ID, model.PaymentPaid))
	require.NoError(t, store.AddPayment(model.Payment{
		ID:       uuid.NewString(),
		RentalID: rental.ID,
		Amount:   rental.Cost,
		Status:   model.PaymentPaid,
	}))

	cancelled, err := svc.Cancel(ctx, rental.ID, userA)
	require.NoError(t, err)
	require.Equal(t, model.PaymentRefundVerification, cancelled.PaymentStatus)

	// the linked payment record is parked for the manual refund check too
	payment, err := store.GetPayment(rental.ID)
	require.NoError(t, err)
	require.Equal(t, model.PaymentRefundVerification, payment.Status)
}

func TestService_Cancel_AfterPickup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)
	book := seedBook(t, store, 1)

	rental, err := svc.Rent(ctx, model.CreateRentalRequest{BookID: book.ID, Days: 3, UserID: userA})
	require.NoError(t, err)
	require.NoError(t, store.ConfirmRentalPayment(rental.ID, model.PaymentPaid))
	_, err = svc.Pickup(ctx, rental.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, rental.ID, userA)
	require.ErrorIs(t, err, errs.ErrNotCancellable)

	// the copy stays out until it is actually returned
	got, err := store.GetBook(book.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.Available)
}

func TestService_History(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)
	book := seedBook(t, store, 3)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		i := i
		svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		rental, err := svc.Rent(ctx, model.CreateRentalRequest{BookID: book.ID, Days: 3, UserID: userA})
		require.NoError(t, err)
		ids = append(ids, rental.ID)
	}

	items, err := svc.History(ctx, userA)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, ids[2], items[0].ID)
	require.Equal(t, ids[0], items[2].ID)

	items, err = svc.History(ctx, userB)
	require.NoError(t, err)
	require.Empty(t, items)

	_, err = svc.History(ctx, "")
	require.ErrorIs(t, err, errs.ErrUserName)
}

func TestService_Report(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)
	book := seedBook(t, store, 5)

	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day.Add(15 * time.Hour) }

	rent := func(at time.Time, days int) model.Rental {
		saved := svc.now
		svc.now = func() time.Time { return at }
		rental, err := svc.Rent(ctx, model.CreateRentalRequest{BookID: book.ID, Days: days, UserID: userA})
		require.NoError(t, err)
		svc.now = saved
		return rental
	}

	rent(day.Add(9*time.Hour), 3) // stays booked

	rented := rent(day.Add(10*time.Hour), 3)
	require.NoError(t, store.ConfirmRentalPayment(rented.ID, model.PaymentPaid))
	_, err := svc.Pickup(ctx, rented.ID)
	require.NoError(t, err)

	// picked up 10 days ago: due long before "now", counts as overdue
	overdue := rent(day.AddDate(0, 0, -10), 3)
	require.NoError(t, store.ConfirmRentalPayment(overdue.ID, model.PaymentPaid))
	saved := svc.now
	svc.now = func() time.Time { return day.AddDate(0, 0, -10) }
	_, err = svc.Pickup(ctx, overdue.ID)
	require.NoError(t, err)
	svc.now = saved

	// paid and then cancelled inside the window: excluded from revenue
	refunded := rent(day.Add(11*time.Hour), 5)
	require.NoError(t, store.ConfirmRentalPayment(refunded.ID, model.PaymentPaid))
	_, err = svc.Cancel(ctx, refunded.ID, userA)
	require.NoError(t, err)

	report, err := svc.Report(ctx, "2024-05-10")
	require.NoError(t, err)
	require.Equal(t, 1, report.SummaryData.ActiveBookings)
	require.Equal(t, 1, report.SummaryData.ActiveRentals)
	require.Equal(t, 0, report.SummaryData.OverdueRentals) // outside the day window
	require.Equal(t, 30, report.SummaryData.Revenue)       // only the picked-up paid rental
	require.Len(t, report.Transactions, 3)

	all, err := svc.Report(ctx, model.ReportDateAll)
	require.NoError(t, err)
	require.Equal(t, 2, all.SummaryData.ActiveRentals)
	require.Equal(t, 1, all.SummaryData.OverdueRentals)
	require.Equal(t, 60, all.SummaryData.Revenue)
	require.Len(t, all.Transactions, 4)

	_, err = svc.Report(ctx, "10-05-2024")
	require.ErrorIs(t, err, errs.ErrInvalidDate)
}

func TestService_ConcurrentReserve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)
	book := seedBook(t, store, 3)

	const attempts = 10
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Rent(ctx, model.CreateRentalRequest{BookID: book.ID, Days: 3, UserID: userA})
			results[i] = err
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, errs.ErrBookNotAvailable)
	}
	require.Equal(t, 3, succeeded)

	got, err := store.GetBook(book.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.Available)
}

func TestService_RentCancelRentAgain(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)
	book := seedBook(t, store, 1)

	rentalA, err := svc.Rent(ctx, model.CreateRentalRequest{BookID: book.ID, Days: 3, UserID: userA})
	require.NoError(t, err)
	require.Equal(t, 30, rentalA.Cost)

	_, err = svc.Rent(ctx, model.CreateRentalRequest{BookID: book.ID, Days: 3, UserID: userB})
	require.ErrorIs(t, err, errs.ErrBookNotAvailable)

	cancelled, err := svc.Cancel(ctx, rentalA.ID, userA)
	require.NoError(t, err)
	require.Equal(t, model.PaymentCancelled, cancelled.PaymentStatus)

	got, err := store.GetBook(book.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Available)

	_, err = svc.Rent(ctx, model.CreateRentalRequest{BookID: book.ID, Days: 3, UserID: userB})
	require.NoError(t, err)
}

func Test_lateFine(t *testing.T) {
	t.Parallel()
	due := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		returned time.Time
		want     int
	}{
		{name: "one hour early", returned: due.Add(-time.Hour), want: 0},
		{name: "exactly on time", returned: due, want: 0},
		{name: "one hour late", returned: due.Add(time.Hour), want: 10},
		{name: "exactly one day late", returned: due.Add(24 * time.Hour), want: 10},
		{name: "25 hours late", returned: due.Add(25 * time.Hour), want: 20},
		{name: "two days and a second", returned: due.Add(48*time.Hour + time.Second), want: 30},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, lateFine(due, tt.returned, 10))
		})
	}
}
