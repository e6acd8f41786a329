package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bookrent/rental-service/internal/errs"
	"github.com/bookrent/rental-service/internal/model"
	"github.com/bookrent/rental-service/internal/repository"
)

type Config struct {
	// Location anchors the report day window.
	Location *time.Location
	// FinePerDay is charged per whole day overdue.
	FinePerDay int
}

type Service struct {
	log        *zap.Logger
	repo       repository.Repository
	loc        *time.Location
	finePerDay int
	now        func() time.Time
}

func NewService(repo repository.Repository, log *zap.Logger, cfg Config) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	finePerDay := cfg.FinePerDay
	if finePerDay <= 0 {
		finePerDay = 10
	}
	return &Service{
		log:        log,
		repo:       repo,
		loc:        loc,
		finePerDay: finePerDay,
		now:        time.Now,
	}
}

// Rent reserves one copy and creates the rental in booked status. The fee is
// snapshotted from the book's pricing at reservation time, so later catalog
// price edits never touch open rentals.
func (s *Service) Rent(ctx context.Context, req model.CreateRentalRequest) (model.Rental, error) {
	if req.UserID == "" {
		return model.Rental{}, errs.ErrUserName
	}
	if _, err := uuid.Parse(req.BookID); err != nil {
		return model.Rental{}, errs.ErrInvalidID
	}
	if !validDays(req.Days) {
		return model.Rental{}, errs.ErrInvalidDays
	}

	book, err := s.repo.ReserveBook(ctx, req.BookID)
	if err != nil {
		return model.Rental{}, err
	}
	cost, _ := book.PriceFor(req.Days)

	now := s.now()
	rental := model.Rental{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		BookID:        req.BookID,
		Status:        model.RentalBooked,
		PaymentStatus: model.PaymentPending,
		BorrowDate:    now,
		DueDate:       now.AddDate(0, 0, req.Days),
		Cost:          cost,
		CreatedAt:     now,
	}
	created, err := s.repo.CreateRental(ctx, rental)
	if err != nil {
		// put the copy back so a failed insert does not leak stock
		if rbErr := s.repo.ReleaseBook(ctx, req.BookID); rbErr != nil {
			s.log.Warn("rent rollback release", zap.String("bookID", req.BookID), zap.Error(rbErr))
		}
		return model.Rental{}, err
	}
	return created, nil
}

// Pickup hands the copy over: booked -> rented, payment must be confirmed
// first. The due date computed at booking time is kept as is.
func (s *Service) Pickup(ctx context.Context, rentalID string) (model.Rental, error) {
	rental, err := s.getRental(ctx, rentalID)
	if err != nil {
		return model.Rental{}, err
	}
	if rental.PaymentStatus != model.PaymentPaid {
		return model.Rental{}, errs.ErrPaymentNotConfirmed
	}
	if rental.Status != model.RentalBooked {
		return model.Rental{}, errs.ErrNotBooked
	}
	return s.repo.MarkPickedUp(ctx, rentalID, s.now())
}

// Return closes the rental: rented -> returned, computes the late fine and
// releases the copy. The release goes first; losing a physical copy from
// inventory is worse than a stale rental row (reconciliation covers that).
func (s *Service) Return(ctx context.Context, rentalID string) (model.Rental, error) {
	rental, err := s.getRental(ctx, rentalID)
	if err != nil {
		return model.Rental{}, err
	}
	if rental.Status != model.RentalRented {
		return model.Rental{}, errs.ErrNotRented
	}

	now := s.now()
	fine := lateFine(rental.DueDate, now, s.finePerDay)

	if err := s.repo.ReleaseBook(ctx, rental.BookID); err != nil {
		return model.Rental{}, err
	}
	return s.repo.MarkReturned(ctx, rentalID, now, fine)
}

// Cancel drops a booking before pickup. Owner-only; once the copy changed
// hands the rental has to go through Return instead. A cancellation after a
// submitted payment parks both records in refund_verification for the manual
// refund check.
func (s *Service) Cancel(ctx context.Context, rentalID, userID string) (model.Rental, error) {
	rental, err := s.getRental(ctx, rentalID)
	if err != nil {
		return model.Rental{}, err
	}
	if rental.UserID != userID {
		return model.Rental{}, errs.ErrNotOwner
	}
	switch rental.Status {
	case model.RentalRented, model.RentalReturned, model.RentalCancelled:
		return model.Rental{}, errs.ErrNotCancellable
	}

	paymentStatus := model.PaymentCancelled
	if rental.PaymentStatus != model.PaymentPending && rental.PaymentStatus != model.PaymentCancelled {
		paymentStatus = model.PaymentRefundVerification
		if err := s.repo.SetPaymentStatus(ctx, rentalID, paymentStatus); err != nil {
			s.log.Warn("cancel payment status", zap.String("rentalID", rentalID), zap.Error(err))
		}
	}

	if err := s.repo.ReleaseBook(ctx, rental.BookID); err != nil {
		return model.Rental{}, err
	}
	return s.repo.MarkCancelled(ctx, rentalID, paymentStatus)
}

func (s *Service) History(ctx context.Context, userID string) ([]model.Rental, error) {
	if userID == "" {
		return nil, errs.ErrUserName
	}
	return s.repo.ListUserRentals(ctx, userID)
}

// Report aggregates booking/rental/overdue counts and revenue, optionally
// windowed to one calendar day in the configured time zone. Revenue excludes
// cancelled rentals even when they were paid: that money goes back.
func (s *Service) Report(ctx context.Context, date string) (model.Report, error) {
	var filter repository.RentalFilter
	if date != "" && date != model.ReportDateAll {
		day, err := time.ParseInLocation(time.DateOnly, date, s.loc)
		if err != nil {
			return model.Report{}, errs.ErrInvalidDate
		}
		from := day
		to := day.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.From, filter.To = &from, &to
	}

	now := s.now()
	var (
		transactions   []model.Rental
		activeBookings int
		activeRentals  int
		overdueRentals int
	)
	gg, ctx := errgroup.WithContext(ctx)
	gg.Go(func() (err error) {
		transactions, err = s.repo.ListRentals(ctx, filter)
		return err
	})
	gg.Go(func() (err error) {
		f := filter
		f.Status = model.RentalBooked
		activeBookings, err = s.repo.CountRentals(ctx, f)
		return err
	})
	gg.Go(func() (err error) {
		f := filter
		f.Status = model.RentalRented
		activeRentals, err = s.repo.CountRentals(ctx, f)
		return err
	})
	gg.Go(func() (err error) {
		f := filter
		f.Status = model.RentalRented
		f.DueBefore = &now
		overdueRentals, err = s.repo.CountRentals(ctx, f)
		return err
	})
	if err := gg.Wait(); err != nil {
		return model.Report{}, err
	}

	revenue := 0
	for _, r := range transactions {
		if r.PaymentStatus == model.PaymentPaid && r.Status != model.RentalCancelled {
			revenue += r.Cost
		}
	}

	return model.Report{
		SummaryData: model.Summary{
			ActiveBookings: activeBookings,
			ActiveRentals:  activeRentals,
			OverdueRentals: overdueRentals,
			Revenue:        revenue,
		},
		Transactions: transactions,
	}, nil
}

func (s *Service) getRental(ctx context.Context, rentalID string) (model.Rental, error) {
	if _, err := uuid.Parse(rentalID); err != nil {
		return model.Rental{}, errs.ErrInvalidID
	}
	return s.repo.GetRental(ctx, rentalID)
}

func validDays(days int) bool {
	for _, d := range model.RentalDays {
		if d == days {
			return true
		}
	}
	return false
}

// lateFine charges per whole day overdue, partial days round up.
func lateFine(due, returned time.Time, perDay int) int {
	if !returned.After(due) {
		return 0
	}
	days := int(math.Ceil(returned.Sub(due).Hours() / 24))
	return days * perDay
}
