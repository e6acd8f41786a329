package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookrent/rental-service/internal/errs"
	"github.com/bookrent/rental-service/internal/model"
)

// RentalFilter narrows rental queries; nil time bounds mean unbounded.
type RentalFilter struct {
	From      *time.Time
	To        *time.Time
	Status    model.RentalStatus
	DueBefore *time.Time
}

type Repository interface {
	// ReserveBook atomically claims one copy (test-and-decrement) and
	// returns the post-decrement snapshot including pricing.
	ReserveBook(ctx context.Context, bookID string) (model.Book, error)
	// ReleaseBook puts one copy back, clamped so available never exceeds total.
	ReleaseBook(ctx context.Context, bookID string) error

	CreateRental(ctx context.Context, rental model.Rental) (model.Rental, error)
	GetRental(ctx context.Context, rentalID string) (model.Rental, error)
	MarkPickedUp(ctx context.Context, rentalID string, borrowDate time.Time) (model.Rental, error)
	MarkReturned(ctx context.Context, rentalID string, returnDate time.Time, fine int) (model.Rental, error)
	MarkCancelled(ctx context.Context, rentalID string, paymentStatus model.PaymentStatus) (model.Rental, error)

	SetPaymentStatus(ctx context.Context, rentalID string, status model.PaymentStatus) error

	ListUserRentals(ctx context.Context, userID string) ([]model.Rental, error)
	ListRentals(ctx context.Context, f RentalFilter) ([]model.Rental, error)
	CountRentals(ctx context.Context, f RentalFilter) (int, error)
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	booksTableName    = `books`
	rentalsTableName  = `rentals`
	paymentsTableName = `payments`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const bookColumns = `id, title, author, status, total, available, price_day3, price_day5, price_day7`

func (r *repository) ReserveBook(ctx context.Context, bookID string) (model.Book, error) {
	// single conditional update: two racing reservations cannot both win
	// the last copy. No rows means unknown id, zero stock or a disabled
	// title; callers get one undistinguishable answer.
	q := fmt.Sprintf(`update %s
	set available = available - 1
	where id = $1 and available > 0 and status = $2
	returning %s`, booksTableName, bookColumns)

	var book model.Book
	if err := r.db.GetContext(ctx, &book, q, bookID, model.BookAvailable); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrBookNotAvailable
		}
		r.log.Error("ReserveBook", zap.String("bookID", bookID), zap.Error(err))
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) ReleaseBook(ctx context.Context, bookID string) error {
	// clamp guards against a release without a matching reserve
	q := fmt.Sprintf(`update %s
	set available = least(available + 1, total)
	where id = $1`, booksTableName)

	if _, err := r.db.ExecContext(ctx, q, bookID); err != nil {
		r.log.Error("ReleaseBook", zap.String("bookID", bookID), zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) CreateRental(ctx context.Context, rental model.Rental) (model.Rental, error) {
	q, args, err := qb.Insert(rentalsTableName).
		Columns("id", "user_id", "book_id", "status", "payment_status",
			"borrow_date", "due_date", "cost", "fine", "created_at").
		Values(rental.ID, rental.UserID, rental.BookID, rental.Status, rental.PaymentStatus,
			rental.BorrowDate, rental.DueDate, rental.Cost, rental.Fine, rental.CreatedAt).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Rental{}, err
	}
	var res model.Rental
	if err := r.db.GetContext(ctx, &res, q, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return model.Rental{}, errs.ErrDuplicateRental
		}
		r.log.Error("CreateRental", zap.String("q", q), zap.Any("args", args))
		return model.Rental{}, err
	}
	return res, nil
}

func (r *repository) GetRental(ctx context.Context, rentalID string) (model.Rental, error) {
	q, args, err := qb.Select("*").
		From(rentalsTableName).
		Where(sq.Eq{"id": rentalID}).
		ToSql()
	if err != nil {
		return model.Rental{}, err
	}
	var rental model.Rental
	if err := r.db.GetContext(ctx, &rental, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Rental{}, errs.ErrNotFound
		}
		return model.Rental{}, err
	}
	return rental, nil
}

func (r *repository) MarkPickedUp(ctx context.Context, rentalID string, borrowDate time.Time) (model.Rental, error) {
	// due_date stays as computed at booking time
	q := fmt.Sprintf(`update %s
	set status = $2, borrow_date = $3
	where id = $1 and status = $4 and payment_status = $5
	returning *`, rentalsTableName)

	var rental model.Rental
	err := r.db.GetContext(ctx, &rental, q,
		rentalID, model.RentalRented, borrowDate, model.RentalBooked, model.PaymentPaid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Rental{}, errs.ErrNotBooked
		}
		return model.Rental{}, err
	}
	return rental, nil
}

func (r *repository) MarkReturned(ctx context.Context, rentalID string, returnDate time.Time, fine int) (model.Rental, error) {
	q := fmt.Sprintf(`update %s
	set status = $2, return_date = $3, fine = $4
	where id = $1 and status = $5
	returning *`, rentalsTableName)

	var rental model.Rental
	err := r.db.GetContext(ctx, &rental, q,
		rentalID, model.RentalReturned, returnDate, fine, model.RentalRented)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Rental{}, errs.ErrNotRented
		}
		return model.Rental{}, err
	}
	return rental, nil
}

func (r *repository) MarkCancelled(ctx context.Context, rentalID string, paymentStatus model.PaymentStatus) (model.Rental, error) {
	q := fmt.Sprintf(`update %s
	set status = $2, payment_status = $3
	where id = $1 and status = $4
	returning *`, rentalsTableName)

	var rental model.Rental
	err := r.db.GetContext(ctx, &rental, q,
		rentalID, model.RentalCancelled, paymentStatus, model.RentalBooked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Rental{}, errs.ErrNotCancellable
		}
		return model.Rental{}, err
	}
	return rental, nil
}

// SetPaymentStatus is best-effort: the payment collaborator owns the record,
// a missing row is not an error here.
func (r *repository) SetPaymentStatus(ctx context.Context, rentalID string, status model.PaymentStatus) error {
	q, args, err := qb.Update(paymentsTableName).
		Set("status", status).
		Where(sq.Eq{"rental_id": rentalID}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		r.log.Error("SetPaymentStatus", zap.String("rentalID", rentalID), zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) ListUserRentals(ctx context.Context, userID string) ([]model.Rental, error) {
	q, args, err := qb.Select("*").
		From(rentalsTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Rental
	if err := r.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func filtered(base sq.SelectBuilder, f RentalFilter) sq.SelectBuilder {
	if f.From != nil {
		base = base.Where(sq.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		base = base.Where(sq.LtOrEq{"created_at": *f.To})
	}
	if f.Status != "" {
		base = base.Where(sq.Eq{"status": f.Status})
	}
	if f.DueBefore != nil {
		base = base.Where(sq.Lt{"due_date": *f.DueBefore})
	}
	return base
}

func (r *repository) ListRentals(ctx context.Context, f RentalFilter) ([]model.Rental, error) {
	q, args, err := filtered(qb.Select("*").From(rentalsTableName), f).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Rental
	if err := r.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CountRentals(ctx context.Context, f RentalFilter) (int, error) {
	q, args, err := filtered(qb.Select("count(*)").From(rentalsTableName), f).ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
