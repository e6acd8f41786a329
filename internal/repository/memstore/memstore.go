// Package memstore is an in-memory Repository used by tests. go-memdb
// serializes writers, so the reserve test-and-decrement keeps the same
// atomicity contract as the conditional UPDATE in postgres.
package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/hashicorp/go-memdb"
	"github.com/pkg/errors"

	"github.com/bookrent/rental-service/internal/errs"
	"github.com/bookrent/rental-service/internal/model"
	"github.com/bookrent/rental-service/internal/repository"
)

type Store struct {
	db *memdb.MemDB
}

var _ repository.Repository = (*Store)(nil)

func New() (*Store, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			"book": {
				Name: "book",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
				},
			},
			"rental": {
				Name: "rental",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					"user_id": {
						Name:    "user_id",
						Unique:  false,
						Indexer: &memdb.StringFieldIndex{Field: "UserID"},
					},
				},
			},
			"payment": {
				Name: "payment",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					"rental_id": {
						Name:    "rental_id",
						Unique:  false,
						Indexer: &memdb.StringFieldIndex{Field: "RentalID"},
					},
				},
			},
		},
	}
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, errors.Wrap(err, "memstore init")
	}
	return &Store{db: db}, nil
}

// AddBook seeds a catalog row (the catalog collaborator's job in production).
func (s *Store) AddBook(book model.Book) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert("book", &book); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (s *Store) GetBook(bookID string) (model.Book, error) {
	txn := s.db.Txn(false)
	raw, err := txn.First("book", "id", bookID)
	if err != nil {
		return model.Book{}, err
	}
	if raw == nil {
		return model.Book{}, errs.ErrBookNotAvailable
	}
	return *raw.(*model.Book), nil
}

// AddPayment seeds a payment collaborator record.
func (s *Store) AddPayment(p model.Payment) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert("payment", &p); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (s *Store) GetPayment(rentalID string) (model.Payment, error) {
	txn := s.db.Txn(false)
	raw, err := txn.First("payment", "rental_id", rentalID)
	if err != nil {
		return model.Payment{}, err
	}
	if raw == nil {
		return model.Payment{}, errs.ErrNotFound
	}
	return *raw.(*model.Payment), nil
}

// ConfirmRentalPayment plays the payment collaborator: it flips the rental's
// payment status after slip verification.
func (s *Store) ConfirmRentalPayment(rentalID string, status model.PaymentStatus) error {
	_, err := s.transition(rentalID, errs.ErrNotFound, func(r *model.Rental) bool {
		r.PaymentStatus = status
		return true
	})
	return err
}

func (s *Store) ReserveBook(_ context.Context, bookID string) (model.Book, error) {
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First("book", "id", bookID)
	if err != nil {
		return model.Book{}, err
	}
	if raw == nil {
		return model.Book{}, errs.ErrBookNotAvailable
	}
	book := *raw.(*model.Book)
	if book.Available <= 0 || book.Status != model.BookAvailable {
		return model.Book{}, errs.ErrBookNotAvailable
	}
	book.Available--
	if err := txn.Insert("book", &book); err != nil {
		return model.Book{}, err
	}
	txn.Commit()
	return book, nil
}

func (s *Store) ReleaseBook(_ context.Context, bookID string) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First("book", "id", bookID)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	book := *raw.(*model.Book)
	if book.Available < book.Total {
		book.Available++
	}
	if err := txn.Insert("book", &book); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (s *Store) CreateRental(_ context.Context, rental model.Rental) (model.Rental, error) {
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First("rental", "id", rental.ID)
	if err != nil {
		return model.Rental{}, err
	}
	if raw != nil {
		return model.Rental{}, errs.ErrDuplicateRental
	}
	if err := txn.Insert("rental", &rental); err != nil {
		return model.Rental{}, err
	}
	txn.Commit()
	return rental, nil
}

func (s *Store) GetRental(_ context.Context, rentalID string) (model.Rental, error) {
	txn := s.db.Txn(false)
	raw, err := txn.First("rental", "id", rentalID)
	if err != nil {
		return model.Rental{}, err
	}
	if raw == nil {
		return model.Rental{}, errs.ErrNotFound
	}
	return *raw.(*model.Rental), nil
}

func (s *Store) MarkPickedUp(_ context.Context, rentalID string, borrowDate time.Time) (model.Rental, error) {
	return s.transition(rentalID, errs.ErrNotBooked, func(r *model.Rental) bool {
		if r.Status != model.RentalBooked || r.PaymentStatus != model.PaymentPaid {
			return false
		}
		r.Status = model.RentalRented
		r.BorrowDate = borrowDate
		return true
	})
}

func (s *Store) MarkReturned(_ context.Context, rentalID string, returnDate time.Time, fine int) (model.Rental, error) {
	return s.transition(rentalID, errs.ErrNotRented, func(r *model.Rental) bool {
		if r.Status != model.RentalRented {
			return false
		}
		r.Status = model.RentalReturned
		r.ReturnDate = &returnDate
		r.Fine = fine
		return true
	})
}

func (s *Store) MarkCancelled(_ context.Context, rentalID string, paymentStatus model.PaymentStatus) (model.Rental, error) {
	return s.transition(rentalID, errs.ErrNotCancellable, func(r *model.Rental) bool {
		if r.Status != model.RentalBooked {
			return false
		}
		r.Status = model.RentalCancelled
		r.PaymentStatus = paymentStatus
		return true
	})
}

func (s *Store) transition(rentalID string, condErr error, apply func(*model.Rental) bool) (model.Rental, error) {
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First("rental", "id", rentalID)
	if err != nil {
		return model.Rental{}, err
	}
	if raw == nil {
		return model.Rental{}, condErr
	}
	rental := *raw.(*model.Rental)
	if !apply(&rental) {
		return model.Rental{}, condErr
	}
	if err := txn.Insert("rental", &rental); err != nil {
		return model.Rental{}, err
	}
	txn.Commit()
	return rental, nil
}

func (s *Store) SetPaymentStatus(_ context.Context, rentalID string, status model.PaymentStatus) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First("payment", "rental_id", rentalID)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	p := *raw.(*model.Payment)
	p.Status = status
	if err := txn.Insert("payment", &p); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (s *Store) ListUserRentals(_ context.Context, userID string) ([]model.Rental, error) {
	txn := s.db.Txn(false)
	it, err := txn.Get("rental", "user_id", userID)
	if err != nil {
		return nil, err
	}
	var items []model.Rental
	for raw := it.Next(); raw != nil; raw = it.Next() {
		items = append(items, *raw.(*model.Rental))
	}
	sortNewestFirst(items)
	return items, nil
}

func (s *Store) ListRentals(_ context.Context, f repository.RentalFilter) ([]model.Rental, error) {
	items, err := s.scan(f)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(items)
	return items, nil
}

func (s *Store) CountRentals(_ context.Context, f repository.RentalFilter) (int, error) {
	items, err := s.scan(f)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *Store) scan(f repository.RentalFilter) ([]model.Rental, error) {
	txn := s.db.Txn(false)
	it, err := txn.Get("rental", "id")
	if err != nil {
		return nil, err
	}
	var items []model.Rental
	for raw := it.Next(); raw != nil; raw = it.Next() {
		r := *raw.(*model.Rental)
		if f.From != nil && r.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && r.CreatedAt.After(*f.To) {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.DueBefore != nil && !r.DueDate.Before(*f.DueBefore) {
			continue
		}
		items = append(items, r)
	}
	return items, nil
}

func sortNewestFirst(items []model.Rental) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
