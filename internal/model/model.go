package model

import (
	"time"
)

type RentalStatus string

const (
	RentalBooked    RentalStatus = "booked"
	RentalRented    RentalStatus = "rented"
	RentalReturned  RentalStatus = "returned"
	RentalCancelled RentalStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending            PaymentStatus = "pending"
	PaymentPaid               PaymentStatus = "paid"
	PaymentCancelled          PaymentStatus = "cancelled"
	PaymentRefundVerification PaymentStatus = "refund_verification"
)

type BookStatus string

const (
	BookAvailable BookStatus = "Available"
	BookDisabled  BookStatus = "Disabled"
)

// RentalDays are the only priced term lengths.
var RentalDays = []int{3, 5, 7}

type Book struct {
	ID        string     `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Author    string     `json:"author" db:"author"`
	Status    BookStatus `json:"status" db:"status"`
	Total     int        `json:"total" db:"total"`
	Available int        `json:"available" db:"available"`
	PriceDay3 int        `json:"priceDay3" db:"price_day3"`
	PriceDay5 int        `json:"priceDay5" db:"price_day5"`
	PriceDay7 int        `json:"priceDay7" db:"price_day7"`
}

// PriceFor returns the rental fee for the given term length.
func (b Book) PriceFor(days int) (int, bool) {
	switch days {
	case 3:
		return b.PriceDay3, true
	case 5:
		return b.PriceDay5, true
	case 7:
		return b.PriceDay7, true
	}
	return 0, false
}

type Rental struct {
	ID            string        `json:"id" db:"id"`
	UserID        string        `json:"userId" db:"user_id"`
	BookID        string        `json:"bookId" db:"book_id"`
	Status        RentalStatus  `json:"status" db:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus" db:"payment_status"`
	BorrowDate    time.Time     `json:"borrowDate" db:"borrow_date"`
	DueDate       time.Time     `json:"dueDate" db:"due_date"`
	ReturnDate    *time.Time    `json:"returnDate,omitempty" db:"return_date"`
	Cost          int           `json:"cost" db:"cost"`
	Fine          int           `json:"fine" db:"fine"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
}

// Payment is the payment collaborator's record; only Status is written here,
// during cancellation reconciliation.
type Payment struct {
	ID       string        `json:"id" db:"id"`
	RentalID string        `json:"rentalId" db:"rental_id"`
	Amount   int           `json:"amount" db:"amount"`
	Status   PaymentStatus `json:"status" db:"status"`
}

type CreateRentalRequest struct {
	BookID string `json:"bookId" validate:"required"`
	Days   int    `json:"days" validate:"required,oneof=3 5 7"`
	UserID string `json:"-"`
}

type Summary struct {
	ActiveBookings int `json:"activeBookings"`
	ActiveRentals  int `json:"activeRentals"`
	OverdueRentals int `json:"overdueRentals"`
	Revenue        int `json:"revenue"`
}

type Report struct {
	SummaryData  Summary  `json:"summaryData"`
	Transactions []Rental `json:"transactions"`
}

// ReportDateAll disables the single-day window filter.
const ReportDateAll = "all"
