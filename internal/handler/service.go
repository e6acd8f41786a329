package handler

import (
	"context"

	"github.com/bookrent/rental-service/internal/model"
	"github.com/bookrent/rental-service/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type RentalService interface {
	Rent(ctx context.Context, req model.CreateRentalRequest) (model.Rental, error)
	Pickup(ctx context.Context, rentalID string) (model.Rental, error)
	Return(ctx context.Context, rentalID string) (model.Rental, error)
	Cancel(ctx context.Context, rentalID, userID string) (model.Rental, error)
	History(ctx context.Context, userID string) ([]model.Rental, error)
	Report(ctx context.Context, date string) (model.Report, error)
}

var _ RentalService = (*service.Service)(nil)
