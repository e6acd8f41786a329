package main

import (
	stdLog "log"

	"github.com/joho/godotenv"

	"github.com/bookrent/rental-service/app"
	"github.com/bookrent/rental-service/config"
)

// @title           Book Rental Service API
// @version         1.0
// @description     Rental lifecycle with inventory reservation: rent, pickup, return, cancel, dashboard reports.
// @BasePath        /api/v1
func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Println("load envs from .env ", err)
	}
	cfg := config.NewConfig()

	if err := app.Run(cfg); err != nil {
		stdLog.Fatal(err)
	}
}
