package main

import (
	_ "fitclub/docs"
	"fitclub/internal/logger"
)

// @title FitClub API
// @version 1.0
// @description Memberships, events and Stripe payments for a fitness club.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	if err := newRootCmd().Execute(); err != nil {
		logger.Fatalf("command failed: %v", err)
	}
}
