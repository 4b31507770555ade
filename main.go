package main

import "github.com/beheryahmed1991/meal-subscription-service/internal/cli"

// @title Meal Subscription Service
// @version 1.0
// @description Subscription delivery calendar, skip management and holiday protection
// @host localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cli.Execute()
}
