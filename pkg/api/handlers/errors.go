package handlers

import "github.com/gofiber/fiber/v3"

// ErrLotteryNotFound is returned when the lottery slug is not registered
var ErrLotteryNotFound = fiber.NewError(fiber.StatusNotFound, "lottery not found")

// ErrLotteryRequired is returned when a required lottery parameter is missing
var ErrLotteryRequired = fiber.NewError(fiber.StatusBadRequest, "lottery parameter is required")

// ErrPoolNotFound is returned when the pool name is not part of the game
var ErrPoolNotFound = fiber.NewError(fiber.StatusNotFound, "pool not found")

// ErrInvalidNumber is returned when the number parameter is not an integer
var ErrInvalidNumber = fiber.NewError(fiber.StatusBadRequest, "invalid number parameter")

// ErrInvalidBody is returned when an import body is not a JSON array of draws
var ErrInvalidBody = fiber.NewError(fiber.StatusBadRequest, "body must be a JSON array of draw records")
