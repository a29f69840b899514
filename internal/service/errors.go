package service

import (
	"errors"

	"github.com/Skotchmaster/storefront/internal/domain"
)

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrInsufficientStock = errors.New("insufficient stock") // 400
	ErrNotFound          = domain.ErrNotFound               // 404
	ErrConflict          = errors.New("conflict")           // 409
	ErrPersistence       = errors.New("persistence")        // 500
)
