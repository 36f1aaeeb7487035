package domain

import "errors"

var (
	ErrStockNotFound       = errors.New("stock record not found")
	ErrReadFailure         = errors.New("store read failed")
	ErrWriteFailure        = errors.New("store write failed")
	ErrConflict            = errors.New("concurrent stock update")
	ErrDoseNotFound        = errors.New("dose instance not found")
	ErrDoseAlreadyResolved = errors.New("dose instance already resolved")
	ErrInvalidUnits        = errors.New("units left must be non-negative")
)
