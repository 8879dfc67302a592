package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("conflict")
	ErrInvalidRange     = errors.New("start date is after end date")
	ErrRangeSpansMonths = errors.New("date range spans more than one calendar month")
)
