package service

import (
	"errors"
)

const (
	BadRequest          = 400
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
	ServiceUnavailable  = 503
)

var (
	ErrSourceUnavailable    = errors.New("order database unavailable")
	ErrAnalyticsWriteFailed = errors.New("analytics database write failed")
	ErrInsufficientHistory  = errors.New("insufficient history for forecasting")
	ErrBatchAlreadyRunning  = errors.New("batch run already in progress")
	ErrInvalidDate          = errors.New("invalid date parameter")
	UnExpectedError         = errors.New("internal error, please retry later")
)

var ErrorMap = map[error]int{
	ErrSourceUnavailable:    ServiceUnavailable,
	ErrAnalyticsWriteFailed: ServiceUnavailable,
	ErrInsufficientHistory:  NotFound,
	ErrBatchAlreadyRunning:  Conflict,
	ErrInvalidDate:          BadRequest,
	UnExpectedError:         InternalServerError,
}
