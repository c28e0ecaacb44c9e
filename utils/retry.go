package utils

import (
	"database/sql/driver"
	"errors"
	"strings"
	"time"
)

// Retry untuk error storage transient: maksimal 3 percobaan dengan backoff
// 1s/2s/4s (cap 5s). Dipakai per-operasi, bukan per-batch, supaya retry
// setelah kegagalan parsial tetap aman.
const retryAttempts = 3

var (
	retryBaseDelay = 1 * time.Second
	retryMaxDelay  = 5 * time.Second
)

// WithRetry menjalankan op dan mengulang hanya untuk error transient.
// Error bisnis (AppError selain dependency) langsung diteruskan.
func WithRetry(op func() error) error {
	var err error
	delay := retryBaseDelay
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		if attempt == retryAttempts {
			break
		}
		ErrorLogger.Printf("Transient storage error (attempt %d/%d), retrying in %v: %v",
			attempt, retryAttempts, delay, err)
		time.Sleep(delay)
		delay *= 2
		if delay > retryMaxDelay {
			delay = retryMaxDelay
		}
	}
	return Dependency(err)
}

// IsTransient -> true untuk kegagalan koneksi/timeout yang layak di-retry
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == KindDependencyUnavailable
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"invalid connection",
		"deadline exceeded",
		"try again",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
