package booking

import (
	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

var transitions = map[storage.BookingStatus][]storage.BookingStatus{
	storage.BookingPending:   {storage.BookingConfirmed, storage.BookingCancelled},
	storage.BookingConfirmed: {storage.BookingCancelled, storage.BookingCompleted},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to storage.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ParseStatus validates a booking status name.
func ParseStatus(raw string) (storage.BookingStatus, error) {
	status := storage.BookingStatus(raw)
	switch status {
	case storage.BookingPending, storage.BookingConfirmed, storage.BookingCancelled, storage.BookingCompleted:
		return status, nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeInvalidInput, "unknown booking status", map[string]string{"Fields": "status"})
	}
}

func checkTransition(from, to storage.BookingStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	return apperrors.WithMetadata(apperrors.CodeBookingInvalidTransition, "booking transition not allowed", map[string]string{
		"From": string(from),
		"To":   string(to),
	})
}
