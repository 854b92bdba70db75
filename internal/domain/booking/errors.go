package booking

import (
	"errors"

	"ceramicflow/internal/pkg/apperr"
)

var (
	ErrReservationNotFound = &apperr.Error{Kind: apperr.KindNotFound, Detail: "reservation not found"}
	ErrArtifactNotFound    = &apperr.Error{Kind: apperr.KindNotFound, Detail: "artifact not found"}
	ErrSlotTaken           = &apperr.Error{Kind: apperr.KindConflict, Detail: "slot is already booked"}

	// ErrStaleCandidate is returned by Advance when the artifact's stage moved
	// between candidate selection and the write.
	ErrStaleCandidate = errors.New("artifact stage changed concurrently")
)
