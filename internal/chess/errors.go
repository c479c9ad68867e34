package chess

import "errors"

// Misuse of the session API. These indicate a caller bug, never a user mistake.
var (
	ErrOutOfBounds        = errors.New("position out of bounds")
	ErrNoPendingPromotion = errors.New("no promotion pending")
	ErrPromotionSquare    = errors.New("promotion square mismatch")
	ErrPromotionKind      = errors.New("promotion kind not offered")
	ErrPromotionPending   = errors.New("promotion choice pending")
	ErrInvalidSnapshot    = errors.New("invalid board snapshot")
)
