package service

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrInvalidRoomCode = errors.New("room ID must be between 4 and 8 characters")
	ErrInvalidEvent    = errors.New("invalid event data")
	ErrRoomMismatch    = errors.New("event references a room the participant has not joined")
	ErrInternalServer  = errors.New("internal server error")
)
