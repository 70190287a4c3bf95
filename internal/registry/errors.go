package registry

import "errors"

var (
	ErrRoomExists      = errors.New("room already exists")
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomCapacity    = errors.New("room is at capacity")
	ErrInvalidCapacity = errors.New("capacity must be a positive integer")
)
