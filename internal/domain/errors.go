package domain

import "errors"

var (
	// ErrRoomNotFound is returned when a join targets a code with no live room.
	ErrRoomNotFound = errors.New("room not found")
	// ErrNoQuestions indicates the question dataset is empty or could not be loaded.
	ErrNoQuestions = errors.New("no questions loaded")
)
