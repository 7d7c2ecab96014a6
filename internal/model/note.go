package model

import "time"

// Note is a user note. ID and timestamps are assigned by the store.
type Note struct {
	ID        int64
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
