package domain

import "time"

// Category classifies complaints.
type Category struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
}
