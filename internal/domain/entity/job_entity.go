package entity

import "time"

// Job is a listing shown on the dashboard jobs page.
type Job struct {
	ID          string
	Company     string
	Title       string
	Website     string
	Location    string
	Salary      string
	JobType     string // Full-time, Part-time, Contract, Remote
	Tags        []string
	Description string
	PostedAt    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
