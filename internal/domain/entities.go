package domain

import "time"

// User is the administrative view of an account. The password hash never
// leaves the store except through this struct, and handlers must not
// serialize it.
type User struct {
	ID           string
	Account      string
	Name         string
	PasswordHash string
	Status       string
	Role         string
	CreatedAt    time.Time
}

// Subject is an organization that users belong to.
type Subject struct {
	ID        string
	Name      string
	Address   string
	Remark    string
	CreatedAt time.Time
}

// Depart is a department under a subject.
type Depart struct {
	ID        string
	SubjectID string
	Name      string
	Code      string
	Remark    string
	CreatedAt time.Time
}

// Activity is an event published under a subject.
type Activity struct {
	ID        string
	SubjectID string
	Title     string
	Content   string
	Status    string
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
}

// DeviceBinding maps an external device identifier to a user, used by the
// app login route.
type DeviceBinding struct {
	ID        string
	UserID    string
	OpenID    string
	CreatedAt time.Time
}

// Page carries a page of results plus the total row count.
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Size  int
}
