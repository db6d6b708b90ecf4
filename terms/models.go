package terms

import "time"

// Record mirrors the terms_of_use table columns the processor writes.
type Record struct {
	ID                 int64
	Text               string
	TypeID             int64
	Title              string
	URL                string
	AgreeabilityTypeID int64
	CreateDate         time.Time
	ModifyDate         time.Time
}
