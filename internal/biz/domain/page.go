package domain

import "time"

// Page represents a connected Facebook page and its credential
type Page struct {
	ID          int64
	OwnerID     int64
	PageID      string
	PageName    string
	AccessToken string
	Active      bool
	CreatedAt   time.Time
}
