package entity

import (
	"time"
)

// Member represents a membership registration for data transfer between layers.
// MembershipNo is empty until the record has been persisted once; it is then
// derived from the generated row ID.
type Member struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	MembershipNo string    `json:"membership_no,omitempty"`
	ActiveNo     string    `json:"active_no,omitempty"`
	Profession   string    `json:"profession,omitempty"`
	Designation  string    `json:"designation,omitempty"`
	Mandal       string    `json:"mandal,omitempty"`
	DOB          string    `json:"dob,omitempty"` // YYYY-MM-DD
	BloodGroup   string    `json:"blood_group,omitempty"`
	ContactNo    string    `json:"contact_no"`
	Address      string    `json:"address,omitempty"`
	DocumentPath string    `json:"document_path,omitempty"`
	PhotoPath    string    `json:"photo_path,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
