package model

import "gorm.io/gorm"

type EnquiryStatus string

const (
	EnquiryStatusNew        EnquiryStatus = "new"
	EnquiryStatusRead       EnquiryStatus = "read"
	EnquiryStatusContacted  EnquiryStatus = "contacted"
	EnquiryStatusNoResponse EnquiryStatus = "no_response"
	EnquiryStatusClosed     EnquiryStatus = "closed"
)

var EnquiryStatuses = []EnquiryStatus{
	EnquiryStatusNew,
	EnquiryStatusRead,
	EnquiryStatusContacted,
	EnquiryStatusNoResponse,
	EnquiryStatusClosed,
}

func (s EnquiryStatus) Valid() bool {
	for _, v := range EnquiryStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Enquiry is a visitor's message to the agent of a listing.
type Enquiry struct {
	gorm.Model
	PropertyID uint          `json:"property_id" gorm:"index"`
	Name       string        `json:"name" gorm:"not null"`
	Email      string        `json:"email" gorm:"not null"`
	Phone      string        `json:"phone"`
	Message    string        `json:"message" gorm:"type:text"`
	Status     EnquiryStatus `json:"status" gorm:"default:'new';index"`

	Property Property `json:"property" gorm:"foreignKey:PropertyID"`
}
