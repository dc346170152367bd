package domain

import "time"

// InquiryStatus tracks where an inquiry is in the maker's follow up.
type InquiryStatus string

const (
	InquiryStatusPending    InquiryStatus = "pending"
	InquiryStatusInProgress InquiryStatus = "in-progress"
	InquiryStatusResponded  InquiryStatus = "responded"
	InquiryStatusCompleted  InquiryStatus = "completed"
	InquiryStatusCancelled  InquiryStatus = "cancelled"
)

// InquiryStatuses lists every status.
var InquiryStatuses = []InquiryStatus{
	InquiryStatusPending,
	InquiryStatusInProgress,
	InquiryStatusResponded,
	InquiryStatusCompleted,
	InquiryStatusCancelled,
}

// Valid reports whether s is a known status.
func (s InquiryStatus) Valid() bool { return oneOf(s, InquiryStatuses) }

// InquiryPriority orders inquiries for follow up.
type InquiryPriority string

const (
	PriorityLow    InquiryPriority = "low"
	PriorityMedium InquiryPriority = "medium"
	PriorityHigh   InquiryPriority = "high"
	PriorityUrgent InquiryPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p InquiryPriority) Valid() bool {
	return oneOf(p, []InquiryPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent})
}

// Inquiry is a contact form submission, optionally about a specific project.
type Inquiry struct {
	ID              string
	ClientName      string
	Email           string
	Phone           string
	Subject         string
	Message         string
	ProjectID       string
	ReferenceImages []string
	Status          InquiryStatus
	Priority        InquiryPriority
	Notes           string
	Response        string
	RespondedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
