// Package models defines the data structures used across the application.
// These map to the complaint-desk PostgreSQL schema and to the JSON wire
// contract shared by the server and the client.
package models

import (
	"time"
)

// Area is one of the two named zones a complaint can belong to
type Area string

const (
	AreaA Area = "A区"
	AreaB Area = "B区"
)

// Areas lists every recognised zone in display order
var Areas = []Area{AreaA, AreaB}

// Valid reports whether a is a recognised zone
func (a Area) Valid() bool {
	return a == AreaA || a == AreaB
}

// Complaint is a ticket raised by a complainant
type Complaint struct {
	ID              string    `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Content         string    `json:"content" db:"content"`
	Category        string    `json:"category" db:"category"`
	Source          string    `json:"source" db:"source"`
	Level           string    `json:"level" db:"level"`
	Area            Area      `json:"area" db:"area"`
	ComplainantName string    `json:"complainantName" db:"complainant_name"`
	Contact         string    `json:"contact,omitempty" db:"contact"`
	Assignee        string    `json:"assignee,omitempty" db:"assignee"`
	Status          Status    `json:"status" db:"status"`
	ProcessingNotes string    `json:"processingNotes,omitempty" db:"processing_notes"`
	Satisfaction    *float64  `json:"satisfaction" db:"satisfaction"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// ComplaintListItem is the list projection of a complaint (no content)
type ComplaintListItem struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	Source          string    `json:"source"`
	Level           string    `json:"level"`
	Area            Area      `json:"area"`
	ComplainantName string    `json:"complainantName"`
	Contact         string    `json:"contact,omitempty"`
	Assignee        string    `json:"assignee,omitempty"`
	Status          Status    `json:"status"`
	Satisfaction    *float64  `json:"satisfaction"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ListItem projects c onto its list view
func (c Complaint) ListItem() ComplaintListItem {
	return ComplaintListItem{
		ID:              c.ID,
		Title:           c.Title,
		Category:        c.Category,
		Source:          c.Source,
		Level:           c.Level,
		Area:            c.Area,
		ComplainantName: c.ComplainantName,
		Contact:         c.Contact,
		Assignee:        c.Assignee,
		Status:          c.Status,
		Satisfaction:    c.Satisfaction,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// CreateComplaintRequest is the request body for filing a new complaint
type CreateComplaintRequest struct {
	Title           string `json:"title" validate:"notblank"`
	Category        string `json:"category" validate:"notblank"`
	Source          string `json:"source" validate:"notblank"`
	Area            Area   `json:"area" validate:"notblank"`
	ComplainantName string `json:"complainantName" validate:"notblank"`
	Contact         string `json:"contact,omitempty"`
	Level           string `json:"level" validate:"notblank"`
	Content         string `json:"content" validate:"notblank"`
	Assignee        string `json:"assignee,omitempty"`
}

// UpdateComplaintRequest is a partial projection of the creatable fields.
// Nil fields are left untouched.
type UpdateComplaintRequest struct {
	ID              string  `json:"id,omitempty"`
	Title           *string `json:"title,omitempty"`
	Category        *string `json:"category,omitempty"`
	Source          *string `json:"source,omitempty"`
	Area            *Area   `json:"area,omitempty"`
	ComplainantName *string `json:"complainantName,omitempty"`
	Contact         *string `json:"contact,omitempty"`
	Level           *string `json:"level,omitempty"`
	Content         *string `json:"content,omitempty"`
	Assignee        *string `json:"assignee,omitempty"`
	Status          *Status `json:"status,omitempty"`
	ProcessingNotes *string `json:"processingNotes,omitempty"`
}

// ComplaintPage is one page of list results
type ComplaintPage struct {
	List  []ComplaintListItem `json:"list"`
	Total int                 `json:"total"`
}

// ResolveHistory is an immutable audit entry for a status change
type ResolveHistory struct {
	ID          string    `json:"id" db:"id"`
	TicketNo    string    `json:"ticketNo" db:"ticket_no"`
	Status      Status    `json:"status" db:"status"`
	Operator    string    `json:"operator" db:"operator"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// ResolveRequest is the request body for appending a resolve-history entry
type ResolveRequest struct {
	TicketNo    string `json:"ticketNo" validate:"notblank"`
	Status      Status `json:"status" validate:"notblank"`
	Description string `json:"description"`
}

// Feedback is a citizen satisfaction survey tied to a resolved ticket
type Feedback struct {
	ID               string    `json:"id" db:"id"`
	SurveyCode       string    `json:"surveyCode" db:"survey_code"`
	TicketNo         string    `json:"ticketNo" db:"ticket_no"`
	InvestigatorName string    `json:"investigatorName" db:"investigator_name"`
	ContactInfo      string    `json:"contactInfo,omitempty" db:"contact_info"`
	ProcessingSpeed  string    `json:"processingSpeed" db:"processing_speed"`
	StaffAttitude    string    `json:"staffAttitude" db:"staff_attitude"`
	ResolutionEffect string    `json:"resolutionEffect" db:"resolution_effect"`
	OtherSuggestions string    `json:"otherSuggestions,omitempty" db:"other_suggestions"`
	Score            float64   `json:"score" db:"score"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}

// FeedbackSubmission is the request body for recording a survey
type FeedbackSubmission struct {
	SurveyCode       string `json:"surveyCode,omitempty"`
	TicketNo         string `json:"ticketNo" validate:"notblank"`
	InvestigatorName string `json:"investigatorName" validate:"notblank"`
	ContactInfo      string `json:"contactInfo,omitempty"`
	ProcessingSpeed  string `json:"processingSpeed" validate:"notblank"`
	StaffAttitude    string `json:"staffAttitude" validate:"notblank"`
	ResolutionEffect string `json:"resolutionEffect" validate:"notblank"`
	OtherSuggestions string `json:"otherSuggestions,omitempty"`
}

// FeedbackPage is one page of feedback results
type FeedbackPage struct {
	List  []Feedback `json:"list"`
	Total int        `json:"total"`
}

// DeleteResult reports how many rows a batch delete removed
type DeleteResult struct {
	Deleted int `json:"deleted"`
}

// MerkleProof contains the Merkle proof for a specific history entry
type MerkleProof struct {
	LeafHash string      `json:"leaf_hash"`
	Root     string      `json:"root"`
	Proof    []ProofStep `json:"proof"`
	Index    int         `json:"index"`
	Verified bool        `json:"verified"`
}

// ProofStep is a single step in a Merkle proof path
type ProofStep struct {
	Hash     string `json:"hash"`
	Position string `json:"position"` // "left" | "right"
}

// VerifyRequest is the request body for checking a proof against a root
type VerifyRequest struct {
	LeafHash string      `json:"leaf_hash"`
	Proof    []ProofStep `json:"proof"`
	Root     string      `json:"root"`
}

// VerifyResult reports whether a proof leads to the root
type VerifyResult struct {
	Valid bool `json:"valid"`
}

// HealthStatus represents the server health check response
type HealthStatus struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Uptime     string `json:"uptime"`
	Database   string `json:"database"`
	MerkleRoot string `json:"merkle_root,omitempty"`
}
