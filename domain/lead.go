package domain

import "time"

// LeadForm is the raw lead-capture form submitted by the landing page.
type LeadForm struct {
	VisitorID  string `json:"visitor_id" validate:"required"`
	SessionID  string `json:"session_id"`
	FirstName  string `json:"first_name" validate:"max=1000"`
	LastName   string `json:"last_name" validate:"max=1000"`
	Email      string `json:"email" validate:"required,email,max=1000"`
	Phone      string `json:"phone" validate:"max=1000"`
	Company    string `json:"company" validate:"max=1000"`
	Experience string `json:"experience" validate:"omitempty,oneof=beginner some-exp experienced expert"`
	Message    string `json:"message" validate:"max=1000"`
	Source     string `json:"source" validate:"max=1000"`
	PageURL    string `json:"page_url" validate:"max=1000"`
}

// Lead is a captured lead. EmailEncrypted holds the AES-CBC encrypted address.
type Lead struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	VisitorID       string    `gorm:"column:visitor_id;not null;index" json:"visitor_id"`
	SessionID       string    `gorm:"column:session_id" json:"session_id,omitempty"`
	FirstName       string    `gorm:"column:first_name" json:"first_name"`
	LastName        string    `gorm:"column:last_name" json:"last_name"`
	EmailEncrypted  string    `gorm:"column:email_encrypted;not null" json:"-"`
	EmailDomain     string    `gorm:"column:email_domain" json:"email_domain"`
	Phone           string    `gorm:"column:phone" json:"-"`
	Company         string    `gorm:"column:company" json:"company,omitempty"`
	Experience      string    `gorm:"column:experience" json:"experience,omitempty"`
	Source          string    `gorm:"column:source" json:"source"`
	FormScore       int       `gorm:"column:form_score" json:"form_score"`
	EngagementScore int       `gorm:"column:engagement_score" json:"engagement_score"`
	Rating          string    `gorm:"column:rating" json:"rating"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Lead) TableName() string {
	return "leads"
}

const (
	RatingHot  = "Hot"
	RatingWarm = "Warm"
	RatingCool = "Cool"
	RatingCold = "Cold"
)

// LeadResult is returned to the landing page after a capture.
type LeadResult struct {
	LeadID          uint   `json:"lead_id"`
	FormScore       int    `json:"form_score"`
	EngagementScore int    `json:"engagement_score"`
	Rating          string `json:"rating"`
}

// CRMLead is the generic payload pushed to CRM backends.
type CRMLead struct {
	LeadID          uint      `json:"lead_id"`
	VisitorID       string    `json:"visitor_id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	Company         string    `json:"company,omitempty"`
	Experience      string    `json:"experience,omitempty"`
	Source          string    `json:"source"`
	PageURL         string    `json:"page_url,omitempty"`
	FormScore       int       `json:"form_score"`
	EngagementScore int       `json:"engagement_score"`
	Rating          string    `json:"rating"`
	Timestamp       time.Time `json:"timestamp"`
}

// LeadAlert is sent to the sales channel for high-value leads.
type LeadAlert struct {
	Email      string
	Experience string
	Source     string
	Score      int
	Rating     string
}
