package models

import (
	"strings"
	"time"
)

// IDs fixos da tabela contact_status (seed).
const (
	StatusLead     uint = 1
	StatusProposal uint = 2
	StatusCustomer uint = 3
	StatusArchive  uint = 4
)

type ContactStatus struct {
	ID     uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Status string `gorm:"size:50;uniqueIndex;not null" json:"status"`
}

func (ContactStatus) TableName() string { return "contact_status" }

// ContactStatuses é o conteúdo de referência da tabela contact_status.
var ContactStatuses = []ContactStatus{
	{ID: StatusLead, Status: "lead"},
	{ID: StatusProposal, Status: "proposal"},
	{ID: StatusCustomer, Status: "customer/won"},
	{ID: StatusArchive, Status: "archive"},
}

type Contact struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	NameTitle  string `gorm:"size:20" json:"nameTitle,omitempty"`
	FirstName  string `gorm:"size:100;not null" json:"firstName"`
	MiddleName string `gorm:"size:100" json:"middleName,omitempty"`
	LastName   string `gorm:"size:100;not null" json:"lastName"`
	Email      string `gorm:"size:256;not null;index" json:"email"`
	Phone      string `gorm:"size:20" json:"phone,omitempty"`
	Company    string `gorm:"size:200" json:"company,omitempty"`

	// Endereço
	Address        string `gorm:"size:500" json:"address,omitempty"`
	AddressStreet1 string `gorm:"size:200" json:"addressStreet1,omitempty"`
	AddressStreet2 string `gorm:"size:200" json:"addressStreet2,omitempty"`
	AddressCity    string `gorm:"size:100" json:"addressCity,omitempty"`
	AddressState   string `gorm:"size:100" json:"addressState,omitempty"`
	AddressZip     string `gorm:"size:20" json:"addressZip,omitempty"`
	AddressCountry string `gorm:"size:100" json:"addressCountry,omitempty"`

	// Qualificação do lead
	Title                string     `gorm:"size:100" json:"title,omitempty"`
	Industry             string     `gorm:"size:100" json:"industry,omitempty"`
	LeadReferralSource   string     `gorm:"size:200" json:"leadReferralSource,omitempty"`
	DateOfInitialContact *time.Time `json:"dateOfInitialContact,omitempty"`
	Website              string     `gorm:"size:500" json:"website,omitempty"`
	LinkedInProfile      string     `gorm:"size:500" json:"linkedInProfile,omitempty"`
	BackgroundInfo       string     `gorm:"size:4000" json:"backgroundInfo,omitempty"`
	Rating               *int       `json:"rating,omitempty"`

	// Proposta
	ProjectType        string     `gorm:"size:100" json:"projectType,omitempty"`
	ProjectDescription string     `gorm:"size:2000" json:"projectDescription,omitempty"`
	ProposalDueDate    *time.Time `json:"proposalDueDate,omitempty"`
	Budget             *float64   `gorm:"type:numeric(18,2)" json:"budget,omitempty"`
	Deliverables       string     `gorm:"size:2000" json:"deliverables,omitempty"`

	StatusID     uint           `gorm:"not null;index" json:"statusId"`
	Status       *ContactStatus `gorm:"foreignKey:StatusID;constraint:OnDelete:RESTRICT" json:"status,omitempty"`
	AssignedToID uint           `gorm:"not null;index" json:"assignedToId"`
	AssignedTo   *User          `gorm:"foreignKey:AssignedToID;constraint:OnDelete:RESTRICT" json:"assignedTo,omitempty"`

	Notes []Note `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE" json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c Contact) FullName() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{c.NameTitle, c.FirstName, c.MiddleName, c.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
