package contact

import (
	"strings"
	"time"

	"github.com/KromaEnergia/api-crm/internal/models"
	"github.com/KromaEnergia/api-crm/internal/policy"
	"github.com/KromaEnergia/api-crm/internal/users"
)

// ContactRequest é o corpo de criação e edição.
type ContactRequest struct {
	NameTitle  string `json:"nameTitle" validate:"max=20"`
	FirstName  string `json:"firstName" validate:"required,max=100"`
	MiddleName string `json:"middleName" validate:"max=100"`
	LastName   string `json:"lastName" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email,max=256"`
	Phone      string `json:"phone" validate:"max=20"`
	Company    string `json:"company" validate:"max=200"`

	Address        string `json:"address" validate:"max=500"`
	AddressStreet1 string `json:"addressStreet1" validate:"max=200"`
	AddressStreet2 string `json:"addressStreet2" validate:"max=200"`
	AddressCity    string `json:"addressCity" validate:"max=100"`
	AddressState   string `json:"addressState" validate:"max=100"`
	AddressZip     string `json:"addressZip" validate:"max=20"`
	AddressCountry string `json:"addressCountry" validate:"max=100"`

	Title                string     `json:"title" validate:"max=100"`
	Industry             string     `json:"industry" validate:"max=100"`
	LeadReferralSource   string     `json:"leadReferralSource" validate:"max=200"`
	DateOfInitialContact *time.Time `json:"dateOfInitialContact"`
	Website              string     `json:"website" validate:"omitempty,url,max=500"`
	LinkedInProfile      string     `json:"linkedInProfile" validate:"omitempty,url,max=500"`
	BackgroundInfo       string     `json:"backgroundInfo" validate:"max=4000"`
	Rating               *int       `json:"rating" validate:"omitempty,min=1,max=5"`

	ProjectType        string     `json:"projectType" validate:"max=100"`
	ProjectDescription string     `json:"projectDescription" validate:"max=2000"`
	ProposalDueDate    *time.Time `json:"proposalDueDate"`
	Budget             *float64   `json:"budget" validate:"omitempty,min=0"`
	Deliverables       string     `json:"deliverables" validate:"max=2000"`

	StatusID     uint `json:"statusId"`
	AssignedToID uint `json:"assignedToId"`
}

// applyTo copia os campos editáveis. Status e dono passam pela policy.
func (r ContactRequest) applyTo(c *models.Contact) {
	t := strings.TrimSpace
	c.NameTitle = t(r.NameTitle)
	c.FirstName = t(r.FirstName)
	c.MiddleName = t(r.MiddleName)
	c.LastName = t(r.LastName)
	c.Email = t(r.Email)
	c.Phone = t(r.Phone)
	c.Company = t(r.Company)
	c.Address = t(r.Address)
	c.AddressStreet1 = t(r.AddressStreet1)
	c.AddressStreet2 = t(r.AddressStreet2)
	c.AddressCity = t(r.AddressCity)
	c.AddressState = t(r.AddressState)
	c.AddressZip = t(r.AddressZip)
	c.AddressCountry = t(r.AddressCountry)
	c.Title = t(r.Title)
	c.Industry = t(r.Industry)
	c.LeadReferralSource = t(r.LeadReferralSource)
	c.DateOfInitialContact = r.DateOfInitialContact
	c.Website = t(r.Website)
	c.LinkedInProfile = t(r.LinkedInProfile)
	c.BackgroundInfo = t(r.BackgroundInfo)
	c.Rating = r.Rating
	c.ProjectType = t(r.ProjectType)
	c.ProjectDescription = t(r.ProjectDescription)
	c.ProposalDueDate = r.ProposalDueDate
	c.Budget = r.Budget
	c.Deliverables = t(r.Deliverables)
}

type ChangeStatusRequest struct {
	StatusID uint `json:"statusId"`
}

// ActionResult é a resposta das mutações: mensagem e lista de retorno.
type ActionResult struct {
	Message  string          `json:"message"`
	Redirect policy.View     `json:"redirect"`
	Contact  *models.Contact `json:"contact,omitempty"`
}

type ListView struct {
	Title      string           `json:"title"`
	View       policy.View      `json:"view"`
	StatusName string           `json:"statusName"`
	Total      int              `json:"total"`
	Contacts   []models.Contact `json:"contacts"`
}

type DetailView struct {
	Contact  *models.Contact `json:"contact"`
	FullName string          `json:"fullName"`
	View     policy.View     `json:"view"`
}

type FormOptions struct {
	Statuses []models.ContactStatus `json:"statuses"`
	Users    []users.Option         `json:"users"`
}
