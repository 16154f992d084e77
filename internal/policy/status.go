package policy

import (
	"strings"

	"github.com/KromaEnergia/api-crm/internal/models"
)

// View é a lista para onde o cliente volta depois de uma ação.
type View string

const (
	ViewLeads         View = "Leads"
	ViewOpportunities View = "Opportunities"
	ViewCustomers     View = "Customers"
	ViewArchive       View = "Archive"
)

// StatusView liga uma lista ao status que ela exibe.
type StatusView struct {
	View       View   `json:"view"`
	Path       string `json:"path"`
	Title      string `json:"title"`
	StatusID   uint   `json:"statusId"`
	StatusName string `json:"statusName"`
}

var statusViews = []StatusView{
	{View: ViewLeads, Path: "leads", Title: "Leads", StatusID: models.StatusLead, StatusName: "lead"},
	{View: ViewOpportunities, Path: "opportunities", Title: "Opportunities", StatusID: models.StatusProposal, StatusName: "proposal"},
	{View: ViewCustomers, Path: "customers", Title: "Customers", StatusID: models.StatusCustomer, StatusName: "customer/won"},
	{View: ViewArchive, Path: "archive", Title: "Archive", StatusID: models.StatusArchive, StatusName: "archive"},
}

// RedirectView escolhe a lista pelo status. Archive e desconhecidos caem em Leads.
func RedirectView(statusID uint) View {
	switch statusID {
	case models.StatusLead:
		return ViewLeads
	case models.StatusProposal:
		return ViewOpportunities
	case models.StatusCustomer:
		return ViewCustomers
	}
	return ViewLeads
}

// StatusViewByPath resolve o segmento de URL (ex.: "opportunities").
func StatusViewByPath(path string) (StatusView, bool) {
	path = strings.ToLower(strings.TrimSpace(path))
	for _, v := range statusViews {
		if v.Path == path {
			return v, true
		}
	}
	return StatusView{}, false
}

func StatusViews() []StatusView {
	out := make([]StatusView, len(statusViews))
	copy(out, statusViews)
	return out
}
