package dashboard

import (
	"github.com/KromaEnergia/api-crm/internal/models"
	"github.com/KromaEnergia/api-crm/internal/policy"
	"github.com/KromaEnergia/api-crm/internal/users"
)

// HomeView é o painel do usuário, já restrito ao que ele enxerga.
type HomeView struct {
	CountsByStatus map[string]int   `json:"countsByStatus"`
	TotalContacts  int              `json:"totalContacts"`
	RecentContacts []models.Contact `json:"recentContacts"`
	RecentNotes    []models.Note    `json:"recentNotes"`
	IsManager      bool             `json:"isManager"`
}

type AdminView struct {
	CountsByStatus  map[string]int   `json:"countsByStatus"`
	TotalContacts   int              `json:"totalContacts"`
	OpenTasks       int              `json:"openTasks"`
	OverdueTasks    int              `json:"overdueTasks"`
	OpenMeetings    int              `json:"openMeetings"`
	OverdueMeetings int              `json:"overdueMeetings"`
	TotalUsers      int              `json:"totalUsers"`
	ActiveUsers     int              `json:"activeUsers"`
	SalesReps       []policy.RepStat `json:"salesReps"`
}

type AdminContactsView struct {
	Contacts   []models.Contact       `json:"contacts"`
	Total      int                    `json:"total"`
	Statuses   []models.ContactStatus `json:"statuses"`
	SalesReps  []users.Option         `json:"salesReps"`
	SalesRepID *uint                  `json:"salesRepId,omitempty"`
	Status     string                 `json:"status,omitempty"`
}

type AdminTasksView struct {
	Tasks         []models.Note  `json:"tasks"`
	Total         int            `json:"total"`
	SalesReps     []users.Option `json:"salesReps"`
	SalesRepID    *uint          `json:"salesRepId,omitempty"`
	ShowCompleted bool           `json:"showCompleted"`
}
