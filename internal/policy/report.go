package policy

import (
	"sort"
	"strings"
	"time"

	"github.com/KromaEnergia/api-crm/internal/models"
)

// Funções puras de agregação. Entrada vazia devolve contagens zeradas.

// CountByStatus inclui uma entrada zerada para cada status conhecido.
func CountByStatus(contacts []models.Contact, statuses []models.ContactStatus) map[string]int {
	counts := make(map[string]int, len(statuses))
	names := make(map[uint]string, len(statuses))
	for _, s := range statuses {
		counts[s.Status] = 0
		names[s.ID] = s.Status
	}
	for _, c := range contacts {
		if name, ok := names[c.StatusID]; ok {
			counts[name]++
		}
	}
	return counts
}

func CountOpenActionable(notes []models.Note, kind models.NoteKind) int {
	n := 0
	for _, note := range notes {
		if note.Kind() == kind && note.IsPending() {
			n++
		}
	}
	return n
}

// CountOverdue conta itens pendentes com vencimento anterior a now.
func CountOverdue(notes []models.Note, kind models.NoteKind, now time.Time) int {
	n := 0
	for _, note := range notes {
		if note.Kind() == kind && note.IsPending() && note.DueDate != nil && note.DueDate.Before(now) {
			n++
		}
	}
	return n
}

// RepStat é uma linha do quadro por vendedor.
type RepStat struct {
	UserID           uint        `json:"userId"`
	FullName         string      `json:"fullName"`
	Email            string      `json:"email"`
	Role             models.Role `json:"role"`
	ContactCount     int         `json:"contactCount"`
	OpenTaskCount    int         `json:"openTaskCount"`
	OpenMeetingCount int         `json:"openMeetingCount"`
}

// PerUserBreakdown gera uma linha por usuário ativo, ordenada por nome e sobrenome.
// Itens abertos contam para o dono atual do contato pai.
func PerUserBreakdown(users []models.User, contacts []models.Contact, notes []models.Note) []RepStat {
	ownerOf := make(map[uint]uint, len(contacts))
	contactCount := make(map[uint]int)
	for _, c := range contacts {
		ownerOf[c.ID] = c.AssignedToID
		contactCount[c.AssignedToID]++
	}

	openTasks := make(map[uint]int)
	openMeetings := make(map[uint]int)
	for _, n := range notes {
		if !n.IsPending() {
			continue
		}
		owner, ok := ownerOf[n.ContactID]
		if !ok && n.Contact != nil {
			owner, ok = n.Contact.AssignedToID, true
		}
		if !ok {
			continue
		}
		switch n.Kind() {
		case models.KindTask:
			openTasks[owner]++
		case models.KindMeeting:
			openMeetings[owner]++
		}
	}

	active := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.IsActive {
			active = append(active, u)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		a, b := strings.ToLower(active[i].FirstName), strings.ToLower(active[j].FirstName)
		if a != b {
			return a < b
		}
		return strings.ToLower(active[i].LastName) < strings.ToLower(active[j].LastName)
	})

	out := make([]RepStat, 0, len(active))
	for _, u := range active {
		out = append(out, RepStat{
			UserID:           u.ID,
			FullName:         u.FullName(),
			Email:            u.Email,
			Role:             u.Role,
			ContactCount:     contactCount[u.ID],
			OpenTaskCount:    openTasks[u.ID],
			OpenMeetingCount: openMeetings[u.ID],
		})
	}
	return out
}

func CountUsers(users []models.User) (total, active int) {
	for _, u := range users {
		total++
		if u.IsActive {
			active++
		}
	}
	return total, active
}
