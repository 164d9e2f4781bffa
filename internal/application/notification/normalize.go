package notification

import (
	"strings"
	"time"

	"github.com/crm-mobile-api/internal/domain"
	"github.com/crm-mobile-api/internal/pkg/htmltext"
)

const (
	typeReminder = "reminder"
	typeSystem   = "system"

	legacyTypeMention    = "Mention"
	legacyTypeWhatsApp   = "WhatsApp"
	legacyTypeAssignment = "Assignment"

	removedMarker = "has been removed by"
	fallbackText  = "Notification"
)

var referenceTypes = map[string]struct{ ref, route string }{
	domain.DoctypeLead: {ref: "lead", route: "Lead"},
	domain.DoctypeDeal: {ref: "deal", route: "Deal"},
}

// mapReference returns the client reference type and route for a CRM doctype,
// or nils for anything else.
func mapReference(doctype *string) (ref, route *string) {
	if doctype == nil {
		return nil, nil
	}
	m, ok := referenceTypes[*doctype]
	if !ok {
		return nil, nil
	}
	return &m.ref, &m.route
}

func isReminder(e domain.LogEntry) bool {
	t := strings.ToLower(e.Type)
	return t == "reminder" || t == "alert" || strings.Contains(strings.ToLower(e.Subject), "remind")
}

func logText(e domain.LogEntry) string {
	txt := strings.TrimSpace(e.Subject)
	if txt == "" {
		txt = strings.TrimSpace(e.EmailContent)
	}
	if txt = htmltext.Strip(txt); txt == "" {
		return fallbackText
	}
	return txt
}

func fromLog(e domain.LogEntry, fullNames map[string]string) domain.PortalNotification {
	n := domain.PortalNotification{
		FromUser:         domain.UserRef{Name: e.Owner, FullName: fullNames[e.Owner]},
		Type:             e.Type,
		ToUser:           e.ForUser,
		Read:             e.Seen,
		NotificationText: logText(e),
		Source:           domain.SourceNotificationLog,
		Name:             e.Name,
	}
	if !e.Creation.IsZero() {
		c := e.Creation
		n.Creation = &c
	}
	if n.ToUser == "" {
		n.ToUser = e.Owner
	}
	if isReminder(e) {
		n.Type = typeReminder
		n.Hash = "#" + typeReminder
	} else if n.Type == "" {
		n.Type = typeSystem
	}
	if e.DocumentType != "" {
		n.NotificationTypeDoctype = &e.DocumentType
	}
	if e.DocumentName != "" {
		n.NotificationTypeDoc = &e.DocumentName
		n.ReferenceName = &e.DocumentName
	}
	n.ReferenceDoctype, n.RouteName = mapReference(n.NotificationTypeDoctype)
	return n
}

func legacyHash(e domain.LegacyEntry) string {
	switch e.Type {
	case legacyTypeMention:
		if e.NotificationTypeDoc != nil && *e.NotificationTypeDoc != "" {
			return "#" + *e.NotificationTypeDoc
		}
	case legacyTypeWhatsApp:
		return "#whatsapp"
	case legacyTypeAssignment:
		if e.NotificationTypeDoctype != nil && *e.NotificationTypeDoctype == domain.DoctypeTask {
			if e.Message != nil && strings.Contains(*e.Message, removedMarker) {
				return ""
			}
			return "#tasks"
		}
	}
	return ""
}

func fromLegacy(e domain.LegacyEntry, fullNames map[string]string) domain.PortalNotification {
	n := domain.PortalNotification{
		Type:                    e.Type,
		ToUser:                  e.ToUser,
		Read:                    e.Read,
		Hash:                    legacyHash(e),
		NotificationTypeDoctype: e.NotificationTypeDoctype,
		NotificationTypeDoc:     e.NotificationTypeDoc,
		ReferenceName:           e.ReferenceName,
		Source:                  domain.SourceCRMNotification,
		Name:                    e.Name,
	}
	if !e.Creation.IsZero() {
		c := e.Creation
		n.Creation = &c
	}
	if e.FromUser != nil {
		n.FromUser = domain.UserRef{Name: *e.FromUser, FullName: fullNames[*e.FromUser]}
	}
	if e.NotificationText != nil {
		n.NotificationText = *e.NotificationText
	}
	n.ReferenceDoctype, n.RouteName = mapReference(e.ReferenceDoctype)
	return n
}

// newestFirst orders by creation descending; a missing creation counts as
// now and ties fall back to name descending.
func newestFirst(now time.Time) func(a, b domain.PortalNotification) int {
	at := func(n domain.PortalNotification) time.Time {
		if n.Creation == nil {
			return now
		}
		return *n.Creation
	}
	return func(a, b domain.PortalNotification) int {
		if c := at(b).Compare(at(a)); c != 0 {
			return c
		}
		return strings.Compare(b.Name, a.Name)
	}
}
