package domain

import "time"

// Source tags identify which table a portal notification came from.
const (
	SourceNotificationLog = "Notification Log"
	SourceCRMNotification = "CRM Notification"
)

// RealtimeEventPortalNotification is the realtime event carrying unseen counts.
const RealtimeEventPortalNotification = "crm_portal_notification"

// LogEntry is an item of the generic notification log. The seen flag lives
// under an install-specific attribute and is carried separately in Seen.
type LogEntry struct {
	Name         string    `json:"name" dynamodbav:"name"`
	Subject      string    `json:"subject" dynamodbav:"subject"`
	EmailContent string    `json:"email_content" dynamodbav:"email_content"`
	Creation     time.Time `json:"creation" dynamodbav:"-"`
	Type         string    `json:"type" dynamodbav:"type"`
	DocumentType string    `json:"document_type" dynamodbav:"document_type"`
	DocumentName string    `json:"document_name" dynamodbav:"document_name"`
	ForUser      string    `json:"for_user" dynamodbav:"for_user"`
	Owner        string    `json:"owner" dynamodbav:"owner"`
	FromUser     string    `json:"from_user,omitempty" dynamodbav:"from_user,omitempty"`
	Seen         bool      `json:"seen" dynamodbav:"-"`
}

// LegacyEntry is a row of the legacy crm_notifications table.
type LegacyEntry struct {
	Name                    string    `db:"name"`
	Creation                time.Time `db:"creation"`
	FromUser                *string   `db:"from_user"`
	ToUser                  string    `db:"to_user"`
	Type                    string    `db:"type"`
	Read                    bool      `db:"read"`
	Message                 *string   `db:"message"`
	NotificationText        *string   `db:"notification_text"`
	NotificationTypeDoctype *string   `db:"notification_type_doctype"`
	NotificationTypeDoc     *string   `db:"notification_type_doc"`
	ReferenceDoctype        *string   `db:"reference_doctype"`
	ReferenceName           *string   `db:"reference_name"`
}

// UserRef is the actor block of a portal notification.
type UserRef struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

// PortalNotification is the unified view over both notification sources.
// Its shape does not depend on the source.
type PortalNotification struct {
	Creation                *time.Time `json:"creation"`
	FromUser                UserRef    `json:"from_user"`
	Type                    string     `json:"type"`
	ToUser                  string     `json:"to_user"`
	Read                    bool       `json:"read"`
	Hash                    string     `json:"hash"`
	NotificationText        string     `json:"notification_text"`
	NotificationTypeDoctype *string    `json:"notification_type_doctype"`
	NotificationTypeDoc     *string    `json:"notification_type_doc"`
	ReferenceDoctype        *string    `json:"reference_doctype"`
	ReferenceName           *string    `json:"reference_name"`
	RouteName               *string    `json:"route_name"`
	Source                  string     `json:"source"`
	Name                    string     `json:"name"`
}

type MarkSeenRequest struct {
	Source string `json:"source"`
}

type MarkReadRequest struct {
	Doc string `json:"doc"`
}

type OKResult struct {
	OK bool `json:"ok"`
}

// CountMessage is the realtime payload pushed after read-state changes.
type CountMessage struct {
	Type   string `json:"type"`
	Unseen int    `json:"unseen"`
}
