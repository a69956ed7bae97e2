package ddsv1

import (
	"encoding/xml"
	"reflect"
	"time"
)

// Namespace is the XML namespace of the DDS message types.
const Namespace = "http://schemas.ogf.org/nsi/2014/02/discovery/types"

// Root element names.
const (
	ElementNotifications       = "notifications"
	ElementNotification        = "notification"
	ElementDocument            = "document"
	ElementDocuments           = "documents"
	ElementSubscriptionRequest = "subscriptionRequest"
	ElementSubscription        = "subscription"
	ElementSubscriptions       = "subscriptions"
	ElementError               = "error"
)

// Name returns the qualified name of a DDS element.
func Name(local string) xml.Name {
	return xml.Name{Space: Namespace, Local: local}
}

// DocumentEventType is the kind of change a notification reports.
type DocumentEventType string

// Document events.
const (
	EventAll     DocumentEventType = "All"
	EventNew     DocumentEventType = "New"
	EventUpdated DocumentEventType = "Updated"
)

// Valid reports whether e is one of the defined events.
func (e DocumentEventType) Valid() bool {
	switch e {
	case EventAll, EventNew, EventUpdated:
		return true
	}
	return false
}

// NotificationListType is a batch of notifications sent to a subscriber
// callback.
type NotificationListType struct {
	ID           string             `xml:"id,attr"`
	Href         string             `xml:"href,attr,omitempty"`
	ProviderID   string             `xml:"providerId,attr"`
	Notification []NotificationType `xml:"notification"`
}

// NotificationType reports one document event.
type NotificationType struct {
	Event      DocumentEventType `xml:"event"`
	Discovered *time.Time        `xml:"discovered,omitempty"`
	Document   DocumentType      `xml:"document"`
}

// DocumentType is a distributed document and its metadata.
type DocumentType struct {
	ID      string       `xml:"id,attr"`
	Href    string       `xml:"href,attr,omitempty"`
	Version time.Time    `xml:"version,attr"`
	Expires time.Time    `xml:"expires,attr"`
	NSA     string       `xml:"nsa"`
	Type    string       `xml:"type"`
	Content *ContentType `xml:"content,omitempty"`
}

// ContentType holds the document payload.
type ContentType struct {
	ContentType             string `xml:"contentType,attr,omitempty"`
	ContentTransferEncoding string `xml:"contentTransferEncoding,attr,omitempty"`
	Value                   string `xml:",chardata"`
}

// DocumentListType is a list of documents.
type DocumentListType struct {
	ProviderID string         `xml:"providerId,attr,omitempty"`
	Document   []DocumentType `xml:"document"`
}

// FilterCriteriaType selects documents by event, NSA and type.
type FilterCriteriaType struct {
	Event []DocumentEventType `xml:"event"`
	NSA   []string            `xml:"nsa"`
	Type  []string            `xml:"type"`
}

// FilterType is a set of include and exclude criteria.
type FilterType struct {
	Include []FilterCriteriaType `xml:"include"`
	Exclude []FilterCriteriaType `xml:"exclude"`
}

// SubscriptionRequestType asks a DDS to send notifications to a callback.
type SubscriptionRequestType struct {
	RequesterID string     `xml:"requesterId"`
	Callback    string     `xml:"callback"`
	Filter      FilterType `xml:"filter"`
}

// SubscriptionType is an established subscription.
type SubscriptionType struct {
	ID          string     `xml:"id,attr"`
	Href        string     `xml:"href,attr,omitempty"`
	Version     time.Time  `xml:"version,attr"`
	RequesterID string     `xml:"requesterId"`
	Callback    string     `xml:"callback"`
	Filter      FilterType `xml:"filter"`
}

// SubscriptionListType is a list of subscriptions.
type SubscriptionListType struct {
	Subscription []SubscriptionType `xml:"subscription"`
}

// ErrorType is the error body returned by DDS endpoints.
type ErrorType struct {
	ID          string `xml:"id,attr"`
	Label       string `xml:"label,attr"`
	Resource    string `xml:"resource,attr,omitempty"`
	Description string `xml:"description"`
}

// DocumentIDs returns the document IDs referenced by the list, in order.
func (l *NotificationListType) DocumentIDs() []string {
	ids := make([]string, 0, len(l.Notification))
	for _, n := range l.Notification {
		ids = append(ids, n.Document.ID)
	}
	return ids
}

// Element pairs a root element name with the Go type bound to it.
type Element struct {
	Name xml.Name
	Type reflect.Type
}

// Elements returns the root element bindings of the DDS schema.
func Elements() []Element {
	return []Element{
		{Name(ElementNotifications), reflect.TypeFor[NotificationListType]()},
		{Name(ElementNotification), reflect.TypeFor[NotificationType]()},
		{Name(ElementDocument), reflect.TypeFor[DocumentType]()},
		{Name(ElementDocuments), reflect.TypeFor[DocumentListType]()},
		{Name(ElementSubscriptionRequest), reflect.TypeFor[SubscriptionRequestType]()},
		{Name(ElementSubscription), reflect.TypeFor[SubscriptionType]()},
		{Name(ElementSubscriptions), reflect.TypeFor[SubscriptionListType]()},
		{Name(ElementError), reflect.TypeFor[ErrorType]()},
	}
}
