package types

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/foodbridge/foodbridge/id"
	"github.com/foodbridge/foodbridge/textutil"
	"github.com/foodbridge/foodbridge/validator"
)

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

func (u Urgency) Valid() bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyHigh
}

type BulkRequestStatus string

const (
	BulkRequestStatusOpen            BulkRequestStatus = "open"
	BulkRequestStatusPartiallyFilled BulkRequestStatus = "partially_filled"
	BulkRequestStatusFulfilled       BulkRequestStatus = "fulfilled"
	BulkRequestStatusClosed          BulkRequestStatus = "closed"
)

func (s BulkRequestStatus) Valid() bool {
	switch s {
	case BulkRequestStatusOpen, BulkRequestStatusPartiallyFilled, BulkRequestStatusFulfilled, BulkRequestStatusClosed:
		return true
	}
	return false
}

// AcceptsResponses reports whether donors can still pledge.
func (s BulkRequestStatus) AcceptsResponses() bool {
	return s == BulkRequestStatusOpen || s == BulkRequestStatusPartiallyFilled
}

type BulkResponseStatus string

const (
	BulkResponseStatusPending  BulkResponseStatus = "pending"
	BulkResponseStatusAccepted BulkResponseStatus = "accepted"
	BulkResponseStatusDeclined BulkResponseStatus = "declined"
)

func (s BulkResponseStatus) Valid() bool {
	return s == BulkResponseStatusPending || s == BulkResponseStatusAccepted || s == BulkResponseStatusDeclined
}

type Logistics struct {
	PickupAddress      string `json:"pickupAddress"`
	TransportAvailable bool   `json:"transportAvailable"`
	StorageCapacity    string `json:"storageCapacity"`
}

type BulkRequest struct {
	ID                     string            `json:"id" db:"id"`
	NGOID                  string            `json:"ngoID" db:"ngo_id"`
	Title                  string            `json:"title" db:"title"`
	Description            string            `json:"description" db:"description"`
	Urgency                Urgency           `json:"urgency" db:"urgency"`
	EventType              string            `json:"eventType" db:"event_type"`
	Deadline               time.Time         `json:"deadline" db:"deadline"`
	EstimatedBeneficiaries int               `json:"estimatedBeneficiaries" db:"estimated_beneficiaries"`
	Logistics              Logistics         `json:"logistics" db:"logistics"`
	WhatsAppContact        string            `json:"whatsAppContact" db:"whatsapp_contact"`
	Status                 BulkRequestStatus `json:"status" db:"status"`
	ResponseIDs            []string          `json:"responseIDs" db:"response_ids"`
	FulfilledAt            *time.Time        `json:"fulfilledAt" db:"fulfilled_at"`
	CreatedAt              time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt              time.Time         `json:"updatedAt" db:"updated_at"`

	ContactLink string `json:"contactLink" db:"-"`
}

type BulkResponse struct {
	ID               string             `json:"id" db:"id"`
	RequestID        string             `json:"requestID" db:"request_id"`
	DonorID          string             `json:"donorID" db:"donor_id"`
	DonationItems    string             `json:"donationItems" db:"donation_items"`
	Quantity         string             `json:"quantity" db:"quantity"`
	AvailabilityDate time.Time          `json:"availabilityDate" db:"availability_date"`
	CanDeliver       bool               `json:"canDeliver" db:"can_deliver"`
	Notes            string             `json:"notes" db:"notes"`
	Status           BulkResponseStatus `json:"status" db:"status"`
	CreatedAt        time.Time          `json:"createdAt" db:"created_at"`
}

type SubmitBulkRequest struct {
	NGOID                  string
	Title                  string
	Description            string
	Urgency                Urgency
	EventType              string
	Deadline               time.Time
	EstimatedBeneficiaries int
	Logistics              Logistics
	WhatsAppContact        string

	loggedInUserID string
}

func (in *SubmitBulkRequest) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in SubmitBulkRequest) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *SubmitBulkRequest) Validate(now time.Time) error {
	v := validator.New()

	in.Title = strings.TrimSpace(in.Title)
	in.Description = textutil.SmartTrim(in.Description)
	in.EventType = strings.TrimSpace(in.EventType)
	in.WhatsAppContact = strings.TrimSpace(in.WhatsAppContact)
	in.Logistics.PickupAddress = strings.TrimSpace(in.Logistics.PickupAddress)
	in.Logistics.StorageCapacity = strings.TrimSpace(in.Logistics.StorageCapacity)

	v.Check(id.Valid(in.NGOID), "NGOID", "NGO ID is invalid")
	v.Check(in.Title != "", "Title", "Title is required")
	v.Check(utf8.RuneCountInString(in.Title) <= 120, "Title", "Title must be at most 120 characters")
	v.Check(utf8.RuneCountInString(in.Description) <= 2000, "Description", "Description must be at most 2000 characters")
	v.Check(in.Urgency.Valid(), "Urgency", "Urgency must be one of low, medium or high")
	v.Check(in.Deadline.After(now), "Deadline", "Deadline must be in the future")
	v.Check(in.EstimatedBeneficiaries > 0, "EstimatedBeneficiaries", "Estimated beneficiaries must be greater than 0")
	v.Check(in.Logistics.PickupAddress != "", "Logistics.PickupAddress", "Pickup address is required")
	v.Check(validPhone(in.WhatsAppContact), "WhatsAppContact", "WhatsApp contact is invalid")

	return v.AsError()
}

type RespondToBulkRequest struct {
	RequestID        string
	DonationItems    string
	Quantity         string
	AvailabilityDate time.Time
	CanDeliver       bool
	Notes            string

	loggedInUserID string
}

func (in *RespondToBulkRequest) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in RespondToBulkRequest) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *RespondToBulkRequest) Validate() error {
	v := validator.New()

	in.DonationItems = strings.TrimSpace(in.DonationItems)
	in.Quantity = strings.TrimSpace(in.Quantity)
	in.Notes = textutil.SmartTrim(in.Notes)

	v.Check(id.Valid(in.RequestID), "RequestID", "Request ID is invalid")
	v.Check(in.DonationItems != "", "DonationItems", "Donation items are required")
	v.Check(utf8.RuneCountInString(in.DonationItems) <= 1000, "DonationItems", "Donation items must be at most 1000 characters")
	v.Check(in.Quantity != "", "Quantity", "Quantity is required")
	v.Check(!in.AvailabilityDate.IsZero(), "AvailabilityDate", "Availability date is required")
	v.Check(utf8.RuneCountInString(in.Notes) <= 1000, "Notes", "Notes must be at most 1000 characters")

	return v.AsError()
}

type ListBulkRequests struct {
	NGOID    *string
	Status   *BulkRequestStatus
	PageArgs PageArgs
}

func (in *ListBulkRequests) Validate() error {
	if in.NGOID != nil && !id.Valid(*in.NGOID) {
		return ErrNGONotFound
	}

	if in.Status != nil && !in.Status.Valid() {
		v := validator.New()
		v.AddError("Status", "Status is invalid")
		return v
	}

	return in.PageArgs.Validate()
}

type UpdateBulkRequestStatus struct {
	RequestID string
	Status    BulkRequestStatus

	loggedInUserID string
}

func (in *UpdateBulkRequestStatus) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in UpdateBulkRequestStatus) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *UpdateBulkRequestStatus) Validate() error {
	v := validator.New()
	v.Check(id.Valid(in.RequestID), "RequestID", "Request ID is invalid")
	v.Check(in.Status.Valid(), "Status", "Status is invalid")
	return v.AsError()
}

type UpdateBulkResponseStatus struct {
	ResponseID string
	Status     BulkResponseStatus

	loggedInUserID string
}

func (in *UpdateBulkResponseStatus) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in UpdateBulkResponseStatus) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *UpdateBulkResponseStatus) Validate() error {
	v := validator.New()
	v.Check(id.Valid(in.ResponseID), "ResponseID", "Response ID is invalid")
	v.Check(in.Status.Valid(), "Status", "Status is invalid")
	return v.AsError()
}
