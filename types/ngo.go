package types

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/foodbridge/foodbridge/textutil"
	"github.com/foodbridge/foodbridge/validator"
)

type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
)

type NGO struct {
	ID                 string             `json:"id" db:"id"`
	OwnerID            string             `json:"ownerID" db:"owner_id"`
	Name               string             `json:"name" db:"name"`
	Description        string             `json:"description" db:"description"`
	Phone              *string            `json:"phone" db:"phone"`
	VerificationStatus VerificationStatus `json:"verificationStatus" db:"verification_status"`
	TotalRequests      int                `json:"totalRequests" db:"total_requests"`
	FulfilledRequests  int                `json:"fulfilledRequests" db:"fulfilled_requests"`
	PeopleServed       int                `json:"peopleServed" db:"people_served"`
	AvgResponseHours   *float64           `json:"avgResponseHours" db:"avg_response_hours"`
	CreatedAt          time.Time          `json:"createdAt" db:"created_at"`
}

// NGOMatch is a verified NGO ranked for a donor.
type NGOMatch struct {
	NGO   NGO `json:"ngo"`
	Score int `json:"score"`
}

type CreateNGO struct {
	Name        string
	Description string
	Phone       *string

	loggedInUserID string
}

func (in *CreateNGO) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in CreateNGO) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *CreateNGO) Validate() error {
	v := validator.New()

	in.Name = strings.TrimSpace(in.Name)
	in.Description = textutil.SmartTrim(in.Description)
	in.Phone = trimOptional(in.Phone)

	v.Check(in.Name != "", "Name", "Name is required")
	v.Check(utf8.RuneCountInString(in.Name) <= 120, "Name", "Name must be at most 120 characters")
	v.Check(utf8.RuneCountInString(in.Description) <= 2000, "Description", "Description must be at most 2000 characters")
	if in.Phone != nil && *in.Phone != "" {
		v.Check(validPhone(*in.Phone), "Phone", "Phone is invalid")
	}

	return v.AsError()
}
