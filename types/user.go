package types

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/foodbridge/foodbridge/validator"
)

type Role string

const (
	RoleDonor     Role = "donor"
	RoleReceiver  Role = "receiver"
	RoleVolunteer Role = "volunteer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleReceiver, RoleVolunteer:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

type User struct {
	ID                 string    `json:"id" db:"id"`
	Email              string    `json:"email,omitempty" db:"email"`
	DisplayName        string    `json:"displayName" db:"display_name"`
	Role               Role      `json:"role" db:"role"`
	Phone              *string   `json:"phone" db:"phone"`
	Active             bool      `json:"active" db:"active"`
	DonationsMade      int       `json:"donationsMade" db:"donations_made"`
	DonationsReceived  int       `json:"donationsReceived" db:"donations_received"`
	Rating             float64   `json:"rating" db:"rating"`
	BeneficiaryCount   int       `json:"beneficiaryCount" db:"beneficiary_count"`
	VerificationStatus string    `json:"verificationStatus" db:"verification_status"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`
}

func (u User) IsDonor() bool     { return u.Role == RoleDonor }
func (u User) IsReceiver() bool  { return u.Role == RoleReceiver }
func (u User) IsVolunteer() bool { return u.Role == RoleVolunteer }

// UserCredentials is only used while logging in.
type UserCredentials struct {
	User
	PasswordHash []byte `db:"password_hash"`
}

type Register struct {
	Email       string
	Password    string
	DisplayName string
	Role        Role
	Phone       *string

	passwordHash []byte
}

func (in *Register) SetPasswordHash(hash []byte) {
	in.passwordHash = hash
}

func (in Register) PasswordHash() []byte {
	return in.passwordHash
}

func (in *Register) Validate() error {
	v := validator.New()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Phone = trimOptional(in.Phone)

	v.Check(in.Email != "", "Email", "Email is required")
	if in.Email != "" {
		v.Check(validEmail(in.Email), "Email", "Email is invalid")
	}

	v.Check(utf8.RuneCountInString(in.Password) >= 8, "Password", "Password must be at least 8 characters")
	v.Check(len(in.Password) <= 72, "Password", "Password must be at most 72 bytes")

	v.Check(in.DisplayName != "", "DisplayName", "Display name is required")
	v.Check(utf8.RuneCountInString(in.DisplayName) <= 64, "DisplayName", "Display name must be at most 64 characters")

	v.Check(in.Role.Valid(), "Role", "Role must be one of donor, receiver or volunteer")

	if in.Phone != nil {
		v.Check(validPhone(*in.Phone), "Phone", "Phone is invalid")
	}

	return v.AsError()
}

type Login struct {
	Email    string
	Password string
}

func (in *Login) Validate() error {
	v := validator.New()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	v.Check(in.Email != "", "Email", "Email is required")
	v.Check(in.Password != "", "Password", "Password is required")

	return v.AsError()
}

type AuthOutput struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UpdateProfile has no role field: role is fixed at registration.
type UpdateProfile struct {
	DisplayName *string
	Phone       *string

	loggedInUserID string
}

func (in *UpdateProfile) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in UpdateProfile) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *UpdateProfile) Validate() error {
	v := validator.New()

	in.DisplayName = trimOptional(in.DisplayName)
	in.Phone = trimOptional(in.Phone)

	if in.DisplayName == nil && in.Phone == nil {
		v.AddError("DisplayName", "Nothing to update")
	}

	if in.DisplayName != nil {
		v.Check(*in.DisplayName != "", "DisplayName", "Display name cannot be empty")
		v.Check(utf8.RuneCountInString(*in.DisplayName) <= 64, "DisplayName", "Display name must be at most 64 characters")
	}

	if in.Phone != nil && *in.Phone != "" {
		v.Check(validPhone(*in.Phone), "Phone", "Phone is invalid")
	}

	return v.AsError()
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// validPhone accepts formatting characters but needs 7 to 15 digits.
func validPhone(s string) bool {
	var digits int
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}
