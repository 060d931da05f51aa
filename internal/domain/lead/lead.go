package lead

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/ahsan-courses/coursebot/internal/domain"
)

// Field limits mirror the column sizes of the leads table.
const (
	MaxNameLen     = 100
	MaxEmailLen    = 100
	MaxPhoneLen    = 50
	MaxInterestLen = 100
)

// Lead is a prospective student's contact request (immutable value object).
type Lead struct {
	id        int64
	name      string
	email     string
	phone     string
	interest  string
	createdAt time.Time
}

// New validates and creates a Lead. Name and email are required, interest
// defaults to domain.DefaultInterest.
func New(name, email, phone, interest string) (Lead, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	interest = strings.TrimSpace(interest)

	if name == "" {
		return Lead{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if len(name) > MaxNameLen {
		return Lead{}, fmt.Errorf("%w: name too long (max %d)", domain.ErrValidation, MaxNameLen)
	}
	if err := validateEmail(email); err != nil {
		return Lead{}, err
	}
	if len(phone) > MaxPhoneLen {
		return Lead{}, fmt.Errorf("%w: phone too long (max %d)", domain.ErrValidation, MaxPhoneLen)
	}
	if interest == "" {
		interest = domain.DefaultInterest
	}
	if len(interest) > MaxInterestLen {
		return Lead{}, fmt.Errorf("%w: interest too long (max %d)", domain.ErrValidation, MaxInterestLen)
	}

	return Lead{name: name, email: email, phone: phone, interest: interest}, nil
}

// Reconstruct creates a Lead without validation (storage hydration).
func Reconstruct(id int64, name, email, phone, interest string, createdAt time.Time) Lead {
	return Lead{id: id, name: name, email: email, phone: phone, interest: interest, createdAt: createdAt}
}

// ID returns the storage identifier (0 before the lead is stored).
func (l *Lead) ID() int64 { return l.id }

// Name returns the contact name.
func (l *Lead) Name() string { return l.name }

// Email returns the contact email.
func (l *Lead) Email() string { return l.email }

// Phone returns the optional phone number.
func (l *Lead) Phone() string { return l.phone }

// Interest returns the course the lead is interested in.
func (l *Lead) Interest() string { return l.interest }

// CreatedAt returns the storage timestamp.
func (l *Lead) CreatedAt() time.Time { return l.createdAt }

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if len(email) > MaxEmailLen {
		return fmt.Errorf("%w: email too long (max %d)", domain.ErrValidation, MaxEmailLen)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: email %q is not a valid address", domain.ErrValidation, email)
	}
	return nil
}
