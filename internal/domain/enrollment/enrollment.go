package enrollment

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/ahsan-courses/coursebot/internal/domain"
)

// Enrollment is a completed course enrollment form (immutable value object).
type Enrollment struct {
	id        int64
	username  string
	email     string
	phone     string
	address   string
	course    string
	createdAt time.Time
}

// New validates and creates an Enrollment. Every field is required and the
// course must belong to domain.Courses.
func New(username, email, phone, address, course string) (Enrollment, error) {
	e := Enrollment{
		username: strings.TrimSpace(username),
		email:    strings.TrimSpace(email),
		phone:    strings.TrimSpace(phone),
		address:  strings.TrimSpace(address),
		course:   strings.TrimSpace(course),
	}

	required := []struct{ field, value string }{
		{"username", e.username},
		{"email", e.email},
		{"phone", e.phone},
		{"address", e.address},
		{"course", e.course},
	}
	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.field)
		}
	}
	if len(missing) > 0 {
		return Enrollment{}, fmt.Errorf("%w: missing %s", domain.ErrValidation, strings.Join(missing, ", "))
	}

	if addr, err := mail.ParseAddress(e.email); err != nil || addr.Address != e.email {
		return Enrollment{}, fmt.Errorf("%w: email %q is not a valid address", domain.ErrValidation, e.email)
	}
	if !domain.IsCourse(e.course) {
		return Enrollment{}, fmt.Errorf("%w: %q", domain.ErrInvalidCourse, e.course)
	}

	return e, nil
}

// Reconstruct creates an Enrollment without validation (storage hydration).
func Reconstruct(id int64, username, email, phone, address, course string, createdAt time.Time) Enrollment {
	return Enrollment{
		id: id, username: username, email: email, phone: phone,
		address: address, course: course, createdAt: createdAt,
	}
}

// ID returns the storage identifier.
func (e *Enrollment) ID() int64 { return e.id }

// Username returns the student's name.
func (e *Enrollment) Username() string { return e.username }

// Email returns the student's email.
func (e *Enrollment) Email() string { return e.email }

// Phone returns the student's phone number.
func (e *Enrollment) Phone() string { return e.phone }

// Address returns the student's postal address.
func (e *Enrollment) Address() string { return e.address }

// Course returns the enrolled course.
func (e *Enrollment) Course() string { return e.course }

// CreatedAt returns the storage timestamp.
func (e *Enrollment) CreatedAt() time.Time { return e.createdAt }
