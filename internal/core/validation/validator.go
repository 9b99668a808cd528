// Package validation checks field presence, format and cross-field
// invariants for the user aggregate. Rules are plain predicate functions
// evaluated in a fixed order; every violation is collected rather than
// short-circuiting on the first. Email uniqueness is deliberately not
// checked here — only the repository has transactional visibility.
package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/peoplehq/users-api/internal/core/domain"
)

const (
	maxNameLen    = 100
	maxEmailLen   = 150
	maxStreetLen  = 200
	maxCityLen    = 100
	maxCompanyLen = 150
)

// Violation is a single rule failure: the path of the offending field and
// a human-readable message.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// fieldChecks is shared by all calls; validator.Validate is safe for
// concurrent use.
var fieldChecks = validator.New()

type rule func(u *domain.User) []Violation

var userRules = []rule{
	nameRules,
	emailRules,
	addressRules,
	employmentRules,
}

// ValidateUser runs every rule against the aggregate and returns the
// ordered list of violations, or nil when the aggregate is valid. The
// function has no side effects and is safe to call concurrently.
func ValidateUser(u *domain.User) []Violation {
	var out []Violation
	for _, r := range userRules {
		out = append(out, r(u)...)
	}
	return out
}

func nameRules(u *domain.User) []Violation {
	var v []Violation
	v = append(v, requiredBounded("first_name", u.FirstName, maxNameLen)...)
	v = append(v, requiredBounded("last_name", u.LastName, maxNameLen)...)
	return v
}

func emailRules(u *domain.User) []Violation {
	if u.Email == "" {
		return []Violation{{Field: "email", Message: "email is required"}}
	}
	var v []Violation
	if fieldChecks.Var(u.Email, "email") != nil {
		v = append(v, Violation{Field: "email", Message: "email must be a valid email address"})
	}
	if len(u.Email) > maxEmailLen {
		v = append(v, exceeds("email", maxEmailLen))
	}
	return v
}

func addressRules(u *domain.User) []Violation {
	if u.Address == nil {
		return nil
	}
	var v []Violation
	v = append(v, requiredBounded("address.street", u.Address.Street, maxStreetLen)...)
	v = append(v, requiredBounded("address.city", u.Address.City, maxCityLen)...)
	if u.Address.PostCode != nil && *u.Address.PostCode <= 0 {
		v = append(v, Violation{Field: "address.post_code", Message: "post code must be greater than 0"})
	}
	return v
}

func employmentRules(u *domain.User) []Violation {
	var v []Violation
	for i, e := range u.Employments {
		path := func(f string) string { return fmt.Sprintf("employments[%d].%s", i, f) }

		v = append(v, requiredBoundedAt(path("company"), e.Company, maxCompanyLen)...)
		if e.MonthsOfExperience == nil {
			v = append(v, Violation{Field: path("months_of_experience"), Message: "months of experience is required"})
		}
		if e.Salary == nil {
			v = append(v, Violation{Field: path("salary"), Message: "salary is required"})
		}
		if e.StartDate == nil {
			v = append(v, Violation{Field: path("start_date"), Message: "start date is required"})
		}
		if e.StartDate != nil && e.EndDate != nil && !e.EndDate.After(*e.StartDate) {
			v = append(v, Violation{Field: path("end_date"), Message: "end date must be after start date"})
		}
	}
	return v
}

func requiredBounded(field, value string, max int) []Violation {
	if value == "" {
		return []Violation{{Field: field, Message: field + " is required"}}
	}
	if len(value) > max {
		return []Violation{exceeds(field, max)}
	}
	return nil
}

// requiredBoundedAt mirrors requiredBounded but keeps the message generic
// ("company is required") while the field path carries the list index.
func requiredBoundedAt(path, value string, max int) []Violation {
	if value == "" {
		return []Violation{{Field: path, Message: "company is required"}}
	}
	if len(value) > max {
		return []Violation{{Field: path, Message: fmt.Sprintf("company cannot exceed %d characters", max)}}
	}
	return nil
}

func exceeds(field string, max int) Violation {
	return Violation{Field: field, Message: fmt.Sprintf("%s cannot exceed %d characters", field, max)}
}
