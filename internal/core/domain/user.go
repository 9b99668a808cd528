package domain

import (
	"fmt"
	"time"
)

// User is the aggregate root: a person together with the Address and
// Employment records it exclusively owns. Address and Employments never
// exist outside a User and are replaced, not shared.
type User struct {
	ID          string       `json:"id"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	Email       string       `json:"email"`
	Credential  *Credential  `json:"-"`
	Address     *Address     `json:"address,omitempty"`
	Employments []Employment `json:"employments"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Credential holds the derived password material. It is set once at
// registration and never mutated afterwards.
type Credential struct {
	PasswordHash string
	PasswordSalt string
}

// Address is owned 1:1 by its User and replaced wholesale on update.
type Address struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	PostCode *int   `json:"post_code,omitempty"`
}

// Employment is one entry in the user's employment history. Optional
// fields are pointers so that "absent" is distinguishable from zero.
type Employment struct {
	Company            string     `json:"company"`
	MonthsOfExperience *uint      `json:"months_of_experience"`
	Salary             *uint      `json:"salary"`
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date,omitempty"`
}

// MergeUser applies a partial update onto an existing aggregate and returns
// the merged value. Scalar fields are always taken from the patch. Address
// is replaced only when the patch carries one; Employments are replaced
// wholesale only when the patch list is non-empty. The nil-vs-empty
// asymmetry between the two is intentional and load-bearing: callers rely
// on an empty employment list meaning "keep what I have".
func MergeUser(existing, patch *User) *User {
	merged := *existing
	merged.FirstName = patch.FirstName
	merged.LastName = patch.LastName
	merged.Email = patch.Email

	if patch.Address != nil {
		addr := *patch.Address
		merged.Address = &addr
	}
	if len(patch.Employments) > 0 {
		merged.Employments = append([]Employment(nil), patch.Employments...)
	}
	return &merged
}

// CheckEmploymentDates enforces the cross-field date invariant at the
// persistence boundary, independently of upstream validation. An employment
// with both dates set must end strictly after it starts.
func CheckEmploymentDates(employments []Employment) error {
	for _, e := range employments {
		if e.StartDate == nil || e.EndDate == nil {
			continue
		}
		if !e.EndDate.After(*e.StartDate) {
			return fmt.Errorf("%w: employment end date (%s) must be after start date (%s) for company %q",
				ErrInvalidUser,
				e.EndDate.Format("2006-01-02"),
				e.StartDate.Format("2006-01-02"),
				e.Company)
		}
	}
	return nil
}
