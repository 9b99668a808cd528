package handler

import (
	"time"

	"github.com/peoplehq/users-api/internal/core/domain"
)

// User CRUD bodies carry no validator tags on purpose: the aggregate
// validator in core is the single source of truth for these rules and
// collects every violation in order, which struct tags cannot.

type addressRequest struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	PostCode *int   `json:"post_code"`
}

type employmentRequest struct {
	Company            string     `json:"company"`
	MonthsOfExperience *uint      `json:"months_of_experience"`
	Salary             *uint      `json:"salary"`
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
}

type userRequest struct {
	FirstName   string              `json:"first_name"`
	LastName    string              `json:"last_name"`
	Email       string              `json:"email"`
	Address     *addressRequest     `json:"address"`
	Employments []employmentRequest `json:"employments"`
}

// toDomain maps the wire shape onto the aggregate. A missing address stays
// nil and a missing employments list stays empty; the update path depends
// on both to mean "leave existing unchanged".
func (r userRequest) toDomain() *domain.User {
	user := &domain.User{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
	}
	if r.Address != nil {
		user.Address = &domain.Address{
			Street:   r.Address.Street,
			City:     r.Address.City,
			PostCode: r.Address.PostCode,
		}
	}
	for _, e := range r.Employments {
		user.Employments = append(user.Employments, domain.Employment{
			Company:            e.Company,
			MonthsOfExperience: e.MonthsOfExperience,
			Salary:             e.Salary,
			StartDate:          e.StartDate,
			EndDate:            e.EndDate,
		})
	}
	return user
}
