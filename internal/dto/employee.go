package dto

import (
	"time"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/entity"
)

// Employee is the public shape returned by the search endpoints.
type Employee struct {
	PersonID      string  `json:"person_id"`
	Name          string  `json:"name"`
	Title         *string `json:"title,omitempty"`
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	LinkedinURL   *string `json:"linkedin_url,omitempty"`
	PhotoURL      *string `json:"photo_url,omitempty"`
	Headline      *string `json:"headline,omitempty"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty"`
	Country       *string `json:"country,omitempty"`
	CompanyID     *string `json:"company_id,omitempty"`
	CompanyName   *string `json:"company_name,omitempty"`
	CompanyDomain *string `json:"company_domain,omitempty"`
	DataSource    string  `json:"data_source,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// EmployeeFromEntity maps a cache row to the public shape.
func EmployeeFromEntity(e entity.CachedEmployee) Employee {
	return Employee{
		PersonID:      e.ApolloPersonID,
		Name:          e.Name,
		Title:         e.Title,
		Email:         e.Email,
		Phone:         e.Phone,
		LinkedinURL:   e.LinkedinURL,
		PhotoURL:      e.PhotoURL,
		Headline:      e.Headline,
		City:          e.City,
		State:         e.State,
		Country:       e.Country,
		CompanyID:     e.CompanyID,
		CompanyName:   e.CompanyName,
		CompanyDomain: e.CompanyDomain,
		DataSource:    e.DataSource,
		CreatedAt:     e.CreatedAt,
	}
}
