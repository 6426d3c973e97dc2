package dto

// EmployeeFilter contains the criteria used by both the cache query and the
// provider search. Within each group, values combine with OR; the groups
// combine with AND.
type EmployeeFilter struct {
	Titles     []string
	Locations  []string
	Industries []string
	ExcludeIDs []string
	Page       int
	PerPage    int
}

// Empty reports whether no filter group carries a usable value.
func (f EmployeeFilter) Empty() bool {
	return len(f.Titles) == 0 && len(f.Locations) == 0 && len(f.Industries) == 0
}

// SearchEmployeesRequest is the JSON payload for POST /employees/search.
type SearchEmployeesRequest struct {
	Titles     []string `json:"titles"`
	Locations  []string `json:"locations"`
	Industries []string `json:"industries"`
	ExcludeIDs []string `json:"exclude_ids,omitempty"`
	Page       int      `json:"page,omitempty"`
	PerPage    int      `json:"per_page,omitempty"`
}
