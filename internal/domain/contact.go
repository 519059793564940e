package domain

type Contact struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// ContactPage is one page of a contact listing together with the total number
// of contacts matching the filter.
type ContactPage struct {
	TotalCount int       `json:"totalCount"`
	Contacts   []Contact `json:"contacts"`
}
