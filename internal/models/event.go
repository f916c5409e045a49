package models

type Event struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	Location string `json:"location"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	AmPm     string `json:"amPm,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// EventPage is one page of the paginated catalog listing.
type EventPage struct {
	Events      []Event `json:"events"`
	CurrentPage int     `json:"currentPage"`
	TotalPages  int     `json:"totalPages"`
	TotalItems  int     `json:"totalItems"`
	HasNext     bool    `json:"hasNext"`
	HasPrevious bool    `json:"hasPrevious"`
}
