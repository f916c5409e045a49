package models

// Booking is a user's reservation of N tickets for one event. The
// backend owns the lifecycle; the client only observes it via refetch.
type Booking struct {
	ID           int64  `json:"id"`
	Event        Event  `json:"event"`
	User         *User  `json:"user,omitempty"`
	TotalTickets int    `json:"totalTickets"`
	TicketsUsed  int    `json:"ticketsUsed"`
	QRGenerated  bool   `json:"qrGenerated"`
	Confirmed    bool   `json:"confirmed"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// FullyScanned reports whether every ticket of the booking has been
// used. A fully scanned booking is terminal: viewing QR codes is no
// longer possible, only removal remains.
func (b Booking) FullyScanned() bool {
	return b.TotalTickets > 0 && b.TicketsUsed >= b.TotalTickets
}

// Cancellable: the backend only permits cancelling a booking whose QR
// codes were never issued.
func (b Booking) Cancellable() bool {
	return !b.QRGenerated
}
