package models

// Ticket is one issued seat of a booking. QRCode is the opaque encoded
// string the backend generated; the client renders it, never decodes it.
type Ticket struct {
	ID           int64  `json:"id"`
	TicketNumber string `json:"ticketNumber"`
	QRCode       string `json:"qrCode"`
	CheckedIn    bool   `json:"checkedIn"`
	CheckedInAt  string `json:"checkedInAt,omitempty"`
}

// ScanStatus is the poll endpoint's answer for one booking.
type ScanStatus struct {
	AnyTicketScanned bool   `json:"anyTicketScanned"`
	ScannedTickets   int    `json:"scannedTickets"`
	TotalTickets     int    `json:"totalTickets"`
	EventName        string `json:"eventName"`
}

// AllScanned reports whether the poll response says every ticket of the
// booking has been used.
func (s ScanStatus) AllScanned() bool {
	return s.TotalTickets > 0 && s.ScannedTickets >= s.TotalTickets
}

// ScanResult is the validation endpoint's verdict on one decoded code.
// Ephemeral: shown on the checker screen, never persisted.
type ScanResult struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	TicketNumber   string `json:"ticketNumber,omitempty"`
	EventName      string `json:"eventName,omitempty"`
	AttendeeName   string `json:"attendeeName,omitempty"`
	BookingID      int64  `json:"bookingId,omitempty"`
	ScannedTickets int    `json:"scannedTickets,omitempty"`
	TotalTickets   int    `json:"totalTickets,omitempty"`
	UsedAt         string `json:"usedAt,omitempty"`
}

// OK reports whether the backend accepted the ticket.
func (r ScanResult) OK() bool {
	return r.Status == "success"
}
