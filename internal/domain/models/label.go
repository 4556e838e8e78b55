package models

// DeviceLabel is one printable asset tag derived from a ledger row.
type DeviceLabel struct {
	RowID        int    `json:"row_id"`
	TicketNumber string `json:"ticket_number"`
	QRContent    string `json:"qr_content"`
	DeviceName   string `json:"device_name"`
	Section      string `json:"section"`
	Provider     string `json:"provider"`
	ModelSerial  string `json:"model_serial"`
}
