package response

// Observed order statuses. COMPLETED is reached only through a server-side
// confirmed payment callback, never set by the client.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusCompleted = "COMPLETED"
)

type OrderItem struct {
	ID            int     `json:"id"`
	Product       Product `json:"product"`
	Price         float64 `json:"price"`
	DownloadCount int     `json:"download_count"`
	DownloadLimit int     `json:"download_limit"`
}

// DownloadsExhausted reports whether the server will refuse further
// downloads for this item.
func (i *OrderItem) DownloadsExhausted() bool {
	return i.DownloadCount >= i.DownloadLimit
}

func (i *OrderItem) DownloadsRemaining() int {
	remaining := i.DownloadLimit - i.DownloadCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

type Order struct {
	OrderID     string      `json:"order_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"total_amount"`
	Status      string      `json:"status"`
	CreatedAt   string      `json:"created_at,omitempty"`
}

func (o *Order) IsValid() bool {
	return o.OrderID != ""
}

func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}

// IsDownloadable is true only for completed orders, pending orders never
// expose download controls.
func (o *Order) IsDownloadable() bool {
	return o.IsCompleted()
}

type Download struct {
	DownloadURL        string `json:"download_url"`
	DownloadsRemaining int    `json:"downloads_remaining"`
}

func (d *Download) IsValid() bool {
	return d.DownloadURL != ""
}
