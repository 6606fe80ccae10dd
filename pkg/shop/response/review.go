package response

type Review struct {
	ID           int    `json:"id"`
	UserName     string `json:"user_name,omitempty"`
	UserFullName string `json:"user_full_name,omitempty"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
	CreatedAt    string `json:"created_at,omitempty"`
}

type WishlistItem struct {
	ID      int     `json:"id"`
	Product Product `json:"product"`
}

type WishlistToggle struct {
	Added   bool   `json:"added,omitempty"`
	Message string `json:"message,omitempty"`
}
