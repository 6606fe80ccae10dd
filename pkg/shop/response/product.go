package response

import (
	"bytes"
	"encoding/json"
)

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Product struct {
	ID                 int       `json:"id"`
	Title              string    `json:"title"`
	Slug               string    `json:"slug"`
	Description        string    `json:"description,omitempty"`
	ShortDescription   string    `json:"short_description,omitempty"`
	ProductType        string    `json:"product_type,omitempty"`
	Price              float64   `json:"price"`
	DiscountPrice      *float64  `json:"discount_price,omitempty"`
	FinalPrice         float64   `json:"final_price"`
	DiscountPercentage float64   `json:"discount_percentage,omitempty"`
	Thumbnail          string    `json:"thumbnail,omitempty"`
	PreviewImages      []string  `json:"preview_images,omitempty"`
	FileSize           string    `json:"file_size,omitempty"`
	Version            string    `json:"version,omitempty"`
	Requirements       string    `json:"requirements,omitempty"`
	Features           []string  `json:"features,omitempty"`
	Downloads          int       `json:"downloads,omitempty"`
	Views              int       `json:"views,omitempty"`
	Rating             float64   `json:"rating,omitempty"`
	TotalRatings       int       `json:"total_ratings,omitempty"`
	IsFeatured         bool      `json:"is_featured,omitempty"`
	CategoryName       string    `json:"category_name,omitempty"`
	Category           *Category `json:"category,omitempty"`
	IsPurchased        bool      `json:"is_purchased,omitempty"`
	IsInCart           bool      `json:"is_in_cart,omitempty"`
	IsInWishlist       bool      `json:"is_in_wishlist,omitempty"`
}

// ProductPage is the paginated listing envelope. Unpaginated deployments
// return a bare array, the client handles both.
type ProductPage struct {
	Count    int       `json:"count"`
	Next     string    `json:"next,omitempty"`
	Previous string    `json:"previous,omitempty"`
	Results  []Product `json:"results"`
}

func (p *ProductPage) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []Product
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		p.Count = len(items)
		p.Results = items
		return nil
	}
	type plain ProductPage
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = ProductPage(v)
	return nil
}

// CategoryList decodes either a bare array or a paginated envelope, the
// backend has been seen doing both.
type CategoryList []Category

func (c *CategoryList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []Category
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*c = items
		return nil
	}
	var envelope struct {
		Results []Category `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	*c = envelope.Results
	return nil
}
