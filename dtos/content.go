package dtos

import (
	"time"

	"github.com/google/uuid"
)

type CategoryRequest struct {
	Name        string     `json:"name" binding:"required,max=120"`
	Slug        string     `json:"slug" binding:"required,max=120"`
	Description string     `json:"description"`
	ImageURL    string     `json:"imageUrl"`
	ParentID    *uuid.UUID `json:"parentId"`
}

// TrendRequest is the create/update body for a trend. SpreadsheetURL is not
// stored; when present the sheet is fetched and replaces the trend's analytics.
type TrendRequest struct {
	Title          string     `json:"title" binding:"required,max=200"`
	Description    string     `json:"description"`
	Type           string     `json:"type"`
	ImageURLs      []string   `json:"imageUrls" binding:"required,min=1,dive,required,url"`
	MainImageIndex int        `json:"mainImageIndex" binding:"gte=0"`
	CategoryID     *uuid.UUID `json:"categoryId"`
	SpreadsheetURL string     `json:"spreadsheetUrl" binding:"omitempty,url"`
}

type ColorRequest struct {
	Name       string `json:"name" binding:"required,max=120"`
	Hex        string `json:"hex" binding:"required,colorhex"`
	ImageURL   string `json:"imageUrl"`
	Popularity int    `json:"popularity" binding:"gte=0,lte=100"`
	Palette1   string `json:"palette1" binding:"omitempty,colorhex"`
	Palette2   string `json:"palette2" binding:"omitempty,colorhex"`
	Palette3   string `json:"palette3" binding:"omitempty,colorhex"`
	Palette4   string `json:"palette4" binding:"omitempty,colorhex"`
	Palette5   string `json:"palette5" binding:"omitempty,colorhex"`
}

type SpreadsheetRequest struct {
	SpreadsheetURL string `json:"spreadsheetUrl" binding:"required,url"`
}

type SubscriptionRequest struct {
	Status string     `json:"status" binding:"required,oneof=active inactive"`
	EndsAt *time.Time `json:"endsAt"`
}
