package dtos

import (
	"bytes"
	"encoding/json"
	"io"
	"time"
)

// DateLayout is the day-precision format used for analytics dates in bulk files.
const DateLayout = "2006-01-02"

// CleanupOptions selects what a bulk cleanup deletes. Within a group, "all"
// wins over every other option; otherwise the selected sets are unioned.
type CleanupOptions struct {
	Categories *CategoryCleanup `json:"categories,omitempty"`
	Trends     *TrendCleanup    `json:"trends,omitempty"`
	Colors     *ColorCleanup    `json:"colors,omitempty"`
}

type CategoryCleanup struct {
	All      bool     `json:"all,omitempty"`
	Slugs    []string `json:"slugs,omitempty" binding:"dive,required"`
	Orphaned bool     `json:"orphaned,omitempty"`
}

type TrendCleanup struct {
	All       bool     `json:"all,omitempty"`
	Titles    []string `json:"titles,omitempty" binding:"dive,required"`
	Orphaned  bool     `json:"orphaned,omitempty"`
	OlderThan string   `json:"olderThan,omitempty"`
}

type ColorCleanup struct {
	All    bool     `json:"all,omitempty"`
	Names  []string `json:"names,omitempty" binding:"dive,required"`
	Unused bool     `json:"unused,omitempty"`
}

// Cutoff parses OlderThan as either a date (YYYY-MM-DD, midnight UTC) or an
// RFC 3339 timestamp. An empty value yields nil.
func (t *TrendCleanup) Cutoff() (*time.Time, error) {
	if t == nil || t.OlderThan == "" {
		return nil, nil
	}
	if d, err := time.Parse(DateLayout, t.OlderThan); err == nil {
		return &d, nil
	}
	ts, err := time.Parse(time.RFC3339, t.OlderThan)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// Empty reports whether no group selects anything.
func (o CleanupOptions) Empty() bool {
	cat := o.Categories == nil || (!o.Categories.All && !o.Categories.Orphaned && len(o.Categories.Slugs) == 0)
	tr := o.Trends == nil || (!o.Trends.All && !o.Trends.Orphaned && len(o.Trends.Titles) == 0 && o.Trends.OlderThan == "")
	col := o.Colors == nil || (!o.Colors.All && !o.Colors.Unused && len(o.Colors.Names) == 0)
	return cat && tr && col
}

// BulkStats counts distinct rows affected per entity type.
type BulkStats struct {
	Categories int64 `json:"categories"`
	Trends     int64 `json:"trends"`
	Colors     int64 `json:"colors"`
}

// BulkPayload is the portable export/import document. References between
// entities are slugs, never ids.
type BulkPayload struct {
	Categories []CategoryDTO `json:"categories" binding:"dive"`
	Trends     []TrendDTO    `json:"trends" binding:"dive"`
	Colors     []ColorDTO    `json:"colors" binding:"dive"`
}

type CategoryDTO struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	ParentSlug  string `json:"parentSlug,omitempty"`
}

type TrendDTO struct {
	Title          string        `json:"title" binding:"required"`
	Description    string        `json:"description"`
	Type           string        `json:"type"`
	ImageURLs      []string      `json:"imageUrls" binding:"required,min=1,dive,required"`
	MainImageIndex int           `json:"mainImageIndex" binding:"gte=0"`
	CategorySlug   string        `json:"categorySlug"`
	Analytics      *AnalyticsDTO `json:"analytics,omitempty"`
}

type ColorDTO struct {
	Name       string        `json:"name" binding:"required"`
	Hex        string        `json:"hex" binding:"required,colorhex"`
	ImageURL   string        `json:"imageUrl"`
	Popularity int           `json:"popularity" binding:"gte=0,lte=100"`
	Palette1   string        `json:"palette1,omitempty" binding:"omitempty,colorhex"`
	Palette2   string        `json:"palette2,omitempty" binding:"omitempty,colorhex"`
	Palette3   string        `json:"palette3,omitempty" binding:"omitempty,colorhex"`
	Palette4   string        `json:"palette4,omitempty" binding:"omitempty,colorhex"`
	Palette5   string        `json:"palette5,omitempty" binding:"omitempty,colorhex"`
	Analytics  *AnalyticsDTO `json:"analytics,omitempty"`
}

type AnalyticsDTO struct {
	Dates       []string        `json:"dates" binding:"dive,datetime=2006-01-02"`
	Values      []float64       `json:"values"`
	AgeSegments []AgeSegmentDTO `json:"ageSegments,omitempty" binding:"dive"`
}

type AgeSegmentDTO struct {
	Name  string  `json:"name" binding:"required"`
	Value float64 `json:"value"`
}

// ExportResponse is the body of GET /admin/bulk-export.
type ExportResponse struct {
	Success bool         `json:"success"`
	Data    *BulkPayload `json:"data"`
	Stats   BulkStats    `json:"stats"`
}

// Stats counts the entities in the payload.
func (p *BulkPayload) Stats() BulkStats {
	return BulkStats{
		Categories: int64(len(p.Categories)),
		Trends:     int64(len(p.Trends)),
		Colors:     int64(len(p.Colors)),
	}
}

// DecodeStrict decodes JSON into v and rejects fields v does not declare.
func DecodeStrict(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// DecodeBulkPayload accepts either a bare payload or an export envelope
// ({"success":..., "data": {...}, "stats": ...}) so exported files can be
// re-imported unchanged.
func DecodeBulkPayload(r io.Reader) (*BulkPayload, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, err
	}
	if data, ok := top["data"]; ok {
		var env struct {
			Success bool            `json:"success"`
			Data    json.RawMessage `json:"data"`
			Stats   json.RawMessage `json:"stats"`
		}
		if err := DecodeStrict(bytes.NewReader(raw), &env); err != nil {
			return nil, err
		}
		raw = data
	}

	var payload BulkPayload
	if err := DecodeStrict(bytes.NewReader(raw), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
