package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a node in the category tree. A nil ParentID marks a root.
type Category struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index" json:"parentId,omitempty"`
	Parent      *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children    []Category `gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL" json:"children,omitempty"`
	Trends      []Trend    `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"trends,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// BuildCategoryTree nests a flat category list under its roots. Children are
// attached in input order; categories whose parent is missing from the list
// are treated as roots.
func BuildCategoryTree(flat []Category) []Category {
	byParent := make(map[uuid.UUID][]int)
	present := make(map[uuid.UUID]bool, len(flat))
	for _, c := range flat {
		present[c.ID] = true
	}

	var roots []int
	for i, c := range flat {
		if c.ParentID != nil && present[*c.ParentID] {
			byParent[*c.ParentID] = append(byParent[*c.ParentID], i)
			continue
		}
		roots = append(roots, i)
	}

	var build func(idx int, seen map[uuid.UUID]bool) Category
	build = func(idx int, seen map[uuid.UUID]bool) Category {
		node := flat[idx]
		node.Parent = nil
		node.Children = nil
		seen[node.ID] = true
		for _, childIdx := range byParent[node.ID] {
			if seen[flat[childIdx].ID] {
				continue
			}
			node.Children = append(node.Children, build(childIdx, seen))
		}
		return node
	}

	tree := make([]Category, 0, len(roots))
	seen := make(map[uuid.UUID]bool, len(flat))
	for _, idx := range roots {
		tree = append(tree, build(idx, seen))
	}
	return tree
}
