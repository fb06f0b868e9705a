package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Genres is stored as a JSON array in a single text column.
type Genres []string

func (g Genres) Value() (driver.Value, error) {
	if g == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(g))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (g *Genres) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*g = Genres{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported genres column type %T", value)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode genres: %w", err)
	}
	*g = out
	return nil
}

type Book struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Title         string    `gorm:"index;size:512;not null" json:"title"`
	TitleFolded   string    `gorm:"index;size:512;not null;default:''" json:"-"`
	PublishedYear int       `gorm:"index;not null" json:"published_year"`
	Genres        Genres    `gorm:"type:text;not null" json:"genres"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`

	// Authors holds linked author names in link order. It is hydrated by the
	// books repository and never written through GORM.
	Authors []string `gorm:"-" json:"authors"`
}

type Author struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Name       string    `gorm:"uniqueIndex;size:256;not null" json:"name"`
	NameFolded string    `gorm:"index;size:256;not null;default:''" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// BookAuthor is one edge of the book/author many-to-many relation.
// Position keeps the author order given at creation time.
type BookAuthor struct {
	BookID   string `gorm:"primaryKey;size:36"`
	AuthorID string `gorm:"primaryKey;size:36;index"`
	Position int    `gorm:"not null"`
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.TitleFolded = Fold(b.Title)
	return nil
}

func (a *Author) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.NameFolded = Fold(a.Name)
	return nil
}

func (Book) TableName() string {
	return "books"
}

func (Author) TableName() string {
	return "authors"
}

func (BookAuthor) TableName() string {
	return "book_authors"
}
