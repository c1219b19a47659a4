package domain

import "time"

const (
	DefaultPage     = 1
	DefaultPageSize = 20

	// HeroesTerm is reserved: listing with it serves the last deleted knight
	// from the snapshot cache instead of searching the roster.
	HeroesTerm = "heroes"

	// HeroesCacheKey is the single snapshot slot written on delete.
	HeroesCacheKey = "heroes-knights"

	heroSnapshotPage     = 1
	heroSnapshotPageSize = 10
)

type ListFilter struct {
	Page     int
	PageSize int
	Term     string
}

// Normalize applies the default paging to unset or non-positive values.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	return f
}

type SortOrder struct {
	Field string
	Desc  bool
}

// PageQuery is what the roster repository paginates by. Fields and Sort use
// the JSON field names of Knight.
type PageQuery struct {
	Term   string
	Page   int
	Limit  int
	Sort   SortOrder
	Fields []string
}

type Page[T any] struct {
	Docs  []T
	Total int64
	Page  int
	Limit int
}

// SummaryFields is the projection needed to build a KnightSummary.
var SummaryFields = []string{"id", "name", "nickname", "birthday", "weapons", "attributes", "keyAttribute"}

var SortByName = SortOrder{Field: "name"}

type KnightSummary struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Nickname  string    `json:"nickname"`
	Age       int       `json:"age"`
	Weapons   int       `json:"weapons"`
	Attribute Attribute `json:"attribute"`
	Attack    int       `json:"attack"`
	Exp       int       `json:"exp"`
}

type KnightView struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Nickname     string     `json:"nickname"`
	Birthday     string     `json:"birthday"`
	Age          int        `json:"age"`
	Exp          int        `json:"exp"`
	Attack       int        `json:"attack"`
	Weapons      []Weapon   `json:"weapons"`
	Attributes   Attributes `json:"attributes"`
	KeyAttribute Attribute  `json:"keyAttribute"`
}

func Summarize(k Knight, now time.Time) (KnightSummary, error) {
	attack, err := Attack(k, now)
	if err != nil {
		return KnightSummary{}, err
	}
	return KnightSummary{
		ID:        k.ID,
		Name:      k.Name,
		Nickname:  k.Nickname,
		Age:       Age(k.Birthday, now),
		Weapons:   len(k.Weapons),
		Attribute: k.KeyAttribute,
		Attack:    attack,
		Exp:       Experience(k.Birthday, now),
	}, nil
}

func View(k Knight, now time.Time) (KnightView, error) {
	attack, err := Attack(k, now)
	if err != nil {
		return KnightView{}, err
	}
	weapons := make([]Weapon, len(k.Weapons))
	copy(weapons, k.Weapons)
	return KnightView{
		ID:           k.ID,
		Name:         k.Name,
		Nickname:     k.Nickname,
		Birthday:     k.Birthday.Format(time.DateOnly),
		Age:          Age(k.Birthday, now),
		Exp:          Experience(k.Birthday, now),
		Attack:       attack,
		Weapons:      weapons,
		Attributes:   k.Attributes,
		KeyAttribute: k.KeyAttribute,
	}, nil
}

// ListResult is either a KnightPage or a HeroSnapshot. Both encode to the
// same {total, currentPage, pageSize, data} envelope, but a HeroSnapshot
// carries a single summary and fixed paging.
type ListResult interface {
	listResult()
}

type KnightPage struct {
	Total       int64           `json:"total"`
	CurrentPage int             `json:"currentPage"`
	PageSize    int             `json:"pageSize"`
	Data        []KnightSummary `json:"data"`
}

func (KnightPage) listResult() {}

type HeroSnapshot struct {
	Total       int64         `json:"total"`
	CurrentPage int           `json:"currentPage"`
	PageSize    int           `json:"pageSize"`
	Data        KnightSummary `json:"data"`
}

func (HeroSnapshot) listResult() {}

func NewHeroSnapshot(summary KnightSummary) HeroSnapshot {
	return HeroSnapshot{
		Total:       0,
		CurrentPage: heroSnapshotPage,
		PageSize:    heroSnapshotPageSize,
		Data:        summary,
	}
}
