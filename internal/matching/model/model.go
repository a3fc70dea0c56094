package model

import "time"

type Status string

const (
	StatusActive       Status = "active"
	StatusInactive     Status = "inactive"
	StatusDiscontinued Status = "discontinued"
)

// CatalogItem - каноническая позиция каталога (SKU).
type CatalogItem struct {
	ID             string         `json:"id" yaml:"id"`
	Code           string         `json:"code" yaml:"code"`
	Description    string         `json:"description" yaml:"description"`
	Category       string         `json:"category" yaml:"category"`
	Subcategory    string         `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	UOM            string         `json:"uom" yaml:"uom"`
	Price          *float64       `json:"price,omitempty" yaml:"price,omitempty"`
	Specifications Specifications `json:"specifications,omitempty" yaml:"specifications,omitempty"`
	Aliases        []string       `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Keywords       []string       `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Status         Status         `json:"status" yaml:"status"`
}

func (c CatalogItem) Active() bool { return c.Status == StatusActive }

// BOQItem - строка ведомости объёмов работ, по которой ищем позицию каталога.
type BOQItem struct {
	ItemCode       string   `json:"itemCode,omitempty" yaml:"itemCode,omitempty"`
	Description    string   `json:"description" yaml:"description"`
	UOM            string   `json:"uom" yaml:"uom"`
	Category       string   `json:"category,omitempty" yaml:"category,omitempty"`
	Subcategory    string   `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	EstimatedPrice *float64 `json:"estimatedPrice,omitempty" yaml:"estimatedPrice,omitempty"`
	Keywords       []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchFuzzy   MatchType = "fuzzy"
	MatchKeyword MatchType = "keyword"
	MatchPartial MatchType = "partial"
)

// Priority для сортировки: exact > fuzzy > keyword > partial
func (t MatchType) Priority() int {
	switch t {
	case MatchExact:
		return 4
	case MatchFuzzy:
		return 3
	case MatchKeyword:
		return 2
	case MatchPartial:
		return 1
	default:
		return 0
	}
}

type Field string

const (
	FieldCode        Field = "code"
	FieldDescription Field = "description"
	FieldUOM         Field = "uom"
	FieldCategory    Field = "category"
)

type MatchResult struct {
	CatalogItem   CatalogItem `json:"catalogItem"`
	Confidence    float64     `json:"confidence"` // 0..1
	MatchType     MatchType   `json:"matchType"`
	MatchedFields []Field     `json:"matchedFields"`
	Reason        string      `json:"reason"`
}

type Stats struct {
	TotalItems         int       `json:"totalItems"`
	IndexedKeywords    int       `json:"indexedKeywords"`
	AvgKeywordsPerItem float64   `json:"avgKeywordsPerItem"`
	Fingerprint        string    `json:"fingerprint"` // xxhash снимка каталога
	BuiltAt            time.Time `json:"builtAt"`
}

type ExceptionStatus string

const (
	ExceptionPending   ExceptionStatus = "pending"
	ExceptionResolved  ExceptionStatus = "resolved"
	ExceptionDismissed ExceptionStatus = "dismissed"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// MappingException - запись для ручного разбора, когда автосопоставление не удалось.
type MappingException struct {
	ID          string          `json:"id"`
	BOQItem     BOQItem         `json:"boqItem"`
	Suggestions []MatchResult   `json:"suggestions"`
	Status      ExceptionStatus `json:"status"`
	Resolution  string          `json:"resolution,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	Priority    Priority        `json:"priority"`
}
