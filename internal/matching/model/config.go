package model

// DefaultFuzzyScanLimit - сколько позиций вне кандидатов просматриваем линейно в fuzzy-догоне.
const DefaultFuzzyScanLimit = 100

type MatchConfig struct {
	MinConfidence         float64 `json:"minConfidence" toml:"min_confidence"`
	MaxResults            int     `json:"maxResults" toml:"max_results"`
	ExactMatchBoost       float64 `json:"exactMatchBoost" toml:"exact_match_boost"`
	CodeWeight            float64 `json:"codeWeight" toml:"code_weight"`
	DescriptionWeight     float64 `json:"descriptionWeight" toml:"description_weight"`
	EnableFuzzyMatching   bool    `json:"enableFuzzyMatching" toml:"enable_fuzzy_matching"`
	EnableKeywordMatching bool    `json:"enableKeywordMatching" toml:"enable_keyword_matching"`
	StrictUOMMatching     bool    `json:"strictUomMatching" toml:"strict_uom_matching"`

	FuzzyScanLimit    int      `json:"fuzzyScanLimit" toml:"fuzzy_scan_limit"`
	DedupeBeforeLimit bool     `json:"dedupeBeforeLimit" toml:"dedupe_before_limit"` // false: сначала срез, потом дедуп (совместимость)
	AutoMapConfidence float64  `json:"autoMapConfidence" toml:"auto_map_confidence"`
	MaxPriceDeviation *float64 `json:"maxPriceDeviation,omitempty" toml:"max_price_deviation"`
}

func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		MinConfidence:         0.6,
		MaxResults:            5,
		ExactMatchBoost:       0.3,
		CodeWeight:            0.4,
		DescriptionWeight:     0.6,
		EnableFuzzyMatching:   true,
		EnableKeywordMatching: true,
		StrictUOMMatching:     false,
		FuzzyScanLimit:        DefaultFuzzyScanLimit,
		AutoMapConfidence:     0.8,
	}
}

// ConfigPatch - частичная конфигурация: nil означает "не менять".
type ConfigPatch struct {
	MinConfidence         *float64 `json:"minConfidence,omitempty" toml:"min_confidence"`
	MaxResults            *int     `json:"maxResults,omitempty" toml:"max_results"`
	ExactMatchBoost       *float64 `json:"exactMatchBoost,omitempty" toml:"exact_match_boost"`
	CodeWeight            *float64 `json:"codeWeight,omitempty" toml:"code_weight"`
	DescriptionWeight     *float64 `json:"descriptionWeight,omitempty" toml:"description_weight"`
	EnableFuzzyMatching   *bool    `json:"enableFuzzyMatching,omitempty" toml:"enable_fuzzy_matching"`
	EnableKeywordMatching *bool    `json:"enableKeywordMatching,omitempty" toml:"enable_keyword_matching"`
	StrictUOMMatching     *bool    `json:"strictUomMatching,omitempty" toml:"strict_uom_matching"`
	FuzzyScanLimit        *int     `json:"fuzzyScanLimit,omitempty" toml:"fuzzy_scan_limit"`
	DedupeBeforeLimit     *bool    `json:"dedupeBeforeLimit,omitempty" toml:"dedupe_before_limit"`
	AutoMapConfidence     *float64 `json:"autoMapConfidence,omitempty" toml:"auto_map_confidence"`
	MaxPriceDeviation     *float64 `json:"maxPriceDeviation,omitempty" toml:"max_price_deviation"`
}

// Apply возвращает копию c с наложенными полями патча.
func (c MatchConfig) Apply(p ConfigPatch) MatchConfig {
	if p.MinConfidence != nil {
		c.MinConfidence = *p.MinConfidence
	}
	if p.MaxResults != nil {
		c.MaxResults = *p.MaxResults
	}
	if p.ExactMatchBoost != nil {
		c.ExactMatchBoost = *p.ExactMatchBoost
	}
	if p.CodeWeight != nil {
		c.CodeWeight = *p.CodeWeight
	}
	if p.DescriptionWeight != nil {
		c.DescriptionWeight = *p.DescriptionWeight
	}
	if p.EnableFuzzyMatching != nil {
		c.EnableFuzzyMatching = *p.EnableFuzzyMatching
	}
	if p.EnableKeywordMatching != nil {
		c.EnableKeywordMatching = *p.EnableKeywordMatching
	}
	if p.StrictUOMMatching != nil {
		c.StrictUOMMatching = *p.StrictUOMMatching
	}
	if p.FuzzyScanLimit != nil {
		c.FuzzyScanLimit = *p.FuzzyScanLimit
	}
	if p.DedupeBeforeLimit != nil {
		c.DedupeBeforeLimit = *p.DedupeBeforeLimit
	}
	if p.AutoMapConfidence != nil {
		c.AutoMapConfidence = *p.AutoMapConfidence
	}
	if p.MaxPriceDeviation != nil {
		v := *p.MaxPriceDeviation
		c.MaxPriceDeviation = &v
	}
	return c
}

// Merge накладывает over поверх p (over побеждает).
func (p ConfigPatch) Merge(over ConfigPatch) ConfigPatch {
	if over.MinConfidence != nil {
		p.MinConfidence = over.MinConfidence
	}
	if over.MaxResults != nil {
		p.MaxResults = over.MaxResults
	}
	if over.ExactMatchBoost != nil {
		p.ExactMatchBoost = over.ExactMatchBoost
	}
	if over.CodeWeight != nil {
		p.CodeWeight = over.CodeWeight
	}
	if over.DescriptionWeight != nil {
		p.DescriptionWeight = over.DescriptionWeight
	}
	if over.EnableFuzzyMatching != nil {
		p.EnableFuzzyMatching = over.EnableFuzzyMatching
	}
	if over.EnableKeywordMatching != nil {
		p.EnableKeywordMatching = over.EnableKeywordMatching
	}
	if over.StrictUOMMatching != nil {
		p.StrictUOMMatching = over.StrictUOMMatching
	}
	if over.FuzzyScanLimit != nil {
		p.FuzzyScanLimit = over.FuzzyScanLimit
	}
	if over.DedupeBeforeLimit != nil {
		p.DedupeBeforeLimit = over.DedupeBeforeLimit
	}
	if over.AutoMapConfidence != nil {
		p.AutoMapConfidence = over.AutoMapConfidence
	}
	if over.MaxPriceDeviation != nil {
		p.MaxPriceDeviation = over.MaxPriceDeviation
	}
	return p
}
