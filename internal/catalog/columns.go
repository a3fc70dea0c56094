package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"catalog-matcher/internal/matching/model"
	"catalog-matcher/internal/utils"
)

// Columns - имена колонок листа каталога. Альтернативы через "|": "Code|SKU|Item Code".
type Columns struct {
	ID          string
	Code        string
	Description string
	Category    string
	Subcategory string
	UOM         string
	Price       string
	Status      string
	Aliases     string
	Keywords    string
	HeaderRow   int // 1-based
}

func DefaultColumns() Columns {
	return Columns{
		ID:          "ID|Item ID",
		Code:        "Code|Item Code|SKU|Part No",
		Description: "Description|Item Description|Name",
		Category:    "Category",
		Subcategory: "Subcategory|Sub Category",
		UOM:         "UOM|Unit|Units",
		Price:       "Price|Unit Price|Rate",
		Status:      "Status",
		Aliases:     "Aliases|Alias",
		Keywords:    "Keywords|Tags",
		HeaderRow:   1,
	}
}

// BOQColumns - имена колонок ведомости объёмов.
type BOQColumns struct {
	ItemCode       string
	Description    string
	UOM            string
	Category       string
	Subcategory    string
	EstimatedPrice string
	Keywords       string
	HeaderRow      int
}

func DefaultBOQColumns() BOQColumns {
	return BOQColumns{
		ItemCode:       "Item Code|Code|SKU",
		Description:    "Description|Item Description|Item",
		UOM:            "UOM|Unit|Units",
		Category:       "Category",
		Subcategory:    "Subcategory|Sub Category",
		EstimatedPrice: "Estimated Price|Rate|Unit Price|Price",
		Keywords:       "Keywords|Tags",
		HeaderRow:      1,
	}
}

// Items превращает строки листа в позиции каталога.
// Пустой ID заменяется кодом, затем номером строки; пустой статус - active.
func Items(rows []map[string]string, c Columns) []model.CatalogItem {
	out := make([]model.CatalogItem, 0, len(rows))
	if len(rows) == 0 {
		return out
	}
	keys := resolveAll(rows[0], c.ID, c.Code, c.Description, c.Category, c.Subcategory, c.UOM, c.Price, c.Status, c.Aliases, c.Keywords)
	kID, kCode, kDesc, kCat, kSub, kUOM, kPrice, kStatus, kAliases, kKeywords :=
		keys[0], keys[1], keys[2], keys[3], keys[4], keys[5], keys[6], keys[7], keys[8], keys[9]

	for i, rec := range rows {
		if looksLikeHeader(rec) {
			continue
		}
		desc := strings.TrimSpace(rec[kDesc])
		code := strings.TrimSpace(rec[kCode])
		if desc == "" && code == "" {
			continue
		}
		it := model.CatalogItem{
			ID:          strings.TrimSpace(rec[kID]),
			Code:        code,
			Description: desc,
			Category:    strings.TrimSpace(rec[kCat]),
			Subcategory: strings.TrimSpace(rec[kSub]),
			UOM:         strings.TrimSpace(rec[kUOM]),
			Status:      parseStatus(rec[kStatus]),
			Aliases:     splitList(rec[kAliases]),
			Keywords:    splitList(rec[kKeywords]),
		}
		if it.ID == "" {
			it.ID = code
		}
		if it.ID == "" {
			it.ID = fmt.Sprintf("row-%d", i+c.HeaderRow+1)
		}
		if p, ok := utils.ParseNumber(rec[kPrice]); ok {
			it.Price = &p
		}
		out = append(out, it)
	}
	return out
}

// BOQItems превращает строки ведомости в запросы сопоставления. Строки без описания пропускаются.
func BOQItems(rows []map[string]string, c BOQColumns) []model.BOQItem {
	out := make([]model.BOQItem, 0, len(rows))
	if len(rows) == 0 {
		return out
	}
	keys := resolveAll(rows[0], c.ItemCode, c.Description, c.UOM, c.Category, c.Subcategory, c.EstimatedPrice, c.Keywords)
	kCode, kDesc, kUOM, kCat, kSub, kPrice, kKeywords := keys[0], keys[1], keys[2], keys[3], keys[4], keys[5], keys[6]

	for _, rec := range rows {
		if looksLikeHeader(rec) {
			continue
		}
		desc := strings.TrimSpace(rec[kDesc])
		if desc == "" {
			continue
		}
		b := model.BOQItem{
			ItemCode:    strings.TrimSpace(rec[kCode]),
			Description: desc,
			UOM:         strings.TrimSpace(rec[kUOM]),
			Category:    strings.TrimSpace(rec[kCat]),
			Subcategory: strings.TrimSpace(rec[kSub]),
			Keywords:    splitList(rec[kKeywords]),
		}
		if p, ok := utils.ParseNumber(rec[kPrice]); ok {
			b.EstimatedPrice = &p
		}
		out = append(out, b)
	}
	return out
}

func parseStatus(s string) model.Status {
	switch st := model.Status(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return model.StatusActive
	case model.StatusActive, model.StatusInactive, model.StatusDiscontinued:
		return st
	default:
		return model.StatusInactive
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' || r == '|' }) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// повторённая шапка посреди листа (склейка выгрузок)
func looksLikeHeader(rec map[string]string) bool {
	hits, filled := 0, 0
	for k, v := range rec {
		if v == "" {
			continue
		}
		filled++
		if normHeaderKey(k) == normHeaderKey(v) {
			hits++
		}
	}
	return filled > 0 && hits*2 > filled
}

var reHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// нижний регистр, без служебных символов и лишних пробелов
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(reHeaderJunk.ReplaceAllString(s, " ")), " ")
}

func resolveAll(rec map[string]string, wants ...string) []string {
	out := make([]string, len(wants))
	for i, w := range wants {
		out[i] = resolveKey(rec, w)
	}
	return out
}

// resolveKey ищет реальный ключ записи по желаемому имени с альтернативами через "|":
// точное совпадение, затем нормализованное, затем вхождение (берём самое длинное).
// Ничего не нашли - "" (такая колонка даёт пустые значения).
func resolveKey(rec map[string]string, want string) string {
	want = strings.TrimSpace(want)
	if want == "" {
		return ""
	}
	alts := strings.Split(want, "|")
	norm := make([]string, 0, len(alts))
	for _, a := range alts {
		a = strings.TrimSpace(a)
		if _, ok := rec[a]; ok {
			return a
		}
		if n := normHeaderKey(a); n != "" {
			norm = append(norm, n)
		}
	}

	for _, n := range norm {
		for k := range rec {
			if normHeaderKey(k) == n {
				return k
			}
		}
	}

	bestKey, bestScore := "", 0
	for k := range rec {
		nk := normHeaderKey(k)
		for _, n := range norm {
			if strings.Contains(nk, n) && len(n) > bestScore {
				bestScore, bestKey = len(n), k
			}
		}
	}
	return bestKey
}
