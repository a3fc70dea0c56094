package service

import (
	"testing"

	"go.uber.org/goleak"

	"catalog-matcher/internal/matching/model"
)

// Снимок индекса подменяется атомарно под конкурентными запросами; утечек горутин быть не должно.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func conduit() model.CatalogItem {
	return model.CatalogItem{
		ID:          "1",
		Code:        "CAB-50",
		Description: "50mm PVC conduit pipe",
		Category:    "piping",
		UOM:         "m",
		Status:      model.StatusActive,
	}
}

func ptr[T any](v T) *T { return &v }
