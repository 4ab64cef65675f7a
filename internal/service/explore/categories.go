// internal/service/explore/categories.go

package explore

import (
	"sort"
	"strings"

	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/domain/location"
)

// DeriveCategories returns the distinct categories present in records,
// ordered by key. Keys are case-normalized, empty keys and the catch-all
// "other" bucket are skipped, and the first label seen for a key wins.
func DeriveCategories(records []location.Record) []location.Category {
	labels := make(map[string]string)

	for _, rec := range records {
		key := normalizeKey(rec.CategoryKey)
		if key == "" || key == location.CategoryOther {
			continue
		}
		if _, ok := labels[key]; ok {
			continue
		}

		label := strings.TrimSpace(rec.CategoryLabel)
		if label == "" {
			label = strings.TrimSpace(rec.CategoryKey)
		}
		labels[key] = label
	}

	categories := make([]location.Category, 0, len(labels))
	for key, label := range labels {
		categories = append(categories, location.Category{Key: key, Label: label})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Key < categories[j].Key
	})
	return categories
}
