package snapshot

import "strings"

// Category classifies a task for icon and color mapping. The set is open:
// values written by newer app versions decode without error.
type Category string

// Known categories.
const (
	CategoryVaccine  Category = "vaccine"
	CategoryMedicine Category = "medicine"
	CategoryVet      Category = "vet"
	CategoryFood     Category = "food"
	CategoryGrooming Category = "grooming"
	CategoryOther    Category = "other"
)

// Categories lists the known categories in display order.
var Categories = []Category{
	CategoryVaccine,
	CategoryMedicine,
	CategoryVet,
	CategoryFood,
	CategoryGrooming,
	CategoryOther,
}

// Known reports whether c is one of the known categories.
func (c Category) Known() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// NormalizeCategory trims and lowercases s. An empty value becomes CategoryOther.
func NormalizeCategory(s string) Category {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CategoryOther
	}
	return Category(s)
}
