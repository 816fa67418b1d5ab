package reader

import "github.com/twiced-technology-gmbh/pawglance/internal/snapshot"

// Style is the icon and accent color a renderer uses for a category.
// Icon names follow the SF Symbols set; Color is a hex RGB value without '#'.
type Style struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

var fallbackStyle = Style{Icon: "pawprint", Color: "6366F1"}

var styles = map[snapshot.Category]Style{
	snapshot.CategoryVaccine:  {Icon: "syringe", Color: "10B981"},
	snapshot.CategoryMedicine: {Icon: "pills", Color: "F59E0B"},
	snapshot.CategoryVet:      {Icon: "cross", Color: "1ABC9C"},
	snapshot.CategoryFood:     {Icon: "fork.knife", Color: "EF4444"},
	snapshot.CategoryGrooming: {Icon: "scissors", Color: "F39C12"},
	snapshot.CategoryOther:    fallbackStyle,
}

// StyleFor returns the style for c. Unknown categories get the style of
// snapshot.CategoryOther.
func StyleFor(c snapshot.Category) Style {
	if s, ok := styles[c]; ok {
		return s
	}
	return fallbackStyle
}
