package models

// Category slugs mirror the site taxonomy. CategoryDefault is the bucket for
// anything the scraper could not classify.
const (
	CategoryTents       = "tiendas-campana"
	CategorySleepingBag = "sacos-dormir"
	CategoryBackpacks   = "mochilas"
	CategoryCooking     = "cocina-camping"
	CategoryLighting    = "iluminacion"
	CategoryFurniture   = "mobiliario"
	CategoryTools       = "herramientas"
	CategoryAccessories = "accesorios"

	CategoryDefault = "camping"
)

var knownCategories = map[string]bool{
	CategoryTents:       true,
	CategorySleepingBag: true,
	CategoryBackpacks:   true,
	CategoryCooking:     true,
	CategoryLighting:    true,
	CategoryFurniture:   true,
	CategoryTools:       true,
	CategoryAccessories: true,
}

// IsKnownCategory reports whether slug is part of the fixed taxonomy.
func IsKnownCategory(slug string) bool {
	return knownCategories[slug]
}

// CategoryEmoji returns the channel-message emoji for a category.
func CategoryEmoji(slug string) string {
	switch slug {
	case CategoryTents:
		return "⛺"
	case CategorySleepingBag:
		return "🛏️"
	case CategoryBackpacks:
		return "🎒"
	case CategoryCooking:
		return "🍳"
	case CategoryLighting:
		return "🔦"
	case CategoryFurniture:
		return "🪑"
	case CategoryTools:
		return "🔧"
	case CategoryAccessories:
		return "🧭"
	default:
		return "🏕️"
	}
}
