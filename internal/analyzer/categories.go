package analyzer

// Category sets are fixed at build time. The fetch layer filters raw Places
// types against AllowedTypes before anything reaches the scorer, so the
// scoring functions never re-filter.

// priorityCategories are the business types most valuable as outreach targets.
var priorityCategories = map[string]bool{
	"restaurant":         true,
	"cafe":               true,
	"store":              true,
	"beauty_salon":       true,
	"hair_care":          true,
	"gym":                true,
	"hotel":              true,
	"spa":                true,
	"real_estate_agency": true,
	"shopping_mall":      true,
}

// webDependentCategories are types that typically need a strong web presence.
var webDependentCategories = map[string]bool{
	"restaurant":         true,
	"hotel":              true,
	"real_estate_agency": true,
	"shopping_mall":      true,
	"tourist_attraction": true,
	"store":              true,
	"beauty_salon":       true,
}

// AllowedTypes is the closed set of Google Places types the pipeline accepts.
var AllowedTypes = []string{
	"accounting", "airport", "amusement_park", "aquarium", "art_gallery",
	"atm", "bakery", "bank", "bar", "beauty_salon", "bicycle_store",
	"book_store", "bowling_alley", "bus_station", "cafe", "campground",
	"car_dealer", "car_rental", "car_repair", "car_wash", "casino",
	"cemetery", "church", "city_hall", "clothing_store", "convenience_store",
	"courthouse", "dentist", "department_store", "doctor", "drugstore",
	"electrician", "electronics_store", "embassy", "fire_station", "florist",
	"funeral_home", "furniture_store", "gas_station", "gym", "hair_care",
	"hardware_store", "hindu_temple", "home_goods_store", "hospital",
	"insurance_agency", "jewelry_store", "laundry", "lawyer", "library",
	"light_rail_station", "liquor_store", "local_government_office",
	"locksmith", "lodging", "meal_delivery", "meal_takeaway", "mosque",
	"movie_rental", "movie_theater", "moving_company", "museum", "night_club",
	"painter", "park", "parking", "pet_store", "pharmacy", "physiotherapist",
	"plumber", "police", "post_office", "primary_school",
	"real_estate_agency", "restaurant", "roofing_contractor", "rv_park",
	"school", "secondary_school", "shoe_store", "shopping_mall", "spa",
	"stadium", "storage", "store", "subway_station", "supermarket",
	"synagogue", "taxi_stand", "tourist_attraction", "train_station",
	"transit_station", "travel_agency", "university", "veterinary_care", "zoo",
}

var allowedTypeSet = func() map[string]bool {
	set := make(map[string]bool, len(AllowedTypes))
	for _, t := range AllowedTypes {
		set[t] = true
	}
	return set
}()

// IsAllowedType reports whether t is in the fixed allow-list.
func IsAllowedType(t string) bool {
	return allowedTypeSet[t]
}

// FilterAllowedTypes returns the subset of types present in the allow-list,
// preserving order. Callers use this at the fetch boundary.
func FilterAllowedTypes(types []string) []string {
	var out []string
	for _, t := range types {
		if allowedTypeSet[t] {
			out = append(out, t)
		}
	}
	return out
}

func anyType(types []string, set map[string]bool) bool {
	for _, t := range types {
		if set[t] {
			return true
		}
	}
	return false
}
