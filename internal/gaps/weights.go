// Package gaps implements the weighted completeness metric and gap
// analysis for business records. Everything here is pure: no clocks, no
// budgets, no external state.
package gaps

import "github.com/sells-group/prospector/internal/model"

// Category names for the completeness breakdown.
const (
	CategoryIdentity       = "identity"
	CategoryClassification = "classification"
	CategoryDecisionMakers = "decision_makers"
	CategoryTechnology     = "technology"
	CategoryOnlinePresence = "online_presence"
	CategoryReputation     = "reputation"
)

// priorityCutoff is the weight at or above which a missing field counts as
// a priority gap.
const priorityCutoff = 7

// fieldWeights assigns each field an integer weight reflecting business
// importance. Identity and technology fields weigh highest; social and
// rating fields lowest.
var fieldWeights = map[model.FieldKey]int{
	model.FieldCompanyName: 10,
	model.FieldWebsite:     9,
	model.FieldPhone:       8,
	model.FieldEmail:       8,
	model.FieldAddress:     6,
	model.FieldCity:        4,
	model.FieldState:       3,
	model.FieldZipCode:     3,

	model.FieldCuisine:      6,
	model.FieldServiceStyle: 3,
	model.FieldPriceTier:    3,

	model.FieldOwnerName:  8,
	model.FieldOwnerEmail: 7,
	model.FieldOwnerPhone: 5,

	model.FieldPOSSystem:           10,
	model.FieldOnlineOrdering:      9,
	model.FieldReservationPlatform: 5,
	model.FieldWebsitePlatform:     4,
	model.FieldPaymentProcessor:    5,

	model.FieldFacebookURL:      2,
	model.FieldInstagramURL:     2,
	model.FieldYelpURL:          3,
	model.FieldGoogleProfileURL: 2,

	model.FieldYelpRating:        3,
	model.FieldYelpReviewCount:   2,
	model.FieldGoogleRating:      3,
	model.FieldGoogleReviewCount: 2,
}

// allFields is the canonical field ordering. Gap analysis iterates this
// slice, never the weight map, so output order is stable.
var allFields = []model.FieldKey{
	model.FieldCompanyName,
	model.FieldWebsite,
	model.FieldAddress,
	model.FieldCity,
	model.FieldState,
	model.FieldZipCode,
	model.FieldPhone,
	model.FieldEmail,
	model.FieldCuisine,
	model.FieldServiceStyle,
	model.FieldPriceTier,
	model.FieldOwnerName,
	model.FieldOwnerEmail,
	model.FieldOwnerPhone,
	model.FieldPOSSystem,
	model.FieldOnlineOrdering,
	model.FieldReservationPlatform,
	model.FieldWebsitePlatform,
	model.FieldPaymentProcessor,
	model.FieldFacebookURL,
	model.FieldInstagramURL,
	model.FieldYelpURL,
	model.FieldGoogleProfileURL,
	model.FieldYelpRating,
	model.FieldYelpReviewCount,
	model.FieldGoogleRating,
	model.FieldGoogleReviewCount,
}

// fieldCategories groups fields for the per-category breakdown.
var fieldCategories = map[model.FieldKey]string{
	model.FieldCompanyName: CategoryIdentity,
	model.FieldWebsite:     CategoryIdentity,
	model.FieldAddress:     CategoryIdentity,
	model.FieldCity:        CategoryIdentity,
	model.FieldState:       CategoryIdentity,
	model.FieldZipCode:     CategoryIdentity,
	model.FieldPhone:       CategoryIdentity,
	model.FieldEmail:       CategoryIdentity,

	model.FieldCuisine:      CategoryClassification,
	model.FieldServiceStyle: CategoryClassification,
	model.FieldPriceTier:    CategoryClassification,

	model.FieldOwnerName:  CategoryDecisionMakers,
	model.FieldOwnerEmail: CategoryDecisionMakers,
	model.FieldOwnerPhone: CategoryDecisionMakers,

	model.FieldPOSSystem:           CategoryTechnology,
	model.FieldOnlineOrdering:      CategoryTechnology,
	model.FieldReservationPlatform: CategoryTechnology,
	model.FieldWebsitePlatform:     CategoryTechnology,
	model.FieldPaymentProcessor:    CategoryTechnology,

	model.FieldFacebookURL:      CategoryOnlinePresence,
	model.FieldInstagramURL:     CategoryOnlinePresence,
	model.FieldYelpURL:          CategoryOnlinePresence,
	model.FieldGoogleProfileURL: CategoryOnlinePresence,

	model.FieldYelpRating:        CategoryReputation,
	model.FieldYelpReviewCount:   CategoryReputation,
	model.FieldGoogleRating:      CategoryReputation,
	model.FieldGoogleReviewCount: CategoryReputation,
}

// searchableFields is the fixed subset of fields for which an extraction
// strategy exists. Missing fields outside this set (price tier, service
// style) are reported but never searched for.
var searchableFields = map[model.FieldKey]bool{
	model.FieldWebsite:        true,
	model.FieldPhone:          true,
	model.FieldEmail:          true,
	model.FieldPOSSystem:      true,
	model.FieldOnlineOrdering: true,
	model.FieldOwnerName:      true,
	model.FieldCuisine:        true,
	model.FieldYelpURL:        true,
}

// fieldGetters maps each field key to its populated check. Keeping this
// explicit avoids reflection in the hot scoring path.
var fieldGetters = map[model.FieldKey]func(*model.BusinessRecord) bool{
	model.FieldCompanyName: func(r *model.BusinessRecord) bool { return r.CompanyName != "" },
	model.FieldWebsite:     func(r *model.BusinessRecord) bool { return r.Website != "" },
	model.FieldAddress:     func(r *model.BusinessRecord) bool { return r.Address != "" },
	model.FieldCity:        func(r *model.BusinessRecord) bool { return r.City != "" },
	model.FieldState:       func(r *model.BusinessRecord) bool { return r.State != "" },
	model.FieldZipCode:     func(r *model.BusinessRecord) bool { return r.ZipCode != "" },
	model.FieldPhone:       func(r *model.BusinessRecord) bool { return r.Phone != "" },
	model.FieldEmail:       func(r *model.BusinessRecord) bool { return r.Email != "" },

	model.FieldCuisine:      func(r *model.BusinessRecord) bool { return r.Cuisine != "" },
	model.FieldServiceStyle: func(r *model.BusinessRecord) bool { return r.ServiceStyle != "" },
	model.FieldPriceTier:    func(r *model.BusinessRecord) bool { return r.PriceTier != "" },

	model.FieldOwnerName:  func(r *model.BusinessRecord) bool { return r.OwnerName != "" },
	model.FieldOwnerEmail: func(r *model.BusinessRecord) bool { return r.OwnerEmail != "" },
	model.FieldOwnerPhone: func(r *model.BusinessRecord) bool { return r.OwnerPhone != "" },

	model.FieldPOSSystem:           func(r *model.BusinessRecord) bool { return r.POSSystem != "" },
	model.FieldOnlineOrdering:      func(r *model.BusinessRecord) bool { return r.OnlineOrdering != "" },
	model.FieldReservationPlatform: func(r *model.BusinessRecord) bool { return r.ReservationPlatform != "" },
	model.FieldWebsitePlatform:     func(r *model.BusinessRecord) bool { return r.WebsitePlatform != "" },
	model.FieldPaymentProcessor:    func(r *model.BusinessRecord) bool { return r.PaymentProcessor != "" },

	model.FieldFacebookURL:      func(r *model.BusinessRecord) bool { return r.FacebookURL != "" },
	model.FieldInstagramURL:     func(r *model.BusinessRecord) bool { return r.InstagramURL != "" },
	model.FieldYelpURL:          func(r *model.BusinessRecord) bool { return r.YelpURL != "" },
	model.FieldGoogleProfileURL: func(r *model.BusinessRecord) bool { return r.GoogleProfileURL != "" },

	model.FieldYelpRating:        func(r *model.BusinessRecord) bool { return r.YelpRating > 0 },
	model.FieldYelpReviewCount:   func(r *model.BusinessRecord) bool { return r.YelpReviewCount > 0 },
	model.FieldGoogleRating:      func(r *model.BusinessRecord) bool { return r.GoogleRating > 0 },
	model.FieldGoogleReviewCount: func(r *model.BusinessRecord) bool { return r.GoogleReviewCount > 0 },
}

// Populated reports whether the given field is set on the record.
// Unknown keys are never populated.
func Populated(r *model.BusinessRecord, key model.FieldKey) bool {
	get, ok := fieldGetters[key]
	if !ok {
		return false
	}
	return get(r)
}

// Weight returns the configured weight for a field key, or zero for
// unknown keys.
func Weight(key model.FieldKey) int {
	return fieldWeights[key]
}

// Searchable reports whether a defined extraction strategy exists for
// the field.
func Searchable(key model.FieldKey) bool {
	return searchableFields[key]
}

// AllFields returns the canonical ordered field list.
func AllFields() []model.FieldKey {
	out := make([]model.FieldKey, len(allFields))
	copy(out, allFields)
	return out
}
