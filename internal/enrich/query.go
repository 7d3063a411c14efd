package enrich

import (
	"strings"

	"github.com/sells-group/prospector/internal/model"
)

// queryFor builds the search query for one gap. The record's identity
// fields anchor every query; an empty return means the gap cannot be
// queried (no strategy, or not enough identity to search with).
func queryFor(key model.FieldKey, rec *model.BusinessRecord) string {
	if rec.CompanyName == "" {
		return ""
	}
	identity := identityQuery(rec)

	switch key {
	case model.FieldWebsite:
		return identity + " official website"
	case model.FieldPhone:
		return identity + " phone number"
	case model.FieldEmail:
		return identity + " contact email"
	case model.FieldPOSSystem:
		return identity + " point of sale POS system"
	case model.FieldOnlineOrdering:
		return identity + " order online"
	case model.FieldOwnerName:
		return identity + " owner"
	case model.FieldCuisine:
		return identity + " restaurant menu"
	case model.FieldYelpURL:
		return identity + " yelp"
	}
	return ""
}

// reviewsQuery builds the dedicated query used for pain-signal mining.
func reviewsQuery(rec *model.BusinessRecord) string {
	return identityQuery(rec) + " reviews complaints"
}

func identityQuery(rec *model.BusinessRecord) string {
	parts := []string{`"` + rec.CompanyName + `"`}
	if rec.City != "" {
		parts = append(parts, rec.City)
	}
	if rec.State != "" {
		parts = append(parts, rec.State)
	}
	return strings.Join(parts, " ")
}
