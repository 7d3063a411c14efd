package enrich

import (
	"strings"

	"github.com/sells-group/prospector/internal/extract"
	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/source"
)

// aggregatorDomains are hosts that show up in search results but are
// never a business's own website.
var aggregatorDomains = []string{
	"yelp.com", "facebook.com", "instagram.com", "tripadvisor.com",
	"doordash.com", "grubhub.com", "ubereats.com", "seamless.com",
	"opentable.com", "google.com", "mapquest.com", "yellowpages.com",
	"linkedin.com", "wikipedia.org",
}

// setField writes value into the record field if it is currently empty.
// Returns true when the field was actually set. Populated fields are
// never overwritten.
func setField(rec *model.BusinessRecord, key model.FieldKey, value string) bool {
	if value == "" {
		return false
	}
	switch key {
	case model.FieldWebsite:
		if rec.Website != "" {
			return false
		}
		rec.Website = value
	case model.FieldPhone:
		if rec.Phone != "" {
			return false
		}
		rec.Phone = value
	case model.FieldEmail:
		if rec.Email != "" {
			return false
		}
		rec.Email = value
	case model.FieldCuisine:
		if rec.Cuisine != "" {
			return false
		}
		rec.Cuisine = value
	case model.FieldOwnerName:
		if rec.OwnerName != "" {
			return false
		}
		rec.OwnerName = value
	case model.FieldPOSSystem:
		if rec.POSSystem != "" {
			return false
		}
		rec.POSSystem = value
	case model.FieldOnlineOrdering:
		if rec.OnlineOrdering != "" {
			return false
		}
		rec.OnlineOrdering = value
	case model.FieldReservationPlatform:
		if rec.ReservationPlatform != "" {
			return false
		}
		rec.ReservationPlatform = value
	case model.FieldWebsitePlatform:
		if rec.WebsitePlatform != "" {
			return false
		}
		rec.WebsitePlatform = value
	case model.FieldPaymentProcessor:
		if rec.PaymentProcessor != "" {
			return false
		}
		rec.PaymentProcessor = value
	case model.FieldFacebookURL:
		if rec.FacebookURL != "" {
			return false
		}
		rec.FacebookURL = value
	case model.FieldInstagramURL:
		if rec.InstagramURL != "" {
			return false
		}
		rec.InstagramURL = value
	case model.FieldYelpURL:
		if rec.YelpURL != "" {
			return false
		}
		rec.YelpURL = value
	default:
		return false
	}
	return true
}

// mergeAll runs every heuristic over the blob and fills any empty field
// it can. Used for the website pass, where the whole page is fair game.
// Returns the fields that were newly populated.
func mergeAll(rec *model.BusinessRecord, blob string) []model.FieldKey {
	var filled []model.FieldKey
	try := func(key model.FieldKey, value string) {
		if setField(rec, key, value) {
			filled = append(filled, key)
		}
	}

	try(model.FieldPOSSystem, extract.DetectPOS(blob))
	try(model.FieldOnlineOrdering, extract.DetectOnlineOrdering(blob))
	try(model.FieldReservationPlatform, extract.DetectReservationPlatform(blob))
	try(model.FieldWebsitePlatform, extract.DetectWebsitePlatform(blob))
	try(model.FieldPaymentProcessor, extract.DetectPaymentProcessor(blob))
	try(model.FieldPhone, extract.ExtractPhone(blob))
	try(model.FieldEmail, extract.ExtractEmail(blob))
	try(model.FieldOwnerName, extract.ExtractOwnerName(blob))
	try(model.FieldCuisine, extract.ClassifyCuisine(blob))

	for key, url := range extract.SocialLinks(blob) {
		try(key, url)
	}
	return filled
}

// mergeGap extracts the value for one searchable gap from a search
// result and merges it. Returns true when the gap was filled.
func mergeGap(rec *model.BusinessRecord, key model.FieldKey, result *source.Result) bool {
	blob := result.Blob()
	switch key {
	case model.FieldWebsite:
		return setField(rec, key, websiteFromItems(result.Items))
	case model.FieldPhone:
		return setField(rec, key, extract.ExtractPhone(blob))
	case model.FieldEmail:
		return setField(rec, key, extract.ExtractEmail(blob))
	case model.FieldPOSSystem:
		return setField(rec, key, extract.DetectPOS(blob))
	case model.FieldOnlineOrdering:
		return setField(rec, key, extract.DetectOnlineOrdering(blob))
	case model.FieldOwnerName:
		return setField(rec, key, extract.ExtractOwnerName(blob))
	case model.FieldCuisine:
		return setField(rec, key, extract.ClassifyCuisine(blob))
	case model.FieldYelpURL:
		filled := false
		if url := extract.SocialLinks(blob)[model.FieldYelpURL]; url != "" {
			filled = setField(rec, key, url)
		}
		// A Yelp result usually carries the rating in its snippet.
		if rating, reviews := extract.ExtractRating(blob); rating > 0 && rec.YelpRating == 0 {
			rec.YelpRating = rating
			rec.YelpReviewCount = reviews
		}
		return filled
	}
	return false
}

// websiteFromItems picks the first search hit that looks like the
// business's own site rather than an aggregator listing.
func websiteFromItems(items []source.Item) string {
	for _, it := range items {
		url := strings.ToLower(it.URL)
		if url == "" || !strings.HasPrefix(url, "http") {
			continue
		}
		if isAggregator(url) {
			continue
		}
		return it.URL
	}
	return ""
}

func isAggregator(url string) bool {
	for _, d := range aggregatorDomains {
		if strings.Contains(url, d) {
			return true
		}
	}
	return false
}
