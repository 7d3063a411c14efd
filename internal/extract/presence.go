package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/prospector/internal/model"
)

var (
	facebookRe  = regexp.MustCompile(`(?i)facebook\.com/([A-Za-z0-9_.\-]{3,})`)
	instagramRe = regexp.MustCompile(`(?i)instagram\.com/([A-Za-z0-9_.\-]{3,})`)
	yelpBizRe   = regexp.MustCompile(`(?i)yelp\.com/biz/([A-Za-z0-9_\-]+)`)

	ratingRe  = regexp.MustCompile(`([0-5]\.\d)\s*(?:stars?|star\s+rating|rating|out\s+of\s+5)`)
	reviewsRe = regexp.MustCompile(`\(?\b([\d,]{1,7})\s*reviews?\b\)?`)
)

// socialPathExcluded filters shared-content paths that are not profiles.
var socialPathExcluded = map[string]bool{
	"sharer": true, "share": true, "plugins": true, "tr": true,
	"p": true, "reel": true, "explore": true, "stories": true,
}

// SocialLinks scans raw HTML or snippet text for social profile URLs and
// returns them keyed by field. Only the first profile per network is kept.
func SocialLinks(text string) map[model.FieldKey]string {
	links := make(map[model.FieldKey]string)
	if m := firstProfile(facebookRe, text); m != "" {
		links[model.FieldFacebookURL] = "https://facebook.com/" + m
	}
	if m := firstProfile(instagramRe, text); m != "" {
		links[model.FieldInstagramURL] = "https://instagram.com/" + m
	}
	if m := yelpBizRe.FindStringSubmatch(text); len(m) > 1 {
		links[model.FieldYelpURL] = "https://yelp.com/biz/" + m[1]
	}
	return links
}

func firstProfile(re *regexp.Regexp, text string) string {
	for _, m := range re.FindAllStringSubmatch(text, 5) {
		slug := strings.TrimSuffix(m[1], ".")
		if socialPathExcluded[strings.ToLower(slug)] {
			continue
		}
		return slug
	}
	return ""
}

// ExtractRating pulls a "N.N stars" rating and a review count out of
// search-snippet text. Either value may be zero when absent.
func ExtractRating(text string) (rating float64, reviews int) {
	if m := ratingRe.FindStringSubmatch(text); len(m) > 1 {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v <= 5.0 {
			rating = v
		}
	}
	if m := reviewsRe.FindStringSubmatch(text); len(m) > 1 {
		if v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			reviews = v
		}
	}
	return rating, reviews
}
