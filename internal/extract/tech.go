// Package extract holds the pattern-based heuristics used to pull field
// values out of raw text: website HTML, aggregated search snippets, and
// review mentions. Every function here is pure and returns the zero value
// when nothing matches; a miss is a normal, silent outcome.
package extract

import "regexp"

// vendorPattern maps a canonical vendor name to the regexes that signal it.
type vendorPattern struct {
	value    string
	patterns []*regexp.Regexp
}

func vendor(value string, exprs ...string) vendorPattern {
	vp := vendorPattern{value: value}
	for _, e := range exprs {
		vp.patterns = append(vp.patterns, regexp.MustCompile(e))
	}
	return vp
}

// Detection tables. First-match-wins within a category: entries are
// declared in descending market-frequency order so ties break toward the
// vendors we see most. Do not reorder casually.
var (
	posPatterns = []vendorPattern{
		vendor("Toast", `(?i)toasttab\.com`, `(?i)\btoast\s+pos\b`, `(?i)powered\s+by\s+toast`),
		vendor("Square", `(?i)squareup\.com`, `(?i)\bsquare\s+pos\b`, `(?i)square\.site`),
		vendor("Clover", `(?i)clover\.com`, `(?i)\bclover\s+pos\b`),
		vendor("TouchBistro", `(?i)touchbistro`),
		vendor("Lightspeed", `(?i)lightspeedhq|lightspeed\s+restaurant`),
		vendor("SpotOn", `(?i)spoton\.com|\bspoton\s+pos\b`),
		vendor("Aloha", `(?i)\baloha\s+pos\b|ncr\s+aloha`),
		vendor("Micros", `(?i)\bmicros\b.{0,20}(pos|oracle)|oracle\s+micros`),
	}

	orderingPatterns = []vendorPattern{
		vendor("Toast Online Ordering", `(?i)order\.toasttab\.com`, `(?i)toast\s+(online\s+)?order`),
		vendor("Square Online", `(?i)square\.site|squareup\.com/store`),
		vendor("ChowNow", `(?i)chownow\.com|\bchownow\b`),
		vendor("Olo", `(?i)\bolo\.com\b|order\.olo`),
		vendor("DoorDash Storefront", `(?i)order\.online|doordash\.com/store`),
		vendor("Grubhub", `(?i)grubhub\.com`),
		vendor("Uber Eats", `(?i)ubereats\.com`),
		vendor("Slice", `(?i)slicelife\.com`),
	}

	reservationPatterns = []vendorPattern{
		vendor("OpenTable", `(?i)opentable\.com`),
		vendor("Resy", `(?i)resy\.com`),
		vendor("Tock", `(?i)exploretock\.com|tock\.com`),
		vendor("Yelp Reservations", `(?i)yelp\.com/reservations`),
	}

	websitePlatformPatterns = []vendorPattern{
		vendor("Squarespace", `(?i)squarespace\.com|static1\.squarespace`),
		vendor("Wix", `(?i)wix\.com|wixstatic\.com|wixsite\.com`),
		vendor("WordPress", `(?i)wp-content|wp-includes|wordpress`),
		vendor("GoDaddy", `(?i)godaddysites\.com|secureserver\.net`),
		vendor("Weebly", `(?i)weebly\.com|weeblycloud`),
		vendor("Shopify", `(?i)cdn\.shopify|myshopify\.com`),
		vendor("BentoBox", `(?i)getbento\.com|\bbentobox\b`),
	}

	paymentPatterns = []vendorPattern{
		vendor("Square", `(?i)squareup\.com/pay|square\s+payments`),
		vendor("Stripe", `(?i)js\.stripe\.com|stripe\.com`),
		vendor("Toast Payments", `(?i)toast\s+payments`),
		vendor("Clover", `(?i)clover\.com/pay`),
		vendor("PayPal", `(?i)paypal\.com|\bvenmo\b`),
	}
)

// firstMatch scans the table in declared order and returns the first
// vendor with any matching pattern.
func firstMatch(table []vendorPattern, text string) string {
	if text == "" {
		return ""
	}
	for _, vp := range table {
		for _, re := range vp.patterns {
			if re.MatchString(text) {
				return vp.value
			}
		}
	}
	return ""
}

// DetectPOS returns the canonical point-of-sale vendor signalled by the
// text, or "" when none match.
func DetectPOS(text string) string { return firstMatch(posPatterns, text) }

// DetectOnlineOrdering returns the online-ordering platform, or "".
func DetectOnlineOrdering(text string) string { return firstMatch(orderingPatterns, text) }

// DetectReservationPlatform returns the reservation platform, or "".
func DetectReservationPlatform(text string) string { return firstMatch(reservationPatterns, text) }

// DetectWebsitePlatform returns the website builder, or "".
func DetectWebsitePlatform(text string) string { return firstMatch(websitePlatformPatterns, text) }

// DetectPaymentProcessor returns the payment processor, or "".
func DetectPaymentProcessor(text string) string { return firstMatch(paymentPatterns, text) }
