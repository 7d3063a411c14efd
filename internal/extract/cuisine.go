package extract

import "regexp"

// cuisineEntry pairs a canonical cuisine name with its keyword regex.
type cuisineEntry struct {
	name string
	re   *regexp.Regexp
}

// minCuisineMatches is the minimum keyword hit count before a cuisine
// classification is accepted. One stray word is not a signal.
const minCuisineMatches = 2

var cuisineTable = []cuisineEntry{
	{"Italian", regexp.MustCompile(`(?i)\b(pizza|pasta|italian|trattoria|ristorante|calzone|risotto)\b`)},
	{"Mexican", regexp.MustCompile(`(?i)\b(taco|tacos|burrito|mexican|cantina|quesadilla|enchilada|salsa)\b`)},
	{"Chinese", regexp.MustCompile(`(?i)\b(chinese|dim\s?sum|szechuan|wok|lo\s?mein|dumpling)\b`)},
	{"Japanese", regexp.MustCompile(`(?i)\b(sushi|ramen|japanese|izakaya|hibachi|tempura|sashimi)\b`)},
	{"Thai", regexp.MustCompile(`(?i)\b(thai|pad\s?thai|curry|tom\s?yum)\b`)},
	{"Indian", regexp.MustCompile(`(?i)\b(indian|tandoori|masala|naan|biryani|tikka)\b`)},
	{"Seafood", regexp.MustCompile(`(?i)\b(seafood|oyster|lobster|clam|scallop|fish\s?(house|market|fry))\b`)},
	{"Mediterranean", regexp.MustCompile(`(?i)\b(mediterranean|greek|gyro|falafel|kebab|hummus|shawarma)\b`)},
	{"American", regexp.MustCompile(`(?i)\b(burger|burgers|bbq|barbecue|wings|steakhouse|diner|grill)\b`)},
	{"Breakfast", regexp.MustCompile(`(?i)\b(breakfast|brunch|pancake|waffle|omelet|espresso|bakery)\b`)},
}

// ClassifyCuisine returns the cuisine whose keywords appear most often in
// the text, or "" when no cuisine reaches the minimum match count. Ties
// break toward the earlier table entry.
func ClassifyCuisine(text string) string {
	if text == "" {
		return ""
	}
	best := ""
	bestCount := 0
	for _, entry := range cuisineTable {
		count := len(entry.re.FindAllString(text, -1))
		if count > bestCount {
			best = entry.name
			bestCount = count
		}
	}
	if bestCount < minCuisineMatches {
		return ""
	}
	return best
}
