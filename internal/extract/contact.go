package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// phoneRe matches North-American-style numbers: optional country code,
// area code [2-9]NN, with common separators.
var phoneRe = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?([2-9]\d{2})\)?[-.\s]?(\d{3})[-.\s]?(\d{4})\b`)

// emailRe is the standard local@domain pattern.
var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// excludedEmailPrefixes and excludedEmailDomains filter out no-reply and
// platform-support addresses before a match is accepted.
var excludedEmailPrefixes = []string{
	"noreply", "no-reply", "no_reply", "donotreply", "do-not-reply",
	"mailer-daemon", "postmaster", "abuse",
}

var excludedEmailDomains = []string{
	"example.com", "example.org", "yourdomain.com", "email.com",
	"sentry.io", "wixpress.com", "godaddy.com", "squarespace.com",
	"toasttab.com", "squareup.com", "doordash.com", "grubhub.com",
	"yelp.com", "google.com", "facebook.com", "schema.org", "w3.org",
}

// NormalizePhone formats a bare digit string as (NNN) NNN-NNNN. An
// 11-digit string with a leading 1 is treated as country-coded. Returns
// "" when the input is not a usable North American number.
func NormalizePhone(digits string) string {
	var b strings.Builder
	for _, r := range digits {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	if len(d) != 10 || d[0] < '2' {
		return ""
	}
	return fmt.Sprintf("(%s) %s-%s", d[0:3], d[3:6], d[6:10])
}

// ExtractPhone finds the first plausible phone number in the text and
// returns it normalized as (NNN) NNN-NNNN, or "" when none is found.
// Candidates that parse as US numbers but fail libphonenumber validation
// are skipped.
func ExtractPhone(text string) string {
	for _, m := range phoneRe.FindAllStringSubmatch(text, 10) {
		digits := m[1] + m[2] + m[3]
		if num, err := phonenumbers.Parse(digits, "US"); err == nil {
			if !phonenumbers.IsPossibleNumber(num) {
				continue
			}
		}
		if normalized := NormalizePhone(digits); normalized != "" {
			return normalized
		}
	}
	return ""
}

// ExtractEmail finds the first acceptable email address in the text,
// lowercased, or "" when none survives the exclusion list.
func ExtractEmail(text string) string {
	for _, m := range emailRe.FindAllString(text, 20) {
		addr := strings.ToLower(strings.Trim(m, "."))
		if emailExcluded(addr) {
			continue
		}
		return addr
	}
	return ""
}

func emailExcluded(addr string) bool {
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return true
	}
	local, domain := addr[:at], addr[at+1:]
	for _, p := range excludedEmailPrefixes {
		if strings.HasPrefix(local, p) {
			return true
		}
	}
	for _, d := range excludedEmailDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	// Image filenames picked up by the loose domain pattern.
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg"} {
		if strings.HasSuffix(domain, ext) {
			return true
		}
	}
	return false
}
