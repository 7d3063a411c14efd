package model

import "time"

// FieldKey identifies a single enrichable field on a BusinessRecord.
type FieldKey string

// Field keys for every enrichable field. The scoring and gap logic works
// off these identifiers rather than struct reflection.
const (
	FieldCompanyName FieldKey = "company_name"
	FieldWebsite     FieldKey = "website"
	FieldAddress     FieldKey = "address"
	FieldCity        FieldKey = "city"
	FieldState       FieldKey = "state"
	FieldZipCode     FieldKey = "zip_code"
	FieldPhone       FieldKey = "phone"
	FieldEmail       FieldKey = "email"

	FieldCuisine      FieldKey = "cuisine"
	FieldServiceStyle FieldKey = "service_style"
	FieldPriceTier    FieldKey = "price_tier"

	FieldOwnerName  FieldKey = "owner_name"
	FieldOwnerEmail FieldKey = "owner_email"
	FieldOwnerPhone FieldKey = "owner_phone"

	FieldPOSSystem           FieldKey = "pos_system"
	FieldOnlineOrdering      FieldKey = "online_ordering"
	FieldReservationPlatform FieldKey = "reservation_platform"
	FieldWebsitePlatform     FieldKey = "website_platform"
	FieldPaymentProcessor    FieldKey = "payment_processor"

	FieldFacebookURL      FieldKey = "facebook_url"
	FieldInstagramURL     FieldKey = "instagram_url"
	FieldYelpURL          FieldKey = "yelp_url"
	FieldGoogleProfileURL FieldKey = "google_profile_url"

	FieldYelpRating        FieldKey = "yelp_rating"
	FieldYelpReviewCount   FieldKey = "yelp_review_count"
	FieldGoogleRating      FieldKey = "google_rating"
	FieldGoogleReviewCount FieldKey = "google_review_count"
)

// PainSignal is a heuristically detected indicator of an operational
// problem, mined from review or mention text.
type PainSignal struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Source      string    `json:"source"`
	DetectedAt  time.Time `json:"detected_at"`
}

// GapAnalysis is a snapshot of what is missing from a record.
type GapAnalysis struct {
	Completeness int            `json:"completeness"`
	Missing      []FieldKey     `json:"missing"`
	Priority     []FieldKey     `json:"priority"`
	Searchable   []FieldKey     `json:"searchable"`
	Breakdown    map[string]int `json:"breakdown"` // category -> percent populated
}

// EnrichmentMetadata is attached to a record and mutated only by the
// enrichment engine.
type EnrichmentMetadata struct {
	Completeness   int          `json:"completeness"`
	Sources        []string     `json:"sources,omitempty"`
	Rounds         int          `json:"rounds"`
	LastEnrichedAt *time.Time   `json:"last_enriched_at,omitempty"`
	Gaps           *GapAnalysis `json:"gaps,omitempty"`
}

// BusinessRecord is the unit of enrichment: a prospective client with
// whatever fields were known at intake. Empty string / zero means absent;
// the engine only ever adds or upgrades fields, never deletes them.
type BusinessRecord struct {
	ID string `json:"id"`

	// Identity
	CompanyName string `json:"company_name"`
	Website     string `json:"website,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	ZipCode     string `json:"zip_code,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`

	// Classification
	Cuisine      string `json:"cuisine,omitempty"`
	ServiceStyle string `json:"service_style,omitempty"`
	PriceTier    string `json:"price_tier,omitempty"`

	// Decision makers
	OwnerName  string `json:"owner_name,omitempty"`
	OwnerEmail string `json:"owner_email,omitempty"`
	OwnerPhone string `json:"owner_phone,omitempty"`

	// Technology
	POSSystem           string `json:"pos_system,omitempty"`
	OnlineOrdering      string `json:"online_ordering,omitempty"`
	ReservationPlatform string `json:"reservation_platform,omitempty"`
	WebsitePlatform     string `json:"website_platform,omitempty"`
	PaymentProcessor    string `json:"payment_processor,omitempty"`

	// Online presence
	FacebookURL      string `json:"facebook_url,omitempty"`
	InstagramURL     string `json:"instagram_url,omitempty"`
	YelpURL          string `json:"yelp_url,omitempty"`
	GoogleProfileURL string `json:"google_profile_url,omitempty"`

	// Reputation
	YelpRating        float64 `json:"yelp_rating,omitempty"`
	YelpReviewCount   int     `json:"yelp_review_count,omitempty"`
	GoogleRating      float64 `json:"google_rating,omitempty"`
	GoogleReviewCount int     `json:"google_review_count,omitempty"`

	PainSignals []PainSignal `json:"pain_signals,omitempty"`

	// Priority is an upstream sales-priority signal (0 = none) used by the
	// batch scheduler to order candidates. Not an enrichable field.
	Priority int `json:"priority,omitempty"`

	Enrichment EnrichmentMetadata `json:"enrichment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
