// Package lead defines the core types shared across the harvesting subsystems.
package lead

import (
	"encoding/json"
	"time"
)

// EmailType classifies a professional address by its local-part prefix.
type EmailType string

// Email types assigned by the extractor.
const (
	EmailTypeGeneral   EmailType = "general"
	EmailTypeSupport   EmailType = "support"
	EmailTypeSales     EmailType = "sales"
	EmailTypeMarketing EmailType = "marketing"
	EmailTypeHR        EmailType = "hr"
	EmailTypeLegal     EmailType = "legal"
	EmailTypeAdmin     EmailType = "admin"
	EmailTypeNoReply   EmailType = "noreply"
)

// Industry is one of the fixed industry categories.
type Industry string

// Industry categories in declaration order. Order matters for tie-breaking.
const (
	IndustryTechnology         Industry = "technology"
	IndustryHealthcare         Industry = "healthcare"
	IndustryFinance            Industry = "finance"
	IndustryManufacturing      Industry = "manufacturing"
	IndustryRetail             Industry = "retail"
	IndustryEducation          Industry = "education"
	IndustryRealEstate         Industry = "real_estate"
	IndustryMediaEntertainment Industry = "media_entertainment"
	IndustryConsulting         Industry = "consulting"
	IndustryNonProfit          Industry = "non_profit"
)

// DecisionMakerType is the role tag assigned to a decision maker.
type DecisionMakerType string

// Decision maker role tags.
const (
	RoleExecutive      DecisionMakerType = "executive"
	RoleMarketing      DecisionMakerType = "marketing"
	RoleSales          DecisionMakerType = "sales"
	RoleTechnology     DecisionMakerType = "technology"
	RoleFinance        DecisionMakerType = "finance"
	RoleOperations     DecisionMakerType = "operations"
	RoleHumanResources DecisionMakerType = "human_resources"
	RoleOther          DecisionMakerType = "other"
)

// Company size brackets.
const (
	Size1to10     = "1-10 employees"
	Size11to50    = "11-50 employees"
	Size51to200   = "51-200 employees"
	Size201to500  = "201-500 employees"
	Size501to1000 = "501-1000 employees"
	Size1001to5k  = "1001-5000 employees"
	Size5kPlus    = "5000+ employees"

	SizeStartup      = "1-50 employees"
	SizeSmallMid     = "11-200 employees"
	SizeMid          = "51-1000 employees"
	SizeLarge        = "201-5000+ employees"
	SizeUnknown      = "Unknown"
	DefaultCountry   = "United States"
	EnrichmentSource = "lead_enrichment"
)

// Company is a scraped business. Empty strings mean the field is absent.
type Company struct {
	ID              int64           `json:"id"`
	Name            string          `json:"company_name"`
	Email           string          `json:"email,omitempty"`
	Website         string          `json:"website,omitempty"`
	LinkedInProfile string          `json:"linkedin_profile,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	Address         string          `json:"address,omitempty"`
	Industry        string          `json:"industry,omitempty"`
	Source          string          `json:"source,omitempty"`
	Raw             json.RawMessage `json:"raw_data,omitempty"`
	ScrapedAt       time.Time       `json:"scraped_at"`
}

// EmailCandidate is a transient extraction result.
type EmailCandidate struct {
	Email      string    `json:"email"`
	Type       EmailType `json:"email_type"`
	Confidence float64   `json:"confidence_score"`
	SourcePage string    `json:"source_page,omitempty"`
	Verified   bool      `json:"is_verified"`
}

// CompanyEmail is the stored form of a candidate, unique per (company, email).
type CompanyEmail struct {
	ID        int64 `json:"id"`
	CompanyID int64 `json:"company_id"`
	EmailCandidate
	ExtractedAt time.Time `json:"extracted_at"`
}

// DecisionMaker is a named or synthesized contact at a company.
type DecisionMaker struct {
	Name            string            `json:"name"`
	JobTitle        string            `json:"job_title"`
	Type            DecisionMakerType `json:"decision_maker_type"`
	Email           string            `json:"email,omitempty"`
	LinkedInProfile string            `json:"linkedin_profile,omitempty"`
	Bio             string            `json:"bio,omitempty"`
	Generic         bool              `json:"is_generic"`
}

// EnrichmentRecord aggregates secondary metadata for one company.
type EnrichmentRecord struct {
	CompanyID            int64           `json:"company_id"`
	IndustryCategory     Industry        `json:"industry_category,omitempty"`
	IndustryConfidence   *float64        `json:"industry_confidence,omitempty"`
	Subcategory          string          `json:"subcategory,omitempty"`
	CompanySize          string          `json:"company_size,omitempty"`
	EstimatedCompanySize string          `json:"estimated_company_size,omitempty"`
	FoundedYear          string          `json:"founded_year,omitempty"`
	Headquarters         string          `json:"headquarters,omitempty"`
	City                 string          `json:"city,omitempty"`
	State                string          `json:"state,omitempty"`
	ZipCode              string          `json:"zip_code,omitempty"`
	Country              string          `json:"country,omitempty"`
	Description          string          `json:"company_description,omitempty"`
	Specialties          []string        `json:"specialties"`
	DecisionMakers       []DecisionMaker `json:"decision_makers"`
	Source               string          `json:"enrichment_source"`
	Score                float64         `json:"enrichment_score"`
	EnrichedAt           time.Time       `json:"enriched_at"`
}

// EmailValidationResult is the outcome of the format/DNS/SMTP pipeline.
type EmailValidationResult struct {
	EmailID        int64      `json:"email_id"`
	Email          string     `json:"email"`
	Valid          bool       `json:"is_valid"`
	Method         string     `json:"validation_method"`
	SMTPResponse   string     `json:"smtp_response"`
	DNSCheck       bool       `json:"dns_check"`
	MXRecordExists bool       `json:"mx_record_exists"`
	Score          float64    `json:"validation_score"`
	SpamScore      float64    `json:"spam_score"`
	FormatValid    bool       `json:"format_valid"`
	DNSValid       bool       `json:"dns_valid"`
	SMTPValid      bool       `json:"smtp_valid"`
	Notes          []string   `json:"notes"`
	LastChecked    time.Time  `json:"last_checked"`
	NextCheckDate  *time.Time `json:"next_check_date,omitempty"`
}

// LeadQualityScore holds the composite and component scores for a company.
type LeadQualityScore struct {
	CompanyID        int64     `json:"company_id"`
	Overall          float64   `json:"overall_score"`
	DomainAuthority  float64   `json:"domain_authority_score"`
	LinkedInPresence float64   `json:"linkedin_presence_score"`
	EmailQuality     float64   `json:"email_quality_score"`
	Completeness     float64   `json:"company_info_completeness"`
	Spam             float64   `json:"spam_score"`
	UpdatedAt        time.Time `json:"last_updated"`
}

// ScoredLead joins a company with its quality scores.
type ScoredLead struct {
	Company
	Score LeadQualityScore `json:"scores"`
}

// DomainEmail is a stored email annotated with its company name.
type DomainEmail struct {
	CompanyEmail
	CompanyName string `json:"company_name"`
}

// EnrichedLead joins a company with its enrichment record.
type EnrichedLead struct {
	Company
	Enrichment EnrichmentRecord `json:"enrichment"`
}

// EnrichedFilter narrows SearchEnriched. Empty fields are ignored.
type EnrichedFilter struct {
	Industry    string
	CompanySize string
	Location    string
	Limit       int
}
