package lead

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RawRecord is one company as produced by an upstream source scraper. Only
// CompanyName is required; everything else is best-effort.
type RawRecord struct {
	CompanyName        string     `json:"company_name"`
	Email              string     `json:"email,omitempty"`
	Website            string     `json:"website,omitempty"`
	LinkedInProfile    string     `json:"linkedin_profile,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	Address            string     `json:"address,omitempty"`
	Location           string     `json:"location,omitempty"`
	Industry           string     `json:"industry,omitempty"`
	Category           string     `json:"category,omitempty"`
	Source             string     `json:"source,omitempty"`
	Description        string     `json:"description,omitempty"`
	CompanyDescription string     `json:"company_description,omitempty"`
	Specialties        StringList `json:"specialties,omitempty"`
	CompanySize        string     `json:"company_size,omitempty"`
	Headquarters       string     `json:"headquarters,omitempty"`
	FoundedYear        string     `json:"founded_year,omitempty"`

	// Raw keeps the full source object, including keys not modelled above.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known keys and retains the original payload.
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	type plain RawRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode raw record: %w", err)
	}
	*r = RawRecord(p)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Validate reports ErrInvalidRecord when required fields are missing.
func (r RawRecord) Validate() error {
	if strings.TrimSpace(r.CompanyName) == "" {
		return fmt.Errorf("%w: company_name is required", ErrInvalidRecord)
	}
	return nil
}

// Company converts the record into the persisted contact shape. Address
// falls back to location and industry to category.
func (r RawRecord) Company() Company {
	c := Company{
		Name:            strings.TrimSpace(r.CompanyName),
		Email:           r.Email,
		Website:         r.Website,
		LinkedInProfile: r.LinkedInProfile,
		Phone:           r.Phone,
		Address:         firstNonEmpty(r.Address, r.Location),
		Industry:        firstNonEmpty(r.Industry, r.Category),
		Source:          r.Source,
		Raw:             r.Raw,
	}
	if len(c.Raw) == 0 {
		c.Raw = json.RawMessage("{}")
	}
	return c
}

// StringList accepts either a JSON string (comma separated) or an array.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("decode string list: %w", err)
	}
	var out []string
	for _, part := range strings.Split(single, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*s = out
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
