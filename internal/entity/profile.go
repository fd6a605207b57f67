package entity

// db model
type Profile struct {
	AccountId       string   `json:"accountId" db:"account_id"`
	MinValue        float64  `json:"minValue" db:"min_value"`
	MaxValue        float64  `json:"maxValue" db:"max_value"`
	Countries       []string `json:"countries" db:"countries"`
	CpvCodes        []string `json:"cpvCodes" db:"cpv_codes"`
	CompanySize     string   `json:"companySize" db:"company_size"`
	ExperienceLevel string   `json:"experienceLevel" db:"experience_level"`
	Revision        int      `json:"revision" db:"revision"`
	CreatedAt       string   `json:"createdAt" db:"created_at"`
	UpdatedAt       string   `json:"updatedAt" db:"updated_at"`
}

// service + repo input model
type UpsertProfileInput struct {
	AccountId       string // given by the identity provider
	MinValue        float64
	MaxValue        float64
	Countries       []string
	CpvCodes        []string
	CompanySize     string
	ExperienceLevel string
	// Revision increments automatically on every write
	// CreatedAt/UpdatedAt set automatically
}

// controller model
type ProfileOutputModel struct {
	AccountId       string   `json:"accountId"`
	MinValue        float64  `json:"minValue"`
	MaxValue        float64  `json:"maxValue"`
	Countries       []string `json:"countries"`
	CpvCodes        []string `json:"cpvCodes"`
	CompanySize     string   `json:"companySize"`
	ExperienceLevel string   `json:"experienceLevel"`
	UpdatedAt       string   `json:"updatedAt"`
}

// HasValueRange reports whether the value-range criterion is configured.
// A profile with max = 0 never set a range.
func (p *Profile) HasValueRange() bool {
	return p.MaxValue > 0
}
