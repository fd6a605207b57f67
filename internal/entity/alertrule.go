package entity

// db model
type AlertRule struct {
	AccountId string `json:"accountId" db:"account_id"`
	Template  string `json:"template" db:"template"`
	Enabled   bool   `json:"enabled" db:"enabled"`
	Frequency string `json:"frequency" db:"frequency"`
	UpdatedAt string `json:"updatedAt" db:"updated_at"`
}

// service + repo input model
type SetAlertRuleInput struct {
	AccountId string // given by the identity provider
	Template  string // given, must parse to a known template
	Enabled   bool   // given
	Frequency string // given, one of instant/daily/weekly
	// UpdatedAt sets automatically
}

// controller model
type AlertRuleOutputModel struct {
	Template  string `json:"template"`
	Enabled   bool   `json:"enabled"`
	Frequency string `json:"frequency"`
	Premium   bool   `json:"premium"`
}
