package model

// OptionCount is one bar of the dashboard histogram.
type OptionCount struct {
	Option     string  `json:"option"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Dashboard is the option distribution of a survey, computed on demand.
type Dashboard struct {
	SurveyID       string        `json:"surveyId"`
	Question       string        `json:"question"`
	TotalResponses int           `json:"totalResponses"`
	Distribution   []OptionCount `json:"distribution"`
	// Truncated is set when the scan hit its page ceiling and the tally
	// may undercount.
	Truncated bool `json:"truncated,omitempty"`
}
