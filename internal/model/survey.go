package model

import (
	"strings"
	"time"
)

// MinSurveyOptions is the smallest number of answer options a survey may have.
const MinSurveyOptions = 2

// Survey is a single multiple-choice question shown to shoppers after
// checkout. At most one survey is active at a time.
type Survey struct {
	ID         string   `json:"id" bson:"_id,omitempty"`
	Question   string   `json:"question" bson:"question"`
	Options    []string `json:"options" bson:"options"`
	IsActive   bool     `json:"isActive" bson:"isActive"`
	AllowOther bool     `json:"allowOther" bson:"allowOther"`
	// ResponseCount is a denormalized, best-effort counter. The dashboard
	// tally is authoritative.
	ResponseCount int       `json:"responseCount" bson:"responseCount"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// SurveyInput is the payload for creating or updating a survey. Nil flags
// are left unchanged on update and default to false on create.
type SurveyInput struct {
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	IsActive   *bool    `json:"isActive,omitempty"`
	AllowOther *bool    `json:"allowOther,omitempty"`
}

// Normalize trims the question and options and returns a message for the
// first shape no survey can have, or "" when the input is usable. The
// option count is left to the caller.
func (in *SurveyInput) Normalize() string {
	in.Question = strings.TrimSpace(in.Question)
	if in.Question == "" {
		return "question is required"
	}
	options := make([]string, 0, len(in.Options))
	seen := make(map[string]bool, len(in.Options))
	for _, opt := range in.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return "options must not be empty"
		}
		if seen[opt] {
			return "duplicate option: " + opt
		}
		seen[opt] = true
		options = append(options, opt)
	}
	in.Options = options
	return ""
}

// Activates reports whether the input asks for the survey to be active.
func (in SurveyInput) Activates() bool {
	return in.IsActive != nil && *in.IsActive
}

// StatusInput toggles a survey on or off. IsActive is required.
type StatusInput struct {
	IsActive *bool `json:"isActive"`
}

// SurveyFields lists the stored survey fields returned by reads.
var SurveyFields = []string{
	"question", "options", "isActive", "allowOther", "responseCount", "createdAt", "updatedAt",
}
