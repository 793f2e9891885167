package model

import "time"

// OtherOption is the selectedOption value used when the shopper typed a
// free-text answer.
const OtherOption = "other"

// Response is one shopper's answer to one survey for one order. The pair
// (OrderID, SurveyID) identifies it.
type Response struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	SurveyID       string    `json:"surveyId" bson:"surveyId"`
	SelectedOption string    `json:"selectedOption" bson:"selectedOption"`
	OtherText      string    `json:"otherText,omitempty" bson:"otherText,omitempty"`
	OrderID        string    `json:"orderId" bson:"orderId"`
	ClientEmail    string    `json:"clientEmail" bson:"clientEmail"`
	RespondedAt    time.Time `json:"respondedAt" bson:"respondedAt"`
}

// ResponseInput is the payload a shopper submits.
type ResponseInput struct {
	SurveyID       string `json:"surveyId"`
	SelectedOption string `json:"selectedOption"`
	OtherText      string `json:"otherText,omitempty"`
	OrderID        string `json:"orderId"`
	ClientEmail    string `json:"clientEmail"`
}

// ResponseFields lists the stored response fields returned by reads.
var ResponseFields = []string{
	"surveyId", "selectedOption", "otherText", "orderId", "clientEmail", "respondedAt",
}

// ResponseFilter selects one page of a survey's responses. Zero times are
// open bounds.
type ResponseFilter struct {
	SurveyID string
	Page     int
	PageSize int
	DateFrom time.Time
	DateTo   time.Time
}

// ResponsePage is a page of responses. Total is the number of records on
// this page, not across all pages.
type ResponsePage struct {
	Data     []Response `json:"data"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
}
