package model

// PaywalledContent is the content value newsdata.io returns for articles whose
// body is restricted to paid plans.
const PaywalledContent = "ONLY AVAILABLE IN PAID PLANS"

// NoContent replaces article content that is paywalled or missing.
const NoContent = "No content available."

// NoHeadline replaces a missing article title in prompts.
const NoHeadline = "No headline"

// NewsArticle is a normalized search result. Empty fields mean the API did not
// provide them.
type NewsArticle struct {
	Headline string `json:"headline"`
	Content  string `json:"content"`
	Source   string `json:"source"`
}

// NewsTopic groups the articles returned for one keyword, in API order.
type NewsTopic struct {
	Keyword  string        `json:"keyword"`
	Articles []NewsArticle `json:"articles"`
}
