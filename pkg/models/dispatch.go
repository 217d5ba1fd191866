package models

// PostOutcome records the result of dispatching one scheduled post
type PostOutcome struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// DispatchSummary aggregates the results of one dispatch pass
type DispatchSummary struct {
	SuccessfulPosts int           `json:"successful_posts"`
	FailedPosts     int           `json:"failed_posts"`
	Processed       []PostOutcome `json:"processed_tweets"`
}

// DispatchResponse is the HTTP body returned by the dispatch trigger
type DispatchResponse struct {
	Message         string        `json:"message"`
	SuccessfulPosts int           `json:"successful_posts"`
	FailedPosts     int           `json:"failed_posts"`
	Processed       []PostOutcome `json:"processed_tweets"`
}
