package gemini

// promptData represents the data passed to the prompt template
type promptData struct {
	Title   string
	Type    string
	Tags    []string
	Content string
}

// ResponseSchema represents the JSON object the model is asked to return.
type ResponseSchema struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}
