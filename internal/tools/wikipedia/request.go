package wikipedia

// Request is the parameter set of one get_wikipedia_summary call.
type Request struct {
	Query     string `json:"query" jsonschema:"required,description=The topic or article title to search for on Wikipedia" validate:"required"`
	Sentences int    `json:"sentences,omitempty" jsonschema:"minimum=1,maximum=10,default=3,description=Number of sentences to return in the summary" validate:"gte=0,lte=10"`
	Lang      string `json:"lang,omitempty" jsonschema:"default=en,description=Language code for Wikipedia" validate:"langcode"`
}

// DefaultRequest returns a Request with the defaults a caller gets when it
// leaves a parameter out. Sentences stays zero and is filled by the adapter.
func DefaultRequest() Request {
	return Request{Lang: "en"}
}
