package news

// Categories accepted by the top-headlines endpoint.
var Categories = []string{"business", "entertainment", "general", "health", "science", "sports", "technology"}

// Request is the parameter set of one get_top_headlines call.
type Request struct {
	Query    string `json:"query,omitempty" jsonschema:"description=Keyword or phrase to search headlines for"`
	Country  string `json:"country,omitempty" jsonschema:"description=2-letter country code. Ignored when sources is set,default=us" validate:"omitempty,len=2,alpha"`
	Category string `json:"category,omitempty" jsonschema:"enum=business,enum=entertainment,enum=general,enum=health,enum=science,enum=sports,enum=technology" validate:"omitempty,oneof=business entertainment general health science sports technology"`
	Sources  string `json:"sources,omitempty" jsonschema:"description=Comma-separated list of source identifiers"`
}

// DefaultRequest returns a Request with the defaults a caller gets when it
// leaves a parameter out.
func DefaultRequest() Request {
	return Request{Country: "us"}
}

// normalize drops country when sources is set; the API rejects the pair.
func (r Request) normalize() Request {
	if r.Sources != "" {
		r.Country = ""
	}
	return r
}
