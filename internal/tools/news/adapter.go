package news

import (
	"context"

	"github.com/soyeahso/toolchat/internal/logging"
	"github.com/soyeahso/toolchat/internal/tools"
)

// DefaultLimit is how many headlines a call returns unless configured.
const DefaultLimit = 10

// Headline is one record of a successful result.
type Headline struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
}

// Adapter turns a Request into headlines or a failure value.
type Adapter struct {
	client Client
	limit  int
	log    *logging.Logger
}

// NewAdapter creates an adapter returning at most limit headlines per call.
// A limit below 1 means DefaultLimit.
func NewAdapter(client Client, limit int, log *logging.Logger) *Adapter {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Adapter{client: client, limit: limit, log: log.Sub("news")}
}

// GetTopHeadlines returns []Headline on success or *tools.Failure of the
// form {"error": msg}. It never returns an error and makes one client call.
func (a *Adapter) GetTopHeadlines(ctx context.Context, req Request) any {
	req = req.normalize()
	if err := tools.Validate(req); err != nil {
		a.log.Warn().Err(err).Msg("rejected request")
		return tools.MessageFailure(err)
	}

	a.log.Debug().
		Str("query", req.Query).
		Str("country", req.Country).
		Str("category", req.Category).
		Str("sources", req.Sources).
		Msg("fetching top headlines")

	articles, err := a.client.TopHeadlines(ctx, Params{
		Query:    req.Query,
		Country:  req.Country,
		Category: req.Category,
		Sources:  req.Sources,
		PageSize: a.limit,
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("top headlines failed")
		return tools.MessageFailure(err)
	}

	n := min(len(articles), a.limit)
	out := make([]Headline, 0, n)
	for _, art := range articles[:n] {
		out = append(out, Headline{
			Title:       art.Title,
			Description: art.Description,
			URL:         art.URL,
			Source:      art.Source.Name,
			PublishedAt: art.PublishedAt,
		})
	}
	a.log.Info().Int("count", len(out)).Int("available", len(articles)).Msg("top headlines fetched")
	return out
}
