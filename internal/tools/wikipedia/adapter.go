package wikipedia

import (
	"context"
	"errors"
	"fmt"

	"github.com/soyeahso/toolchat/internal/logging"
	"github.com/soyeahso/toolchat/internal/tools"
)

const (
	DefaultSentences  = 3
	DefaultMaxOptions = 10
)

// Summary is the success payload.
type Summary struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

// Adapter turns a Request into a Summary or a failure value.
type Adapter struct {
	client     Client
	maxOptions int
	sentences  int
	log        *logging.Logger
}

// NewAdapter creates an adapter. Values below 1 select the defaults.
func NewAdapter(client Client, maxOptions, sentences int, log *logging.Logger) *Adapter {
	if maxOptions < 1 {
		maxOptions = DefaultMaxOptions
	}
	if sentences < 1 {
		sentences = DefaultSentences
	}
	return &Adapter{client: client, maxOptions: maxOptions, sentences: sentences, log: log.Sub("wikipedia")}
}

// GetSummary returns Summary on success or *tools.Failure. It never returns
// an error.
func (a *Adapter) GetSummary(ctx context.Context, req Request) any {
	if req.Lang == "" {
		req.Lang = "en"
	}
	if req.Sentences == 0 {
		req.Sentences = a.sentences
	}
	if err := tools.Validate(req); err != nil {
		a.log.Warn().Err(err).Msg("rejected request")
		return tools.NewFailure(tools.KindOther, err.Error())
	}

	a.log.Debug().Str("query", req.Query).Str("lang", req.Lang).Int("sentences", req.Sentences).Msg("fetching summary")

	page, err := a.client.Summary(ctx, req.Lang, req.Query, req.Sentences)
	if err != nil {
		f := a.classify(req.Query, err)
		a.log.Info().Str("query", req.Query).Str("kind", f.Error).Err(err).Msg("summary failed")
		return f
	}

	return Summary{Title: page.Title, Summary: page.Extract, URL: page.URL}
}

// classify maps a client error onto one of the closed failure kinds.
func (a *Adapter) classify(query string, err error) *tools.Failure {
	var dis *DisambiguationError
	switch {
	case errors.As(err, &dis):
		f := tools.NewFailure(tools.KindDisambiguation,
			fmt.Sprintf("Your query '%s' may refer to multiple topics.", query))
		f.Options = dis.Options[:min(len(dis.Options), a.maxOptions)]
		return f
	case errors.Is(err, ErrPageNotFound):
		return tools.NewFailure(tools.KindNotFound, fmt.Sprintf("No page found for '%s'.", query))
	default:
		return tools.NewFailure(tools.KindOther, err.Error())
	}
}
