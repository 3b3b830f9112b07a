package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/soyeahso/toolchat/internal/logging"
)

// Agent answers a single chat turn.
type Agent interface {
	Start(ctx context.Context, input string) (string, error)
}

// Team runs several agents in sequence on the same input. Each member sees
// the answers of the members before it; the last member's answer is the
// team's answer.
type Team struct {
	members []*Runner
	log     *logging.Logger
}

// NewTeam creates a team from the given runners, in order.
func NewTeam(members []*Runner, log *logging.Logger) *Team {
	return &Team{members: members, log: log.Sub("team")}
}

// Start runs every member and returns the last answer.
func (t *Team) Start(ctx context.Context, input string) (string, error) {
	if len(t.members) == 0 {
		return "", errors.New("team has no members")
	}

	var answers []memberAnswer
	for _, m := range t.members {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		t.log.Debug().Str("agent", m.ID()).Int("prior", len(answers)).Msg("running team member")
		out, err := m.Start(ctx, teamInput(input, answers))
		if err != nil {
			return "", fmt.Errorf("agent %s: %w", m.ID(), err)
		}
		answers = append(answers, memberAnswer{name: m.Name(), text: out})
	}
	return answers[len(answers)-1].text, nil
}

type memberAnswer struct {
	name string
	text string
}

// teamInput appends prior members' answers to the user's input.
func teamInput(input string, prior []memberAnswer) string {
	if len(prior) == 0 {
		return input
	}
	var b strings.Builder
	b.WriteString(input)
	b.WriteString("\n\nAnswers from other agents on your team:\n")
	for _, a := range prior {
		fmt.Fprintf(&b, "\n### %s\n%s\n", a.name, a.text)
	}
	b.WriteString("\nUse them together with your own tools to give the final answer.")
	return b.String()
}
