// Package chat drives the interactive console conversation with an agent.
package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/soyeahso/toolchat/internal/agent"
	"github.com/soyeahso/toolchat/internal/hooks"
	"github.com/soyeahso/toolchat/internal/logging"
)

const (
	banner      = "🔧 Agent initialized. You can now chat with it (type 'exit' to quit)."
	separator   = "──────────────────────────────────────────────"
	promptText  = "🧑 You: "
	replyPrefix = "🤖 Agent: "
	farewell    = "👋 Exiting chat."
	interrupted = "\n👋 Interrupted. Exiting chat."
)

// Loop reads user lines, forwards them to an agent and prints the replies.
type Loop struct {
	agent agent.Agent
	in    io.Reader
	out   io.Writer
	hooks *hooks.Manager
	log   *logging.Logger
}

// NewLoop creates a chat loop over the given input and output. hooks may be nil.
func NewLoop(a agent.Agent, in io.Reader, out io.Writer, hm *hooks.Manager, log *logging.Logger) *Loop {
	return &Loop{agent: a, in: in, out: out, hooks: hm, log: log.Sub("chat")}
}

type line struct {
	text string
	err  error
}

// Run prompts until the user exits, input ends, or ctx is cancelled.
// Agent failures are printed and the loop continues; only a failure to
// write to the output stops it early with an error.
func (l *Loop) Run(ctx context.Context) error {
	lines := make(chan line)
	next := make(chan struct{})
	stop := make(chan struct{})
	defer close(stop)
	go l.read(lines, next, stop)

	l.hooks.Emit(ctx, hooks.EventChatStart, nil)
	turns := 0
	defer func() {
		l.hooks.Emit(context.WithoutCancel(ctx), hooks.EventChatEnd, map[string]any{"turns": turns})
	}()

	if _, err := fmt.Fprintf(l.out, "%s\n%s\n", banner, separator); err != nil {
		return err
	}

	for {
		if _, err := io.WriteString(l.out, promptText); err != nil {
			return err
		}

		select {
		case next <- struct{}{}:
		case <-ctx.Done():
			return l.say(interrupted)
		}

		var in line
		select {
		case in = <-lines:
		case <-ctx.Done():
			return l.say(interrupted)
		}

		if in.err != nil {
			if !errors.Is(in.err, io.EOF) {
				l.log.Warn().Err(in.err).Msg("reading input")
			}
			return l.say(interrupted)
		}

		text := strings.TrimSpace(in.text)
		switch strings.ToLower(text) {
		case "":
			continue
		case "exit", "quit":
			return l.say(farewell)
		}

		turns++
		reply, err := l.agent.Start(ctx, text)
		if err != nil {
			if ctx.Err() != nil {
				return l.say(interrupted)
			}
			l.log.Debug().Err(err).Msg("agent failed")
			if err := l.say("⚠️ Error: " + err.Error()); err != nil {
				return err
			}
			continue
		}

		if _, err := fmt.Fprintf(l.out, "%s%s\n\n", replyPrefix, reply); err != nil {
			return err
		}
	}
}

// read delivers one line each time the loop asks for one, so no input is
// consumed after the loop stops.
func (l *Loop) read(lines chan<- line, next, stop <-chan struct{}) {
	sc := bufio.NewScanner(l.in)
	for {
		select {
		case <-next:
		case <-stop:
			return
		}

		var in line
		if sc.Scan() {
			in.text = sc.Text()
		} else {
			in.err = sc.Err()
			if in.err == nil {
				in.err = io.EOF
			}
		}

		select {
		case lines <- in:
		case <-stop:
			return
		}
		if in.err != nil {
			return
		}
	}
}

func (l *Loop) say(msg string) error {
	_, err := fmt.Fprintln(l.out, msg)
	return err
}
