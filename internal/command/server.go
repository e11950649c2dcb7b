package command

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taigrr/joplin-cli/internal/prompt"
)

const (
	// MissingTokenMessage is shown when no token is configured.
	MissingTokenMessage = "Joplin token is missing. Copy it from Joplin's Web Clipper options and run: joplin config set token <token>"

	reconnectLabel = "Reconnect"
)

// CheckServer reports whether Joplin can be used. Without a token it only
// tells the user and makes no request. When the server does not answer the
// user may retry until it does or they give up.
func (s *Service) CheckServer(ctx context.Context) bool {
	if s.settings.Token == "" {
		s.prompt.Info(MissingTokenMessage)
		return false
	}

	for {
		ok, err := s.server.Ping(ctx)
		if ok {
			return true
		}
		if ctx.Err() != nil {
			return false
		}

		msg := "Joplin did not answer the ping, is the Web Clipper service enabled?"
		if err != nil {
			msg = fmt.Sprintf("Cannot reach Joplin: %v", err)
		}
		s.logger.Warn("joplin server check failed", zap.Error(err))
		s.prompt.Error(msg)

		picked, ok, perr := s.prompt.Pick(ctx, []prompt.Item{
			{Label: reconnectLabel, Value: reconnectLabel},
		}, prompt.PickOptions{Title: msg})
		if perr != nil || !ok || len(picked) == 0 {
			return false
		}
	}
}
