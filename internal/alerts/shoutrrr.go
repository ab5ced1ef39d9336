package alerts

import (
	"context"
	"io"
	"log"
	"net/url"
	"strings"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

// ShoutrrrNotifier sends alerts through every configured shoutrrr service URL
// (Slack, Telegram, SMTP and so on).
type ShoutrrrNotifier struct {
	urls   []string
	sender *router.ServiceRouter
}

// NewShoutrrrNotifier validates the service URLs in cfg and builds a sender.
func NewShoutrrrNotifier(cfg *conf.ShoutrrrSettings) (*ShoutrrrNotifier, error) {
	if len(cfg.URLs) == 0 {
		return nil, errors.Newf("at least one shoutrrr URL is required").
			Component("alerts").
			Category(errors.CategoryConfiguration).
			Build()
	}

	sender, err := shoutrrr.CreateSender(cfg.URLs...)
	if err != nil {
		return nil, errors.New(redactURLs(err, cfg.URLs)).
			Component("alerts").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if cfg.Timeout > 0 {
		sender.Timeout = cfg.Timeout
	}
	sender.SetLogger(log.New(io.Discard, "", 0))

	return &ShoutrrrNotifier{urls: cfg.URLs, sender: sender}, nil
}

func (n *ShoutrrrNotifier) Name() string { return "shoutrrr" }

// Send delivers a to every service. The router enforces its own timeout;
// ctx only short-circuits when it is already done.
func (n *ShoutrrrNotifier) Send(ctx context.Context, a Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := stypes.Params{}
	params.SetTitle(a.Title())

	var failures []error
	for _, err := range n.sender.Send(a.Message(), &params) {
		if err != nil {
			failures = append(failures, redactURLs(err, n.urls))
		}
	}
	if len(failures) > 0 {
		return errors.New(errors.Join(failures...)).
			Component("alerts").
			Category(errors.CategoryNotification).
			Context("notifier", n.Name()).
			Build()
	}
	return nil
}

func (n *ShoutrrrNotifier) Close() error { return nil }

// redactedError hides service URLs, which carry tokens and passwords, from
// error text.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redactURLs(err error, urls []string) error {
	msg := err.Error()
	for _, raw := range urls {
		msg = strings.ReplaceAll(msg, raw, redactURL(raw))
	}
	return &redactedError{msg: msg, err: err}
}

// redactURL keeps only the scheme, e.g. "telegram://***".
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return "***"
	}
	return u.Scheme + "://***"
}
