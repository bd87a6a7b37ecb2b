package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/interfaces"
	"github.com/secmon-lab/riskflow/pkg/service/slack"
	"github.com/secmon-lab/riskflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken string
	riskURL  string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for workflow notifications)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("RISKFLOW_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-risk-url",
			Usage:       "Base URL linked from notifications, e.g. https://grc.example.com/risks",
			Category:    "Slack",
			Destination: &x.riskURL,
			Sources:     cli.EnvVars("RISKFLOW_SLACK_RISK_URL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("risk-url", x.riskURL),
	)
}

// IsEnabled returns true if a bot token is configured
func (x *Slack) IsEnabled() bool {
	return x.botToken != ""
}

// Configure creates the Slack notifier. It returns nil when Slack is not
// configured, which disables notifications.
func (x *Slack) Configure() (interfaces.Notifier, error) {
	if !x.IsEnabled() {
		logging.Default().Info("Slack notification is disabled")
		return nil, nil
	}

	var opts []slack.Option
	if x.riskURL != "" {
		opts = append(opts, slack.WithRiskURL(x.riskURL))
	}
	client, err := slack.New(x.botToken, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create slack notifier")
	}
	return client, nil
}
