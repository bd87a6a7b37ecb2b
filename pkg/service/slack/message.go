package slack

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/slack-go/slack"
)

// maxSectionBytes is the Slack limit for section block text
const maxSectionBytes = 3000

// truncateToMaxBytes cuts s to at most maxBytes without splitting a UTF-8 rune
func truncateToMaxBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	const ellipsis = "..."
	cut := maxBytes - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}

func buildBlocks(n *model.Notification, recipientName, riskURL string) []slack.Block {
	title := fmt.Sprintf("*%s* %s", n.RiskCode, n.RiskTitle)
	if riskURL != "" {
		title = fmt.Sprintf("*<%s/%d|%s>* %s", strings.TrimSuffix(riskURL, "/"), n.RiskID, n.RiskCode, n.RiskTitle)
	}

	var body strings.Builder
	body.WriteString(title)
	body.WriteString("\n")
	body.WriteString(n.Message)
	if n.RecipientID != "" {
		fmt.Fprintf(&body, "\nResponsible: <@%s>", n.RecipientID)
	}

	section := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, truncateToMaxBytes(body.String(), maxSectionBytes), false, false),
		nil, nil,
	)

	elements := []slack.MixedElement{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("`%s` in %s", n.Action, n.OrganizationID), false, false),
	}
	if recipientName != "" && recipientName != n.RecipientID {
		elements = append(elements, slack.NewTextBlockObject(slack.PlainTextType, recipientName, false, false))
	}

	return []slack.Block{
		section,
		slack.NewContextBlock("", elements...),
	}
}
