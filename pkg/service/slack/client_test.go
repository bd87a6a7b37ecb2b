package slack_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
	"github.com/secmon-lab/riskflow/pkg/service/slack"
)

type postedMessage struct {
	channel string
	text    string
	blocks  string
}

// fakeSlack serves the Web API methods the notifier calls
type fakeSlack struct {
	mu       sync.Mutex
	posted   []postedMessage
	lookups  int
	failPost bool
}

func (f *fakeSlack) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat.postMessage", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		f.mu.Lock()
		f.posted = append(f.posted, postedMessage{
			channel: r.FormValue("channel"),
			text:    r.FormValue("text"),
			blocks:  r.FormValue("blocks"),
		})
		fail := f.failPost
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if fail {
			_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"channel":"` + r.FormValue("channel") + `","ts":"1700000000.000100"}`))
	})
	mux.HandleFunc("/users.info", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lookups++
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"user":{"id":"U-owner","name":"owner","real_name":"Olivia Owner"}}`))
	})
	return mux
}

func newNotification() *model.Notification {
	return &model.Notification{
		OrganizationID: "acme",
		RiskID:         7,
		RiskCode:       "RISK-0007",
		RiskTitle:      "Unencrypted backups",
		RecipientID:    "U-owner",
		Channel:        "C-grc",
		Action:         types.HistoryAssessmentApproved,
		Message:        `RISK-0007 "Unencrypted backups" was analyzed and needs a treatment decision`,
	}
}

func TestNew(t *testing.T) {
	t.Run("returns error when token is empty", func(t *testing.T) {
		_, err := slack.New("")
		gt.Value(t, err).NotNil()
	})

	t.Run("creates client when token is provided", func(t *testing.T) {
		client, err := slack.New("test-token")
		gt.NoError(t, err).Required()
		gt.Value(t, client).NotNil()
	})
}

func TestClient_Notify(t *testing.T) {
	t.Run("posts to the recipient and the channel", func(t *testing.T) {
		fake := &fakeSlack{}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		client, err := slack.New("test-token", slack.WithAPIURL(srv.URL+"/"))
		gt.NoError(t, err).Required()

		gt.NoError(t, client.Notify(context.Background(), newNotification())).Required()
		gt.NoError(t, client.Notify(context.Background(), newNotification())).Required()

		gt.Array(t, fake.posted).Length(4)
		gt.Value(t, fake.posted[0].channel).Equal("U-owner")
		gt.Value(t, fake.posted[1].channel).Equal("C-grc")
		gt.String(t, fake.posted[0].text).Contains("RISK-0007")
		gt.String(t, fake.posted[0].blocks).Contains("assessment_approved")
		gt.String(t, fake.posted[0].blocks).Contains("Olivia Owner")
		// user names are cached between notifications
		gt.Value(t, fake.lookups).Equal(1)
	})

	t.Run("nothing to send", func(t *testing.T) {
		fake := &fakeSlack{}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		client, err := slack.New("test-token", slack.WithAPIURL(srv.URL+"/"))
		gt.NoError(t, err).Required()

		n := newNotification()
		n.RecipientID = ""
		n.Channel = ""
		gt.NoError(t, client.Notify(context.Background(), n))
		gt.Array(t, fake.posted).Length(0)
	})

	t.Run("api error is returned", func(t *testing.T) {
		fake := &fakeSlack{failPost: true}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		client, err := slack.New("test-token", slack.WithAPIURL(srv.URL+"/"))
		gt.NoError(t, err).Required()

		gt.Value(t, client.Notify(context.Background(), newNotification())).NotNil()
	})
}

func TestBuildBlocks(t *testing.T) {
	n := newNotification()
	blocks := slack.BuildBlocks(n, "Olivia Owner", "https://grc.example.com/risks/")
	gt.Array(t, blocks).Length(2)

	n.Message = strings.Repeat("あ", 2000)
	blocks = slack.BuildBlocks(n, "", "")
	gt.Array(t, blocks).Length(2)
}

func TestTruncateToMaxBytes(t *testing.T) {
	gt.Value(t, slack.TruncateToMaxBytes("short", 10)).Equal("short")

	// each rune is 3 bytes; the cut must not split one
	truncated := slack.TruncateToMaxBytes(strings.Repeat("あ", 10), 10)
	gt.Value(t, truncated).Equal("ああ...")
	gt.B(t, len(truncated) <= 10).True()
}

func TestIntegration(t *testing.T) {
	token := os.Getenv("TEST_SLACK_BOT_TOKEN")
	channel := os.Getenv("TEST_SLACK_CHANNEL_ID")
	if token == "" || channel == "" {
		t.Skip("TEST_SLACK_BOT_TOKEN or TEST_SLACK_CHANNEL_ID is not set")
	}

	client, err := slack.New(token)
	gt.NoError(t, err).Required()

	n := newNotification()
	n.RecipientID = ""
	n.Channel = channel
	gt.NoError(t, client.Notify(context.Background(), n))
}
