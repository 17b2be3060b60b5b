// Package notify publishes release and deployment lifecycle events to NATS.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lerenn/release-manager/pkg/extension"
	"github.com/lerenn/release-manager/pkg/hooks"
	"github.com/nats-io/nats.go"
)

// Name is the extension name of the notifier.
const Name = "nats-notify"

// DefaultSubject prefixes every event subject.
const DefaultSubject = "relm.events"

const publishTimeout = 5 * time.Second

// ErrPublish wraps failures to deliver an event.
var ErrPublish = errors.New("failed to publish event")

// Config configures the notifier.
type Config struct {
	URL      string `yaml:"nats_url,omitempty"`
	Subject  string `yaml:"subject,omitempty"`
	Required bool   `yaml:"required,omitempty"`
}

// Publisher delivers raw messages.
type Publisher interface {
	Publish(subject string, data []byte) error
	Close()
}

// Dialer connects a Publisher.
type Dialer func(url string) (Publisher, error)

// DialNATS connects to a NATS server.
func DialNATS(url string) (Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("relm"), nats.Timeout(publishTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &natsPublisher{conn: conn}, nil
}

type natsPublisher struct {
	conn *nats.Conn
}

func (p *natsPublisher) Publish(subject string, data []byte) error {
	if err := p.conn.Publish(subject, data); err != nil {
		return err
	}
	return p.conn.FlushTimeout(publishTimeout)
}

func (p *natsPublisher) Close() {
	p.conn.Close()
}

// Event is the message body.
type Event struct {
	Hook      string                 `json:"hook"`
	Timestamp time.Time              `json:"timestamp"`
	Fields    map[string]interface{} `json:"fields"`
}

// Notifier is a built-in extension forwarding lifecycle hooks to NATS subjects
// named <subject>.<hook>. Unless Required is set, delivery failures are logged and
// never fail the deployment or publish being observed.
type Notifier struct {
	cfg    Config
	dial   Dialer
	pub    Publisher
	handle *extension.Handle
}

// New creates a notifier. A nil dial uses DialNATS.
func New(cfg Config, dial Dialer) *Notifier {
	if dial == nil {
		dial = DialNATS
	}
	return &Notifier{cfg: cfg, dial: dial}
}

// Name implements extension.Extension.
func (n *Notifier) Name() string { return Name }

// Description implements extension.Described.
func (n *Notifier) Description() string { return "Publishes lifecycle events to NATS" }

// Configure fills unset fields from the nats_url, subject and required settings.
func (n *Notifier) Configure(settings map[string]interface{}) error {
	if v, ok := settings["nats_url"].(string); ok && n.cfg.URL == "" {
		n.cfg.URL = v
	}
	if v, ok := settings["subject"].(string); ok && n.cfg.Subject == "" {
		n.cfg.Subject = v
	}
	if v, ok := settings["required"].(bool); ok {
		n.cfg.Required = n.cfg.Required || v
	}
	if n.cfg.Subject == "" {
		n.cfg.Subject = DefaultSubject
	}
	return nil
}

// Initialize connects and subscribes to the lifecycle hooks. Without a URL the notifier stays idle.
func (n *Notifier) Initialize(h *extension.Handle) error {
	n.handle = h
	if n.cfg.URL == "" {
		h.Logf("no NATS URL configured, notifications disabled")
		return nil
	}

	pub, err := n.dial(n.cfg.URL)
	if err != nil {
		return err
	}
	n.pub = pub

	for _, name := range []string{hooks.AfterDeploy, hooks.OnError, hooks.AfterPublish, hooks.OnPublishError} {
		if err := h.RegisterCallback(name, n.forward); err != nil {
			return err
		}
	}
	return nil
}

// Destroy closes the connection.
func (n *Notifier) Destroy() error {
	if n.pub != nil {
		n.pub.Close()
		n.pub = nil
	}
	return nil
}

func (n *Notifier) forward(_ context.Context, hc *hooks.Context) error {
	subject := fmt.Sprintf("%s.%s", n.cfg.Subject, hc.Hook)
	data, err := json.Marshal(Event{Hook: hc.Hook, Timestamp: time.Now().UTC(), Fields: hc.Fields()})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}

	if err := n.pub.Publish(subject, data); err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrPublish, subject, err)
		if n.cfg.Required {
			return err
		}
		n.handle.Logf("%v", err)
	}
	return nil
}
