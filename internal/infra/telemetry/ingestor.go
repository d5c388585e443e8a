package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/yanqian/tapmon/internal/domain/auth"
	"github.com/yanqian/tapmon/internal/domain/vitals"
	apperrors "github.com/yanqian/tapmon/pkg/errors"
)

const (
	wildcard       = "+"
	recordTimeout  = 5 * time.Second
	disconnectWait = 250 // milliseconds
)

// Config describes the broker connection.
type Config struct {
	BrokerURL      string
	ClientID       string
	Username       string
	Password       string
	Topic          string
	QoS            byte
	ConnectTimeout time.Duration
}

// Recorder stores decoded readings.
type Recorder interface {
	Record(ctx context.Context, userID int64, req vitals.RecordRequest) (vitals.RecordResponse, error)
}

// UserLookup resolves the account a device topic names. Broker ACLs decide who
// may publish on a topic; readings are only stored for accounts that exist.
type UserLookup interface {
	Profile(ctx context.Context, userID int64) (auth.UserView, error)
}

// payload is the JSON body published by devices.
type payload struct {
	Temperature *vitals.Measurement `json:"temperature"`
	HeartRate   *vitals.Measurement `json:"heartRate"`
	RecordedAt  *time.Time          `json:"recordedAt,omitempty"`
}

// Ingestor subscribes to device topics and records their readings.
type Ingestor struct {
	cfg      Config
	recorder Recorder
	users    UserLookup
	logger   *slog.Logger
	userSeg  int

	mu     sync.Mutex
	client mqtt.Client
	ctx    context.Context
	cancel context.CancelFunc
}

// NewIngestor validates the topic filter and builds an ingestor.
func NewIngestor(cfg Config, recorder Recorder, users UserLookup, logger *slog.Logger) (*Ingestor, error) {
	seg, err := userSegment(cfg.Topic)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.BrokerURL) == "" {
		return nil, errors.New("mqtt broker url cannot be empty")
	}
	if recorder == nil || users == nil {
		return nil, errors.New("telemetry ingestor needs a recorder and a user lookup")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Ingestor{
		cfg:      cfg,
		recorder: recorder,
		users:    users,
		logger:   logger.With("component", "telemetry.ingestor"),
		userSeg:  seg,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start connects to the broker. Subscriptions are renewed on every reconnect.
func (i *Ingestor) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(i.cfg.BrokerURL)
	clientID := i.cfg.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("tapmon-%d", time.Now().UnixNano())
	}
	opts.SetClientID(clientID)
	if i.cfg.Username != "" {
		opts.SetUsername(i.cfg.Username)
		opts.SetPassword(i.cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(i.cfg.ConnectTimeout)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		token := c.Subscribe(i.cfg.Topic, i.cfg.QoS, i.handleMessage)
		if !token.WaitTimeout(i.cfg.ConnectTimeout) || token.Error() != nil {
			i.logger.Error("mqtt subscribe failed", "topic", i.cfg.Topic, "error", token.Error())
			return
		}
		i.logger.Info("mqtt subscribed", "topic", i.cfg.Topic)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		i.logger.Warn("mqtt connection lost", "error", err)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect mqtt broker: %w", err)
	}

	i.mu.Lock()
	i.client = client
	i.mu.Unlock()
	i.logger.Info("mqtt connected", "broker", i.cfg.BrokerURL)
	return nil
}

// Stop unsubscribes and disconnects. In-flight records are cancelled.
func (i *Ingestor) Stop() {
	i.cancel()
	i.mu.Lock()
	client := i.client
	i.client = nil
	i.mu.Unlock()
	if client == nil {
		return
	}
	if client.IsConnected() {
		client.Unsubscribe(i.cfg.Topic).WaitTimeout(time.Second)
	}
	client.Disconnect(disconnectWait)
	i.logger.Info("mqtt disconnected")
}

func (i *Ingestor) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	userID, err := i.userID(msg.Topic())
	if err != nil {
		i.logger.Warn("dropping telemetry message", "topic", msg.Topic(), "error", err)
		return
	}
	var body payload
	if err := json.Unmarshal(msg.Payload(), &body); err != nil {
		i.logger.Warn("dropping malformed telemetry payload", "topic", msg.Topic(), "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(i.ctx, recordTimeout)
	defer cancel()
	if _, err := i.users.Profile(ctx, userID); err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			i.logger.Warn("dropping telemetry for unknown user", "topic", msg.Topic(), "user_id", userID)
		} else {
			i.logger.Error("telemetry user lookup failed", "user_id", userID, "error", err)
		}
		return
	}
	resp, err := i.recorder.Record(ctx, userID, vitals.RecordRequest{
		Temperature: body.Temperature,
		HeartRate:   body.HeartRate,
		RecordedAt:  body.RecordedAt,
		Source:      vitals.SourceDevice,
	})
	if err != nil {
		i.logger.Warn("telemetry reading rejected", "user_id", userID, "error", err)
		return
	}
	i.logger.Debug("telemetry reading stored", "user_id", userID, "reading_id", resp.Reading.ID)
}

func (i *Ingestor) userID(topic string) (int64, error) {
	parts := strings.Split(topic, "/")
	if i.userSeg >= len(parts) {
		return 0, fmt.Errorf("topic %q has no user segment", topic)
	}
	id, err := strconv.ParseInt(parts[i.userSeg], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("topic %q has invalid user id %q", topic, parts[i.userSeg])
	}
	return id, nil
}

// userSegment returns the index of the single "+" level in filter.
func userSegment(filter string) (int, error) {
	parts := strings.Split(strings.TrimSpace(filter), "/")
	idx := -1
	for n, p := range parts {
		switch p {
		case wildcard:
			if idx >= 0 {
				return 0, fmt.Errorf("topic filter %q must contain exactly one %q level", filter, wildcard)
			}
			idx = n
		case "#":
			return 0, fmt.Errorf("topic filter %q cannot use multi-level wildcards", filter)
		}
	}
	if idx < 0 {
		return 0, fmt.Errorf("topic filter %q must contain a %q level for the user id", filter, wildcard)
	}
	return idx, nil
}
