package mqtt

import (
	"context"
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/newbridge/pkg/bridge"
)

// Publisher publishes handshake progress of a device:
//
//	newbridge/<id>/online    "1" while running, "0" as will and on exit (retained)
//	newbridge/<id>/phase     current phase name
//	newbridge/<id>/handshake last Report as JSON (retained)
type Publisher struct {
	Queue    *Queue
	DeviceID string
	Timeout  time.Duration
}

// DefaultPublishTimeout bounds waiting for a publish to be acknowledged.
const DefaultPublishTimeout = 2 * time.Second

// Report is the JSON payload of the handshake topic.
type Report struct {
	bridge.Result
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPublisher creates a Publisher for the broker URL.
func NewPublisher(brokerURL, deviceID string) (*Publisher, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	p := &Publisher{DeviceID: deviceID, Timeout: DefaultPublishTimeout}
	opts.SetWill(topicPrefix+p.topic("online"), "0", 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("newbridge:" + deviceID)
	}
	p.Queue = NewQueue(opts, topicPrefix)
	p.Queue.OnConnect = func(q *Queue) {
		q.PubWith(p.topic("online"), []byte("1"), 1, true)
	}
	return p, nil
}

func (p *Publisher) topic(name string) string {
	return "newbridge/" + p.DeviceID + "/" + name
}

// Connect connects to the broker and waits for the result.
func (p *Publisher) Connect(ctx context.Context) error {
	return p.wait(ctx, p.Queue.Connect())
}

// Publish publishes the result of a handshake.
func (p *Publisher) Publish(ctx context.Context, res bridge.Result) error {
	payload, err := json.Marshal(&Report{
		Result:    res,
		Status:    res.Status().String(),
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return p.wait(ctx, p.Queue.PubWith(p.topic("handshake"), payload, 1, true))
}

// Name implements framework.Named.
func (p *Publisher) Name() string {
	return "mqtt"
}

// Run implements framework.Runnable. It keeps the connection until ctx is
// done, then marks the device offline.
func (p *Publisher) Run(ctx context.Context) error {
	<-ctx.Done()
	offCtx, cancel := context.WithTimeout(context.Background(), p.timeout())
	defer cancel()
	if err := p.wait(offCtx, p.Queue.PubWith(p.topic("online"), []byte("0"), 1, true)); err != nil {
		glog.Warningf("mqtt offline status: %v", err)
	}
	p.Queue.Close()
	return ctx.Err()
}

// PhaseChanged implements bridge.Observer.
func (p *Publisher) PhaseChanged(phase bridge.Phase) {
	p.Queue.PubWith(p.topic("phase"), []byte(phase.String()), 0, false)
}

// RoundCompleted implements bridge.Observer.
func (p *Publisher) RoundCompleted(int, bool) {}

// HandshakeDone implements bridge.Observer.
func (p *Publisher) HandshakeDone(res bridge.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout())
	defer cancel()
	if err := p.Publish(ctx, res); err != nil {
		glog.Errorf("mqtt publish handshake: %v", err)
	}
}

func (p *Publisher) timeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return DefaultPublishTimeout
}

func (p *Publisher) wait(ctx context.Context, token paho.Token) error {
	for !token.WaitTimeout(50 * time.Millisecond) {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return token.Error()
}
