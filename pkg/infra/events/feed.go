package events

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

// Event type tags on the platform's feed envelope.
const (
	eventMessageCreate = "MESSAGE_CREATE"
	eventMemberRemove  = "GUILD_MEMBER_REMOVE"
)

const reconnectMaxBackoff = 30 * time.Second

//go:generate mockery --name=Sink --dir=. --output=./mocks --filename=event_sink_mock.go --case=underscore --with-expecter
type Sink interface {
	MessageCreated(ctx context.Context, channelID, authorID string, bot bool, at time.Time)
	MemberLeft(ctx context.Context, memberID string)
}

// Feed consumes the platform's websocket event stream and forwards the two
// events the ticket lifecycle cares about: inbound messages (interaction
// tracking) and member departures (owner-left archival). The connection is
// re-dialed with backoff until the context is canceled.
type Feed struct {
	logger *logrus.Logger
	url    string
	token  string
	sink   Sink
	dialer *websocket.Dialer

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewFeed(logger *logrus.Logger, url, token string, sink Sink) *Feed {
	return &Feed{
		logger: logger,
		url:    url,
		token:  token,
		sink:   sink,
		dialer: websocket.DefaultDialer,
	}
}

func (f *Feed) Start(ctx context.Context) {
	ctx, f.cancel = context.WithCancel(ctx)

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.run(ctx)
	}()
}

func (f *Feed) Shutdown() {
	if f.cancel != nil {
		f.cancel()
	}
	f.wg.Wait()
	f.logger.Info("event feed stopped")
}

func (f *Feed) run(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := f.dial(ctx)
		if err != nil {
			f.logger.WithError(err).WithField("url", f.url).Error("event feed dial failed")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff < reconnectMaxBackoff {
				backoff *= 2
			}
			continue
		}

		backoff = time.Second
		f.logger.WithField("url", f.url).Info("event feed connected")
		f.consume(ctx, conn)
	}
}

func (f *Feed) dial(ctx context.Context) (*websocket.Conn, error) {
	headers := map[string][]string{
		"Authorization": {"Bearer " + f.token},
	}
	conn, resp, err := f.dialer.DialContext(ctx, f.url, headers)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// consume reads frames until the connection breaks or the context ends. A
// goroutine watching ctx closes the connection to unblock ReadMessage.
func (f *Feed) consume(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
			_ = conn.Close()
		}
	}()

	var parser fastjson.Parser
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				f.logger.WithError(err).Warn("event feed read failed, reconnecting")
			}
			return
		}
		f.dispatch(ctx, &parser, data)
	}
}

func (f *Feed) dispatch(ctx context.Context, parser *fastjson.Parser, data []byte) {
	v, err := parser.ParseBytes(data)
	if err != nil {
		f.logger.WithError(err).Debug("discarding malformed event frame")
		return
	}

	switch string(v.GetStringBytes("t")) {
	case eventMessageCreate:
		d := v.Get("d")
		if d == nil {
			return
		}
		channelID := string(d.GetStringBytes("channel_id"))
		authorID := string(d.GetStringBytes("author", "id"))
		if channelID == "" || authorID == "" {
			return
		}
		f.sink.MessageCreated(ctx, channelID, authorID, d.GetBool("author", "bot"), time.Now())

	case eventMemberRemove:
		memberID := string(v.GetStringBytes("d", "user", "id"))
		if memberID == "" {
			return
		}
		f.sink.MemberLeft(ctx, memberID)
	}
}
