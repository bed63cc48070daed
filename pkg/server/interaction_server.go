package server

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opendesk/ticketd/pkg/config"
	handlers "github.com/opendesk/ticketd/pkg/handlers/http"
	"github.com/opendesk/ticketd/pkg/middleware"
	"github.com/opendesk/ticketd/pkg/server/router"
)

type (
	InteractionServerDI struct {
		Config              *config.Config
		Logger              *logrus.Logger
		MiddlewareTransport middleware.Transport
		HandlerTransport    handlers.HandlerTransport
	}
	InteractionServer struct {
		*BaseServer
		middlewareTransport middleware.Transport
		handlerTransport    handlers.HandlerTransport
	}
)

func NewInteractionServer(di InteractionServerDI) *InteractionServer {
	s := &InteractionServer{
		BaseServer:          NewBaseServer(di.Config, di.Logger),
		middlewareTransport: di.MiddlewareTransport,
		handlerTransport:    di.HandlerTransport,
	}

	s.WithRouters(router.NewInteractionRouter(&s.middlewareTransport, s.handlerTransport))
	s.setupHealthCheck()
	s.setupMetricsEndpoint()
	return s
}

func (s *InteractionServer) Run() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("starting interaction server")
	return s.Router.Listen(addr)
}

func (s *InteractionServer) Shutdown() error {
	return s.Router.ShutdownWithTimeout(10 * time.Second)
}
