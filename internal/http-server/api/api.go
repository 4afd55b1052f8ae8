package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ShopDesk/internal/chat"
	"ShopDesk/internal/config"
	chathandler "ShopDesk/internal/http-server/handlers/chat"
	"ShopDesk/internal/http-server/handlers/console"
	"ShopDesk/internal/http-server/handlers/errors"
	"ShopDesk/internal/http-server/handlers/key"
	"ShopDesk/internal/http-server/handlers/settings"
	"ShopDesk/internal/http-server/middleware/authenticate"
	"ShopDesk/internal/http-server/middleware/timeout"
	"ShopDesk/internal/lib/sl"
	"ShopDesk/internal/ws"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	ws.Authenticator
	chathandler.Core
	console.Core
	settings.Core
	key.Core
	Deps() chat.Deps
}

// New builds the router and serves it. Widget routes are open (the
// conversation id is the capability), console routes sit behind the bearer
// token, and the WebSocket endpoints skip the request timeout.
func New(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(timeout.Timeout(30))
		v1.Use(render.SetContentType(render.ContentTypeJSON))

		v1.Route("/chat", func(r chi.Router) {
			r.Post("/start", chathandler.Start(log, handler))
			r.Get("/files/{file_id}", chathandler.DownloadFile(log, handler))
			r.Route("/{conversation_id}", func(r chi.Router) {
				r.Get("/", chathandler.Get(log, handler))
				r.Get("/messages", chathandler.Messages(log, handler))
				r.Post("/send", chathandler.Send(log, handler))
				r.Post("/send-file", chathandler.SendFile(log, handler))
			})
		})

		v1.Group(func(authed chi.Router) {
			authed.Use(authenticate.New(log, handler))

			authed.Route("/console", func(r chi.Router) {
				r.Get("/conversations", console.List(log, handler))
				r.Get("/roster", console.Roster(log, handler))
				r.Route("/conversations/{conversation_id}", func(r chi.Router) {
					r.Get("/", console.Open(log, handler))
					r.Patch("/", console.Update(log, handler))
					r.Delete("/", console.Purge(log, handler))
					r.Post("/send", console.Send(log, handler))
					r.Post("/send-file", console.SendFile(log, handler))
					r.Post("/read", console.MarkRead(log, handler))
					r.Post("/suggest", console.Suggest(log, handler))
				})
			})

			authed.Route("/settings", func(r chi.Router) {
				r.Get("/auto-reply", settings.Get(log, handler))
				r.Put("/auto-reply", settings.Update(log, handler))
			})

			authed.Route("/key", func(r chi.Router) {
				r.Post("/new", key.Generate(log, handler))
			})
		})
	})

	router.Get("/ws/console", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeAgent(hub, handler, handler.Deps(), log, w, r)
	})
	router.Get("/ws/chat/{conversation_id}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeCustomer(hub, handler.Deps(), log, w, r, chi.URLParam(r, "conversation_id"))
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
