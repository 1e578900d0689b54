package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"chatserver-backend/internal/models"
	"chatserver-backend/internal/repositories"
)

var sugar *zap.SugaredLogger
var validate *validator.Validate

var users *repositories.UserRepository
var servers *repositories.ServerRepository
var members *repositories.ServerMemberRepository
var channels *repositories.ChannelRepository
var messages *repositories.MessageRepository
var dms *repositories.DirectMessageRepository

type Repositories struct {
	Users    *repositories.UserRepository
	Servers  *repositories.ServerRepository
	Members  *repositories.ServerMemberRepository
	Channels *repositories.ChannelRepository
	Messages *repositories.MessageRepository
	Dms      *repositories.DirectMessageRepository
}

// Setup wires the handler package and builds the router. The caller owns
// serving it.
func Setup(cfg *models.ConfigFile, _sugar *zap.SugaredLogger, repos Repositories) *chi.Mux {
	sugar = _sugar
	validate = validator.New()

	users = repos.Users
	servers = repos.Servers
	members = repos.Members
	channels = repos.Channels
	messages = repos.Messages
	dms = repos.Dms

	r := chi.NewRouter()
	if cfg.PrintHttpRequests {
		r.Use(middleware.Logger)
	}

	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(RequestTagger)

	r.Route("/api", func(api chi.Router) {
		api.Post("/login", Login)

		api.Route("/users", func(r chi.Router) {
			r.Post("/create", CreateUser)
			r.Get("/", GetUsers)
			r.Get("/{id}", GetUser)
			r.Get("/by_username/{username}", GetUserByUsername)
			r.Put("/{id}", UpdateUser)
			r.Delete("/{id}", DeleteUser)
			r.Get("/{id}/servers", GetServersForUser)
			r.Get("/{id}/dm", GetDmChannelsForUser)
		})

		api.Route("/servers", func(r chi.Router) {
			r.Post("/", CreateServer)
			r.Get("/", GetServers)
			r.Get("/owner/{owner_id}", GetServersByOwner)
			r.Get("/{id}", GetServer)
			r.Put("/{id}", UpdateServer)
			r.Delete("/{id}", DeleteServer)
			r.Get("/{id}/with_members", GetServerWithMembers)
			r.Get("/{id}/members", GetServerMembers)
			r.Post("/{id}/members", AddServerMember)
			r.Put("/{id}/members/{user_id}", UpdateServerMemberNickname)
			r.Delete("/{id}/members/{user_id}", RemoveServerMember)
			r.Get("/{id}/channels", GetServerChannels)
		})

		api.Route("/channels", func(r chi.Router) {
			r.Post("/", CreateChannel)
			r.Get("/{id}", GetChannel)
			r.Put("/{id}", UpdateChannel)
			r.Delete("/{id}", DeleteChannel)
			r.Get("/{id}/messages", GetChannelMessages)
			r.Post("/{id}/messages", CreateMessage)
		})

		api.Route("/messages", func(r chi.Router) {
			r.Put("/{id}", UpdateMessage)
			r.Delete("/{id}", DeleteMessage)
		})

		api.Route("/dm", func(r chi.Router) {
			r.Post("/", CreateOrFindDm)
			r.Delete("/{channel_id}", DeleteDm)
		})
	})

	return r
}
