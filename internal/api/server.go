package api

import (
	"fmt"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/vietanh2810/election-admin/docs"
	v1 "github.com/vietanh2810/election-admin/internal/api/handler/v1"
	"github.com/vietanh2810/election-admin/internal/api/middleware"
	"github.com/vietanh2810/election-admin/internal/config"
	"github.com/vietanh2810/election-admin/internal/repository"
	"github.com/vietanh2810/election-admin/internal/repository/dao"
	"github.com/vietanh2810/election-admin/internal/service"
	"github.com/vietanh2810/election-admin/internal/web"
)

// UserRepository is everything the account services need from storage.
type UserRepository interface {
	service.AuthUserRepository
	service.UserRepository
}

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
	// Hub must be started with Run before clients can subscribe.
	Hub *v1.EventHub

	sessions *middleware.Authenticator
}

func NewServer(conf *config.AppConfig, db *gorm.DB) (*Server, error) {
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	electionRepo := repository.NewElectionRepository(dao.NewElectionDAO(db))

	return NewServerWithRepositories(conf, userRepo, electionRepo)
}

// NewServerWithRepositories builds the server on top of any storage, which
// lets tests run it against in-memory repositories.
func NewServerWithRepositories(conf *config.AppConfig, userRepo UserRepository, electionRepo service.ElectionRepository) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("web.Templates -> %w", err)
	}
	engine.SetHTMLTemplate(tmpl)

	s := &Server{
		Config:   conf,
		Router:   engine,
		Hub:      v1.NewEventHub(),
		sessions: middleware.NewAuthenticator(conf.API.JWTSigningKey, conf.API.SessionTTL, conf.API.SecureCookies),
	}

	s.MountMiddlewares()

	userSvc := service.NewUserService(userRepo)
	electionSvc := service.NewElectionService(electionRepo, s.Hub)

	authHandler := s.initAuthHandler(userRepo)
	electionHandler := v1.NewElectionHandler(electionSvc, userSvc)
	eventHandler := v1.NewEventHandler(s.Hub, electionSvc, userSvc)
	s.MountHandlers(authHandler, electionHandler, eventHandler)

	return s, nil
}

func (s *Server) initAuthHandler(repo service.AuthUserRepository) *v1.AuthHandler {
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(svc, s.sessions)

	return handler
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.RequestLogger())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, electionHandler *v1.ElectionHandler, eventHandler *v1.EventHandler) {
	s.Router.GET("/", v1.HandleRoot)
	s.Router.GET("/health", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := s.Router.Group("")
	{
		auth.GET("/signup", authHandler.HandleSignupPage)
		auth.GET("/login", authHandler.HandleLoginPage)
		auth.POST("/users", authHandler.HandleSignup)
		auth.POST("/session",
			middleware.RateLimit(s.Config.API.LoginRatePerMinute, s.Config.API.LoginBurst),
			authHandler.HandleLogin,
		)
		auth.GET("/signout", authHandler.HandleSignout)
	}

	admin := s.Router.Group("", s.sessions.RequireSession())
	{
		admin.GET("/home", electionHandler.HandleHome)
		admin.GET("/elections/new", electionHandler.HandleNewElectionPage)

		admin.GET("/election", electionHandler.HandleListElections)
		admin.POST("/election", electionHandler.HandleCreateElection)
		admin.GET("/election/:electionID", electionHandler.HandleGetElection)
		admin.POST("/election/:electionID", electionHandler.HandleRenameElection)
		admin.DELETE("/election/:electionID", electionHandler.HandleDeleteElection)
		admin.GET("/election/:electionID/launch", electionHandler.HandleLaunchElection)
		admin.PUT("/election/:electionID/launch", electionHandler.HandleLaunchElection)
		admin.PUT("/election/:electionID/end", electionHandler.HandleEndElection)
		admin.GET("/election/:electionID/events", eventHandler.HandleEvents)

		admin.GET("/election/:electionID/questions", electionHandler.HandleListQuestions)
		admin.POST("/election/:electionID/questions/add", electionHandler.HandleAddQuestion)
		admin.GET("/election/:electionID/question/:questionID", electionHandler.HandleGetQuestion)
		admin.DELETE("/election/:electionID/question/:questionID", electionHandler.HandleDeleteQuestion)
		admin.GET("/election/:electionID/question/:questionID/edit", electionHandler.HandleEditQuestionPage)
		admin.POST("/election/:electionID/question/:questionID/update", electionHandler.HandleUpdateQuestion)

		admin.GET("/election/:electionID/question/:questionID/options", electionHandler.HandleListOptions)
		admin.POST("/election/:electionID/question/:questionID/options/add", electionHandler.HandleAddOption)
		admin.DELETE("/election/:electionID/question/:questionID/option/:optionID", electionHandler.HandleDeleteOption)
		admin.GET("/election/:electionID/question/:questionID/option/:optionID/edit", electionHandler.HandleEditOptionPage)
		admin.POST("/election/:electionID/question/:questionID/option/:optionID/update", electionHandler.HandleUpdateOption)
	}

	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Title = "Election Admin"
	docs.SwaggerInfo.Description = "Admin console for drafting, launching and ending elections."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
