package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/advice"
	"github.com/trezcool/classroom/core/announcement"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/course"
	"github.com/trezcool/classroom/core/selection"
	"github.com/trezcool/classroom/core/submission"
	"github.com/trezcool/classroom/core/user"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		MailSvc        core.EmailService
		DisableReqLogs bool

		UserSvc         *user.Service
		CourseSvc       *course.Service
		AssignmentSvc   *assignment.Service
		SubmissionSvc   *submission.Service
		Grader          *submission.Grader
		AnnouncementSvc *announcement.Service
		SelectionSvc    *selection.Service
		AdviceSvc       *advice.Service
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		jwt      middleware.JWTConfig
		errors   chan error
		shutdown chan os.Signal
		nowFunc  func() time.Time
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) *Server {
	vala.BeginValidation().Validate(
		vala.IsNotNil(deps.Conf, "deps.Conf"),
		vala.IsNotNil(deps.Logger, "deps.Logger"),
		vala.IsNotNil(deps.Validate, "deps.Validate"),
		vala.IsNotNil(deps.Translator, "deps.Translator"),
		vala.IsNotNil(deps.MailSvc, "deps.MailSvc"),
		vala.IsNotNil(deps.UserSvc, "deps.UserSvc"),
		vala.IsNotNil(deps.CourseSvc, "deps.CourseSvc"),
		vala.IsNotNil(deps.AssignmentSvc, "deps.AssignmentSvc"),
		vala.IsNotNil(deps.SubmissionSvc, "deps.SubmissionSvc"),
		vala.IsNotNil(deps.Grader, "deps.Grader"),
		vala.IsNotNil(deps.AnnouncementSvc, "deps.AnnouncementSvc"),
		vala.IsNotNil(deps.SelectionSvc, "deps.SelectionSvc"),
		vala.IsNotNil(deps.AdviceSvc, "deps.AdviceSvc"),
	).CheckAndPanic()

	s := &Server{
		deps:     deps,
		app:      echo.New(),
		jwt:      newJWTConfig(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
		nowFunc:  core.UTCNow,
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	if conf.Debug {
		s.app.Logger.SetLevel(log.DEBUG)
	} else {
		s.app.Logger.SetLevel(log.WARN)
	}

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.jwt)

	registerUserAPI(v1, jwt, s)
	registerDashboardAPI(v1, jwt, s)
	registerCourseAPI(v1, jwt, s)
	registerClassesAPI(v1, jwt, s)
	registerAssignmentAPI(v1, jwt, s)
	registerAnnouncementAPI(v1, jwt, s)
	registerStudyPlanAPI(v1, jwt, s)
}

// Start listens on the configured host. Listener failures are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Classroom API!")
}
