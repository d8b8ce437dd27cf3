package main

import (
	"context"
	"expvar"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/classroom/apps/api/echo"
	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/advice"
	"github.com/trezcool/classroom/core/announcement"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/course"
	"github.com/trezcool/classroom/core/selection"
	"github.com/trezcool/classroom/core/submission"
	"github.com/trezcool/classroom/core/user"
	advicesvc "github.com/trezcool/classroom/services/advice"
	emailsvc "github.com/trezcool/classroom/services/email"
	logsvc "github.com/trezcool/classroom/services/logger"
	"github.com/trezcool/classroom/storage/database"
	inmemdb "github.com/trezcool/classroom/storage/database/inmem"
	sqlxrepos "github.com/trezcool/classroom/storage/database/sqlx"
)

type repositories struct {
	users         user.Repository
	courses       course.Repository
	assignments   assignment.Repository
	submissions   submission.Repository
	announcements announcement.Repository
	selections    selection.Repository
}

func main() {
	inmem := flag.Bool("inmem", false, "keep data in memory instead of the configured database")
	flag.Parse()

	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up storage
	var repos repositories
	if *inmem {
		db := inmemdb.Open()
		repos = repositories{
			users:         inmemdb.NewUserRepository(db),
			courses:       inmemdb.NewCourseRepository(db),
			assignments:   inmemdb.NewAssignmentRepository(db),
			submissions:   inmemdb.NewSubmissionRepository(db),
			announcements: inmemdb.NewAnnouncementRepository(db),
			selections:    inmemdb.NewSelectionRepository(db),
		}
	} else {
		db, err := setUpDB(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				dbLogger.Fatal("Failed to close", err)
			}
		}()
		repos = repositories{
			users:         sqlxrepos.NewUserRepository(db),
			courses:       sqlxrepos.NewCourseRepository(db),
			assignments:   sqlxrepos.NewAssignmentRepository(db),
			submissions:   sqlxrepos.NewSubmissionRepository(db),
			announcements: sqlxrepos.NewAnnouncementRepository(db),
			selections:    sqlxrepos.NewSelectionRepository(db),
		}
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger, log.New(os.Stdout, "MAIL : ", 0))
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	courseSvc := course.NewService(repos.courses)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	assignment.InitValidators(validate, translator)

	core.ParseEmailTemplates(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:            conf,
		Logger:          logger,
		Validate:        validate,
		Translator:      translator,
		MailSvc:         mailSvc,
		UserSvc:         user.NewService(repos.users),
		CourseSvc:       courseSvc,
		AssignmentSvc:   assignment.NewService(repos.assignments),
		SubmissionSvc:   submission.NewService(repos.submissions),
		Grader:          submission.NewGrader(repos.submissions, repos.assignments),
		AnnouncementSvc: announcement.NewService(repos.announcements),
		SelectionSvc:    selection.NewService(repos.selections, courseSvc),
		AdviceSvc:       advice.NewService(advicesvc.NewGenerator(conf)),
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
