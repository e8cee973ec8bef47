package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/bukhari/academy/apps/api/echo"
	"github.com/bukhari/academy/core"
	"github.com/bukhari/academy/core/exam"
	"github.com/bukhari/academy/core/school"
	"github.com/bukhari/academy/core/user"
	aisvc "github.com/bukhari/academy/services/ai"
	emailsvc "github.com/bukhari/academy/services/email"
	logsvc "github.com/bukhari/academy/services/logger"
	"github.com/bukhari/academy/storage/blobdb"
	"github.com/bukhari/academy/storage/database"
	sqlxrepos "github.com/bukhari/academy/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up logger
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up storage: relational when configured, the document store otherwise
	var (
		usrRepo    user.Repository
		schoolRepo school.Repository
		examRepo   exam.Repository
		store      *blobdb.DB
	)
	if conf.Database.Enabled() {
		db, err := setUpDB(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				logger.Error("closing database", err)
			}
		}()
		usrRepo = sqlxrepos.NewUserRepository(db)
		schoolRepo = sqlxrepos.NewSchoolRepository(db)
		examRepo = sqlxrepos.NewExamRepository(db)
	} else {
		var err error
		store, err = blobdb.New(blobdb.Options{
			Path:       conf.Sync.LocalPath,
			TTL:        conf.Sync.CacheTTL,
			Remotes:    syncRemotes(conf),
			Logger:     logger,
			MaxRetries: conf.Sync.MaxRetries,
			MaxBackoff: conf.Sync.MaxBackoff,
		})
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening document store: %v", err), err)
		}
		defer store.Close()
		usrRepo = blobdb.NewUserRepository(store)
		schoolRepo = blobdb.NewSchoolRepository(store)
		examRepo = blobdb.NewExamRepository(store)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var generator exam.Generator
	if conf.OpenAIAPIKey != "" {
		generator = aisvc.NewOpenAIGenerator(conf, logger)
	}

	usrSvc := user.NewService(usrRepo, mailSvc)
	schoolSvc := school.NewService(schoolRepo, usrSvc, mailSvc)
	examSvc := exam.NewService(examRepo, generator)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	school.InitValidators(validate, translator)
	exam.InitValidators(validate, translator)

	user.InitTokenGenerator(conf)
	core.ParseEmailTemplates(logger, conf)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
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

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			SchoolSvc:  schoolSvc,
			ExamSvc:    examSvc,
			Store:      store,
			Validate:   validate,
			Translator: translator,
		},
	)

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

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}

func syncRemotes(conf *core.Config) []blobdb.RemoteStore {
	var remotes []blobdb.RemoteStore
	if conf.Sync.RemoteURL != "" {
		remotes = append(remotes, blobdb.NewAPIStore(conf.Sync.RemoteURL, conf.Sync.APIKey))
	}
	if conf.Sync.GistID != "" && conf.Sync.GistToken != "" {
		remotes = append(remotes, blobdb.NewGistStore(conf.Sync.GistID, conf.Sync.GistToken))
	}
	if conf.Sync.BinID != "" && conf.Sync.BinKey != "" {
		remotes = append(remotes, blobdb.NewBinStore(conf.Sync.BinID, conf.Sync.BinKey))
	}
	return remotes
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
