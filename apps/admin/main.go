package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/bukhari/academy/core"
	"github.com/bukhari/academy/core/user"
	"github.com/bukhari/academy/storage/blobdb"
	"github.com/bukhari/academy/storage/database"
	sqlxrepos "github.com/bukhari/academy/storage/database/sqlx"
)

var logger *log.Logger

type stdLogger struct {
	std *log.Logger
}

func (l stdLogger) Debug(msg string, args ...interface{}) { l.std.Println(msg, args) }
func (l stdLogger) Info(msg string, args ...interface{})  { l.std.Println(msg, args) }
func (l stdLogger) Warn(msg string, args ...interface{})  { l.std.Println(msg, args) }
func (l stdLogger) Error(msg string, args ...interface{}) { l.std.Println(msg, args) }
func (l stdLogger) Fatal(msg string, args ...interface{}) { l.std.Fatalln(msg, args) }

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up storage: relational when configured, the document store otherwise
	var (
		db      *sqlx.DB
		usrRepo user.Repository
	)
	if conf.Database.Enabled() {
		var err error
		db, err = database.Open(conf)
		errAndDie(err)
		defer db.Close()
		errAndDie(db.Ping())
		usrRepo = sqlxrepos.NewUserRepository(db)
	} else {
		store, err := blobdb.New(blobdb.Options{
			Path:       conf.Sync.LocalPath,
			TTL:        conf.Sync.CacheTTL,
			Remotes:    syncRemotes(conf),
			Logger:     stdLogger{std: logger},
			MaxRetries: conf.Sync.MaxRetries,
			MaxBackoff: conf.Sync.MaxBackoff,
		})
		errAndDie(err)
		defer store.Close()
		usrRepo = blobdb.NewUserRepository(store)
	}

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: usrRepo,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
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

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
