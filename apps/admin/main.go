package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/user"
	logsvc "github.com/trezcool/classroom/services/logger"
	"github.com/trezcool/classroom/storage/database"
	sqlxrepos "github.com/trezcool/classroom/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:       db.DB,
		usrSvc:   user.NewService(sqlxrepos.NewUserRepository(db)),
		validate: validate,
		out:      os.Stdout,
	}
	err = cli.run(os.Args)
	if err != nil && err != errHelp {
		logger.Error(fmt.Sprintf("\nerror: %s\n", err), err)
	}
	_ = db.Close()
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}
