package main

import (
	"log"
	"os"

	"github.com/gllabs/portal/core"
	"github.com/gllabs/portal/core/cohort"
	"github.com/gllabs/portal/core/user"
	"github.com/gllabs/portal/services/email"
	"github.com/gllabs/portal/storage/database"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	mailSvc := emailsvc.NewConsoleService()
	usrRepo := database.NewUserRepository(db)
	unitRepo := database.NewUnitRepository(db)

	// start CLI
	cli := commandLine{
		db:        db,
		usrRepo:   usrRepo,
		unitRepo:  unitRepo,
		cohortSvc: cohort.NewService(database.NewCohortRepository(db), unitRepo, user.NewService(usrRepo, mailSvc), mailSvc),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
