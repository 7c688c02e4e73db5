package main

import (
	"fmt"
	logger "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/bonoaccess/accesscheck/app/bono-svc/accesssvc"
	"github.com/bonoaccess/accesscheck/business/holiday"
	"github.com/bonoaccess/accesscheck/foundation/database"
	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "BONO_SVC : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Web struct {
			Port int `conf:"default:8080"`
		}
		Region   string `conf:"default:EC-P"`
		Holidays struct {
			Online         bool   `conf:"default:false"`
			URL            string `conf:"default:https://holidays.abstractapi.com/v1/"`
			APIKey         string `conf:"noprint"`
			TimeoutSeconds int    `conf:"default:10"`
		}
		DB struct {
			User       string `conf:"default:postgres"`
			Password   string `conf:"default:postgres,noprint"`
			Host       string `conf:"default:0.0.0.0"`
			Name       string `conf:"default:postgres"`
			DisableTLS bool   `conf:"default:true"`
			MaxOpen    int    `conf:"default:4"`
		}
		NATS struct {
			URL            string `conf:"default:nats://localhost:4222"`
			ResultsSubject string `conf:"default:bono-access-evaluations"`
			RequestSubject string
		}
		Publish struct {
			RecordToDatabase bool `conf:"default:false"`
			PublishOverNats  bool `conf:"default:false"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Serve subsidy withdrawal eligibility evaluations"
	const prefix = "BONO_SVC"
	if err := conf.Parse(os.Args[1:], prefix, &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Printf("main : Started : Application initializing : version %s", build)
	defer log.Println("main: Completed")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Printf("main: Config :\n%v\n", out)

	region, err := holiday.ParseRegion(cfg.Region)
	if err != nil {
		return err
	}

	// =========================================================================
	// Holiday lookup

	var lookup holiday.Lookup = holiday.NewCalendarLookup(region)
	lookupSource := "calendar"
	if cfg.Holidays.Online {
		log.Printf("main: using online holiday lookup at %s", cfg.Holidays.URL)
		lookup, err = holiday.NewRemoteLookup(holiday.RemoteConfig{
			BaseURL: cfg.Holidays.URL,
			APIKey:  cfg.Holidays.APIKey,
			Client:  &http.Client{Timeout: time.Duration(cfg.Holidays.TimeoutSeconds) * time.Second},
		})
		if err != nil {
			return err
		}
		lookupSource = "remote"
	}

	// =========================================================================
	// Start Database

	var db *sqlx.DB
	if cfg.Publish.RecordToDatabase {
		log.Println("main: Initializing database support")

		db, err = database.Open(database.Config{
			User:            cfg.DB.User,
			Password:        cfg.DB.Password,
			Host:            cfg.DB.Host,
			Name:            cfg.DB.Name,
			DisableTLS:      cfg.DB.DisableTLS,
			ApplicationName: "bono-svc",
			MaxOpenConns:    cfg.DB.MaxOpen,
		})
		if err != nil {
			return fmt.Errorf("connecting to db: %w", err)
		}
		defer func() {
			log.Printf("main: Database Stopping : %s", cfg.DB.Host)
			err = db.Close()
			if err != nil {
				log.Printf("main: error closing database: %v", err)
			}
		}()
	}

	// =========================================================================
	// Start NATS

	var natsConn *nats.Conn
	if cfg.Publish.PublishOverNats || cfg.NATS.RequestSubject != "" {
		log.Printf("main: Connecting to NATS at %s", cfg.NATS.URL)
		natsConn, err = nats.Connect(cfg.NATS.URL, nats.Name("bono-svc"))
		if err != nil {
			return fmt.Errorf("connecting to nats: %w", err)
		}
		defer func() {
			log.Printf("main: NATS Stopping : %s", cfg.NATS.URL)
			natsConn.Close()
		}()
	}

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	return accesssvc.StartServices(log, accesssvc.Config{
		HttpPort:         cfg.Web.Port,
		Region:           region,
		Lookup:           lookup,
		LookupSource:     lookupSource,
		RecordToDatabase: cfg.Publish.RecordToDatabase,
		PublishOverNats:  cfg.Publish.PublishOverNats,
		ResultsSubject:   cfg.NATS.ResultsSubject,
		RequestSubject:   cfg.NATS.RequestSubject,
	}, db, natsConn, shutdown)
}
