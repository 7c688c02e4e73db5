package main

import (
	"context"
	"fmt"
	logger "log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/bonoaccess/accesscheck/app/bono-check/batch"
	"github.com/bonoaccess/accesscheck/business/eligibility"
	"github.com/bonoaccess/accesscheck/business/holiday"
)

var build = "develop"

func main() {
	log := logger.New(os.Stderr, "BONO_CHECK : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Args     conf.Args
		Region   string `conf:"default:EC-P"`
		Holidays struct {
			Online         bool   `conf:"default:false"`
			URL            string `conf:"default:https://holidays.abstractapi.com/v1/"`
			APIKey         string `conf:"noprint"`
			TimeoutSeconds int    `conf:"default:10"`
		}
		Batch struct {
			Workers int `conf:"default:4"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Check whether a subsidy withdrawal is permitted at a date and time"
	const prefix = "BONO_CHECK"
	if err := conf.Parse(os.Args[1:], prefix, &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			return printUsage(prefix, &cfg)
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
	}
	evaluator := eligibility.NewEvaluator(lookup)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Args.Num(0) {
	case "evaluate":
		if len(cfg.Args) < 4 {
			return fmt.Errorf("expected identity, date and time with command evaluate")
		}
		return evaluate(ctx, evaluator, cfg.Args.Num(1), cfg.Args.Num(2), cfg.Args.Num(3))

	case "holidays":
		yearString := cfg.Args.Num(1)
		if len(yearString) < 1 {
			return fmt.Errorf("expected year with command holidays")
		}
		year, err := strconv.Atoi(yearString)
		if err != nil {
			return fmt.Errorf("unable to parse year %s, error: %w", yearString, err)
		}
		listHolidays(year, region)
		return nil

	case "batch":
		path := cfg.Args.Num(1)
		if len(path) < 1 {
			return fmt.Errorf("expected csv file with command batch")
		}
		return batch.Run(ctx, log, evaluator, path, cfg.Batch.Workers, os.Stdout)

	default:
		fmt.Println("evaluate <identity> <date> <time>: check a single withdrawal, date as YYYY/MM/DD and time as HH:MM")
		fmt.Println("holidays <year>: list the holidays observed in a year for the configured region")
		fmt.Println("batch <file.csv>: check every identity,date,time row of a csv file")
		return printUsage(prefix, &cfg)
	}
}

func evaluate(ctx context.Context, evaluator *eligibility.Evaluator, identity, date, clock string) error {
	req, err := eligibility.ParseRequest(identity, date, clock)
	if err != nil {
		return err
	}
	decision, err := evaluator.Decide(ctx, req)
	if err != nil {
		return err
	}
	outcome := "denied"
	if decision.Permitted {
		outcome = "permitted"
	}
	fmt.Printf("%s %s (%s, %s)\n", req.Identity, outcome, decision.Weekday, decision.Reason)
	return nil
}

func listHolidays(year int, region holiday.Region) {
	for _, o := range holiday.Observances(year, region) {
		if o.Bridged() {
			fmt.Printf("%s %-9s %s (moved from %s)\n", o.Date, o.Date.Weekday(), o.Name, o.Nominal)
			continue
		}
		fmt.Printf("%s %-9s %s\n", o.Date, o.Date.Weekday(), o.Name)
	}
}

func printUsage(prefix string, cfg interface{}) error {
	usage, err := conf.Usage(prefix, cfg)
	if err != nil {
		return fmt.Errorf("generating config usage: %w", err)
	}
	fmt.Println(usage)
	return nil
}
