// Package accesssvc serves eligibility evaluations over http and nats, publishing each decided
// evaluation to the configured destinations.
package accesssvc

import (
	logger "log"
	"os"
	"sync"

	"github.com/bonoaccess/accesscheck/business/holiday"
	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
)

// Config holds the settings StartServices needs beyond its connections
type Config struct {
	HttpPort int
	Region   holiday.Region
	Lookup   holiday.Lookup
	// LookupSource names Lookup in evaluation records and metrics, "calendar" or "remote"
	LookupSource     string
	RecordToDatabase bool
	PublishOverNats  bool
	// ResultsSubject receives every decided evaluation when PublishOverNats is set
	ResultsSubject string
	// RequestSubject is answered with evaluations when set and a nats connection is present
	RequestSubject string
}

//StartServices brings up the web service and, when configured, the nats request listener.
//db and natsConn may be nil when their features are disabled. Returns on shutdown signal
func StartServices(log *logger.Logger,
	cfg Config,
	db *sqlx.DB,
	natsConn *nats.Conn,
	shutdownSignal chan os.Signal) error {

	wg := sync.WaitGroup{}

	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	publisher := makeEvaluationPublisher(log, db, natsConn, cfg.ResultsSubject, cfg.RecordToDatabase,
		cfg.PublishOverNats)
	service := makeAccessService(log, cfg.Lookup, cfg.LookupSource, cfg.Region, publisher, metrics)

	//create shutdown channels
	webServiceShutdown := make(chan bool, 1)
	requestListenerShutdown := make(chan bool, 1)

	listening := natsConn != nil && cfg.RequestSubject != ""
	if listening {
		err := runEvaluationRequestListener(log, &wg, natsConn, service, cfg.RequestSubject,
			requestListenerShutdown)
		if err != nil {
			return err
		}
	}
	wg.Add(1)
	go runWebService(log, &wg, service, registry, cfg.HttpPort, webServiceShutdown)

	<-shutdownSignal
	log.Printf("Exiting on shutdown signal, shutting down subroutines")
	webServiceShutdown <- true
	if listening {
		requestListenerShutdown <- true
	}
	wg.Wait()
	log.Printf("Subroutines shut down, exiting access service")
	return nil
}
