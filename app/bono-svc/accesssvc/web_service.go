package accesssvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	logger "log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bonoaccess/accesscheck/business/data/access"
	"github.com/bonoaccess/accesscheck/business/holiday"
	"github.com/bonoaccess/accesscheck/foundation/database"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// defaultHistoryDays is how far back evaluation history is listed when no since date is requested
const defaultHistoryDays = 30

// statusCheckTimeout bounds the database check of the default route
const statusCheckTimeout = 2 * time.Second

//defaultHttpHandler simple default http handler for default route, reports the database status when
//evaluations are recorded
type defaultHttpHandler struct {
	log       *logger.Logger
	publisher *evaluationPublisher
}

//ServeHTTP implements defaultHttpHandler http.Handler interface
func (h *defaultHttpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.publisher.canQuery() {
		ctx, cancel := context.WithTimeout(r.Context(), statusCheckTimeout)
		defer cancel()
		if err := database.StatusCheck(ctx, h.publisher.db); err != nil {
			h.log.Printf("database status check failed, error:%v", err)
			w.Header().Add("Application-Status", "DB-UNAVAILABLE")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Add("Application-Status", "OK")
}

//evaluateHandler answers single evaluation requests
type evaluateHandler struct {
	log     *logger.Logger
	service *accessService
}

//ServeHTTP implements evaluateHandler's http.Handler interface
func (h *evaluateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	evaluation, err := h.service.evaluate(r.Context(), r.FormValue("identity"), r.FormValue("date"),
		r.FormValue("time"))
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	writeJSON(h.log, w, evaluation)
}

//holidaysHandler lists the holidays observed in a year
type holidaysHandler struct {
	log    *logger.Logger
	region holiday.Region
}

//JsonHolidaysResponseWrapper provides json response wrapper around holiday.Observances
type JsonHolidaysResponseWrapper struct {
	Year     int                  `json:"year"`
	Region   string               `json:"region"`
	Holidays []holiday.Observance `json:"holidays"`
}

//ServeHTTP implements holidaysHandler's http.Handler interface
func (h *holidaysHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	yearString := mux.Vars(r)["year"]
	year, err := strconv.Atoi(yearString)
	if err != nil || year < 1 || year > 9999 {
		writeError(h.log, w, &access.ValidationError{Field: "year", Value: yearString,
			Reason: "expected a year between 1 and 9999"})
		return
	}
	region := h.region
	if values, present := r.URL.Query()["region"]; present && len(values) > 0 {
		region, err = holiday.ParseRegion(values[0])
		if err != nil {
			writeError(h.log, w, err)
			return
		}
	}
	observances := holiday.Observances(year, region)
	if observances == nil {
		observances = make([]holiday.Observance, 0)
	}
	writeJSON(h.log, w, &JsonHolidaysResponseWrapper{
		Year:     year,
		Region:   region.String(),
		Holidays: observances,
	})
}

//evaluationsHandler lists the recorded evaluations of an identity
type evaluationsHandler struct {
	log     *logger.Logger
	service *accessService
}

//JsonEvaluationsResponseWrapper provides json response wrapper around recorded access.Evaluation
type JsonEvaluationsResponseWrapper struct {
	Identity    string               `json:"identity"`
	Since       access.CalendarDate  `json:"since"`
	Evaluations []*access.Evaluation `json:"evaluations"`
}

//ServeHTTP implements evaluationsHandler's http.Handler interface
func (h *evaluationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	publisher := h.service.publisher
	if !publisher.canQuery() {
		http.Error(w, "evaluation history is not recorded", http.StatusNotFound)
		return
	}
	identity, err := access.ParseIdentityNumber(r.FormValue("identity"))
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	since := access.DateOf(h.service.now()).AddDays(-defaultHistoryDays)
	if sinceString := r.FormValue("since"); sinceString != "" {
		since, err = access.ParseCalendarDate(sinceString)
		if err != nil {
			writeError(h.log, w, err)
			return
		}
	}
	evaluations, err := access.GetEvaluations(publisher.db, identity.String(), since.Time())
	if err != nil {
		writeError(h.log, w, fmt.Errorf("reading evaluations of %s: %w", identity, err))
		return
	}
	writeJSON(h.log, w, &JsonEvaluationsResponseWrapper{
		Identity:    identity.String(),
		Since:       since,
		Evaluations: evaluations,
	})
}

//errorStatus maps an error to the http status reported to the client
func errorStatus(err error) int {
	var validationErr *access.ValidationError
	var configErr *access.ConfigurationError
	var transportErr *access.TransportError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &configErr):
		return http.StatusInternalServerError
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

//jsonError is the json body of a failed request
type jsonError struct {
	Error string `json:"error"`
}

//writeError logs err and writes it as json with the status from errorStatus
func writeError(log *logger.Logger, w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("request failed with status %d, error:%v", status, err)
	}
	jsonData, marshalErr := json.Marshal(&jsonError{Error: err.Error()})
	if marshalErr != nil {
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(jsonData); err != nil {
		log.Printf("Error writing json error response: %s", err)
	}
}

//writeJSON marshals value as the json response
func writeJSON(log *logger.Logger, w http.ResponseWriter, value interface{}) {
	jsonData, err := json.Marshal(value)
	if err != nil {
		log.Printf("Error marshaling response to json: error:%v\n", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	byteCount, err := w.Write(jsonData)
	if err != nil {
		log.Printf("Error writing json response: %s", err)
		return
	}
	log.Printf("wrote %d bytes in json response.", byteCount)
}

//makeRouter routes service requests, gatherer is exposed on /metrics
func makeRouter(log *logger.Logger, service *accessService, gatherer prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/", &defaultHttpHandler{log: log, publisher: service.publisher})
	r.Handle("/evaluate", &evaluateHandler{log: log, service: service}).Methods(http.MethodGet)
	r.Handle("/holidays/{year}", &holidaysHandler{log: log, region: service.region}).Methods(http.MethodGet)
	r.Handle("/evaluations", &evaluationsHandler{log: log, service: service}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

//createServer creates configured http.Server for responding to access requests
func createServer(log *logger.Logger,
	service *accessService,
	gatherer prometheus.Gatherer,
	httpPort int) *http.Server {

	srv := &http.Server{
		Addr: strings.Join([]string{"0.0.0.0", strconv.Itoa(httpPort)}, ":"),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      makeRouter(log, service, gatherer),
	}
	return srv
}

//runWebService starts up the access web service, and terminates on shutdown signal
func runWebService(log *logger.Logger,
	wg *sync.WaitGroup,
	service *accessService,
	gatherer prometheus.Gatherer,
	httpPort int,
	shutdownSignal chan bool,
) {
	defer wg.Done()
	srv := createServer(log, service, gatherer, httpPort)
	log.Printf("Starting server on port %d", httpPort)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Printf("server ListenAndServe ended. %s", err)
		}
	}()

	<-shutdownSignal
	log.Printf("ending webservice on shutdown signal")
	shutdownCtx, serverCancelFunc := context.WithTimeout(context.Background(), time.Duration(5)*time.Second)
	defer serverCancelFunc()
	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		log.Printf("error shutting down webservice, error:%s", err)
	}
}
