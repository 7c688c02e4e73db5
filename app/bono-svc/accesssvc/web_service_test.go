package accesssvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	logger "log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bonoaccess/accesscheck/business/data/access"
	"github.com/bonoaccess/accesscheck/business/holiday"
	"github.com/matryer/is"
	"github.com/prometheus/client_golang/prometheus"
)

var evaluatedAt = time.Date(2021, 4, 26, 14, 0, 0, 0, time.UTC)

// failingLookup fails every lookup with err
type failingLookup struct {
	err error
}

func (f failingLookup) IsHoliday(context.Context, access.CalendarDate) (bool, error) {
	return false, f.err
}

func makeTestService(lookup holiday.Lookup, source string) (*accessService, *prometheus.Registry) {
	log := logger.New(io.Discard, "", 0)
	registry := prometheus.NewRegistry()
	publisher := makeEvaluationPublisher(log, nil, nil, "", false, false)
	service := makeAccessService(log, lookup, source, holiday.RegionPichincha, publisher, NewMetrics(registry))
	service.now = func() time.Time {
		return evaluatedAt
	}
	return service, registry
}

func serve(service *accessService, registry *prometheus.Registry, target string) *httptest.ResponseRecorder {
	router := makeRouter(service.log, service, registry)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

func TestDefaultRoute(t *testing.T) {
	is := is.New(t)
	service, registry := makeTestService(holiday.NewCalendarLookup(holiday.RegionPichincha), "calendar")
	recorder := serve(service, registry, "/")
	is.Equal(recorder.Code, http.StatusOK)
	is.Equal(recorder.Header().Get("Application-Status"), "OK")
}

func TestEvaluateHandler(t *testing.T) {
	calendar := holiday.NewCalendarLookup(holiday.RegionPichincha)
	tests := []struct {
		name       string
		lookup     holiday.Lookup
		query      string
		wantStatus int
		want       *access.Evaluation
		wantError  string
	}{
		{
			name:       "christmas is a holiday",
			lookup:     calendar,
			query:      "identity=2300166101&date=2020/12/25&time=14:00",
			wantStatus: http.StatusOK,
			want: &access.Evaluation{
				Identity:      "2300166101",
				Date:          "2020/12/25",
				Time:          "14:00",
				Weekday:       "Friday",
				Permitted:     true,
				Reason:        "holiday",
				HolidaySource: "calendar",
				EvaluatedAt:   evaluatedAt,
			},
		},
		{
			name:       "restricted monday",
			lookup:     calendar,
			query:      "identity=2300166101&date=2021/04/26&time=09:00",
			wantStatus: http.StatusOK,
			want: &access.Evaluation{
				Identity:      "2300166101",
				Date:          "2021/04/26",
				Time:          "09:00",
				Weekday:       "Monday",
				Permitted:     false,
				Reason:        "digit_restricted",
				HolidaySource: "calendar",
				EvaluatedAt:   evaluatedAt,
			},
		},
		{
			name:       "invalid date",
			lookup:     calendar,
			query:      "identity=2300166101&date=25-12-2020&time=14:00",
			wantStatus: http.StatusBadRequest,
			wantError:  `invalid date "25-12-2020"`,
		},
		{
			name:       "missing identity",
			lookup:     calendar,
			query:      "date=2020/12/25&time=14:00",
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid identity",
		},
		{
			name:       "lookup without api key",
			lookup:     failingLookup{err: &access.ConfigurationError{Message: "missing holidays api key"}},
			query:      "identity=2300166101&date=2021/04/26&time=09:00",
			wantStatus: http.StatusInternalServerError,
			wantError:  "configuration error",
		},
		{
			name: "remote lookup unavailable",
			lookup: failingLookup{err: &access.TransportError{URL: "http://holidays.test", StatusCode: 503,
				Err: errors.New("service unavailable")}},
			query:      "identity=2300166101&date=2021/04/26&time=09:00",
			wantStatus: http.StatusBadGateway,
			wantError:  "transport error calling http://holidays.test",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			service, registry := makeTestService(tt.lookup, "calendar")
			recorder := serve(service, registry, "/evaluate?"+tt.query)
			is.Equal(recorder.Code, tt.wantStatus)
			is.Equal(recorder.Header().Get("Content-Type"), "application/json")
			if tt.want != nil {
				var got access.Evaluation
				is.NoErr(json.Unmarshal(recorder.Body.Bytes(), &got))
				is.Equal(&got, tt.want)
				return
			}
			var got jsonError
			is.NoErr(json.Unmarshal(recorder.Body.Bytes(), &got))
			is.True(strings.Contains(got.Error, tt.wantError))
		})
	}
}

func TestHolidaysHandler(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantRegion string
		wantCount  int
	}{
		{"configured region", "/holidays/2021", http.StatusOK, "EC-P", 14},
		{"national", "/holidays/2021?region=EC", http.StatusOK, "EC", 13},
		{"empty region is national", "/holidays/2021?region=", http.StatusOK, "EC", 13},
		{"unsupported region", "/holidays/2021?region=EC-G", http.StatusBadRequest, "", 0},
		{"year not a number", "/holidays/next", http.StatusBadRequest, "", 0},
		{"year zero", "/holidays/0", http.StatusBadRequest, "", 0},
	}
	service, registry := makeTestService(holiday.NewCalendarLookup(holiday.RegionPichincha), "calendar")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			recorder := serve(service, registry, tt.target)
			is.Equal(recorder.Code, tt.wantStatus)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got struct {
				Year     int    `json:"year"`
				Region   string `json:"region"`
				Holidays []struct {
					Date    string `json:"date"`
					Nominal string `json:"nominal"`
					Name    string `json:"name"`
				} `json:"holidays"`
			}
			is.NoErr(json.Unmarshal(recorder.Body.Bytes(), &got))
			is.Equal(got.Year, 2021)
			is.Equal(got.Region, tt.wantRegion)
			is.Equal(len(got.Holidays), tt.wantCount)
			is.Equal(got.Holidays[0].Date, "2021/01/01")
			is.Equal(got.Holidays[0].Name, "New Year's Day")
		})
	}
}

func TestEvaluationsHandler_NotRecorded(t *testing.T) {
	is := is.New(t)
	service, registry := makeTestService(holiday.NewCalendarLookup(holiday.RegionPichincha), "calendar")
	recorder := serve(service, registry, "/evaluations?identity=2300166101")
	is.Equal(recorder.Code, http.StatusNotFound)
}

func TestMetricsRoute(t *testing.T) {
	is := is.New(t)
	service, registry := makeTestService(holiday.NewCalendarLookup(holiday.RegionPichincha), "calendar")
	is.Equal(serve(service, registry, "/evaluate?identity=2300166101&date=2020/12/25&time=14:00").Code,
		http.StatusOK)
	is.Equal(serve(service, registry, "/evaluate?identity=2300166101&date=2021/04/26&time=09:00").Code,
		http.StatusOK)

	recorder := serve(service, registry, "/metrics")
	is.Equal(recorder.Code, http.StatusOK)
	body := recorder.Body.String()
	is.True(strings.Contains(body, `bono_access_decisions_total{outcome="permitted",reason="holiday"} 1`))
	is.True(strings.Contains(body, `bono_access_decisions_total{outcome="denied",reason="digit_restricted"} 1`))
	is.True(strings.Contains(body, `bono_access_holiday_lookup_duration_seconds_count{source="calendar"} 2`))
}

func TestMetricsRoute_LookupErrors(t *testing.T) {
	is := is.New(t)
	lookup := failingLookup{err: fmt.Errorf("asking holidays: %w",
		&access.TransportError{URL: "http://holidays.test", Err: errors.New("connection reset")})}
	service, registry := makeTestService(lookup, "remote")
	is.Equal(serve(service, registry, "/evaluate?identity=2300166101&date=2021/04/26&time=09:00").Code,
		http.StatusBadGateway)

	body := serve(service, registry, "/metrics").Body.String()
	is.True(strings.Contains(body, `bono_access_holiday_lookup_errors_total{kind="transport"} 1`))
	is.True(!strings.Contains(body, "bono_access_decisions_total{")) // failed lookups decide nothing
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &access.ValidationError{Field: "date"}, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("row 2: %w", &access.ValidationError{Field: "time"}), http.StatusBadRequest},
		{"configuration", &access.ConfigurationError{Message: "missing key"}, http.StatusInternalServerError},
		{"transport", &access.TransportError{URL: "http://holidays.test"}, http.StatusBadGateway},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			is.Equal(errorStatus(tt.err), tt.want)
		})
	}
}

func TestEvaluationPublisher_Disabled(t *testing.T) {
	is := is.New(t)
	log := logger.New(io.Discard, "", 0)

	// flags without connections publish nowhere
	publisher := makeEvaluationPublisher(log, nil, nil, "subject", true, true)
	is.True(!publisher.recordToDatabase)
	is.True(!publisher.publishOverNats)
	is.True(!publisher.canQuery())
	publisher.publish(&access.Evaluation{Identity: "2300166101"})

	var missing *evaluationPublisher
	is.True(!missing.canQuery())
	missing.publish(&access.Evaluation{Identity: "2300166101"})
}

func TestAnswerEvaluationRequest(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantStatus int
		wantReason string
	}{
		{"holiday", `{"identity":"2300166101","date":"2020/12/25","time":"14:00"}`, http.StatusOK, "holiday"},
		{"weekend", `{"identity":"2300166101","date":"2021/04/25","time":"14:00"}`, http.StatusOK,
			"digit_unrestricted"},
		{"invalid time", `{"identity":"2300166101","date":"2021/04/25","time":"24:00"}`, http.StatusBadRequest, ""},
		{"malformed", `{"identity":`, http.StatusBadRequest, ""},
	}
	service, _ := makeTestService(holiday.NewCalendarLookup(holiday.RegionPichincha), "calendar")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			var reply evaluationReply
			data := answerEvaluationRequest(context.Background(), service.log, []byte(tt.payload), service)
			is.NoErr(json.Unmarshal(data, &reply))
			is.Equal(reply.Status, tt.wantStatus)
			if tt.wantStatus != http.StatusOK {
				is.True(reply.Evaluation == nil)
				is.True(reply.Error != "")
				return
			}
			is.Equal(reply.Error, "")
			is.Equal(reply.Evaluation.Reason, tt.wantReason)
			is.Equal(reply.Evaluation.EvaluatedAt, evaluatedAt)
		})
	}
}
