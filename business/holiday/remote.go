package holiday

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bonoaccess/accesscheck/business/data/access"
	"github.com/bonoaccess/accesscheck/foundation/httpclient"
)

const (
	// DefaultRemoteURL is the abstractapi holidays endpoint
	DefaultRemoteURL = "https://holidays.abstractapi.com/v1/"

	// remoteCountry is the ISO 3166-1 code sent to the remote service
	remoteCountry = "EC"

	// maundyThursday is wrongly reported as a holiday in Ecuador by the remote service
	maundyThursday = "Maundy Thursday"
)

// RemoteConfig configures a RemoteLookup
type RemoteConfig struct {
	// BaseURL defaults to DefaultRemoteURL
	BaseURL string
	APIKey  string
	// Client defaults to http.DefaultClient. No timeout or retry is applied by RemoteLookup.
	Client *http.Client
}

// RemoteLookup answers from a remote date holiday service, one request per call
type RemoteLookup struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// remoteHoliday is the part of a remote service holiday entry used to answer lookups
type remoteHoliday struct {
	Name      string `json:"name"`
	LocalName string `json:"name_local"`
	Date      string `json:"date"`
}

// NewRemoteLookup creates a RemoteLookup, returning a ConfigurationError if no api key is provided
func NewRemoteLookup(cfg RemoteConfig) (*RemoteLookup, error) {
	if cfg.APIKey == "" {
		return nil, &access.ConfigurationError{Message: "missing holidays api key"}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultRemoteURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, &access.ConfigurationError{Message: fmt.Sprintf("invalid holidays api url %q: %v", baseURL, err)}
	}
	return &RemoteLookup{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		client:  cfg.Client,
	}, nil
}

// IsHoliday asks the remote service whether date is a holiday in Ecuador.
// A 401 response is a ConfigurationError, a failed request or unusable response is a TransportError.
func (r *RemoteLookup) IsHoliday(ctx context.Context, date access.CalendarDate) (bool, error) {
	requestURL, err := httpclient.BuildURL(r.baseURL, url.Values{
		"api_key": {r.apiKey},
		"country": {remoteCountry},
		"year":    {strconv.Itoa(date.Year())},
		"month":   {strconv.Itoa(int(date.Month()))},
		"day":     {strconv.Itoa(date.Day())},
	})
	if err != nil {
		return false, &access.ConfigurationError{Message: fmt.Sprintf("unable to build holidays api url: %v", err)}
	}

	resp, err := httpclient.Get(ctx, r.client, requestURL)
	if err != nil {
		// url.Error repeats the request url, which carries the api key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return false, &access.TransportError{URL: r.baseURL, Err: err}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return false, &access.ConfigurationError{Message: "holidays api rejected the api key, check the configured key"}
	}
	if !resp.OK() {
		return false, &access.TransportError{
			URL:        r.baseURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response %q", truncate(resp.Body, 120)),
		}
	}
	return parseRemoteHolidays(r.baseURL, resp.Body)
}

// parseRemoteHolidays interprets the remote service body, an empty array when date is not a holiday
func parseRemoteHolidays(source string, body []byte) (bool, error) {
	trimmed := bytes.TrimSpace(body)
	if bytes.Equal(trimmed, []byte("[]")) {
		return false, nil
	}
	var holidays []remoteHoliday
	if err := json.Unmarshal(trimmed, &holidays); err != nil {
		return false, &access.TransportError{URL: source, StatusCode: http.StatusOK,
			Err: fmt.Errorf("unable to decode holidays response: %w", err)}
	}
	for _, h := range holidays {
		if h.Name != maundyThursday {
			return true, nil
		}
	}
	return false, nil
}

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
