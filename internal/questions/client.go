package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const defaultBaseURL = "http://127.0.0.1:8000"

var ErrNetwork = errors.New("question service unavailable")

// APIError is a non-2xx answer. It matches ErrNetwork with errors.Is so
// callers can treat every fetch failure alike.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

func (e *APIError) Is(target error) bool {
	return target == ErrNetwork
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// FetchPage returns one page of the discover feed. An empty page means the
// feed is exhausted.
func (c *Client) FetchPage(ctx context.Context, page int) ([]Question, error) {
	if page <= 0 {
		page = 1
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))

	var payload []Question
	if err := c.getJSON(ctx, "/questions?"+query.Encode(), &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) FetchRevision(ctx context.Context, revision RevisionQuery) ([]Question, error) {
	themes := make([]string, 0, len(revision.ThemeIDs))
	for _, id := range revision.ThemeIDs {
		themes = append(themes, strconv.Itoa(id))
	}

	query := url.Values{}
	query.Set("themes", strings.Join(themes, ","))
	if revision.IncorrectOnly {
		query.Set("incorrect_only", "1")
	} else {
		query.Set("incorrect_only", "0")
	}

	var payload []Question
	if err := c.getJSON(ctx, "/revision_questions?"+query.Encode(), &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) FetchThemes(ctx context.Context) ([]Theme, error) {
	var payload []Theme
	if err := c.getJSON(ctx, "/themes", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) FetchAchievements(ctx context.Context) ([]Achievement, error) {
	var payload []Achievement
	if err := c.getJSON(ctx, "/achievements", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) getJSON(ctx context.Context, path string, responseBody any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil {
			apiErr.Message = strings.TrimSpace(payload.Error)
			if apiErr.Message == "" {
				apiErr.Message = strings.TrimSpace(payload.Detail)
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if err := json.NewDecoder(response.Body).Decode(responseBody); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrNetwork, path, err)
	}
	return nil
}
