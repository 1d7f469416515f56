// Package httpclient talks to the test archive collaborator over its REST/JSON routes.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/thalesor/repoprovas/core/exam"
	"github.com/thalesor/repoprovas/core/search"
)

// Client implements exam.Backend.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

var _ exam.Backend = (*Client)(nil)

// New returns a Client for the collaborator at baseURL.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing backend url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid backend url %q", baseURL)
	}
	return &Client{baseURL: u, http: &http.Client{Timeout: timeout}}, nil
}

func (c *Client) url(path string, query url.Values) string {
	u := *c.baseURL
	u.Path += path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends the request and decodes a 2xx body into out. Other statuses become *exam.RequestError
// carrying the payload text, whether it is a JSON string or an {"error": "..."} object.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), body)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return exam.NewRequestError(resp.StatusCode, payloadText(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decoding %s %s response", method, path)
	}
	return nil
}

func payloadText(data []byte) string {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		return text
	}
	var obj struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		if obj.Error != "" {
			return obj.Error
		}
		return obj.Message
	}
	return ""
}

func testsQuery(groupBy string, q search.Query) url.Values {
	v := url.Values{"groupBy": []string{groupBy}}
	q.Encode(v)
	return v
}

func (c *Client) TestsByDiscipline(ctx context.Context, token string, q search.Query) ([]exam.TermGroup, error) {
	var resp struct {
		Tests []exam.TermGroup `json:"tests"`
	}
	if err := c.do(ctx, http.MethodGet, "/tests", testsQuery("disciplines", q), token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tests, nil
}

func (c *Client) TestsByTeacher(ctx context.Context, token string, q search.Query) ([]exam.TeacherEntry, error) {
	var resp struct {
		Tests []exam.TeacherEntry `json:"tests"`
	}
	if err := c.do(ctx, http.MethodGet, "/tests", testsQuery("teachers", q), token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tests, nil
}

func (c *Client) Categories(ctx context.Context, token string) ([]exam.Category, error) {
	var resp struct {
		Categories []exam.Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/categories", nil, token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (c *Client) Disciplines(ctx context.Context, token string) ([]exam.Discipline, error) {
	var resp struct {
		Disciplines []exam.Discipline `json:"disciplines"`
	}
	if err := c.do(ctx, http.MethodGet, "/disciplines", nil, token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Disciplines, nil
}

func (c *Client) TeachersByDiscipline(ctx context.Context, token string, disciplineID int) ([]exam.Teacher, error) {
	var resp struct {
		Teachers []struct {
			Teacher exam.Teacher `json:"teacher"`
		} `json:"teachers"`
	}
	path := fmt.Sprintf("/disciplines/%d/teachers", disciplineID)
	if err := c.do(ctx, http.MethodGet, path, nil, token, nil, &resp); err != nil {
		return nil, err
	}
	teachers := make([]exam.Teacher, 0, len(resp.Teachers))
	for _, item := range resp.Teachers {
		teachers = append(teachers, item.Teacher)
	}
	return teachers, nil
}

func (c *Client) CreateTest(ctx context.Context, token string, nt exam.NewTest) (exam.Test, error) {
	var t exam.Test
	if err := c.do(ctx, http.MethodPost, "/tests", nil, token, nt, &t); err != nil {
		return exam.Test{}, err
	}
	return t, nil
}

func (c *Client) IncrementTestViews(ctx context.Context, token string, testID int) (int, error) {
	var resp struct {
		Views *int `json:"views"`
	}
	path := fmt.Sprintf("/tests/%d/views", testID)
	if err := c.do(ctx, http.MethodPatch, path, nil, token, nil, &resp); err != nil {
		return 0, err
	}
	if resp.Views == nil {
		return 0, errors.Errorf("no view count for test %d", testID)
	}
	return *resp.Views, nil
}
