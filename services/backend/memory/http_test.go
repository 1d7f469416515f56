package memory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thalesor/repoprovas/core"
)

type httpTest struct {
	name     string
	method   string
	path     string
	body     interface{}
	token    string
	wantCode int
	wantBody string
}

func newAuthRequest(method, path, token string, body interface{}) (*http.Request, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func TestHTTPHandler(t *testing.T) {
	f := newFixture(t)
	h := NewHTTPHandler(f.backend, core.NopLogger(), true)

	tests := []httpTest{
		{
			name:     "missing token",
			method:   http.MethodGet,
			path:     "/categories",
			wantCode: http.StatusUnauthorized,
			wantBody: `{"error":"invalid or expired session"}`,
		},
		{
			name:     "categories",
			method:   http.MethodGet,
			path:     "/categories",
			token:    f.token,
			wantCode: http.StatusOK,
			wantBody: fmt.Sprintf(`{"categories":[{"id":%d,"name":"Prova"},{"id":%d,"name":"Trabalho"}]}`, f.prova, f.trabalho),
		},
		{
			name:     "bad groupBy",
			method:   http.MethodGet,
			path:     "/tests?groupBy=terms",
			token:    f.token,
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"groupBy must be disciplines or teachers"}`,
		},
		{
			name:     "teachers of discipline",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/disciplines/%d/teachers", f.calc),
			token:    f.token,
			wantCode: http.StatusOK,
			wantBody: fmt.Sprintf(`{"teachers":[{"teacher":{"id":%d,"name":"Ana"}}]}`, f.ana),
		},
		{
			name:     "unknown discipline",
			method:   http.MethodGet,
			path:     "/disciplines/abc/teachers",
			token:    f.token,
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"not found"}`,
		},
		{
			name:     "increment views",
			method:   http.MethodPatch,
			path:     fmt.Sprintf("/tests/%d/views", f.p1),
			token:    f.token,
			wantCode: http.StatusOK,
			wantBody: `{"views":3}`,
		},
		{
			name:   "create test of unassigned teacher",
			method: http.MethodPost,
			path:   "/tests",
			token:  f.token,
			body: map[string]interface{}{
				"name": "P2", "pdfUrl": "https://pdf.example/p2",
				"categoryId": f.prova, "disciplineId": f.phys, "teacherId": f.ana,
			},
			wantCode: http.StatusUnprocessableEntity,
			wantBody: `"Professor não leciona essa disciplina"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, rec := newAuthRequest(tc.method, tc.path, tc.token, tc.body)
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantCode, rec.Code)
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestHTTPHandler_Tests(t *testing.T) {
	f := newFixture(t)
	h := NewHTTPHandler(f.backend, core.NopLogger(), true)

	req, rec := newAuthRequest(http.MethodGet, "/tests?groupBy=teachers&search=ana", f.token, nil)
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Tests []struct {
			Teacher struct {
				Name string `json:"name"`
			} `json:"teacher"`
			Tests []struct {
				Name  string `json:"name"`
				Views int    `json:"views"`
			} `json:"tests"`
		} `json:"tests"`
	}
	if assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)) && assert.Len(t, resp.Tests, 1) {
		assert.Equal(t, "Ana", resp.Tests[0].Teacher.Name)
		assert.Equal(t, "P1", resp.Tests[0].Tests[0].Name)
		assert.Equal(t, 2, resp.Tests[0].Tests[0].Views)
	}
}
