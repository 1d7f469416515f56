package di

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/thalesor/repoprovas/apps/api/echo"
	"github.com/thalesor/repoprovas/core"
	"github.com/thalesor/repoprovas/core/exam"
)

func testConfig() (*core.Config, error) {
	return &core.Config{
		AppName:  "RepoProvas",
		Env:      "TEST",
		TestMode: true,
		Server:   core.ServerConfig{DisableRequestLogs: true},
		Backend:  core.BackendConfig{BaseURL: "http://localhost:5000", Timeout: time.Second},
		Views:    core.ViewsConfig{TermCountPolicy: exam.AllInstructors.Name},
		Alert:    core.AlertConfig{AutoHide: time.Minute},
	}, nil
}

func TestNew(t *testing.T) {
	c := New(testConfig)

	err := c.Invoke(func(logger core.Logger, backend exam.Backend, server echoapi.Server) {
		assert.NotNil(t, logger)
		assert.NotNil(t, backend)
		defer server.Close()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	require.NoError(t, err)
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*core.Config)
	}{
		{name: "invalid backend url", modify: func(conf *core.Config) { conf.Backend.BaseURL = "localhost" }},
		{name: "unknown count policy", modify: func(conf *core.Config) { conf.Views.TermCountPolicy = "median" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(func() (*core.Config, error) {
				conf, _ := testConfig()
				tt.modify(conf)
				return conf, nil
			})
			err := c.Invoke(func(echoapi.Server) {})
			assert.Error(t, err)
		})
	}

	c := New(func() (*core.Config, error) { return nil, errors.New("no config") })
	assert.Error(t, c.Invoke(func(*core.Config) {}))
}
