package gql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoganho/kingsroom-sub004/internal/common/log"
)

func TestClientRun(t *testing.T) {
	t.Parallel()

	t.Run("SendsAPIKeyAndVars", func(t *testing.T) {
		t.Parallel()
		var gotKey string
		var gotBody struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("x-api-key")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_, _ = w.Write([]byte(`{"data":{"ping":"pong"}}`))
		}))
		t.Cleanup(srv.Close)

		c := NewClient(Args{Endpoint: srv.URL, APIKey: "k-123", Logger: log.NewNop()})
		var out struct {
			Ping string `json:"ping"`
		}
		err := c.Run(context.Background(), `query { ping }`, map[string]interface{}{"id": "42"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "k-123", gotKey)
		assert.Equal(t, `query { ping }`, gotBody.Query)
		assert.Equal(t, "42", gotBody.Variables["id"])
		assert.Equal(t, "pong", out.Ping)
	})

	t.Run("NoAPIKeyNoHeader", func(t *testing.T) {
		t.Parallel()
		var sawHeader bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, sawHeader = r.Header[http.CanonicalHeaderKey("x-api-key")]
			_, _ = w.Write([]byte(`{"data":{}}`))
		}))
		t.Cleanup(srv.Close)

		c := NewClient(Args{Endpoint: srv.URL, Logger: log.NewNop()})
		var out struct{}
		require.NoError(t, c.Run(context.Background(), `query { ping }`, nil, &out))
		assert.False(t, sawHeader)
	})

	t.Run("ResponseErrorBecomesFieldError", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"Scraping is disabled for this URL"}]}`))
		}))
		t.Cleanup(srv.Close)

		c := NewClient(Args{Endpoint: srv.URL, Logger: log.NewNop()})
		var out struct{}
		err := c.Run(context.Background(), `query { ping }`, nil, &out)
		require.Error(t, err)
		assert.True(t, IsFieldError(err))
		assert.True(t, IsDoNotScrape(err))
		assert.Equal(t, "Scraping is disabled for this URL", err.Error())
	})

	t.Run("TransportErrorIsNotFieldError", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		t.Cleanup(srv.Close)

		c := NewClient(Args{Endpoint: srv.URL, Logger: log.NewNop()})
		var out struct{}
		err := c.Run(context.Background(), `query { ping }`, nil, &out)
		require.Error(t, err)
		assert.False(t, IsFieldError(err))
	})
}
