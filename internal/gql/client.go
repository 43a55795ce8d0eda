package gql

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/machinebox/graphql"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Executor runs one GraphQL operation. Satisfied by *Client; faked in tests.
type Executor interface {
	Run(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error
}

// Client executes GraphQL operations against the managed backend.
type Client struct {
	gc     *graphql.Client
	apiKey string
	log    *logrus.Logger
}

var _ Executor = (*Client)(nil)

// Args configures a Client.
type Args struct {
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

// NewClient returns a Client for the given endpoint.
func NewClient(a Args) *Client {
	httpClient := a.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	c := &Client{
		gc:     graphql.NewClient(a.Endpoint, graphql.WithHTTPClient(httpClient)),
		apiKey: a.APIKey,
		log:    a.Logger,
	}
	if a.Logger != nil {
		c.gc.Log = func(s string) { a.Logger.Debug(s) }
	}
	return c
}

// Run implements Executor.Run.
func (c *Client) Run(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	req := graphql.NewRequest(query)
	for k, v := range vars {
		req.Var(k, v)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	if err := c.gc.Run(ctx, req, out); err != nil {
		// machinebox prefixes response-level errors with "graphql: ", which
		// is errors[0].message. Everything else is transport.
		if msg, ok := strings.CutPrefix(err.Error(), "graphql: "); ok {
			return &FieldError{Message: msg}
		}
		return errors.Wrap(err, "graphql transport")
	}
	return nil
}
