package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config holds everything the ingest pipeline reads from the environment.
type Config struct {
	AWSRegion        string `envconfig:"AWS_REGION" default:"ap-southeast-2"`
	EnvSuffix        string `envconfig:"ENV_SUFFIX" default:"dev"`
	GraphQLEndpoint  string `envconfig:"GRAPHQL_ENDPOINT" required:"true"`
	GraphQLAPIKey    string `envconfig:"GRAPHQL_API_KEY"`
	ScraperAPIKey    string `envconfig:"SCRAPER_API_KEY"`
	AttachmentBucket string `envconfig:"ATTACHMENT_BUCKET" default:"kingsroom-media"`
	AttachmentPrefix string `envconfig:"ATTACHMENT_PREFIX" default:"social-media/post-attachments"`
	AdminAddr        string `envconfig:"ADMIN_ADDR" default:"127.0.0.1:8099"`
	DryRun           bool   `envconfig:"DRY_RUN"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
}

// FromEnv populates a Config from the process environment.
func FromEnv() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, errors.Wrap(err, "process env config")
	}
	return c, nil
}
