// Package config holds the fixed repository list and loads credentials from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/naka-gawa/github-contributions/internal/domain"
)

const (
	// EnvLogin names the variable holding the GitHub login whose contributions are collected.
	EnvLogin = "GITHUB_LOGIN"
	// EnvToken names the variable holding the GitHub access token.
	EnvToken = "GITHUB_TOKEN"

	// DefaultOutputPath is where the site reads open source contributions from.
	DefaultOutputPath = "data/open_source.json"
)

// Repositories are the tracked repositories, in the order they appear on the site.
var Repositories = []string{
	"rails/rails",
	"aws/chalice",
	"aws/aws-sdk-java",
	"serverless/serverless",
	"encode/httpx",
	"ajaxorg/ace",
	"timgrossmann/InstaPy",
	"jneen/rouge",
	"gnocchixyz/gnocchi",
	"openstack-dev/pbr",
}

// Credentials authenticate every GitHub request.
type Credentials struct {
	Login string
	Token string
}

// LoadCredentials reads the credentials from the environment, loading a .env file first if present.
// Variables already set in the environment take precedence over the file.
func LoadCredentials() (*Credentials, error) {
	_ = godotenv.Load()

	creds := &Credentials{
		Login: os.Getenv(EnvLogin),
		Token: os.Getenv(EnvToken),
	}
	if creds.Login == "" {
		return nil, fmt.Errorf("%w: %s environment variable is not set", domain.ErrAuthentication, EnvLogin)
	}
	if creds.Token == "" {
		return nil, fmt.Errorf("%w: %s environment variable is not set", domain.ErrAuthentication, EnvToken)
	}
	return creds, nil
}
