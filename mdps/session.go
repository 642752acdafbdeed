package mdps

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables consulted by NewSession.
const (
	EnvProject     = "PROJECT"
	EnvVenue       = "VENUE"
	EnvEnvironment = "ENVIRONMENT"
	EnvDataURL     = "DATA_SERVICES_URL"
	EnvAuthToken   = "MDPS_TOKEN"
)

// Session identifies the MDPS project/venue this process operates against.
type Session struct {
	Project     string
	Venue       string
	Environment string
	DataURL     string
}

// NewSession loads the platform identity from the environment, optionally
// reading a .env file first. Defaults match the operational venue.
func NewSession(envFile string) (*Session, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("mdps: load env file %s: %w", envFile, err)
		}
	} else {
		// Best effort load of a .env in the working directory.
		godotenv.Load()
	}

	s := &Session{
		Project:     envOr(EnvProject, "unity"),
		Venue:       envOr(EnvVenue, "ops"),
		Environment: envOr(EnvEnvironment, "PROD"),
		DataURL:     os.Getenv(EnvDataURL),
	}
	return s, nil
}

func (s *Session) String() string {
	return fmt.Sprintf("project=%s venue=%s environment=%s", s.Project, s.Venue, s.Environment)
}

// Client builds a data services client for this session. The bearer token
// is read from MDPS_TOKEN at request time.
func (s *Session) Client(opts ...ClientOption) (*Client, error) {
	if s.DataURL == "" {
		return nil, fmt.Errorf("mdps: %s is not set", EnvDataURL)
	}
	base := []ClientOption{
		WithBaseURL(s.DataURL),
		WithTokenProvider(EnvToken(EnvAuthToken)),
		// Operator runs fail fast; every call is issued at most once.
		WithRetryPolicy(NoRetry),
	}
	return New(append(base, opts...)...)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
