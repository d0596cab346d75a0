// Package edge - Clients for managed model compilation and edge packaging
// jobs. Jobs run remotely; these clients submit them and poll on a fixed
// interval until the service reports a terminal status.
package edge

import (
	"time"

	"github.com/aws/aws-sdk-go/service/sagemaker/sagemakeriface"
	"github.com/sirupsen/logrus"
)

// DefaultPollInterval is how often job status is re-checked.
const DefaultPollInterval = 30 * time.Second

// Client submits compilation and packaging jobs and waits for them to
// reach a terminal state.
type Client struct {
	api          sagemakeriface.SageMakerAPI
	log          *logrus.Logger
	pollInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithPollInterval overrides the status polling interval.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// WithLogger overrides the client logger.
func WithLogger(log *logrus.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a job client over the given service API.
//
// Arguments:
//   - api: The SageMaker API surface (an interface, so tests can fake it).
//   - opts: Optional overrides for poll interval and logging.
//
// Returns:
//   - *Client: The configured client.
func NewClient(api sagemakeriface.SageMakerAPI, opts ...Option) *Client {
	c := &Client{
		api:          api,
		log:          logrus.StandardLogger(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
