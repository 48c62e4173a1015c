package controllers

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrAuthRejected marks a 401/403 from the remote side. Credential errors
// are never retried.
var ErrAuthRejected = errors.New("authentication rejected")

// ClientController is the one retrying HTTP client shared by the broker
// gateway and the event publisher. Retries cover transport errors and
// non-2xx responses, with backoff × 2^attempt sleeps between attempts.
type ClientController struct {
	client *http.Client
	logger *logrus.Logger

	maxRetries int
	backoff    time.Duration
}

func NewClientController(
	client *http.Client,
	maxRetries int,
	backoff time.Duration,
	logger *logrus.Logger,
) *ClientController {
	return &ClientController{
		client:     client,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger,
	}
}

func (c *ClientController) Send(method string, u *url.URL, headers map[string]string, body []byte) (int, []byte, error) {
	var (
		lastStatus int
		lastBody   []byte
		lastErr    error
	)

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(c.backoff * (1 << uint(attempt-1)))
		}

		status, out, err := c.do(method, u, headers, body)
		if err != nil {
			c.logger.
				WithField("method", "Send").
				WithError(err).
				Errorf("%s %s attempt %d/%d", method, u, attempt+1, c.maxRetries+1)

			lastStatus, lastBody, lastErr = 0, nil, err

			continue
		}

		if status >= http.StatusOK && status < http.StatusMultipleChoices {
			return status, out, nil
		}

		c.logger.
			WithField("method", "Send").
			Errorf("non-2xx from %s: %d body=%s", u, status, truncate(out, 500))

		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return status, out, ErrAuthRejected
		}

		lastStatus, lastBody, lastErr = status, out, errors.Errorf("status %d from %s", status, u)
	}

	return lastStatus, lastBody, errors.Wrap(lastErr, "send failed after retries")
}

func (c *ClientController) do(method string, u *url.URL, headers map[string]string, body []byte) (int, []byte, error) {
	req, err := http.NewRequest(method, u.String(), bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}

	req.Header.Add("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	out, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, out, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}

	return string(b)
}
