// Package vkapi is the outbound side of the bot: it delivers replies with
// the VK messages.send method.
package vkapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/garyellow/vkbot-go/internal/bot"
	"github.com/garyellow/vkbot-go/internal/config"
	"github.com/garyellow/vkbot-go/internal/ctxutil"
	"github.com/garyellow/vkbot-go/internal/logger"
	"github.com/garyellow/vkbot-go/internal/metrics"
)

const sendMethod = "messages.send"

// Config holds client settings. Zero durations fall back to config defaults.
type Config struct {
	BaseURL     string
	Version     string
	AccessToken string
	Timeout     time.Duration
	MaxRetries  int

	RetryWait    time.Duration
	RetryMaxWait time.Duration

	Logger  *logger.Logger
	Metrics *metrics.Metrics // optional
}

// Client calls the VK API.
type Client struct {
	http    *resty.Client
	token   string
	version string
	log     *logger.Logger
	metrics *metrics.Metrics
}

type envelope struct {
	Response json.RawMessage `json:"response"`
	Error    *APIError       `json:"error"`
}

// New creates a VK API client.
func New(cfg Config) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, errors.New("vkapi: access token is required")
	}
	if cfg.BaseURL == "" || cfg.Version == "" {
		return nil, errors.New("vkapi: base url and version are required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("vkapi: logger is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.VKAPIRequest
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = config.VKAPIRetryWait
	}
	if cfg.RetryMaxWait <= 0 {
		cfg.RetryMaxWait = config.VKAPIRetryMaxWait
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(max(cfg.MaxRetries, 0)).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		SetHeader("Accept", "application/json").
		AddRetryCondition(shouldRetry)

	return &Client{
		http:    httpClient,
		token:   cfg.AccessToken,
		version: cfg.Version,
		log:     cfg.Logger.WithModule("vkapi"),
		metrics: cfg.Metrics,
	}, nil
}

// shouldRetry retries transport failures, 5xx and 429 responses, and VK
// errors marked temporary.
func shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return false
	}
	if resp.StatusCode() >= http.StatusInternalServerError || resp.StatusCode() == http.StatusTooManyRequests {
		return true
	}
	var env envelope
	if json.Unmarshal(resp.Body(), &env) != nil || env.Error == nil {
		return false
	}
	return env.Error.Temporary()
}

// SendMessage delivers reply and returns the id of the created message.
// The random_id is derived from the event id in ctx, so retries and
// redelivered callbacks are deduplicated by VK.
func (c *Client) SendMessage(ctx context.Context, reply *bot.Reply) (int64, error) {
	if reply.IsEmpty() {
		return 0, errors.New("vkapi: empty reply")
	}
	if reply.PeerID == 0 {
		return 0, errors.New("vkapi: reply has no peer_id")
	}

	form := map[string]string{
		"peer_id":   strconv.FormatInt(reply.PeerID, 10),
		"random_id": strconv.FormatInt(int64(randomID(ctx, reply.PeerID)), 10),
	}
	if reply.Text != "" {
		form["message"] = reply.Text
	}
	if reply.Keyboard != nil {
		kb, err := reply.Keyboard.JSON()
		if err != nil {
			return 0, fmt.Errorf("vkapi: encode keyboard: %w", err)
		}
		form["keyboard"] = kb
	}
	if attachments := reply.AttachmentList(); attachments != "" {
		form["attachment"] = attachments
	}

	start := time.Now()
	var messageID int64
	err := c.call(ctx, sendMethod, form, &messageID)
	c.record(err, time.Since(start))
	if err != nil {
		return 0, err
	}

	c.log.DebugContext(ctx, "Message sent", "peer_id", reply.PeerID, "message_id", messageID)
	return messageID, nil
}

// call invokes method with params and decodes the response field into out.
func (c *Client) call(ctx context.Context, method string, params map[string]string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(params).
		SetFormData(map[string]string{
			"access_token": c.token,
			"v":            c.version,
		}).
		Post("/" + method)
	if err != nil {
		return fmt.Errorf("vkapi: %s: %w", method, err)
	}
	if resp.IsError() {
		return fmt.Errorf("vkapi: %s: unexpected status %d", method, resp.StatusCode())
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("vkapi: %s: decode response: %w", method, err)
	}
	if env.Error != nil {
		return fmt.Errorf("vkapi: %s: %w", method, env.Error)
	}
	if out != nil && len(env.Response) > 0 {
		if err := json.Unmarshal(env.Response, out); err != nil {
			return fmt.Errorf("vkapi: %s: decode response field: %w", method, err)
		}
	}
	return nil
}

func (c *Client) record(err error, dur time.Duration) {
	if c.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		if _, ok := IsAPIError(err); ok {
			status = "api_error"
		}
	}
	c.metrics.RecordSend(status, dur.Seconds())
}

// randomID is stable for one (event, peer) pair and random otherwise.
func randomID(ctx context.Context, peerID int64) int32 {
	eventID := ctxutil.GetEventID(ctx)
	if eventID == "" {
		return rand.Int32()
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(eventID))
	_, _ = h.Write([]byte(strconv.FormatInt(peerID, 10)))
	return int32(h.Sum32() & 0x7fffffff)
}
