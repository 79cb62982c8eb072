// Package webhook implements the Push-Notification Service: signed,
// non-blocking delivery of operation status updates to buyer-registered
// webhooks. The signing scheme and payload shape are ported verbatim
// from the reference Python implementation's ProtocolWebhookService.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	userAgent      = "AdCP-Sales-Agent/1.0"
	adcpVersion    = "2.3.0"
	deliveryTimeout = 10 * time.Second
)

// Config is the destination + auth scheme for one push-notification
// target, matching the PushNotificationConfig data model (§3).
type Config struct {
	URL            string
	AuthType       string // "HMAC-SHA256", "Bearer", or "" / "none"
	AuthCredential string
}

// Payload is the fixed wire shape of every webhook delivery (§4.6).
type Payload struct {
	TaskID     string `json:"task_id"`
	TaskType   string `json:"task_type"`
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
	ADCPVersion string `json:"adcp_version"`
	Result     any    `json:"result,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Service delivers webhooks on a bounded worker pool so a slow receiver
// never back-pressures the foreground request (§4.6, §9).
type Service struct {
	client   *http.Client
	log      logr.Logger
	jobs     chan job
	deliveries *prometheus.CounterVec
}

type job struct {
	ctx    context.Context
	cfg    Config
	taskID string
	taskType string
	status string
	result any
	errMsg string
}

// NewService starts a Service with poolSize worker goroutines.
func NewService(log logr.Logger, poolSize int, registerer prometheus.Registerer) *Service {
	if poolSize <= 0 {
		poolSize = 16
	}
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adcp_webhook_deliveries_total",
		Help: "Outbound push-notification webhook delivery attempts.",
	}, []string{"scheme", "outcome"})
	if registerer != nil {
		registerer.MustRegister(counter)
	}

	s := &Service{
		client:     &http.Client{Timeout: deliveryTimeout},
		log:        log.WithName("webhook"),
		jobs:       make(chan job, 256),
		deliveries: counter,
	}
	for i := 0; i < poolSize; i++ {
		go s.worker()
	}
	return s
}

// Send enqueues a webhook delivery without blocking the caller. If the
// queue is full, the job is dropped and logged rather than blocking —
// per the non-blocking guarantee, a foreground request must never wait
// on webhook delivery.
func (s *Service) Send(ctx context.Context, cfg Config, taskID, taskType, status string, result any, errMsg string) {
	if cfg.URL == "" {
		return
	}
	j := job{ctx: context.WithoutCancel(ctx), cfg: cfg, taskID: taskID, taskType: taskType, status: status, result: result, errMsg: errMsg}
	select {
	case s.jobs <- j:
	default:
		s.log.Info("webhook queue full, dropping delivery", "task_id", taskID, "status", status)
	}
}

func (s *Service) worker() {
	for j := range s.jobs {
		s.deliver(j)
	}
}

func (s *Service) deliver(j job) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Info("webhook delivery panicked, recovered", "task_id", j.taskID, "panic", r)
		}
	}()

	payload := Payload{
		TaskID:      j.taskID,
		TaskType:    j.taskType,
		Status:      j.status,
		Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
		ADCPVersion: adcpVersion,
		Result:      j.result,
		Error:       j.errMsg,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.log.Error(err, "failed to marshal webhook payload", "task_id", j.taskID)
		return
	}

	req, err := http.NewRequestWithContext(j.ctx, http.MethodPost, normalizeLocalhost(j.cfg.URL), bytes.NewReader(body))
	if err != nil {
		s.log.Error(err, "failed to build webhook request", "task_id", j.taskID)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	applyAuth(req, j.cfg, body)

	resp, err := s.client.Do(req)
	outcome := "success"
	if err != nil {
		outcome = "error"
		s.log.Info("webhook delivery failed", "task_id", j.taskID, "url", j.cfg.URL, "error", err.Error())
	} else {
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			outcome = "http_error"
			s.log.Info("webhook delivery returned error status", "task_id", j.taskID, "status", resp.StatusCode)
		}
	}
	s.deliveries.WithLabelValues(schemeLabel(j.cfg.AuthType), outcome).Inc()
}

func schemeLabel(authType string) string {
	if authType == "" {
		return "none"
	}
	return authType
}

// applyAuth signs or authenticates the outbound request per §4.6. The
// HMAC canonicalization (`"<unix_ts>.<compact_json_payload>"`) and
// header names match the reference implementation byte for byte so
// existing receivers verify unchanged.
func applyAuth(req *http.Request, cfg Config, body []byte) {
	switch cfg.AuthType {
	case "HMAC-SHA256":
		if cfg.AuthCredential == "" {
			return
		}
		ts := strconv.FormatInt(time.Now().Unix(), 10)
		message := ts + "." + string(body)
		mac := hmac.New(sha256.New, []byte(cfg.AuthCredential))
		mac.Write([]byte(message))
		sig := hex.EncodeToString(mac.Sum(nil))
		req.Header.Set("X-AdCP-Signature", "sha256="+sig)
		req.Header.Set("X-AdCP-Timestamp", ts)
	case "Bearer":
		if cfg.AuthCredential == "" {
			return
		}
		req.Header.Set("Authorization", "Bearer "+cfg.AuthCredential)
	}
}

// normalizeLocalhost rewrites a localhost host to host.docker.internal,
// preserving userinfo and port, so container-bound test receivers are
// reachable (§4.6).
func normalizeLocalhost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.Hostname() != "localhost" {
		return rawURL
	}
	host := "host.docker.internal"
	if port := u.Port(); port != "" {
		host = fmt.Sprintf("%s:%s", host, port)
	}
	u.Host = host
	return u.String()
}
