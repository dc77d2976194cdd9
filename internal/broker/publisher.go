package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ErzenXz/monolith/internal/config"
	"github.com/ErzenXz/monolith/internal/jobs"
	"github.com/ErzenXz/monolith/pkg/logger"
	"github.com/google/uuid"
)

// TriggerMessage is the wire body of one processing trigger.
type TriggerMessage struct {
	JobID string `json:"jobId"`
}

type delivery struct {
	messageID string
	body      []byte
}

// HTTPPublisher delivers signed processing triggers to the process endpoint
// over HTTP, with at-least-once semantics: a delivery failing with a non-2xx
// response or transport error is retried up to MaxAttempts with a fixed
// delay. Dispatch happens on background workers so Publish never blocks on
// the receiving endpoint.
type HTTPPublisher struct {
	cfg    *config.Config
	signer *Signer
	client *http.Client
	logger logger.Logger

	queue  chan delivery
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

var _ jobs.Publisher = (*HTTPPublisher)(nil)

func NewHTTPPublisher(cfg *config.Config, logger logger.Logger) *HTTPPublisher {
	return &HTTPPublisher{
		cfg:    cfg,
		signer: NewSigner(cfg.Broker.CurrentSigningKey),
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
		queue:  make(chan delivery, cfg.Broker.QueueSize),
	}
}

func (p *HTTPPublisher) Start() {
	for i := 0; i < p.cfg.Broker.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *HTTPPublisher) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()
	p.wg.Wait()
}

// Publish queues one trigger for dispatch. Failing here (publisher stopped
// or saturated) lets the caller roll the enqueue back.
func (p *HTTPPublisher) Publish(ctx context.Context, jobID string) (string, error) {
	body, err := json.Marshal(TriggerMessage{JobID: jobID})
	if err != nil {
		return "", fmt.Errorf("failed to marshal trigger: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return "", errors.New("trigger publisher stopped")
	}

	messageID := uuid.New().String()
	select {
	case p.queue <- delivery{messageID: messageID, body: body}:
		return messageID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		return "", errors.New("trigger publisher queue full")
	}
}

func (p *HTTPPublisher) worker() {
	defer p.wg.Done()
	for d := range p.queue {
		p.deliver(d)
	}
}

func (p *HTTPPublisher) deliver(d delivery) {
	for attempt := 1; attempt <= p.cfg.Broker.MaxAttempts; attempt++ {
		if err := p.post(d); err != nil {
			p.logger.Warnf("trigger delivery %s attempt %d/%d failed: %v",
				d.messageID, attempt, p.cfg.Broker.MaxAttempts, err)
			if attempt < p.cfg.Broker.MaxAttempts {
				time.Sleep(p.cfg.Broker.RetryDelay())
			}
			continue
		}
		return
	}
	p.logger.Errorf("trigger delivery %s exhausted %d attempts", d.messageID, p.cfg.Broker.MaxAttempts)
}

func (p *HTTPPublisher) post(d delivery) error {
	req, err := http.NewRequest(http.MethodPost, p.cfg.Broker.ProcessURL, bytes.NewReader(d.body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.Broker.CurrentSigningKey != "" {
		signature, err := p.signer.Sign(d.body)
		if err != nil {
			return err
		}
		req.Header.Set(SignatureHeader, signature)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("process endpoint returned %d", resp.StatusCode)
	}
	return nil
}
