package probe

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/xeipuuv/gojsonschema"

	"github.com/probeops/dualwatch/internal/domain"
)

// maxHealthBodyBytes caps how much of a health response body is read for validation.
const maxHealthBodyBytes = 1 << 20

// RESTProber performs the conventional HTTP health-endpoint probe path,
// optionally validating the response body against a JSON schema.
type RESTProber struct {
	logger  hclog.Logger
	client  *http.Client
	timeout time.Duration
}

// NewRESTProber creates a prober for the REST path.
func NewRESTProber(logger hclog.Logger, timeout time.Duration) (*RESTProber, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", timeout)
	}

	return &RESTProber{
		logger:  logger.Named("probe.rest"),
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}, nil
}

// Probe runs one REST health check against the target. It always returns a
// result; failures are recorded on the result rather than returned.
func (p *RESTProber) Probe(ctx context.Context, target Target) *domain.RESTProbeResult {
	result := &domain.RESTProbeResult{
		ServerName: target.Name,
		Timestamp:  time.Now().UTC(),
	}

	start := time.Now()
	defer func() {
		result.ResponseTimeMs = float64(time.Since(start).Microseconds()) / 1000.0
	}()

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, target.RESTURL, nil)
	if err != nil {
		result.ConnectionError = fmt.Sprintf("failed to build health request: %v", err)
		return result
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if stdErrors.Is(err, context.DeadlineExceeded) {
			result.HTTPError = fmt.Sprintf("health request timeout after %s", p.timeout)
		} else {
			result.ConnectionError = fmt.Sprintf("health request failed: %v", err)
		}
		return result
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	result.StatusCode = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHealthBodyBytes))
	if err != nil {
		result.HTTPError = fmt.Sprintf("failed to read health response body: %v", err)
		return result
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result.HTTPError = fmt.Sprintf("health endpoint returned status %d", resp.StatusCode)
		return result
	}

	result.Success = true

	if target.HealthSchema != "" {
		result.Validation = p.validateBody(target, body)
	}

	p.logger.Debug("REST probe completed", "server", target.Name, "status", resp.StatusCode)

	return result
}

// validateBody checks the health response body against the target's JSON schema.
func (p *RESTProber) validateBody(target Target, body []byte) *domain.ValidationResult {
	schemaLoader := gojsonschema.NewStringLoader(target.HealthSchema)
	documentLoader := gojsonschema.NewBytesLoader(body)

	outcome, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &domain.ValidationResult{
			IsValid: false,
			Errors:  []string{fmt.Sprintf("health body validation failed: %v", err)},
		}
	}

	validation := &domain.ValidationResult{IsValid: outcome.Valid()}
	for _, desc := range outcome.Errors() {
		validation.Errors = append(validation.Errors, desc.String())
	}

	return validation
}
