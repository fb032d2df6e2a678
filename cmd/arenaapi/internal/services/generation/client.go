package generation

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrGenerationFailed is returned when the backend is unreachable, reports
// failure, or replies outside the response contract.
var ErrGenerationFailed = errors.New("image generation failed")

// maxResponseBytes bounds the backend reply; a 512x512 PNG in base64 is well below it.
const maxResponseBytes = 16 << 20

//go:embed response.schema.json
var responseSchemaJSON string

// backendRequest is the body of POST /generate-image.
type backendRequest struct {
	Prompt string `json:"prompt"`
}

// backendResponse is the body returned by POST /generate-image.
type backendResponse struct {
	Success     bool   `json:"success"`
	ImageData   string `json:"imageData"`
	Prompt      string `json:"prompt"`
	Description string `json:"description"`
	Error       string `json:"error"`
}

// Client calls the image-generation backend.
type Client struct {
	baseURL string
	http    *http.Client
	schema  *jsonschema.Schema
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("generator url is required")
	}
	schema, err := compileResponseSchema()
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		schema:  schema,
	}, nil
}

func compileResponseSchema() (*jsonschema.Schema, error) {
	parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(responseSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse response schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)

	schemaURL := "generate-image-response.json"
	if err := compiler.AddResource(schemaURL, parsed); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}
	return schema, nil
}

// Generate renders prompt and returns the PNG as base64.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(backendRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate-image", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: call generator: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read generator response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: generator returned HTTP %d", ErrGenerationFailed, resp.StatusCode)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: malformed response: %v", ErrGenerationFailed, err)
	}
	if err := c.schema.Validate(doc); err != nil {
		return "", fmt.Errorf("%w: %s", ErrGenerationFailed, formatValidationError(err))
	}

	var out backendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrGenerationFailed, err)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "backend reported failure"
		}
		return "", fmt.Errorf("%w: %s", ErrGenerationFailed, msg)
	}
	if _, err := base64.StdEncoding.DecodeString(out.ImageData); err != nil {
		return "", fmt.Errorf("%w: image data is not base64", ErrGenerationFailed)
	}
	return out.ImageData, nil
}

// formatValidationError renders a schema violation with its JSON path,
// e.g. "validation failed at '$.imageData': ...".
func formatValidationError(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}

	path := "$"
	var parts []string
	for _, part := range ve.InstanceLocation {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		path = "$." + strings.Join(parts, ".")
	}

	msg := ve.Error()
	if len(msg) > 200 {
		msg = msg[:200] + "... (truncated)"
	}
	return fmt.Sprintf("validation failed at '%s': %s", path, msg)
}
