package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cellarscan/cellarscan/constants"
	"github.com/cellarscan/cellarscan/internal/common"
)

const recognizePrompt = "Transcribe every piece of text visible in this image. " +
	"Preserve line breaks. Return the raw text only, with no commentary."

// Config for the vision OCR client.
type Config struct {
	BaseURL  string        // default https://api.openai.com/v1
	APIKey   string        // if empty, falls back to env OCR_API_KEY
	Model    string        // e.g. "gpt-4o-mini"
	Timeout  time.Duration // http client timeout
	MaxBytes int64         // reject local files larger than this
}

// VisionClient implements TextExtractor against an OpenAI-style
// chat/completions endpoint with image input.
type VisionClient struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func NewVisionClient(cfg Config, logger *slog.Logger) *VisionClient {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OCR_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 20 << 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VisionClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Recognize sends the image to the vision endpoint and returns the
// transcribed text. Remote URLs are passed through; local files are read,
// size-checked, and embedded as a data URL.
func (c *VisionClient) Recognize(ctx context.Context, imageRef string) (ExtractionResult, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("ocr.recognize.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"remote", constants.IsRemoteRef(imageRef),
	)

	imageURL, err := c.imageURL(imageRef)
	if err != nil {
		c.logger.Error("ocr.recognize.input_error", "req_id", rid, "error", err)
		return ExtractionResult{}, err
	}

	body := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": recognizePrompt},
					{"type": "image_url", "image_url": map[string]any{"url": imageURL}},
				},
			},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Error("ocr.recognize.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return ExtractionResult{}, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("ocr.recognize.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
		)
		return ExtractionResult{}, common.UpstreamError("decode vision response", err)
	}
	if len(cc.Choices) == 0 {
		return ExtractionResult{}, common.UpstreamError("no choices in vision response", common.ErrUnavailable)
	}

	text := stripFences(cc.Choices[0].Message.Content)
	res := ExtractionResult{
		Text:     text,
		Model:    c.cfg.Model,
		Duration: time.Since(start),
	}
	if strings.TrimSpace(text) == "" {
		res.Warnings = append(res.Warnings, "empty transcription")
	}

	c.logger.Info("ocr.recognize.ok",
		"req_id", rid,
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// imageURL resolves the reference to something the provider accepts.
func (c *VisionClient) imageURL(imageRef string) (string, error) {
	if imageRef == "" {
		return "", common.InputError("empty image reference", common.ErrInvalidInput)
	}
	if constants.IsRemoteRef(imageRef) {
		return imageRef, nil
	}

	ext := constants.NormalizeExt(filepath.Ext(imageRef))
	if !constants.IsAllowedExt(ext) {
		return "", common.InputError(fmt.Sprintf("unsupported image extension %q", ext), common.ErrUnsupportedFormat)
	}

	info, err := os.Stat(imageRef)
	if err != nil {
		return "", common.InputError("stat image", common.ErrNotFound)
	}
	if info.Size() > c.cfg.MaxBytes {
		return "", common.InputError(
			fmt.Sprintf("image is %d bytes, limit %d", info.Size(), c.cfg.MaxBytes),
			common.ErrPayloadTooLarge,
		)
	}

	data, err := os.ReadFile(imageRef)
	if err != nil {
		return "", common.InputError("read image", err)
	}
	mime := "image/" + ext
	if ext == "jpg" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (c *VisionClient) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, common.UpstreamError("marshal request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, common.UpstreamError("build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, common.UpstreamError("vision http error", common.ErrUnavailable)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Warn("ocr.response_body_close_error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, raw)
	}
	return raw, nil
}

// statusError folds provider HTTP statuses onto the application's stable
// error kinds so callers can branch with errors.Is.
func statusError(code int, body []byte) error {
	msg := fmt.Sprintf("vision status %d: %s", code, truncate(string(body), 256))
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return common.UpstreamError(msg, common.ErrCredentials)
	case code == http.StatusNotFound:
		return common.UpstreamError(msg, common.ErrNotFound)
	case code == http.StatusRequestEntityTooLarge:
		return common.UpstreamError(msg, common.ErrPayloadTooLarge)
	case code == http.StatusUnsupportedMediaType:
		return common.UpstreamError(msg, common.ErrUnsupportedFormat)
	case code == http.StatusTooManyRequests:
		if bytes.Contains(body, []byte("quota")) {
			return common.UpstreamError(msg, common.ErrQuotaExceeded)
		}
		return common.UpstreamError(msg, common.ErrRateLimited)
	case code >= 500:
		return common.UpstreamError(msg, common.ErrUnavailable)
	default:
		return common.UpstreamError(msg, common.ErrInternal)
	}
}

// stripFences removes a surrounding markdown code fence, which some models
// add despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], " \t") {
		// drop a language tag on the opening fence
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
