package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const transcribeInstruction = "You are an expert OCR system. Transcribe all text, " +
	"preserving original line breaks and structural formatting exactly. " +
	"DO NOT add any commentary or notes."

// Transcription failure modes. All are non-fatal to the caller: a page
// that cannot be transcribed degrades to a placeholder, it never aborts
// the document.
var (
	// ErrRequestFailed covers transport errors and non-success HTTP status.
	ErrRequestFailed = errors.New("llm: transcription request failed")

	// ErrBadResponse covers malformed response bodies.
	ErrBadResponse = errors.New("llm: malformed transcription response")

	// ErrEmptyResult is returned when the provider answers successfully but
	// yields no text, typically because the result was safety-filtered.
	ErrEmptyResult = errors.New("llm: empty transcription result")
)

// GeminiTranscriber sends page images to the Gemini generateContent API
// for transcription. The image is re-encoded to RGB JPEG before
// transmission so the declared MIME type always matches the payload,
// whatever the input's original color mode or container format.
type GeminiTranscriber struct {
	cfg    Config
	client *http.Client
}

// NewGemini creates a transcription client for Google Gemini. The API key
// and endpoint come from cfg, never from process-wide state, so tests can
// point the client at a fake server.
func NewGemini(cfg Config) *GeminiTranscriber {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	return &GeminiTranscriber{
		cfg: cfg,
		// One bounded synchronous call per page keeps per-page latency
		// predictable. No retry loop.
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// generateContent request/response wire types (native Gemini API).

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenCfg   `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenCfg struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Transcribe sends one image to Gemini and returns the raw transcription.
// The input may be any supported image encoding; it is normalized to JPEG
// before transmission.
func (g *GeminiTranscriber) Transcribe(ctx context.Context, image []byte) (string, error) {
	jpeg, err := toJPEG(image)
	if err != nil {
		return "", fmt.Errorf("%w: encoding image: %v", ErrRequestFailed, err)
	}

	body := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: "Transcribe the handwritten document exactly as formatted."},
				{InlineData: &geminiInlineData{
					MIMEType: "image/jpeg",
					Data:     base64.StdEncoding.EncodeToString(jpeg),
				}},
			},
		}},
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: transcribeInstruction}},
		},
		GenerationConfig: &geminiGenCfg{MaxOutputTokens: 2048},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.cfg.BaseURL, g.cfg.Model)
	if g.cfg.APIKey != "" {
		endpoint += "?key=" + url.QueryEscape(g.cfg.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", ErrBadResponse, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, truncate(respBody, 512))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	// The transcription lives at candidates[0].content.parts[0].text.
	// Any absent segment means the provider filtered or dropped the result.
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: response: %s", ErrEmptyResult, truncate(respBody, 512))
	}
	text := parsed.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("%w: response: %s", ErrEmptyResult, truncate(respBody, 512))
	}

	return text, nil
}

func truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
