package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/minios-linux/mclocalizer/settings"
)

// ErrRequestFailed marks a failed translation request: a transport error,
// a non-2xx status or a response without text. These are retried.
var ErrRequestFailed = errors.New("translation request failed")

// Translator turns a marked batch into translated marked text.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

const (
	// DefaultEndpoint is the local OpenAI-compatible chat completion server.
	DefaultEndpoint = "http://localhost:1337/v1/chat/completions"
	DefaultModel    = "deepseek-v3"
	// DefaultProvider is the upstream the local server should route to.
	DefaultProvider = "Blackbox"
	// DefaultRetryDelay is the pause between failed attempts.
	DefaultRetryDelay = time.Second
)

// ---------------------------------------------------------------------------
// Instruction prompt
// ---------------------------------------------------------------------------

// PromptKey is the prompts.json key holding the translation instruction.
const PromptKey = "minecraft"

// DefaultInstruction is appended after the marked batch.
// {{targetLang}} is the Minecraft locale code and {{targetLangName}} its
// English display name.
const DefaultInstruction = `Translate the text into the language of this language tag {{targetLang}} ({{targetLangName}}), leaving all special characters. ` +
	`Keep every @N marker exactly as it is. ` +
	`Keep in mind that the translation is in the context of the Minecraft game with mods. ` +
	`You don't need to add your own words, just a translation!`

// PromptsConfig holds instruction prompts loaded from prompts.json.
type PromptsConfig struct {
	Prompts map[string]string `json:"prompts"`
}

// Instruction returns the configured instruction or DefaultInstruction.
func (c *PromptsConfig) Instruction() string {
	if c != nil {
		if p, ok := c.Prompts[PromptKey]; ok && strings.TrimSpace(p) != "" {
			return p
		}
	}
	return DefaultInstruction
}

// LoadPromptsFromFile loads prompts from a JSON file. A missing file yields
// nil and no error.
func LoadPromptsFromFile(path string) (*PromptsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var config PromptsConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}
	return &config, nil
}

// createDefaultPromptsFile writes the built-in prompts to path.
func createDefaultPromptsFile(path string) error {
	config := PromptsConfig{Prompts: map[string]string{PromptKey: DefaultInstruction}}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling default prompts: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating prompts directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing default prompts file: %w", err)
	}
	return nil
}

// LoadPromptsFromDefaultLocations loads prompts.json from the user data
// directory, creating it with the built-in instruction when absent. It
// returns the loaded config and its path.
func LoadPromptsFromDefaultLocations() (*PromptsConfig, string, error) {
	path, err := settings.PromptsFilePath()
	if err != nil {
		return nil, "", fmt.Errorf("cannot determine prompts file path: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createDefaultPromptsFile(path); err != nil {
			return nil, "", fmt.Errorf("creating default prompts file: %w", err)
		}
	}

	config, err := LoadPromptsFromFile(path)
	if err != nil {
		return nil, "", err
	}
	return config, path, nil
}

// RenderInstruction substitutes the language placeholders.
func RenderInstruction(template, lang, langName string) string {
	if langName == "" {
		langName = lang
	}
	return strings.NewReplacer(
		"{{targetLang}}", lang,
		"{{targetLangName}}", langName,
	).Replace(template)
}

// ---------------------------------------------------------------------------
// HTTP translator
// ---------------------------------------------------------------------------

// HTTPTranslator posts batches to an OpenAI-compatible chat completion
// endpoint. Failed attempts are retried every RetryDelay, without limit,
// until the context ends.
type HTTPTranslator struct {
	// Endpoint is the full chat completions URL.
	Endpoint string
	// Model is the model identifier.
	Model string
	// Provider is the upstream name forwarded to aggregating servers.
	Provider string
	// APIKey is sent as a bearer token when set.
	APIKey string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the per-request timeout.
	Timeout time.Duration
	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration

	// TargetLang is the Minecraft locale code, e.g. "ru_ru".
	TargetLang string
	// TargetLangName is the display name, e.g. "Russian".
	TargetLangName string
	// Instruction is the prompt template; DefaultInstruction when empty.
	Instruction string

	// OnLog receives retry diagnostics.
	OnLog func(format string, args ...any)
	// Verbose logs every attempt.
	Verbose bool

	client *http.Client
}

func (t *HTTPTranslator) log(format string, args ...any) {
	if t.OnLog != nil {
		t.OnLog(format, args...)
	}
}

func (t *HTTPTranslator) effectiveEndpoint() string {
	if t.Endpoint != "" {
		return t.Endpoint
	}
	return DefaultEndpoint
}

func (t *HTTPTranslator) effectiveModel() string {
	if t.Model != "" {
		return t.Model
	}
	return DefaultModel
}

func (t *HTTPTranslator) effectiveRetryDelay() time.Duration {
	if t.RetryDelay > 0 {
		return t.RetryDelay
	}
	return DefaultRetryDelay
}

func (t *HTTPTranslator) effectiveTimeout() time.Duration {
	if t.Timeout > 0 {
		return t.Timeout
	}
	return 120 * time.Second
}

// Prompt returns the full user message for a marked batch.
func (t *HTTPTranslator) Prompt(text string) string {
	instruction := t.Instruction
	if instruction == "" {
		instruction = DefaultInstruction
	}
	return text + "\n\n" + RenderInstruction(instruction, t.TargetLang, t.TargetLangName)
}

// Translate sends text and returns the response content. An empty text is
// returned unchanged without a request.
func (t *HTTPTranslator) Translate(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}

	body, err := buildChatRequest(t.effectiveModel(), t.Provider, t.Prompt(text))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	if t.client == nil {
		t.client = makeHTTPClient(t.Proxy, t.effectiveTimeout())
	}

	var (
		result  string
		attempt int
	)
	err = retry.Do(ctx, retry.NewConstant(t.effectiveRetryDelay()), func(ctx context.Context) error {
		attempt++
		if t.Verbose {
			t.log("attempt %d: POST %s", attempt, t.effectiveEndpoint())
		}
		text, err := t.post(ctx, body)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			t.log("attempt %d failed, retrying in %v: %v", attempt, t.effectiveRetryDelay(), err)
			return retry.RetryableError(err)
		}
		result = text
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}
	return result, nil
}

func (t *HTTPTranslator) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.effectiveEndpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.APIKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, truncate(string(respBody), 500))
	}

	text, err := extractResponseText(respBody)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	return text, nil
}

// ---------------------------------------------------------------------------
// Wire format
// ---------------------------------------------------------------------------

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
	Model    string        `json:"model"`
	Provider string        `json:"provider,omitempty"`
}

func buildChatRequest(model, provider, prompt string) ([]byte, error) {
	return json.Marshal(chatRequest{
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Model:    model,
		Provider: provider,
	})
}

// extractResponseText returns the first choices[].message.content.
func extractResponseText(body []byte) (string, error) {
	var resp struct {
		Choices []struct {
			Message *struct {
				Content *string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}

	if len(resp.Error) > 0 && string(resp.Error) != "null" {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(resp.Error, &apiErr) == nil && apiErr.Message != "" {
			return "", fmt.Errorf("API error: %s", apiErr.Message)
		}
		return "", fmt.Errorf("API error: %s", truncate(string(resp.Error), 500))
	}

	for _, c := range resp.Choices {
		if c.Message != nil && c.Message.Content != nil {
			return *c.Message.Content, nil
		}
	}

	return "", fmt.Errorf("could not extract text from response: %s", truncate(string(body), 500))
}

// ---------------------------------------------------------------------------
// HTTP client with real proxy support
// ---------------------------------------------------------------------------

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
