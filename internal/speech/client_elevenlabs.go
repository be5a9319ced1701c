package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	elevenLabsURL = "https://api.elevenlabs.io/v1/text-to-speech"
	// Rachel
	defaultVoiceID = "EXAVITQu4vr4xnSDxMaL"
	// многоязычная модель нужна для индийских языков
	defaultElevenLabsModel = "eleven_multilingual_v2"
)

type ElevenLabsClient struct {
	apiKey   string
	voiceID  string
	endpoint string
	httpCli  *http.Client
}

func NewElevenLabsClient(apiKey, voiceID, endpoint string) *ElevenLabsClient {
	if voiceID == "" {
		voiceID = defaultVoiceID
	}
	if endpoint == "" {
		endpoint = elevenLabsURL
	}
	return &ElevenLabsClient{
		apiKey:   apiKey,
		voiceID:  voiceID,
		endpoint: endpoint,
		httpCli:  http.DefaultClient,
	}
}

// TEXT → SPEECH (mp3)
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.endpoint, c.voiceID)

	payload, err := json.Marshal(map[string]string{
		"text":     text,
		"model_id": defaultElevenLabsModel,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("elevenlabs error: status %d: %s", resp.StatusCode, string(b))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read elevenlabs body: %w", err)
	}
	return data, nil
}
