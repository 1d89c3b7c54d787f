package openai

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/foxseedlab/matome/internal/completion"
	goopenai "github.com/sashabaranov/go-openai"
)

var errNoChoices = errors.New("payload has no choices")

// DecodeResponse extracts the trimmed answer from a non-streaming response body.
func DecodeResponse(body []byte) (string, error) {
	var resp goopenai.ChatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &completion.DecodeError{Payload: string(body), Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &completion.DecodeError{Payload: string(body), Err: errNoChoices}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// DecodeDelta extracts the text increment from one stream chunk.
func DecodeDelta(data string) (string, error) {
	var chunk goopenai.ChatCompletionStreamResponse
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return "", &completion.DecodeError{Payload: data, Err: err}
	}
	if len(chunk.Choices) == 0 {
		return "", &completion.DecodeError{Payload: data, Err: errNoChoices}
	}
	return chunk.Choices[0].Delta.Content, nil
}

func upstreamError(resp *http.Response) *completion.UpstreamError {
	upstreamErr := &completion.UpstreamError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return upstreamErr
	}
	var errResp goopenai.ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil {
		upstreamErr.Message = errResp.Error.Message
	}
	return upstreamErr
}
