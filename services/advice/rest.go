package advicesvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/advice"
)

const systemPrompt = "You are a study coach. Given the topics a student wants to work on and their pending " +
	"assignments, write a short, concrete study plan for the coming week."

type (
	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	completionRequest struct {
		Model    string        `json:"model"`
		Messages []chatMessage `json:"messages"`
	}

	completionResponse struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
)

// RESTGenerator asks a chat-completion HTTP endpoint for study advice.
type RESTGenerator struct {
	endpoint string
	apiKey   string
	model    string
	timeout  time.Duration
	client   *rest.Client
}

var _ advice.Generator = (*RESTGenerator)(nil)

func NewRESTGenerator(conf *core.Config) *RESTGenerator {
	return &RESTGenerator{
		endpoint: conf.Advice.Endpoint,
		apiKey:   conf.Advice.APIKey,
		model:    conf.Advice.Model,
		timeout:  conf.Advice.Timeout,
		client:   &rest.Client{HTTPClient: &http.Client{Timeout: conf.Advice.Timeout}},
	}
}

func prompt(topics, pending string) string {
	var sb strings.Builder
	if topics == "" {
		topics = "(none given)"
	}
	fmt.Fprintf(&sb, "Topics: %s\n", topics)
	if pending == "" {
		sb.WriteString("Pending assignments: none\n")
	} else {
		sb.WriteString("Pending assignments:\n")
		sb.WriteString(pending)
	}
	return sb.String()
}

func (g *RESTGenerator) Generate(ctx context.Context, topics, pending string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt(topics, pending)},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "encoding completion request")
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	req, err := rest.BuildRequestObject(rest.Request{
		Method:  rest.Post,
		BaseURL: g.endpoint,
		Headers: map[string]string{
			"Authorization": "Bearer " + g.apiKey,
			"Content-Type":  "application/json",
		},
		Body: body,
	})
	if err != nil {
		return "", errors.Wrap(err, "building advice request")
	}
	httpRes, err := g.client.MakeRequest(req.WithContext(ctx))
	if err != nil {
		return "", errors.Wrap(err, "requesting advice")
	}
	res, err := rest.BuildResponse(httpRes)
	if err != nil {
		return "", errors.Wrap(err, "reading advice response")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return "", errors.Errorf("requesting advice - status: %d - body: %s", res.StatusCode, res.Body)
	}

	var completion completionResponse
	if err = json.Unmarshal([]byte(res.Body), &completion); err != nil {
		return "", errors.Wrap(err, "decoding completion response")
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// Unavailable is the generator used when no advice endpoint is configured.
type Unavailable struct{}

var _ advice.Generator = Unavailable{}

func (Unavailable) Generate(context.Context, string, string) (string, error) {
	return "", advice.ErrUnavailable
}

// NewGenerator returns a RESTGenerator, or Unavailable when conf has no advice endpoint.
func NewGenerator(conf *core.Config) advice.Generator {
	if conf.Advice.Endpoint == "" {
		return Unavailable{}
	}
	return NewRESTGenerator(conf)
}
