// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/artifact"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// call is one structured model invocation made on behalf of an agent.
type call struct {
	agent       types.AgentName
	system      string
	user        *template.Template
	data        any
	temperature float64
}

// complete renders the user prompt, calls the model, and returns the raw
// response text.
func complete(ctx context.Context, c llm.Completer, cl call) (string, error) {
	user, err := render(cl.user, cl.data)
	if err != nil {
		return "", err
	}
	text, err := c.Complete(ctx, llm.Prompt{
		System:      cl.system,
		User:        user,
		Temperature: cl.temperature,
	})
	if err != nil {
		return "", &CompletionError{Agent: cl.agent, Err: err}
	}
	return text, nil
}

// structured runs cl and decodes the response into a T, then applies
// validate. Any decode or validation failure is a SchemaValidationError.
func structured[T any](ctx context.Context, c llm.Completer, cl call, validate func(*T) error) (*T, error) {
	text, err := complete(ctx, c, cl)
	if err != nil {
		return nil, err
	}

	var out T
	if err := llm.Decode(text, &out); err != nil {
		reason := "response is not a JSON object of the expected shape"
		if errors.Is(err, llm.ErrNoJSON) {
			reason = "response holds no JSON"
		}
		return nil, &SchemaValidationError{Agent: cl.agent, Reason: reason, Err: err}
	}
	if validate != nil {
		if err := validate(&out); err != nil {
			return nil, &SchemaValidationError{Agent: cl.agent, Reason: err.Error()}
		}
	}
	return &out, nil
}

// persist writes v to the agent's artifact file. A nil store disables
// persistence.
func persist(store *artifact.Store, agent types.AgentName, v any) error {
	if store == nil {
		return nil
	}
	if err := store.WriteAgent(agent, v); err != nil {
		return &ArtifactError{Agent: agent, Err: err}
	}
	return nil
}

// render executes tmpl with data.
func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// indentJSON renders retrieved records for inclusion in a prompt.
func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

func nopIfNil(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
