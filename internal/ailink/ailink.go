// Package ailink adapts an AI completion driver to the single-prompt
// interface the query planner consumes.
package ailink

import (
	"context"
	"errors"

	"github.com/threadlens/threadlens/internal/ailink/driver"
)

// Completer sends one user prompt to the configured driver and returns the
// response text. It satisfies the engine's Completer interface.
type Completer struct {
	Driver driver.Driver
	Model  string
}

// Complete runs a single-turn completion.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.Driver == nil {
		return "", errors.New("no completion driver configured")
	}

	resp, err := c.Driver.Complete(ctx, &driver.Request{
		Model: c.Model,
		Messages: []driver.Message{
			{Role: "user", Text: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
