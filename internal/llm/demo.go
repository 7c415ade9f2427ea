package llm

import (
	"context"
	"strings"
)

// DemoProvider echoes the instruction back in a fixed frame. It lets the API and
// batchctl run end to end without an upstream key.
type DemoProvider struct{}

// Complete returns a deterministic draft built from the instruction.
func (DemoProvider) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	b.WriteString("[demo draft")
	if req.Kind != "" {
		b.WriteString(" for ")
		b.WriteString(req.Kind)
	}
	b.WriteString("]\n\n")
	for _, line := range strings.Split(instruction, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

var _ Provider = DemoProvider{}
