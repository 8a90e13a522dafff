package prompt

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/orchestra-api/pkg/embedded"
)

type Loader struct{}

func NewPromptLoader() *Loader {
	return &Loader{}
}

// GetContinuationSystemPrompt loads the system prompt for melody continuation
func (l *Loader) GetContinuationSystemPrompt() (string, error) {
	content := strings.TrimSpace(string(embedded.ContinuationSystemPromptTxt))
	if content == "" {
		return "", fmt.Errorf("continuation system prompt is empty")
	}
	return content, nil
}
