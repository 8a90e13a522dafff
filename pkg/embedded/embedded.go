package embedded

import (
	_ "embed"
)

// Embedded prompt data
//
//go:embed data/prompts/continuation_system.txt
var ContinuationSystemPromptTxt []byte
