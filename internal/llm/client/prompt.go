package client

import (
	"fmt"
	"strings"
	"sync"
)

const scanPromptFile = "prompts/scan_prompt.txt"

var (
	scanPromptOnce     sync.Once
	scanPromptTemplate string
)

// BuildScanPrompt renders the ingredient-analysis prompt for the given
// preference texts. It is a pure function of its two arguments: same inputs,
// same prompt.
func BuildScanPrompt(dietaryPreferences, cosmeticPreferences string) string {
	scanPromptOnce.Do(func() {
		data, err := embeddedPrompts.ReadFile(scanPromptFile)
		if err != nil {
			// The template is compiled into the binary; a read failure means
			// a broken build, not a runtime condition.
			panic(fmt.Sprintf("load embedded prompt %s: %v", scanPromptFile, err))
		}
		scanPromptTemplate = strings.TrimSpace(string(data))
	})

	dietary := strings.TrimSpace(dietaryPreferences)
	if dietary == "" {
		dietary = "no specific dietary preferences"
	}
	cosmetic := strings.TrimSpace(cosmeticPreferences)
	if cosmetic == "" {
		cosmetic = "no specific cosmetic preferences"
	}

	return fmt.Sprintf(scanPromptTemplate, dietary, cosmetic)
}
