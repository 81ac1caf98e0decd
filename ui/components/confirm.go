package components

import (
	"fmt"

	"github.com/koralabs/kora/internal/models"
	"github.com/koralabs/kora/ui/styles"
)

func RenderConfirmation(req *models.ConfirmationRequest) string {
	prompt := fmt.Sprintf("%s: %s - proceed? [y/n]", req.Operation, req.Detail)
	if req.Dangerous {
		prompt = "! " + prompt
	}
	return styles.ConfirmStyle().Render(prompt)
}
