package validators

import (
	"strings"

	dto "todo-list.com/todo-list/internal/data_models"
	taskrules "todo-list.com/todo-list/internal/validators"
)

// ValidateTaskRequest checks the form fields and trims them in place on success.
func ValidateTaskRequest(r *dto.TaskRequestData) error {
	if err := taskrules.Validate(r.Title, r.Description); err != nil {
		return err
	}

	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	return nil
}
