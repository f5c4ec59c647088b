package commands

import (
	"context"

	"github.com/google/uuid"
	"github.com/svenhofer/timegrid/internal/insights/domain"
	sharedApplication "github.com/svenhofer/timegrid/internal/shared/application"
)

// CreateCategoryCommand creates a new category for labeling meetings
// and sessions.
type CreateCategoryCommand struct {
	UserID uuid.UUID
	Name   string
}

// CreateCategoryResult carries the created category.
type CreateCategoryResult struct {
	Category *domain.Category
}

// CreateCategoryHandler handles the CreateCategoryCommand.
type CreateCategoryHandler struct {
	categoryRepo domain.CategoryRepository
	uow          sharedApplication.UnitOfWork
}

// NewCreateCategoryHandler creates a new CreateCategoryHandler.
func NewCreateCategoryHandler(categoryRepo domain.CategoryRepository, uow sharedApplication.UnitOfWork) *CreateCategoryHandler {
	return &CreateCategoryHandler{
		categoryRepo: categoryRepo,
		uow:          uow,
	}
}

// Handle executes the CreateCategoryCommand.
func (h *CreateCategoryHandler) Handle(ctx context.Context, cmd CreateCategoryCommand) (*CreateCategoryResult, error) {
	var result *CreateCategoryResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		category, err := domain.NewCategory(cmd.UserID, cmd.Name)
		if err != nil {
			return err
		}
		if err := h.categoryRepo.SaveCategory(txCtx, category); err != nil {
			return err
		}
		result = &CreateCategoryResult{Category: category}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
