package services

import (
	"context"
	"time"

	"project-management/internal/authz"
	"project-management/internal/dto"
	"project-management/internal/entities"
	"project-management/internal/repositories"
	apperrors "project-management/pkg/errors"
	"project-management/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ChecklistServiceInterface interface {
	GetTemplate(ctx context.Context, departmentID uint64) ([]dto.TemplateItemDTO, error)
	CreateTemplateItem(ctx context.Context, payload dto.CreateTemplateItemDTO) (*dto.TemplateItemDTO, error)
	UpdateTemplateItem(ctx context.Context, id uint64, payload dto.UpdateTemplateItemDTO) (*dto.TemplateItemDTO, error)
	DeleteTemplateItem(ctx context.Context, id uint64) error
	ReorderTemplate(ctx context.Context, departmentID uint64, payload dto.ReorderTemplateDTO) ([]dto.TemplateItemDTO, error)

	GetOrInitializeProgress(ctx context.Context, projectID, departmentID uint64) (*dto.DepartmentChecklistProgressDTO, error)
	UpdateItem(ctx context.Context, itemID uint64, payload dto.UpdateChecklistItemDTO) (*dto.ProjectChecklistItemDTO, error)
}

type ChecklistService struct {
	templateRepo  repositories.ChecklistTemplateRepositoryInterface
	checklistRepo repositories.ProjectChecklistRepositoryInterface
	projectRepo   repositories.ProjectRepositoryInterface
	txManager     repositories.TxManagerInterface
	gatekeeper    *authz.Gatekeeper
	logger        *zap.Logger
}

func NewChecklistService(
	templateRepo repositories.ChecklistTemplateRepositoryInterface,
	checklistRepo repositories.ProjectChecklistRepositoryInterface,
	projectRepo repositories.ProjectRepositoryInterface,
	txManager repositories.TxManagerInterface,
	gatekeeper *authz.Gatekeeper,
	logger *zap.Logger,
) ChecklistServiceInterface {
	return &ChecklistService{
		templateRepo:  templateRepo,
		checklistRepo: checklistRepo,
		projectRepo:   projectRepo,
		txManager:     txManager,
		gatekeeper:    gatekeeper,
		logger:        logger,
	}
}

func (s *ChecklistService) requirePermission(ctx context.Context, permission string, target interface{}) (uint64, error) {
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return 0, err
	}
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return 0, err
	}
	if !s.gatekeeper.Can(perms, &entities.User{ID: userID}, permission, target) {
		return 0, apperrors.ErrForbidden
	}
	return userID, nil
}

// --- ШАБЛОНЫ ---

func (s *ChecklistService) GetTemplate(ctx context.Context, departmentID uint64) ([]dto.TemplateItemDTO, error) {
	items, err := s.templateRepo.GetTemplateItems(ctx, departmentID, false)
	if err != nil {
		s.logger.Error("Ошибка при получении шаблона чеклиста", zap.Uint64("departmentID", departmentID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.TemplateItemDTO, 0, len(items))
	for i := range items {
		result = append(result, templateItemToDTO(&items[i]))
	}
	return result, nil
}

func (s *ChecklistService) CreateTemplateItem(ctx context.Context, payload dto.CreateTemplateItemDTO) (*dto.TemplateItemDTO, error) {
	if _, err := s.requirePermission(ctx, authz.ChecklistTemplatesManage, nil); err != nil {
		return nil, err
	}

	sortOrder := 0
	if payload.SortOrder != nil {
		sortOrder = *payload.SortOrder
	}
	if sortOrder == 0 {
		next, err := s.templateRepo.NextSortOrder(ctx, payload.DepartmentID)
		if err != nil {
			return nil, err
		}
		sortOrder = next
	}

	item, err := s.templateRepo.CreateTemplateItem(ctx, payload, sortOrder)
	if err != nil {
		s.logger.Error("Ошибка при создании пункта шаблона", zap.Error(err))
		return nil, err
	}
	result := templateItemToDTO(item)
	return &result, nil
}

func (s *ChecklistService) UpdateTemplateItem(ctx context.Context, id uint64, payload dto.UpdateTemplateItemDTO) (*dto.TemplateItemDTO, error) {
	if _, err := s.requirePermission(ctx, authz.ChecklistTemplatesManage, nil); err != nil {
		return nil, err
	}
	item, err := s.templateRepo.UpdateTemplateItem(ctx, id, payload)
	if err != nil {
		s.logger.Error("Ошибка при обновлении пункта шаблона", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	result := templateItemToDTO(item)
	return &result, nil
}

// DeleteTemplateItem удаляет пункт шаблона. Если пункт уже скопирован в проекты,
// удаление запрещено: снапшоты проектов ссылаются на него. Используйте is_active=false.
func (s *ChecklistService) DeleteTemplateItem(ctx context.Context, id uint64) error {
	if _, err := s.requirePermission(ctx, authz.ChecklistTemplatesManage, nil); err != nil {
		return err
	}
	usages, err := s.templateRepo.CountProjectUsages(ctx, id)
	if err != nil {
		return err
	}
	if usages > 0 {
		return apperrors.NewConflictError("Пункт шаблона используется проектами. Вместо удаления деактивируйте его.")
	}
	return s.templateRepo.DeleteTemplateItem(ctx, id)
}

func (s *ChecklistService) ReorderTemplate(ctx context.Context, departmentID uint64, payload dto.ReorderTemplateDTO) ([]dto.TemplateItemDTO, error) {
	if _, err := s.requirePermission(ctx, authz.ChecklistTemplatesManage, nil); err != nil {
		return nil, err
	}

	active, err := s.templateRepo.GetTemplateItems(ctx, departmentID, true)
	if err != nil {
		return nil, err
	}
	if len(active) != len(payload.OrderedItemIDs) {
		return nil, apperrors.NewInvalidInputError("ожидается полный список из %d активных пунктов", len(active))
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.templateRepo.ReorderInTx(ctx, tx, departmentID, payload.OrderedItemIDs)
	})
	if err != nil {
		s.logger.Error("Ошибка при переупорядочивании шаблона", zap.Uint64("departmentID", departmentID), zap.Error(err))
		return nil, err
	}
	return s.GetTemplate(ctx, departmentID)
}

// --- ЧЕКЛИСТЫ ПРОЕКТОВ ---

// GetOrInitializeProgress возвращает прогресс чеклиста департамента по проекту.
// При первом обращении пункты создаются из активного шаблона (снапшот:
// последующие изменения шаблона уже созданные пункты не затрагивают).
func (s *ChecklistService) GetOrInitializeProgress(ctx context.Context, projectID, departmentID uint64) (*dto.DepartmentChecklistProgressDTO, error) {
	if _, err := s.requirePermission(ctx, authz.ChecklistsView, nil); err != nil {
		return nil, err
	}
	if _, err := s.projectRepo.FindProject(ctx, projectID); err != nil {
		return nil, err
	}

	var items []entities.ProjectChecklistItem
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		existing, err := s.checklistRepo.GetProjectItemsInTx(ctx, tx, projectID, departmentID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			templates, err := s.templateRepo.GetActiveTemplateItemsInTx(ctx, tx, departmentID)
			if err != nil {
				return err
			}
			if len(templates) > 0 {
				if err := s.checklistRepo.InstantiateFromTemplateInTx(ctx, tx, projectID, templates); err != nil {
					return err
				}
				existing, err = s.checklistRepo.GetProjectItemsInTx(ctx, tx, projectID, departmentID)
				if err != nil {
					return err
				}
			}
		}
		items = existing
		return nil
	})
	if err != nil {
		s.logger.Error("Ошибка при инициализации чеклиста проекта",
			zap.Uint64("projectID", projectID), zap.Uint64("departmentID", departmentID), zap.Error(err))
		return nil, err
	}

	itemDTOs, err := s.decorateItems(ctx, items)
	if err != nil {
		return nil, err
	}
	progress := ComputeProgress(items)
	progress.ProjectID = projectID
	progress.DepartmentID = departmentID
	progress.Items = itemDTOs
	return &progress, nil
}

func (s *ChecklistService) UpdateItem(ctx context.Context, itemID uint64, payload dto.UpdateChecklistItemDTO) (*dto.ProjectChecklistItemDTO, error) {
	userID, err := s.requirePermission(ctx, authz.ChecklistsUpdate, nil)
	if err != nil {
		return nil, err
	}

	item, err := s.checklistRepo.FindProjectItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	txID := uuid.NewString()

	if payload.IsCompleted != nil {
		item.IsCompleted = *payload.IsCompleted
		if item.IsCompleted {
			completedAt := now
			if payload.CompletedDate != nil {
				parsed, err := time.Parse(time.RFC3339, *payload.CompletedDate)
				if err != nil {
					return nil, apperrors.NewInvalidInputError("неверный формат completed_date: %s", *payload.CompletedDate)
				}
				completedAt = parsed
			}
			item.CompletedAt = &completedAt
			item.CompletedBy = &userID
		} else {
			item.CompletedAt = nil
			item.CompletedBy = nil
		}
	}
	if payload.Notes != nil {
		item.Notes = payload.Notes
	}
	item.LastUpdatedAt = &now
	item.LastUpdatedBy = &userID

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.checklistRepo.UpdateItemInTx(ctx, tx, item); err != nil {
			return err
		}
		if payload.Links != nil {
			links := make([]entities.ChecklistItemLink, 0, len(payload.Links))
			for _, l := range payload.Links {
				links = append(links, entities.ChecklistItemLink{URL: l.URL, Title: l.Title, LinkType: l.LinkType})
			}
			if err := s.checklistRepo.ReplaceLinksInTx(ctx, tx, item.ID, links); err != nil {
				return err
			}
		}
		// Строка журнала пишется на каждое изменение, даже без заметки
		var notes string
		if payload.Notes != nil {
			notes = *payload.Notes
		}
		return s.checklistRepo.LogUpdateInTx(ctx, tx, entities.ChecklistItemUpdate{
			ItemID:    item.ID,
			Notes:     notes,
			UpdatedBy: userID,
			TxID:      &txID,
		})
	})
	if err != nil {
		s.logger.Error("Ошибка при обновлении пункта чеклиста", zap.Uint64("itemID", itemID), zap.Error(err))
		return nil, err
	}

	updated, err := s.checklistRepo.FindProjectItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	decorated, err := s.decorateItems(ctx, []entities.ProjectChecklistItem{*updated})
	if err != nil {
		return nil, err
	}
	return &decorated[0], nil
}

// decorateItems дополняет пункты ссылками и журналом изменений.
func (s *ChecklistService) decorateItems(ctx context.Context, items []entities.ProjectChecklistItem) ([]dto.ProjectChecklistItemDTO, error) {
	itemIDs := make([]uint64, 0, len(items))
	for i := range items {
		itemIDs = append(itemIDs, items[i].ID)
	}

	links, err := s.checklistRepo.GetLinks(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	updates, err := s.checklistRepo.GetItemUpdates(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	result := make([]dto.ProjectChecklistItemDTO, 0, len(items))
	for i := range items {
		item := &items[i]
		d := dto.ProjectChecklistItemDTO{
			ID:             item.ID,
			ProjectID:      item.ProjectID,
			TemplateItemID: item.TemplateItemID,
			DepartmentID:   item.DepartmentID,
			Title:          item.Title,
			Description:    item.Description,
			IsRequired:     item.IsRequired,
			IsCompleted:    item.IsCompleted,
			CompletedBy:    item.CompletedBy,
			Notes:          item.Notes,
			LastUpdatedBy:  item.LastUpdatedBy,
			Links:          make([]dto.ChecklistLinkDTO, 0),
			UpdateHistory:  make([]dto.ChecklistItemUpdateDTO, 0),
		}
		if item.CompletedAt != nil {
			d.CompletedAt = utils.FormatTime(*item.CompletedAt)
		}
		if item.LastUpdatedAt != nil {
			d.LastUpdatedAt = utils.FormatTime(*item.LastUpdatedAt)
		}
		for _, l := range links[item.ID] {
			d.Links = append(d.Links, dto.ChecklistLinkDTO{URL: l.URL, Title: l.Title, LinkType: l.LinkType})
		}
		for _, u := range updates[item.ID] {
			d.UpdateHistory = append(d.UpdateHistory, dto.ChecklistItemUpdateDTO{
				Date:      utils.FormatTime(u.CreatedAt),
				Notes:     u.Notes,
				UpdatedBy: u.UpdatedBy,
			})
		}
		result = append(result, d)
	}
	return result, nil
}

// ComputeProgress считает агрегаты готовности по пунктам.
// Пустой чеклист считается готовым: блокировать переход нечем.
func ComputeProgress(items []entities.ProjectChecklistItem) dto.DepartmentChecklistProgressDTO {
	progress := dto.DepartmentChecklistProgressDTO{
		TotalItems: len(items),
	}
	for i := range items {
		if items[i].IsCompleted {
			progress.CompletedItems++
		}
		if items[i].IsRequired {
			progress.RequiredItems++
			if items[i].IsCompleted {
				progress.CompletedRequiredItems++
			}
		}
	}
	if progress.TotalItems > 0 {
		progress.CompletionPercentage = float64(progress.CompletedItems) / float64(progress.TotalItems) * 100
	}
	if progress.RequiredItems > 0 {
		progress.RequiredCompletionPercentage = float64(progress.CompletedRequiredItems) / float64(progress.RequiredItems) * 100
	} else {
		progress.RequiredCompletionPercentage = 100
	}
	progress.CanProceedToNext = progress.CompletedRequiredItems == progress.RequiredItems
	return progress
}

func templateItemToDTO(t *entities.ChecklistTemplate) dto.TemplateItemDTO {
	return dto.TemplateItemDTO{
		ID:           t.ID,
		DepartmentID: t.DepartmentID,
		Title:        t.Title,
		Description:  t.Description,
		IsRequired:   t.IsRequired,
		SortOrder:    t.SortOrder,
		IsActive:     t.IsActive,
	}
}
