package service

import (
	"context"
	"strings"
	"sync"

	"SellerCare/internal/model"
	"SellerCare/pkg/errors"
)

type TemplateService struct{}

var (
	templateService *TemplateService
	templateOnce    sync.Once
)

func Template() *TemplateService {
	templateOnce.Do(func() {
		templateService = &TemplateService{}
	})

	return templateService
}

func (s *TemplateService) List(ctx context.Context, cookieID string, actionType model.ActionType) ([]*model.MessageTemplate, error) {
	if !actionType.Valid() {
		return nil, errors.FollowUpTypeInvalid
	}
	return deps.templates.Templates(ctx, cookieID, actionType)
}

func (s *TemplateService) Create(ctx context.Context, cookieID string, actionType model.ActionType, content string, sortOrder int) (*model.MessageTemplate, error) {
	if !actionType.Valid() {
		return nil, errors.FollowUpTypeInvalid
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.TemplateEmpty
	}

	tpl := &model.MessageTemplate{
		CookieID:   cookieID,
		ActionType: actionType,
		Content:    content,
		SortOrder:  sortOrder,
	}
	if err := deps.templates.CreateTemplate(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *TemplateService) Update(ctx context.Context, id int64, content string, sortOrder int) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return errors.TemplateEmpty
	}

	tpl, err := deps.templates.Template(ctx, id)
	if err != nil {
		return err
	}
	if tpl == nil {
		return errors.TemplateNotFound
	}
	return deps.templates.UpdateTemplate(ctx, id, content, sortOrder)
}

func (s *TemplateService) Delete(ctx context.Context, id int64) error {
	tpl, err := deps.templates.Template(ctx, id)
	if err != nil {
		return err
	}
	if tpl == nil {
		return errors.TemplateNotFound
	}
	return deps.templates.DeleteTemplate(ctx, id)
}
