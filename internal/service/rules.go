package service

import (
	"context"

	"github.com/pixinxa/cashback-api/internal/domain"
	"github.com/pixinxa/cashback-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var ruleTracer = otel.Tracer("service/rules")

// RuleService manages the explanation cards a loja shows on its page.
// Cards keep their relative order: new ones append after the highest
// position and removal leaves the rest untouched.
type RuleService struct {
	store  port.RuleStore
	logger *zap.Logger
}

// NewRuleService creates a new rule service.
func NewRuleService(store port.RuleStore, logger *zap.Logger) *RuleService {
	return &RuleService{store: store, logger: logger}
}

func (s *RuleService) List(ctx context.Context, lojaID string) ([]domain.BusinessRule, error) {
	ctx, span := ruleTracer.Start(ctx, "RuleService.List")
	defer span.End()

	return s.store.ListRules(ctx, lojaID)
}

func (s *RuleService) Create(ctx context.Context, lojaID string, req *domain.BusinessRuleRequest) (*domain.BusinessRule, error) {
	ctx, span := ruleTracer.Start(ctx, "RuleService.Create")
	defer span.End()
	span.SetAttributes(attribute.String("loja.id", lojaID))

	if req.Titulo == "" || req.Descricao == "" {
		return nil, &domain.ErrValidation{Field: "body", Message: "Título e descrição são obrigatórios"}
	}

	existing, err := s.store.ListRules(ctx, lojaID)
	if err != nil {
		return nil, err
	}
	position := 1
	for _, r := range existing {
		if r.Position >= position {
			position = r.Position + 1
		}
	}

	rule := &domain.BusinessRule{
		LojaID:    lojaID,
		Icone:     req.Icone,
		Titulo:    req.Titulo,
		Descricao: req.Descricao,
		Position:  position,
	}

	created, err := s.store.CreateRule(ctx, rule)
	if err != nil {
		return nil, err
	}

	s.logger.Info("rule created",
		zap.String("loja_id", lojaID),
		zap.String("rule_id", created.ID),
	)
	return created, nil
}

// Update patches only the provided fields; position never changes here.
func (s *RuleService) Update(ctx context.Context, lojaID, ruleID string, req *domain.BusinessRuleRequest) error {
	ctx, span := ruleTracer.Start(ctx, "RuleService.Update")
	defer span.End()

	updates := map[string]any{}
	if req.Icone != "" {
		updates["icone"] = req.Icone
	}
	if req.Titulo != "" {
		updates["titulo"] = req.Titulo
	}
	if req.Descricao != "" {
		updates["descricao"] = req.Descricao
	}
	if len(updates) == 0 {
		return &domain.ErrValidation{Field: "body", Message: "Nenhum campo para atualizar"}
	}

	return s.store.UpdateRule(ctx, lojaID, ruleID, updates)
}

func (s *RuleService) Delete(ctx context.Context, lojaID, ruleID string) error {
	ctx, span := ruleTracer.Start(ctx, "RuleService.Delete")
	defer span.End()

	return s.store.DeleteRule(ctx, lojaID, ruleID)
}
