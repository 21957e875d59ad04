package service

import (
	"context"
	"fmt"

	"github.com/pixinxa/cashback-api/internal/domain"
	"github.com/pixinxa/cashback-api/internal/format"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// defaultRules are the four explanation cards every new loja starts
// with. Merchants edit or remove them later from the rules screen.
var defaultRules = []domain.BusinessRule{
	{Icone: "question", Titulo: "Como usar?", Descricao: "Apresente seu CPF no caixa e acumule cashback a cada compra."},
	{Icone: "ticket", Titulo: "Cupons e Vouchers", Descricao: "Resgate cupons exclusivos da loja direto pelo aplicativo."},
	{Icone: "clock", Titulo: "Quando recebo o cashback?", Descricao: "O valor é creditado assim que a loja confirma a compra."},
	{Icone: "money", Titulo: "Ao receber cashback", Descricao: "Use o saldo acumulado como desconto nas próximas compras."},
}

// ============================================================
// Register — POST /v1/auth/register (cadastro de loja)
// ============================================================

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.RegisterResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if req.NomeCompleto == "" || req.NomeEstabelecimento == "" || req.Email == "" {
		return nil, &domain.ErrValidation{Field: "body", Message: "Preencha todos os campos obrigatórios"}
	}

	cnpj := format.Digits(req.CNPJ)
	if !format.ValidCNPJ(cnpj) {
		return nil, &domain.ErrValidation{Field: "cnpj", Message: "CNPJ inválido"}
	}

	if len(req.Senha) < minPasswordLength {
		return nil, &domain.ErrValidation{Field: "senha", Message: fmt.Sprintf("Senha deve ter no mínimo %d caracteres", minPasswordLength)}
	}
	if req.Senha != req.ConfirmSenha {
		return nil, &domain.ErrValidation{Field: "confirmSenha", Message: "As senhas não coincidem"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acc := &domain.Account{
		NomeCompleto:        req.NomeCompleto,
		NomeEstabelecimento: req.NomeEstabelecimento,
		Email:               req.Email,
		Telefone:            format.Digits(req.Telefone),
		CNPJ:                cnpj,
		IsCnpj:              true,
		LogoURL:             req.LogoURL,
	}

	// The unique indexes on cnpj/email decide duplicates; a pre-check
	// here would race with concurrent registrations.
	created, err := s.accounts.CreateAccount(ctx, acc, string(hash))
	if err != nil {
		return nil, err
	}

	s.seedDefaultRules(ctx, created.ID)

	s.logger.Info("loja registered",
		zap.String("loja_id", created.ID),
		zap.String("cnpj", cnpj),
	)

	return &domain.RegisterResponse{
		LojaID:  created.ID,
		Message: "Loja cadastrada com sucesso",
	}, nil
}

// seedDefaultRules inserts the starter rule cards. Failures are logged
// and swallowed: the loja can add rules manually.
func (s *AuthService) seedDefaultRules(ctx context.Context, lojaID string) {
	for i, r := range defaultRules {
		rule := r
		rule.LojaID = lojaID
		rule.Position = i + 1
		if _, err := s.rules.CreateRule(ctx, &rule); err != nil {
			s.logger.Warn("failed to seed default rule",
				zap.String("loja_id", lojaID),
				zap.String("titulo", rule.Titulo),
				zap.Error(err),
			)
		}
	}
}
