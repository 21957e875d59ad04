// Seeder for first-time setup: creates the admin account and the
// merchant category taxonomy, uploading category images to storage
// when a local image directory is provided. Safe to re-run; rows that
// already exist are skipped.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pixinxa/cashback-api/internal/config"
	"github.com/pixinxa/cashback-api/internal/domain"
	"github.com/pixinxa/cashback-api/internal/infra/observability"
	"github.com/pixinxa/cashback-api/internal/infra/resilience"
	"github.com/pixinxa/cashback-api/internal/infra/supabase"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type seedCategory struct {
	name          string
	subcategories []string
}

var taxonomy = []seedCategory{
	{"Agro e Animais", []string{"Agro Negócio", "Mundo Animal", "PetShop", "Veterinário"}},
	{"Alimentação", []string{"Bebidas", "Bolos, Doces e Sorvetes", "Confeitaria", "Lanchonete e Petiscaria", "Padaria", "Restaurante e Pizzaria", "Oriental", "Supermercados e Conveniência"}},
	{"Automotores", []string{"Auto Center", "Auto Elétrica", "Auto Peças", "Estética Automotiva", "Mecânica", "Posto de Combustível", "Revenda de Veículos"}},
	{"Casa e Decoração", []string{"Construção e Reforma", "Eletrodomésticos", "Floricultura", "Móveis e Decoração", "Móveis Sob Medida"}},
	{"Educação", []string{"Livraria e Papelaria", "Cursos Livres", "Ensino Superior", "Escolas Particulares"}},
	{"Entretenimento", []string{"Tabacaria"}},
	{"Moda", []string{"Calçados e Acessórios", "Moda Feminina", "Moda Masculina", "Moda Infantil"}},
	{"Saúde e Beleza", []string{"Academia", "Barbearia", "Farmácias", "Pilates", "Salão de Beleza"}},
	{"Tecnologia", []string{"Assistência Técnica", "Celulares, Informática e Acessórios", "Provedor de Internet"}},
}

func main() {
	adminEmail := flag.String("admin-email", "admin@pixinxa.com.br", "admin account email")
	adminName := flag.String("admin-name", "Administrador", "admin display name")
	adminPassword := flag.String("admin-password", "", "admin password (required)")
	imageDir := flag.String("images", "", "local directory with category images (optional)")
	flag.Parse()

	_ = config.LoadDotEnv(".env")
	cfg := config.Load()

	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}
	if *adminPassword == "" {
		logger.Fatal("-admin-password is required")
	}

	store := supabase.NewClient(
		&http.Client{Timeout: cfg.HTTPTimeout},
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cfg.StorageBucket,
		resilience.NewCircuitBreaker("supabase"),
		resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxConcurrency: cfg.MaxConcurrency,
		},
		logger,
	)

	ctx := context.Background()

	seedAdmin(ctx, store, *adminName, *adminEmail, *adminPassword, logger)
	seedTaxonomy(ctx, store, *imageDir, logger)

	logger.Info("seed finished")
}

func seedAdmin(ctx context.Context, store *supabase.Client, name, email, password string, logger *zap.Logger) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		logger.Fatal("hash admin password", zap.Error(err))
	}

	acc := &domain.Account{
		NomeCompleto: name,
		Email:        email,
		IsAdmin:      true,
	}
	created, err := store.CreateAccount(ctx, acc, string(hash))
	if err != nil {
		var conflict *domain.ErrConflict
		if errors.As(err, &conflict) {
			logger.Info("admin account already exists", zap.String("email", email))
			return
		}
		logger.Fatal("create admin account", zap.Error(err))
	}
	logger.Info("admin account created", zap.String("account_id", created.ID))
}

func seedTaxonomy(ctx context.Context, store *supabase.Client, imageDir string, logger *zap.Logger) {
	for _, cat := range taxonomy {
		imageURL := uploadCategoryImage(ctx, store, imageDir, cat.name, logger)

		created, err := store.CreateCategory(ctx, &domain.Category{
			Name:     cat.name,
			ImageURL: imageURL,
		})
		if err != nil {
			var conflict *domain.ErrConflict
			if errors.As(err, &conflict) {
				logger.Info("category already exists", zap.String("name", cat.name))
				continue
			}
			logger.Fatal("create category", zap.String("name", cat.name), zap.Error(err))
		}
		logger.Info("category created", zap.String("name", cat.name))

		for _, sub := range cat.subcategories {
			subURL := uploadCategoryImage(ctx, store, imageDir, sub, logger)
			_, err := store.CreateSubcategory(ctx, &domain.Subcategory{
				CategoryID: created.ID,
				Name:       sub,
				ImageURL:   subURL,
			})
			if err != nil {
				var conflict *domain.ErrConflict
				if errors.As(err, &conflict) {
					continue
				}
				logger.Fatal("create subcategory", zap.String("name", sub), zap.Error(err))
			}
		}
	}
}

// uploadCategoryImage pushes <imageDir>/<name>.png to storage and
// returns its public URL; missing files are skipped quietly.
func uploadCategoryImage(ctx context.Context, store *supabase.Client, imageDir, name string, logger *zap.Logger) string {
	if imageDir == "" {
		return ""
	}
	path := filepath.Join(imageDir, name+".png")
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("category image not found", zap.String("path", path))
		return ""
	}
	defer f.Close()

	url, err := store.Upload(ctx, fmt.Sprintf("categories/%s.png", name), "image/png", f)
	if err != nil {
		logger.Warn("category image upload failed", zap.String("name", name), zap.Error(err))
		return ""
	}
	return url
}
