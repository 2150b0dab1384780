package main

import (
	"context"
	"errors"

	"github.com/bossshopp/internal/config"
	"github.com/bossshopp/internal/logger"
	"github.com/bossshopp/internal/models"
	"github.com/bossshopp/internal/provider"
	"github.com/bossshopp/internal/service"

	"gorm.io/gorm"
)

type categorySeed struct {
	Name        string
	Slug        string
	Description string
	SortOrder   int
}

type productSeed struct {
	Name        string
	Description string
	Price       string
	OldPrice    string
	Category    string
	Stock       int
	SKU         string
	Featured    bool
}

var categorySeeds = []categorySeed{
	{Name: "Moda", Slug: "moda", Description: "Roupas e acessórios de moda", SortOrder: 1},
	{Name: "Eletrônicos", Slug: "eletronicos", Description: "Dispositivos eletrônicos e gadgets", SortOrder: 2},
	{Name: "Casa", Slug: "casa", Description: "Produtos para o lar", SortOrder: 3},
	{Name: "Games", Slug: "games", Description: "Jogos e acessórios para gamers", SortOrder: 4},
	{Name: "Esportes", Slug: "esportes", Description: "Equipamentos esportivos", SortOrder: 5},
	{Name: "Infantil", Slug: "infantil", Description: "Produtos para bebês e crianças", SortOrder: 6},
}

var productSeeds = []productSeed{
	{"Camiseta Básica", "Camiseta de algodão 100% confortável e durável", "39.90", "49.90", "moda", 100, "MOD-CAM-001", false},
	{"Calça Jeans", "Calça jeans masculina com corte moderno", "89.90", "", "moda", 50, "MOD-CAL-001", false},
	{"Tênis Esportivo", "Tênis para corrida com tecnologia de amortecimento", "169.90", "199.90", "moda", 30, "MOD-TEN-001", true},
	{"Boné Estiloso", "Boné com proteção UV e design moderno", "34.90", "", "moda", 75, "MOD-BON-001", false},
	{"Smartphone Premium", "Smartphone com câmera de 108MP e 5G", "1760.00", "2200.00", "eletronicos", 25, "ELE-SMT-001", true},
	{"Notebook Ultrafino", "Notebook com processador i7 e SSD 512GB", "2975.00", "", "eletronicos", 15, "ELE-NOT-001", false},
	{"Fone Bluetooth Sem Fio", "Fone com cancelamento de ruído ativo", "224.90", "299.90", "eletronicos", 60, "ELE-FON-001", false},
	{"Smart TV 55\"", "TV 4K com HDR e sistema Android", "1750.00", "2100.00", "eletronicos", 20, "ELE-TV-001", true},
	{"Sofá Confortável", "Sofá de 3 lugares com estrutura de madeira", "1020.00", "1200.00", "casa", 10, "CAS-SOF-001", false},
	{"Cama Queen Size", "Cama com headboard estofado", "899.90", "", "casa", 8, "CAS-CAM-001", false},
	{"Jogo de Talheres", "Talheres em aço inoxidável 24 peças", "159.90", "199.90", "casa", 40, "CAS-TAL-001", false},
	{"Kit de Lâmpadas LED", "Lâmpadas LED econômicas 9W - Kit 4 unidades", "97.40", "", "casa", 80, "CAS-LED-001", false},
	{"Console de Videogame", "Console de última geração com 1TB", "2250.00", "", "games", 12, "GAM-CON-001", true},
	{"Jogo de Tabuleiro", "Jogo estratégico para toda família", "89.90", "", "games", 35, "GAM-TAB-001", false},
	{"Fone Gamer", "Fone com som surround 7.1 e microfone", "299.90", "399.90", "games", 25, "GAM-FON-001", false},
	{"Teclado Mecânico", "Teclado RGB com switches blue", "319.90", "", "games", 18, "GAM-TEC-001", false},
	{"Conjunto de Halteres", "Halteres ajustáveis de 5 a 25kg", "254.90", "", "esportes", 22, "ESP-HAL-001", false},
	{"Tênis para Corrida", "Tênis com amortecimento especial", "199.90", "249.90", "esportes", 45, "ESP-TEN-001", false},
	{"Bola de Futebol", "Bola oficial com certificação FIFA", "74.90", "", "esportes", 60, "ESP-BOL-001", false},
	{"Bicicleta Mountain Bike", "Bicicleta para trilhas com 21 marchas", "1299.90", "1599.90", "esportes", 8, "ESP-BIC-001", true},
	{"Camiseta Infantil", "Camiseta 100% algodão tamanhos 2 a 12 anos", "33.90", "", "infantil", 90, "INF-CAM-001", false},
	{"Meias Coloridas", "Pacote com 5 pares de meias divertidas", "19.90", "", "infantil", 120, "INF-MEI-001", false},
	{"Sapatilha Infantil", "Sapatilha para festas e ocasiões especiais", "47.90", "", "infantil", 55, "INF-SAP-001", false},
	{"Carrinho de Controle Remoto", "Carrinho com controle remoto e luzes", "89.90", "119.90", "infantil", 30, "INF-CAR-001", false},
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	db, err := models.Open(cfg.Database.ToDBOptions())
	if err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	defer func() { _ = models.Close(db) }()

	if err := models.AutoMigrate(db); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	container, err := provider.NewContainer(cfg, db)
	if err != nil {
		stdLog.Fatalf("Failed to init container: %v", err)
	}
	defer container.Close()

	ctx := context.Background()

	// 分类
	categoryIDs := make(map[string]uint, len(categorySeeds))
	for _, seed := range categorySeeds {
		id, created, err := ensureCategory(db, seed)
		if err != nil {
			stdLog.Fatalf("Failed to create category %s: %v", seed.Slug, err)
		}
		categoryIDs[seed.Slug] = id
		if created {
			stdLog.Printf("Created category: %s", seed.Slug)
		} else {
			stdLog.Printf("Category already exists: %s", seed.Slug)
		}
	}

	// 商品（经目录服务创建，同时写入初始入库流水）
	for _, seed := range productSeeds {
		var count int64
		if err := db.Model(&models.Product{}).Where("sku = ?", seed.SKU).Count(&count).Error; err != nil {
			stdLog.Fatalf("Failed to check product %s: %v", seed.SKU, err)
		}
		if count > 0 {
			stdLog.Printf("Product already exists: %s", seed.SKU)
			continue
		}
		input := service.CreateProductInput{
			CategoryID:    categoryIDs[seed.Category],
			Name:          seed.Name,
			Description:   seed.Description,
			Price:         models.MustMoney(seed.Price),
			StockQuantity: seed.Stock,
			SKU:           seed.SKU,
			IsActive:      true,
			IsFeatured:    seed.Featured,
		}
		if seed.OldPrice != "" {
			oldPrice := models.MustMoney(seed.OldPrice)
			input.OldPrice = &oldPrice
		}
		if _, err := container.CatalogService.CreateProduct(ctx, input); err != nil {
			stdLog.Printf("Failed to create product %s: %v", seed.SKU, err)
			continue
		}
		stdLog.Printf("Created product: %s", seed.SKU)
	}

	// 系统设置
	inserted, err := container.SettingService.EnsureDefaults(ctx)
	if err != nil {
		stdLog.Fatalf("Failed to seed settings: %v", err)
	}
	stdLog.Printf("Settings ensured, %d inserted", inserted)

	// 账号与角色
	admin, err := models.InitDefaultAdmin(db, "", "")
	if err != nil {
		stdLog.Fatalf("Failed to create admin: %v", err)
	}
	if err := container.AuthzService.SetUserRoles(admin.ID, admin.Roles()); err != nil {
		stdLog.Printf("Failed to bind admin roles: %v", err)
	}

	vendor, err := ensureVendor(db, "vendor@bossshopp.com", "vendor123")
	if err != nil {
		stdLog.Fatalf("Failed to create vendor: %v", err)
	}
	if err := container.AuthzService.SetUserRoles(vendor.ID, vendor.Roles()); err != nil {
		stdLog.Printf("Failed to bind vendor roles: %v", err)
	}

	stdLog.Println("Seed data created successfully!")
	stdLog.Printf("Admin: %s", admin.Email)
	stdLog.Printf("Vendor: %s", vendor.Email)
}

func ensureCategory(db *gorm.DB, seed categorySeed) (uint, bool, error) {
	var existing models.Category
	err := db.Where("slug = ?", seed.Slug).First(&existing).Error
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, err
	}
	category := models.Category{
		Name:        seed.Name,
		Slug:        seed.Slug,
		Description: seed.Description,
		IsActive:    true,
		SortOrder:   seed.SortOrder,
	}
	if err := db.Create(&category).Error; err != nil {
		return 0, false, err
	}
	return category.ID, true, nil
}

func ensureVendor(db *gorm.DB, email, password string) (*models.User, error) {
	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := models.HashPassword(password)
	if err != nil {
		return nil, err
	}
	vendor := models.User{
		Name:         "Lojista Demo",
		Email:        email,
		PasswordHash: hash,
		City:         "São Paulo",
		State:        "SP",
		Country:      "Brasil",
		IsActive:     true,
		IsVendor:     true,
	}
	if err := db.Create(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}
