package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/kilimo-tech/farmgate-pos/internal/config"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// CatalogItem represents a product in the seed data JSON.
type CatalogItem struct {
	Name             string  `json:"name"`
	SKU              string  `json:"sku"`
	Category         string  `json:"category"`
	Quantity         float64 `json:"quantity"`
	ReorderThreshold float64 `json:"reorder_threshold"`
	DealerCash       float64 `json:"dealer_cash"`
	DealerCredit     float64 `json:"dealer_credit"`
	HotelNonVAT      float64 `json:"hotel_non_vat"`
	HotelVAT         float64 `json:"hotel_vat"`
	FarmShop         float64 `json:"farm_shop"`
	PackagingUnit    string  `json:"packaging_unit"`
	PackSize         float64 `json:"pack_size"`
}

// CategorySeed maps seed category names to codes.
var CategorySeed = map[string]string{
	"Dairy":         "DAI",
	"Poultry":       "POU",
	"Fresh Produce": "FRP",
	"Animal Feeds":  "FEE",
	"Beverages":     "BEV",
}

// CatalogData holds the products to be seeded.
var CatalogData = []byte(`[
  { "name": "Fresh Milk 500ml", "sku": "DAI-ML-500", "category": "Dairy", "quantity": 240, "reorder_threshold": 60, "dealer_cash": 55, "dealer_credit": 58, "hotel_non_vat": 60, "hotel_vat": 65, "farm_shop": 62, "packaging_unit": "pouch", "pack_size": 24 },
  { "name": "Natural Yoghurt 1L", "sku": "DAI-YG-1L", "category": "Dairy", "quantity": 80, "reorder_threshold": 30, "dealer_cash": 180, "dealer_credit": 190, "hotel_non_vat": 200, "hotel_vat": 215, "farm_shop": 205, "packaging_unit": "bottle", "pack_size": 12 },
  { "name": "Farm Butter 250g", "sku": "DAI-BT-250", "category": "Dairy", "quantity": 45, "reorder_threshold": 20, "dealer_cash": 260, "dealer_credit": 275, "hotel_non_vat": 290, "hotel_vat": 310, "farm_shop": 300, "packaging_unit": "tub", "pack_size": 20 },
  { "name": "Kienyeji Eggs Tray", "sku": "POU-EG-T30", "category": "Poultry", "quantity": 120, "reorder_threshold": 40, "dealer_cash": 420, "dealer_credit": 440, "hotel_non_vat": 460, "hotel_vat": 490, "farm_shop": 470, "packaging_unit": "tray", "pack_size": 30 },
  { "name": "Broiler Whole Bird 1.3kg", "sku": "POU-BR-13", "category": "Poultry", "quantity": 35, "reorder_threshold": 25, "dealer_cash": 550, "dealer_credit": 580, "hotel_non_vat": 600, "hotel_vat": 640, "farm_shop": 620, "packaging_unit": "piece", "pack_size": 1 },
  { "name": "Sukuma Wiki Bundle", "sku": "FRP-SW-BND", "category": "Fresh Produce", "quantity": 0, "reorder_threshold": 50, "dealer_cash": 30, "dealer_credit": 32, "hotel_non_vat": 35, "hotel_vat": 38, "farm_shop": 36, "packaging_unit": "bundle", "pack_size": 1 },
  { "name": "Tomatoes Crate", "sku": "FRP-TM-CRT", "category": "Fresh Produce", "quantity": 18, "reorder_threshold": 15, "dealer_cash": 2400, "dealer_credit": 2500, "hotel_non_vat": 2600, "hotel_vat": 2750, "farm_shop": 2650, "packaging_unit": "crate", "pack_size": 64 },
  { "name": "Layers Mash 70kg", "sku": "FEE-LM-70", "category": "Animal Feeds", "quantity": 12, "reorder_threshold": 30, "dealer_cash": 3400, "dealer_credit": 3550, "hotel_non_vat": 3650, "hotel_vat": 3900, "farm_shop": 3700, "packaging_unit": "bag", "pack_size": 1 },
  { "name": "Dairy Meal 70kg", "sku": "FEE-DM-70", "category": "Animal Feeds", "quantity": 28, "reorder_threshold": 25, "dealer_cash": 3100, "dealer_credit": 3250, "hotel_non_vat": 3350, "hotel_vat": 3550, "farm_shop": 3400, "packaging_unit": "bag", "pack_size": 1 },
  { "name": "Mala 500ml", "sku": "BEV-MA-500", "category": "Beverages", "quantity": 150, "reorder_threshold": 60, "dealer_cash": 60, "dealer_credit": 63, "hotel_non_vat": 65, "hotel_vat": 70, "farm_shop": 68, "packaging_unit": "pouch", "pack_size": 24 }
]`)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DBURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var items []CatalogItem
	if err := json.Unmarshal(CatalogData, &items); err != nil {
		log.Fatalf("Failed to parse catalog data: %v", err)
	}
	if len(items) == 0 {
		log.Println("CatalogData is empty. No products to seed.")
		return
	}

	ctx := context.Background()

	// Upsert categories first so products can reference them.
	categoryIDs := make(map[string]string, len(CategorySeed))
	for name, code := range CategorySeed {
		var existingID string
		result := db.WithContext(ctx).Table("categories").
			Select("id").
			Where("code = ?", code).
			Limit(1).
			Scan(&existingID)
		if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
			log.Fatalf("Failed to check existing category %s: %v", name, result.Error)
		}

		if existingID == "" {
			existingID = uuid.New().String()
			if err := db.WithContext(ctx).Table("categories").Create(map[string]interface{}{
				"id":   existingID,
				"name": name,
				"code": code,
			}).Error; err != nil {
				log.Fatalf("Failed to insert category %s: %v", name, err)
			}
		}
		categoryIDs[name] = existingID
	}

	inserted := 0
	updated := 0

	// Upsert products by SKU.
	for _, item := range items {
		var existingID string
		result := db.WithContext(ctx).Table("products").
			Select("id").
			Where("sku = ?", item.SKU).
			Limit(1).
			Scan(&existingID)
		if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
			log.Fatalf("Failed to check existing product %s: %v", item.SKU, result.Error)
		}

		productMap := map[string]interface{}{
			"name":                item.Name,
			"sku":                 item.SKU,
			"category_id":         categoryIDs[item.Category],
			"quantity":            item.Quantity,
			"reorder_threshold":   item.ReorderThreshold,
			"price_dealer_cash":   item.DealerCash,
			"price_dealer_credit": item.DealerCredit,
			"price_hotel_non_vat": item.HotelNonVAT,
			"price_hotel_vat":     item.HotelVAT,
			"price_farm_shop":     item.FarmShop,
			"packaging_unit":      item.PackagingUnit,
			"pack_size":           item.PackSize,
			"is_active":           true,
		}

		if existingID != "" {
			if err := db.WithContext(ctx).Table("products").
				Where("id = ?", existingID).
				Updates(productMap).Error; err != nil {
				log.Fatalf("Failed to update product %s: %v", item.SKU, err)
			}
			updated++
		} else {
			productMap["id"] = uuid.New().String()
			if err := db.WithContext(ctx).Table("products").Create(productMap).Error; err != nil {
				log.Fatalf("Failed to insert product %s: %v", item.SKU, err)
			}
			inserted++
		}
	}

	seedAdminUser(ctx, db)

	log.Printf("Seeder completed: %d products processed (%d inserted, %d updated)", inserted+updated, inserted, updated)
}

// seedAdminUser ensures a default admin account exists for first login.
func seedAdminUser(ctx context.Context, db *gorm.DB) {
	var existingID string
	result := db.WithContext(ctx).Table("users").
		Select("id").
		Where("username = ?", "admin").
		Limit(1).
		Scan(&existingID)
	if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		log.Fatalf("Failed to check existing admin user: %v", result.Error)
	}
	if existingID != "" {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("ChangeMe123!"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	if err := db.WithContext(ctx).Table("users").Create(map[string]interface{}{
		"id":                 uuid.New().String(),
		"username":           "admin",
		"email":              "admin@farmgate.local",
		"password_hash":      string(hash),
		"role":               `"ADMIN"`,
		"first_login":        true,
		"temporary_password": true,
		"is_active":          true,
	}).Error; err != nil {
		log.Fatalf("Failed to insert admin user: %v", err)
	}
	log.Println("Seeded default admin user (username: admin)")
}
