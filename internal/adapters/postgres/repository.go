package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kilimo-tech/farmgate-pos/internal/core"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Repository implements ProductRepository, CategoryRepository and
// UserRepository using GORM over the pgx driver.
type Repository struct {
	db                 *gorm.DB
	productRepository  *productRepository
	categoryRepository *categoryRepository
	userRepository     *userRepository
}

type productRepository struct {
	*Repository
}

type categoryRepository struct {
	*Repository
}

type userRepository struct {
	*Repository
}

// NewRepository creates a new Postgres repository instance.
func NewRepository(dbURL string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := &Repository{db: db}
	repo.productRepository = &productRepository{Repository: repo}
	repo.categoryRepository = &categoryRepository{Repository: repo}
	repo.userRepository = &userRepository{Repository: repo}
	return repo, nil
}

// ProductRepository returns the ProductRepository implementation.
func (r *Repository) ProductRepository() core.ProductRepository {
	return r.productRepository
}

// CategoryRepository returns the CategoryRepository implementation.
func (r *Repository) CategoryRepository() core.CategoryRepository {
	return r.categoryRepository
}

// UserRepository returns the UserRepository implementation.
func (r *Repository) UserRepository() core.UserRepository {
	return r.userRepository
}

// Database Models (with GORM tags)

// ProductModel represents the products table structure.
type ProductModel struct {
	ID                string         `gorm:"column:id;type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name              string         `gorm:"column:name;type:varchar(255);not null"`
	SKU               string         `gorm:"column:sku;type:varchar(64);not null;uniqueIndex"`
	CategoryID        sql.NullString `gorm:"column:category_id;type:uuid;index"`
	Quantity          float64        `gorm:"column:quantity;type:decimal(12,2);not null;default:0"`
	ReorderThreshold  float64        `gorm:"column:reorder_threshold;type:decimal(12,2);not null;default:0"`
	PriceDealerCash   float64        `gorm:"column:price_dealer_cash;type:decimal(12,2);not null;default:0"`
	PriceDealerCredit float64        `gorm:"column:price_dealer_credit;type:decimal(12,2);not null;default:0"`
	PriceHotelNonVAT  float64        `gorm:"column:price_hotel_non_vat;type:decimal(12,2);not null;default:0"`
	PriceHotelVAT     float64        `gorm:"column:price_hotel_vat;type:decimal(12,2);not null;default:0"`
	PriceFarmShop     float64        `gorm:"column:price_farm_shop;type:decimal(12,2);not null;default:0"`
	PackagingUnit     sql.NullString `gorm:"column:packaging_unit;type:varchar(32)"`
	PackSize          float64        `gorm:"column:pack_size;type:decimal(12,2);not null;default:1"`
	IsActive          bool           `gorm:"column:is_active;type:boolean;not null;default:true"`
}

func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts ProductModel to core.Product.
func (p *ProductModel) ToDomain() *core.Product {
	product := &core.Product{
		ID:                p.ID,
		Name:              p.Name,
		SKU:               p.SKU,
		Quantity:          p.Quantity,
		ReorderThreshold:  p.ReorderThreshold,
		PriceDealerCash:   p.PriceDealerCash,
		PriceDealerCredit: p.PriceDealerCredit,
		PriceHotelNonVAT:  p.PriceHotelNonVAT,
		PriceHotelVAT:     p.PriceHotelVAT,
		PriceFarmShop:     p.PriceFarmShop,
		PackSize:          p.PackSize,
		IsActive:          p.IsActive,
	}

	if p.CategoryID.Valid {
		product.CategoryID = p.CategoryID.String
	}
	if p.PackagingUnit.Valid {
		product.PackagingUnit = p.PackagingUnit.String
	}

	return product
}

// CategoryModel represents the categories table structure.
type CategoryModel struct {
	ID   string `gorm:"column:id;type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name string `gorm:"column:name;type:varchar(100);not null"`
	Code string `gorm:"column:code;type:varchar(20);not null;uniqueIndex"`
}

func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts CategoryModel to core.Category.
func (c *CategoryModel) ToDomain() *core.Category {
	return &core.Category{
		ID:   c.ID,
		Name: c.Name,
		Code: c.Code,
	}
}

// UserModel represents the users table structure. The role column is JSONB
// because legacy rows carry either a plain string or an object role payload;
// it is normalized once at this boundary.
type UserModel struct {
	ID                string          `gorm:"column:id;type:uuid;primaryKey;default:uuid_generate_v4()"`
	Username          string          `gorm:"column:username;type:varchar(100);not null;uniqueIndex"`
	Email             sql.NullString  `gorm:"column:email;type:varchar(255);uniqueIndex"`
	PasswordHash      string          `gorm:"column:password_hash;type:varchar(255);not null"`
	Role              json.RawMessage `gorm:"column:role;type:jsonb;not null"`
	Title             sql.NullString  `gorm:"column:title;type:varchar(50)"`
	FirstName         sql.NullString  `gorm:"column:first_name;type:varchar(100)"`
	LastName          sql.NullString  `gorm:"column:last_name;type:varchar(100)"`
	EmployeeID        sql.NullString  `gorm:"column:employee_id;type:varchar(50)"`
	PhoneNumber       sql.NullString  `gorm:"column:phone_number;type:varchar(20)"`
	FirstLogin        bool            `gorm:"column:first_login;type:boolean;not null;default:true"`
	TemporaryPassword bool            `gorm:"column:temporary_password;type:boolean;not null;default:false"`
	IsActive          bool            `gorm:"column:is_active;type:boolean;not null;default:true"`
	CreatedAt         time.Time       `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP"`
}

func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to core.User, normalizing the role payload.
func (u *UserModel) ToDomain() (*core.User, error) {
	role, err := core.NormalizeRole(u.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize role for user %s: %w", u.ID, err)
	}

	user := &core.User{
		ID:                u.ID,
		Username:          u.Username,
		PasswordHash:      u.PasswordHash,
		Role:              role,
		FirstLogin:        u.FirstLogin,
		TemporaryPassword: u.TemporaryPassword,
		IsActive:          u.IsActive,
		CreatedAt:         u.CreatedAt,
	}

	if u.Email.Valid {
		user.Email = u.Email.String
	}
	if u.Title.Valid {
		user.Title = u.Title.String
	}
	if u.FirstName.Valid {
		user.FirstName = u.FirstName.String
	}
	if u.LastName.Valid {
		user.LastName = u.LastName.String
	}
	if u.EmployeeID.Valid {
		user.EmployeeID = u.EmployeeID.String
	}
	if u.PhoneNumber.Valid {
		user.PhoneNumber = u.PhoneNumber.String
	}

	return user, nil
}

// ProductRepository implementation

// productWithCategory is the joined row shape for the report query.
type productWithCategory struct {
	ProductModel
	CategoryName sql.NullString `gorm:"column:category_name"`
}

// GetWithCategories retrieves all active products joined with their category.
// A non-empty categoryIDs slice restricts the result to those categories.
func (r *productRepository) GetWithCategories(ctx context.Context, categoryIDs []string) ([]*core.Product, error) {
	query := r.db.WithContext(ctx).Table("products").
		Select("products.*, categories.name as category_name").
		Joins("LEFT JOIN categories ON products.category_id = categories.id").
		Where("products.is_active = ?", true).
		Order("products.name")

	if len(categoryIDs) > 0 {
		query = query.Where("products.category_id IN ?", categoryIDs)
	}

	var rows []productWithCategory
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to get products: %v", core.ErrDataAccess, err)
	}

	products := make([]*core.Product, len(rows))
	for i, row := range rows {
		product := row.ProductModel.ToDomain()
		if row.CategoryName.Valid {
			product.CategoryName = row.CategoryName.String
		}
		products[i] = product
	}
	return products, nil
}

// GetByID retrieves a product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*core.Product, error) {
	var row productWithCategory
	err := r.db.WithContext(ctx).Table("products").
		Select("products.*, categories.name as category_name").
		Joins("LEFT JOIN categories ON products.category_id = categories.id").
		Where("products.id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", core.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to get product: %v", core.ErrDataAccess, err)
	}

	product := row.ProductModel.ToDomain()
	if row.CategoryName.Valid {
		product.CategoryName = row.CategoryName.String
	}
	return product, nil
}

// CategoryRepository implementation

// GetAll retrieves all categories ordered by name.
func (r *categoryRepository) GetAll(ctx context.Context) ([]*core.Category, error) {
	var models []CategoryModel
	if err := r.db.WithContext(ctx).Table("categories").
		Order("name").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to get categories: %v", core.ErrDataAccess, err)
	}

	categories := make([]*core.Category, len(models))
	for i := range models {
		categories[i] = models[i].ToDomain()
	}
	return categories, nil
}

// UserRepository implementation

func (r *userRepository) getUser(ctx context.Context, column, value string) (*core.User, error) {
	var model UserModel
	err := r.db.WithContext(ctx).Table("users").
		Where(column+" = ?", value).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", core.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to get user: %v", core.ErrDataAccess, err)
	}
	return model.ToDomain()
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id string) (*core.User, error) {
	return r.getUser(ctx, "id", id)
}

// GetByUsername retrieves a user by username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*core.User, error) {
	return r.getUser(ctx, "username", username)
}

// GetByEmail retrieves a user by email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	return r.getUser(ctx, "email", email)
}

// Create inserts a new user. The canonical role string is stored as a JSON
// string value so every new row is already in the normalized shape.
func (r *userRepository) Create(ctx context.Context, user *core.User) error {
	roleJSON, err := json.Marshal(user.Role)
	if err != nil {
		return fmt.Errorf("failed to encode role: %w", err)
	}

	model := &UserModel{
		ID:                user.ID,
		Username:          user.Username,
		PasswordHash:      user.PasswordHash,
		Role:              roleJSON,
		FirstLogin:        user.FirstLogin,
		TemporaryPassword: user.TemporaryPassword,
		IsActive:          user.IsActive,
		CreatedAt:         user.CreatedAt,
	}
	if user.Email != "" {
		model.Email = sql.NullString{String: user.Email, Valid: true}
	}
	if user.Title != "" {
		model.Title = sql.NullString{String: user.Title, Valid: true}
	}
	if user.FirstName != "" {
		model.FirstName = sql.NullString{String: user.FirstName, Valid: true}
	}
	if user.LastName != "" {
		model.LastName = sql.NullString{String: user.LastName, Valid: true}
	}
	if user.EmployeeID != "" {
		model.EmployeeID = sql.NullString{String: user.EmployeeID, Valid: true}
	}
	if user.PhoneNumber != "" {
		model.PhoneNumber = sql.NullString{String: user.PhoneNumber, Valid: true}
	}

	if err := r.db.WithContext(ctx).Table("users").Create(model).Error; err != nil {
		return fmt.Errorf("%w: failed to create user: %v", core.ErrDataAccess, err)
	}
	return nil
}

// UpdatePassword replaces a user's password hash and temporary flag.
func (r *userRepository) UpdatePassword(ctx context.Context, id string, passwordHash string, temporary bool) error {
	result := r.db.WithContext(ctx).Table("users").
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash":      passwordHash,
			"temporary_password": temporary,
		})
	if result.Error != nil {
		return fmt.Errorf("%w: failed to update password: %v", core.ErrDataAccess, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %s", core.ErrNotFound, id)
	}
	return nil
}

// ClearFirstLogin marks the user's first login as completed.
func (r *userRepository) ClearFirstLogin(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Table("users").
		Where("id = ?", id).
		Update("first_login", false)
	if result.Error != nil {
		return fmt.Errorf("%w: failed to clear first login: %v", core.ErrDataAccess, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %s", core.ErrNotFound, id)
	}
	return nil
}

// ResetPassword invokes the reset_user_password stored procedure, which
// swaps the hash and raises the temporary-password flag server-side.
func (r *userRepository) ResetPassword(ctx context.Context, userID string, passwordHash string) error {
	if err := r.db.WithContext(ctx).
		Exec("SELECT reset_user_password(?, ?)", userID, passwordHash).Error; err != nil {
		return fmt.Errorf("%w: failed to reset password: %v", core.ErrDataAccess, err)
	}
	return nil
}
