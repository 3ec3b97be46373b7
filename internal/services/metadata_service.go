// internal/services/metadata_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nice1tools/market-backend/internal/models"
	"github.com/nice1tools/market-backend/internal/utils"
)

// MetadataService manages the storefront metadata attached to products:
// descriptions, preview images and a video URL, keyed by product name. This
// is presentation data only and never touches the chain.
type MetadataService struct {
	db             *gorm.DB
	storageService *StorageService
}

type UpsertMetadataRequest struct {
	ShortDescription string   `json:"short_description" validate:"max=500"`
	LongDescription  string   `json:"long_description"`
	PreviewImages    []string `json:"preview_images" validate:"max=10,dive,max=500"`
	VideoURL         string   `json:"video_url" validate:"omitempty,url,max=500"`
}

func NewMetadataService(db *gorm.DB, storageService *StorageService) *MetadataService {
	return &MetadataService{
		db:             db,
		storageService: storageService,
	}
}

func (s *MetadataService) Get(account, productName string) (*models.ProductMetadata, error) {
	var metadata models.ProductMetadata
	if err := s.db.Where("account = ? AND product_name = ?", account, normalizeProductName(productName)).
		First(&metadata).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("metadata not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &metadata, nil
}

func (s *MetadataService) List(account string, params utils.PaginationParams) ([]models.ProductMetadata, int64, error) {
	query := s.db.Model(&models.ProductMetadata{}).Where("account = ?", account)
	if params.Search != "" {
		query = query.Where("product_name ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	var metadata []models.ProductMetadata
	query = utils.ApplySort(query, params, []string{"product_name", "created_at", "updated_at"})
	if err := utils.ApplyPagination(query, params).Find(&metadata).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	return metadata, total, nil
}

func (s *MetadataService) Upsert(account, productName string, req *UpsertMetadataRequest) (*models.ProductMetadata, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	name := normalizeProductName(productName)
	if name == "" {
		return nil, errors.New("product name is required")
	}

	var metadata models.ProductMetadata
	err := s.db.Where("account = ? AND product_name = ?", account, name).First(&metadata).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	metadata.Account = account
	metadata.ProductName = name
	metadata.ShortDescription = req.ShortDescription
	metadata.LongDescription = req.LongDescription
	metadata.PreviewImages = req.PreviewImages
	metadata.VideoURL = req.VideoURL

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.Create(&metadata).Error; err != nil {
			return nil, fmt.Errorf("failed to create metadata: %w", err)
		}
	} else {
		if err := s.db.Save(&metadata).Error; err != nil {
			return nil, fmt.Errorf("failed to update metadata: %w", err)
		}
	}

	return &metadata, nil
}

// UploadPreview stores one preview image and appends its URL to the
// product's metadata, creating the record if needed.
func (s *MetadataService) UploadPreview(account, productName string, file multipart.File, header *multipart.FileHeader) (*models.ProductMetadata, error) {
	name := normalizeProductName(productName)
	if name == "" {
		return nil, errors.New("product name is required")
	}

	result, err := s.storageService.UploadFile(file, header, UploadOptions{
		Folder:       "previews/" + account,
		MaxSize:      10 << 20,
		AllowedTypes: []string{".png", ".jpg", ".jpeg", ".gif", ".webp"},
		IsPublic:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload preview: %w", err)
	}

	var metadata models.ProductMetadata
	err = s.db.Where("account = ? AND product_name = ?", account, name).First(&metadata).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("database error: %w", err)
		}
		metadata = models.ProductMetadata{Account: account, ProductName: name}
	}

	metadata.PreviewImages = append(metadata.PreviewImages, result.URL)

	if metadata.ID == uuid.Nil {
		if err := s.db.Create(&metadata).Error; err != nil {
			return nil, fmt.Errorf("failed to create metadata: %w", err)
		}
	} else {
		if err := s.db.Save(&metadata).Error; err != nil {
			return nil, fmt.Errorf("failed to update metadata: %w", err)
		}
	}

	return &metadata, nil
}

func (s *MetadataService) Delete(account, productName string) error {
	result := s.db.Where("account = ? AND product_name = ?", account, normalizeProductName(productName)).
		Delete(&models.ProductMetadata{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete metadata: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("metadata not found")
	}
	return nil
}

func normalizeProductName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
