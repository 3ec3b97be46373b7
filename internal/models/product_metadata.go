// internal/models/product_metadata.go
package models

import (
	"github.com/lib/pq"
)

// ProductMetadata is purely presentational: storefront copy and preview
// media keyed by product name. It has no bearing on chain state.
type ProductMetadata struct {
	BaseModel
	Account          string         `json:"account" gorm:"size:13;not null;uniqueIndex:idx_product_metadata_account_name"`
	ProductName      string         `json:"product_name" gorm:"size:255;not null;uniqueIndex:idx_product_metadata_account_name"`
	ShortDescription string         `json:"short_description" gorm:"size:500"`
	LongDescription  string         `json:"long_description" gorm:"type:text"`
	PreviewImages    pq.StringArray `json:"preview_images" gorm:"type:text[]"`
	VideoURL         string         `json:"video_url" gorm:"size:500"`
	Extra            JSONB          `json:"extra,omitempty" gorm:"type:jsonb"`
}

func (ProductMetadata) TableName() string {
	return "product_metadata"
}
