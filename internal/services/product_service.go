// internal/services/product_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nice1tools/market-backend/internal/chain"
	"github.com/nice1tools/market-backend/internal/config"
	"github.com/nice1tools/market-backend/internal/models"
)

// MarketProduct is a read-only view of one product row on a license
// contract, merged with its bound reference asset from productdata.
type MarketProduct struct {
	IntRef           uint64 `json:"int_ref"`
	ExtRef           uint64 `json:"ext_ref"`
	Product          string `json:"product"`
	Price            string `json:"price,omitempty"`
	Receiver1        string `json:"receiver1,omitempty"`
	Percent1         uint   `json:"percentr1,omitempty"`
	Receiver2        string `json:"receiver2,omitempty"`
	Percent2         uint   `json:"percentr2,omitempty"`
	Period           uint   `json:"period,omitempty"`
	Active           bool   `json:"active"`
	ReferenceAssetID uint64 `json:"reference_asset_id,omitempty"`
	Stock            uint   `json:"stock"`
}

type productRow struct {
	IntRef    uint64      `json:"int_ref"`
	ExtRef    uint64      `json:"ext_ref"`
	Product   string      `json:"product"`
	Price     string      `json:"price"`
	Receiver1 string      `json:"receiver1"`
	Percent1  uint        `json:"percentr1"`
	Receiver2 string      `json:"receiver2"`
	Percent2  uint        `json:"percentr2"`
	Period    uint        `json:"period"`
	Active    json.Number `json:"active"`
	Stock     uint        `json:"stock"`
}

type productDataRow struct {
	IntRef  uint64 `json:"int_ref"`
	AssetID uint64 `json:"asset_id"`
}

type ProductService struct {
	cfg *config.Config
	log *logrus.Entry
}

func NewProductService(cfg *config.Config) *ProductService {
	return &ProductService{
		cfg: cfg,
		log: logrus.WithField("component", "products"),
	}
}

// ListProducts reads the account's registered products from the flow
// contract and joins the productdata reference bindings by IntRef. Missing
// tables mean no products yet.
func (s *ProductService) ListProducts(ctx context.Context, session chain.Session, kind models.FlowKind) ([]MarketProduct, error) {
	if session == nil || session.Account() == "" {
		return nil, chain.ErrNoSession
	}

	contract, err := s.contract(kind)
	if err != nil {
		return nil, err
	}

	rows, err := session.GetTableRows(ctx, chain.TableQuery{
		Code:  contract,
		Table: "products",
		Scope: session.Account(),
		Limit: s.cfg.Chain.TableRowLimit,
	})
	if err != nil {
		if chain.IsTableNotFound(err) {
			return []MarketProduct{}, nil
		}
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	references, err := s.referenceBindings(ctx, session, contract)
	if err != nil {
		return nil, err
	}

	products := make([]MarketProduct, 0, len(rows))
	for _, row := range rows {
		var pr productRow
		if err := json.Unmarshal(row, &pr); err != nil {
			s.log.WithError(err).Warn("Skipping undecodable product row")
			continue
		}

		active, _ := pr.Active.Int64()
		products = append(products, MarketProduct{
			IntRef:           pr.IntRef,
			ExtRef:           pr.ExtRef,
			Product:          pr.Product,
			Price:            pr.Price,
			Receiver1:        pr.Receiver1,
			Percent1:         pr.Percent1,
			Receiver2:        pr.Receiver2,
			Percent2:         pr.Percent2,
			Period:           pr.Period,
			Active:           active != 0,
			ReferenceAssetID: references[pr.IntRef],
			Stock:            pr.Stock,
		})
	}

	return products, nil
}

func (s *ProductService) referenceBindings(ctx context.Context, session chain.Session, contract string) (map[uint64]uint64, error) {
	rows, err := session.GetTableRows(ctx, chain.TableQuery{
		Code:  contract,
		Table: "productdata",
		Scope: session.Account(),
		Limit: s.cfg.Chain.TableRowLimit,
	})
	if err != nil {
		if chain.IsTableNotFound(err) {
			return map[uint64]uint64{}, nil
		}
		return nil, fmt.Errorf("failed to fetch product data: %w", err)
	}

	references := make(map[uint64]uint64, len(rows))
	for _, row := range rows {
		var pd productDataRow
		if err := json.Unmarshal(row, &pd); err != nil {
			continue
		}
		references[pd.IntRef] = pd.AssetID
	}

	return references, nil
}

func (s *ProductService) contract(kind models.FlowKind) (string, error) {
	switch kind {
	case models.FlowKindSale:
		return s.cfg.Chain.SaleContract, nil
	case models.FlowKindRental:
		return s.cfg.Chain.RentalContract, nil
	case models.FlowKindDemo:
		return s.cfg.Chain.DemoContract, nil
	default:
		return "", chain.NewError(chain.KindValidation, fmt.Sprintf("unknown flow kind %q", kind))
	}
}
