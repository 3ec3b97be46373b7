// internal/market/params.go
package market

import (
	"fmt"

	"github.com/nice1tools/market-backend/internal/chain"
	"github.com/nice1tools/market-backend/internal/models"
	"github.com/nice1tools/market-backend/internal/utils"
)

// FlowParams carries the user's terms for one flow execution. Which fields
// are required depends on the flow kind; Validate applies the kind-specific
// rules locally, before any transaction is built.
type FlowParams struct {
	Product   string  `json:"product" validate:"required,min=1,max=255"`
	Price     float64 `json:"price"`
	Receiver1 string  `json:"receiver1" validate:"omitempty,chain_account"`
	Percent1  uint    `json:"percentr1" validate:"max=100"`
	Receiver2 string  `json:"receiver2" validate:"omitempty,chain_account"`
	Percent2  uint    `json:"percentr2" validate:"max=100"`
	Period    uint    `json:"period"`
	Copies    int     `json:"copies" validate:"required,min=1"`
}

func (p *FlowParams) Validate(kind models.FlowKind) error {
	if err := utils.ValidateStruct(p); err != nil {
		return chain.NewError(chain.KindValidation, validationMessage(err))
	}

	if p.Percent1+p.Percent2 > 100 {
		return chain.NewError(chain.KindValidation,
			fmt.Sprintf("revenue split sums to %d%%, must not exceed 100%%", p.Percent1+p.Percent2))
	}

	switch kind {
	case models.FlowKindSale, models.FlowKindRental:
		if p.Price <= 0 {
			return chain.NewError(chain.KindValidation, "price must be greater than zero")
		}
		if p.Receiver1 == "" {
			return chain.NewError(chain.KindValidation, "first receiver account is required")
		}
	}

	switch kind {
	case models.FlowKindRental, models.FlowKindDemo:
		if p.Period == 0 {
			return chain.NewError(chain.KindValidation, "period must be at least one day")
		}
	}

	return nil
}

func validationMessage(err error) string {
	if errs := utils.GetValidationErrors(err); len(errs) > 0 {
		return errs[0].Message
	}
	return err.Error()
}
