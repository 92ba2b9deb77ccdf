package portfolio

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-fills/internal/types"
)

func optionTerms() optional.Option[types.OptionContract] {
	return optional.Some(types.OptionContract{
		Underlying: "SPY",
		Right:      types.OptionRightCall,
		Strike:     dec("192"),
		Expiry:     time.Date(2024, 1, 19, 0, 0, 0, 0, time.UTC),
		Settlement: types.SettlementTypeCash,
	})
}
