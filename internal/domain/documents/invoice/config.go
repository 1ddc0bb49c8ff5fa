package invoice

import "renodevis/internal/core/numerator"

// NumeratorStrategy is strict: French invoices must be numbered without gaps.
const NumeratorStrategy = numerator.StrategyStrict
