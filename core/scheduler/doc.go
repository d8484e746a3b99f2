// Package scheduler decides when the optimizer runs. Optimization instants
// are aligned on a fixed interval counted from local midnight, so a 15 minute
// schedule fires at :00, :15, :30 and :45 whatever the start time.
package scheduler
