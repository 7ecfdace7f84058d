// Package domain defines the zero-trust session entities.
package domain

import "github.com/allisson/trustkit/internal/errors"

// SensitiveOperation identifies an action that requires a valid session,
// cooldown clearance and rate limit admission. The set is closed: unknown
// names are rejected, never defaulted.
type SensitiveOperation string

const (
	OperationViewLogs       SensitiveOperation = "view_logs"
	OperationClearData      SensitiveOperation = "clear_data"
	OperationSimulateThreat SensitiveOperation = "simulate_threat"
)

// SensitiveOperations lists every recognized operation.
func SensitiveOperations() []SensitiveOperation {
	return []SensitiveOperation{
		OperationViewLogs,
		OperationClearData,
		OperationSimulateThreat,
	}
}

// ParseSensitiveOperation maps a wire name to its operation.
func ParseSensitiveOperation(name string) (SensitiveOperation, error) {
	switch SensitiveOperation(name) {
	case OperationViewLogs, OperationClearData, OperationSimulateThreat:
		return SensitiveOperation(name), nil
	default:
		return "", errors.Wrap(errors.ErrInvalidInput, "unknown sensitive operation: "+name)
	}
}

func (o SensitiveOperation) String() string {
	return string(o)
}
