package repository

import (
	"context"

	"household-billing/internal/domain/model"
)

type AuditLogRepository interface {
	Append(ctx context.Context, tx Tx, e *model.AuditEntry) error
}
