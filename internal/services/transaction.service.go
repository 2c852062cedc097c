package services

import (
	"context"
	"fmt"

	contextutil "musicd/internal/context"
	"musicd/internal/database"
	"musicd/internal/logger"
)

// TransactionService runs a unit of work inside a single database
// transaction, injecting the *gorm.DB into the context so repositories
// below it can find it without threading it through every call.
type TransactionService struct {
	db  database.DB
	log logger.Logger
}

func NewTransactionService(db database.DB) *TransactionService {
	return &TransactionService{
		db:  db,
		log: logger.New("TransactionService"),
	}
}

// Execute runs fn inside a transaction, committing on success and rolling
// back on error or panic. A panic is converted to an error once the
// rollback succeeds; if the rollback itself fails the process panics,
// since the dataset may be left inconsistent.
func (ts *TransactionService) Execute(ctx context.Context, fn func(context.Context) error) (err error) {
	log := ts.log.Function("Execute")

	tx := ts.db.SQLWithContext(ctx).Begin()
	if tx.Error != nil {
		return log.Err("failed to begin transaction", tx.Error)
	}

	txCtx := contextutil.WithTransaction(ctx, tx)

	defer func() {
		if r := recover(); r != nil {
			panicErr := fmt.Errorf("panic during transaction: %v", r)
			log.Er("panic during transaction, rolling back", panicErr)

			if rollbackErr := tx.Rollback().Error; rollbackErr != nil {
				log.Er("CRITICAL: failed to rollback after panic", rollbackErr, "panic", r)
				panic(fmt.Sprintf("transaction rollback failed: %v (original panic: %v)", rollbackErr, r))
			}

			log.Info("transaction rolled back successfully after panic")
			err = panicErr
		}
	}()

	if err := fn(txCtx); err != nil {
		if rollbackErr := tx.Rollback().Error; rollbackErr != nil {
			log.Er("failed to rollback transaction", rollbackErr, "originalError", err.Error())
		} else {
			log.Info("transaction rolled back due to error", "error", err.Error())
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return log.Err("failed to commit transaction", err)
	}

	log.Info("transaction completed successfully")
	return nil
}
