package persistence

import (
	"fmt"

	"github.com/profitpath/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// schemaModels lists every table the service owns, parents first
var schemaModels = []any{
	&models.PartyModel{},
	&models.DocumentModel{},
	&models.LineItemModel{},
	&models.DocumentSequenceModel{},
	&models.PaymentEventModel{},
}

// AutoMigrate creates the schema from the models. It backs SQLite development
// databases and tests; Postgres deployments run the SQL files under migrations/.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(schemaModels...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
