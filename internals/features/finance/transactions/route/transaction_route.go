// file: internals/features/finance/transactions/route/transaction_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/finance/transactions/controller"
)

// Read-only: transaksi hanya dibuat oleh ledger pembayaran.
func TransactionAdminRoutes(admin fiber.Router, db *gorm.DB) {
	h := controller.NewTransactionController(db)

	grp := admin.Group("/transactions")
	grp.Get("/", h.List)
	grp.Get("/:id", h.Get)
}
