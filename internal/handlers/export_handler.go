package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripledger/internal/export"
	"tripledger/internal/ledger"
	"tripledger/internal/services"
)

// ExportHandler serves one-shot downloads of the current ledger scope. It
// reuses the ledger handler's scope resolution so exports honor the same
// capability checks as reads.
type ExportHandler struct {
	ledgerHandler *LedgerHandler
	exportService *export.Service
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(ledgerHandler *LedgerHandler, exportService *export.Service) *ExportHandler {
	return &ExportHandler{ledgerHandler: ledgerHandler, exportService: exportService}
}

// loadSnapshot resolves the scope, ensures it is loaded, and returns a copy of
// its ledger.
func (h *ExportHandler) loadSnapshot(c *gin.Context) (ledger.Snapshot, bool) {
	scope, err := h.ledgerHandler.resolveScope(c, services.CapabilityView)
	if err != nil {
		respondWithError(c, err)
		return ledger.Snapshot{}, false
	}

	eng, err := h.ledgerHandler.manager.Activate(c.Request.Context(), scope, false)
	if err != nil {
		respondWithError(c, err)
		return ledger.Snapshot{}, false
	}

	return eng.Snapshot(), true
}

// ExportSnapshot downloads the current scope's ledger as a plain-text file.
func (h *ExportHandler) ExportSnapshot(c *gin.Context) {
	snap, ok := h.loadSnapshot(c)
	if !ok {
		return
	}

	now := time.Now()
	filename := fmt.Sprintf("trip-snapshot-%s.txt", now.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", h.exportService.Snapshot(snap, now))
}

// ExportSpreadsheet downloads the current scope's ledger as a spreadsheet
// with expense, summary, and category sheets.
func (h *ExportHandler) ExportSpreadsheet(c *gin.Context) {
	snap, ok := h.loadSnapshot(c)
	if !ok {
		return
	}

	data, err := h.exportService.Workbook(snap)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("trip-ledger-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
