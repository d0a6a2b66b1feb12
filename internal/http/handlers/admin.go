package handlers

import (
	"net/http"

	"github.com/hongminglow/dbgate/internal/admin"
	"github.com/hongminglow/dbgate/internal/http/respond"
	"github.com/hongminglow/dbgate/internal/logging"
	"github.com/hongminglow/dbgate/internal/models/dto"
)

// AdminHandler exposes generic table access and backup management. Every
// route is admin-only; the checks live in admin.Service.
type AdminHandler struct {
	svc *admin.Service
	log logging.Logger
}

func NewAdminHandler(svc *admin.Service, log logging.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, log: log}
}

func (h *AdminHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /database/{table}", h.handleReadTable)
	mux.HandleFunc("PATCH /database/update-value", h.handleUpdateValue)
	mux.HandleFunc("DELETE /database/delete-row", h.handleDeleteRow)
	mux.HandleFunc("POST /database/insert-row", h.handleInsertRow)

	mux.HandleFunc("POST /backup/create", h.handleCreateBackup)
	mux.HandleFunc("DELETE /backup/delete", h.handleDeleteBackup)
	mux.HandleFunc("POST /backup/restore", h.handleRestoreBackup)
	mux.HandleFunc("GET /backup/list", h.handleListBackups)
}

// handleReadTable answers with the row list, or with the column names when
// the table is empty.
func (h *AdminHandler) handleReadTable(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.ReadFullTable(r.Context(), bearerToken(r), r.PathValue("table"))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	if len(view.Rows) == 0 {
		respond.JSON(w, http.StatusOK, view.Columns)
		return
	}
	respond.JSON(w, http.StatusOK, view.Rows)
}

func (h *AdminHandler) handleUpdateValue(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateValueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, h.log, err)
		return
	}
	if err := h.svc.UpdateValue(r.Context(), bearerToken(r), req.TableName, req.ColumnName, req.NewValue, req.ID); err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond.Message(w, http.StatusOK, "value updated", nil)
}

func (h *AdminHandler) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	var req dto.DeleteRowRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, h.log, err)
		return
	}
	if err := h.svc.DeleteRow(r.Context(), bearerToken(r), req.TableName, req.ID); err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond.Message(w, http.StatusOK, "row deleted", nil)
}

func (h *AdminHandler) handleInsertRow(w http.ResponseWriter, r *http.Request) {
	var req dto.InsertRowRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, h.log, err)
		return
	}
	if err := h.svc.InsertRow(r.Context(), bearerToken(r), req.TableName, req.Columns, req.Values); err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond.Message(w, http.StatusCreated, "row inserted", nil)
}

func (h *AdminHandler) handleCreateBackup(w http.ResponseWriter, r *http.Request) {
	var req dto.BackupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, h.log, err)
		return
	}
	name, err := h.svc.CreateBackup(r.Context(), bearerToken(r), req.BackupName)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.BackupResponse{Message: "Backup created", BackupName: name})
}

func (h *AdminHandler) handleDeleteBackup(w http.ResponseWriter, r *http.Request) {
	var req dto.BackupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, h.log, err)
		return
	}
	if err := h.svc.DeleteBackup(r.Context(), bearerToken(r), req.BackupName); err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.BackupResponse{Message: "Backup deleted", BackupName: req.BackupName})
}

func (h *AdminHandler) handleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	var req dto.BackupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, h.log, err)
		return
	}
	if err := h.svc.RestoreBackup(r.Context(), bearerToken(r), req.BackupName); err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.BackupResponse{Message: "Backup restored", BackupName: req.BackupName})
}

func (h *AdminHandler) handleListBackups(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.ListBackups(r.Context(), bearerToken(r))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.BackupListResponse{Backups: names})
}
