package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/grovetrack/importflow/internal/middleware"
	"github.com/grovetrack/importflow/internal/models"
)

const maxDocumentSize = 20 << 20 // 20 MB

// uploadDocument accepts a multipart upload from the supplier portal:
// the file plus type, supplier and optional shipmentId fields. The payload
// is stored on disk under a uuid name; only metadata goes to the database.
func (r *Router) uploadDocument(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseMultipartForm(maxDocumentSize); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		respondValidation(w, []string{"file is required"})
		return
	}
	defer file.Close()

	docType := req.FormValue("type")
	if docType == "" {
		respondValidation(w, []string{"type is required"})
		return
	}

	claims := middleware.ClaimsFrom(req)
	supplier := req.FormValue("supplier")
	// Supplier users upload for themselves, whatever the form says
	if own := claims.Supplier(); own != "" {
		supplier = own
	}
	if supplier == "" {
		respondValidation(w, []string{"supplier is required"})
		return
	}

	doc := models.SupplierDocument{
		Supplier:   supplier,
		Type:       docType,
		FileName:   filepath.Base(header.Filename),
		StoredName: uuid.NewString() + filepath.Ext(header.Filename),
		SizeBytes:  header.Size,
		MimeType:   header.Header.Get("Content-Type"),
		UploadedBy: claims.Email(),
	}
	if shipmentID := req.FormValue("shipmentId"); shipmentID != "" {
		// The shipment must exist; a dangling reference helps nobody
		var shipment models.Shipment
		if err := r.db.First(&shipment, "id = ?", shipmentID).Error; err != nil {
			respondError(w, http.StatusNotFound, "Shipment not found")
			return
		}
		doc.ShipmentID = &shipment.ID
	}

	if err := os.MkdirAll(r.cfg.DocumentDir, 0o755); err != nil {
		r.respondInternal(w, "Failed to prepare document storage", err)
		return
	}
	dst, err := os.Create(filepath.Join(r.cfg.DocumentDir, doc.StoredName))
	if err != nil {
		r.respondInternal(w, "Failed to store document", err)
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		r.respondInternal(w, "Failed to store document", err)
		return
	}

	if err := r.db.Create(&doc).Error; err != nil {
		// Best effort cleanup of the orphaned file
		os.Remove(filepath.Join(r.cfg.DocumentDir, doc.StoredName))
		r.respondInternal(w, "Failed to save document metadata", err)
		return
	}

	log.Printf("📄 Document received: %s (%s) from %s", doc.FileName, doc.Type, supplier)
	respondJSON(w, http.StatusCreated, doc)
}

// listDocuments returns document metadata, filterable by shipment.
// Supplier users only see their own documents.
func (r *Router) listDocuments(w http.ResponseWriter, req *http.Request) {
	q := r.db.Model(&models.SupplierDocument{}).Order("created_at DESC")
	if shipmentID := req.URL.Query().Get("shipmentId"); shipmentID != "" {
		q = q.Where("shipment_id = ?", shipmentID)
	}
	if status := req.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if own := middleware.ClaimsFrom(req).Supplier(); own != "" {
		q = q.Where("supplier = ?", own)
	}

	var docs []models.SupplierDocument
	if err := q.Find(&docs).Error; err != nil {
		r.respondInternal(w, "Failed to fetch documents", err)
		return
	}
	respondJSON(w, http.StatusOK, docs)
}

// downloadDocument streams the stored file back to the client
func (r *Router) downloadDocument(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	var doc models.SupplierDocument
	if err := r.db.First(&doc, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Document not found")
		return
	}

	if own := middleware.ClaimsFrom(req).Supplier(); own != "" && own != doc.Supplier {
		respondError(w, http.StatusNotFound, "Document not found")
		return
	}

	path := filepath.Join(r.cfg.DocumentDir, doc.StoredName)
	f, err := os.Open(path)
	if err != nil {
		r.respondInternal(w, "Document file missing from storage", err)
		return
	}
	defer f.Close()

	if doc.MimeType != "" {
		w.Header().Set("Content-Type", doc.MimeType)
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	io.Copy(w, f)
}

// reviewDocument lets staff mark an uploaded document reviewed or rejected
func (r *Router) reviewDocument(w http.ResponseWriter, req *http.Request) {
	claims := middleware.ClaimsFrom(req)
	if claims.Role() != models.RoleAdmin && claims.Role() != models.RoleStaff {
		respondError(w, http.StatusForbidden, "Staff access required")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Status != "reviewed" && body.Status != "rejected" {
		respondValidation(w, []string{"status must be reviewed or rejected"})
		return
	}

	id := mux.Vars(req)["id"]
	res := r.db.Model(&models.SupplierDocument{}).
		Where("id = ?", id).
		Update("status", body.Status)
	if res.Error != nil {
		r.respondInternal(w, "Failed to update document", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, "Document not found")
		return
	}

	var doc models.SupplierDocument
	if err := r.db.First(&doc, "id = ?", id).Error; err != nil {
		r.respondInternal(w, "Failed to reload document", err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}
