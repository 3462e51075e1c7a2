// Package api exposes the ingestion pipeline over HTTP for statement
// uploads. It is a thin shell: all parsing lives in the pipeline.
package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/statement-ingest/internal/models"
	"github.com/insightdelivered/statement-ingest/internal/pipeline"
	"github.com/insightdelivered/statement-ingest/internal/writer"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// defaultTimeout bounds extraction and OCR for one upload.
const defaultTimeout = 2 * time.Minute

// IngestResponse is the JSON body returned by POST /api/ingest.
type IngestResponse struct {
	Success      bool                          `json:"success"`
	Error        string                        `json:"error,omitempty"`
	Bank         models.BankID                 `json:"bank,omitempty"`
	Transactions []models.CanonicalTransaction `json:"transactions"`
	Warnings     []string                      `json:"warnings,omitempty"`
	SkippedRows  []models.SkippedRow           `json:"skippedRows,omitempty"`
	CSV          string                        `json:"csv,omitempty"`
	Count        int                           `json:"count"`
	Version      string                        `json:"version,omitempty"`
}

// Handler holds the HTTP handlers for the ingestion API.
type Handler struct {
	Pipeline *pipeline.Pipeline
	Timeout  time.Duration
}

// Register sets up the routes on the fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Post("/api/ingest", h.handleIngest)
	app.Get("/api/health", h.handleHealth)
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "version": Version})
}

func (h *Handler) handleIngest(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "no file uploaded; use form field 'file'")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "cannot open uploaded file")
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return writeError(c, fiber.StatusInternalServerError, "cannot read uploaded file")
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(c.Context(), timeout)
	defer cancel()

	result, err := h.Pipeline.Ingest(ctx, buf.Bytes(), fileHeader.Filename)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmptyDocument), errors.Is(err, models.ErrUnparsableDocument):
			return writeError(c, fiber.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, models.ErrExtractionTimeout):
			// Retryable: the client decides whether to retry or route the
			// upload to manual review.
			return writeError(c, fiber.StatusGatewayTimeout, err.Error())
		}
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}

	var csvBuf bytes.Buffer
	csvWriter := &writer.CSVWriter{}
	if err := csvWriter.Write(&csvBuf, result); err != nil {
		return writeError(c, fiber.StatusInternalServerError, "csv generation failed: "+err.Error())
	}

	txns := result.Transactions
	if txns == nil {
		txns = []models.CanonicalTransaction{}
	}
	return c.JSON(IngestResponse{
		Success:      true,
		Bank:         result.Bank,
		Transactions: txns,
		Warnings:     result.Warnings,
		SkippedRows:  result.Skipped,
		CSV:          csvBuf.String(),
		Count:        len(txns),
		Version:      Version,
	})
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(IngestResponse{
		Success:      false,
		Error:        msg,
		Transactions: []models.CanonicalTransaction{},
	})
}
