package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	certmail "github.com/alnah/go-certmail"
	"github.com/alnah/go-certmail/internal/fileutil"
)

// Client-facing messages.
const (
	msgNameEmailRequired = "name and email are required"
	msgGenerated         = "Certificate generated and emailed successfully."
	msgGenerateFailed    = "Failed to generate or send certificate"
	msgNoFile            = `No file uploaded. Use field name "file" and upload a CSV.`
	msgCSVOnly           = "Only CSV files are supported for bulk upload."
	msgNoParticipants    = "No valid participants found in file. Expected columns: name, email"
	msgTooLarge          = "File too large. Maximum upload size is %d bytes."
)

type generateReq struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

// generateCertificate renders one certificate and answers as soon as it
// exists; the email goes out in the background.
func (s *Server) generateCertificate(c echo.Context) error {
	var req generateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResp{Message: msgNameEmailRequired})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResp{Message: msgNameEmailRequired})
	}

	rec := certmail.Record{Name: req.Name, Email: req.Email}
	if err := s.pipeline.Issue(c.Request().Context(), rec); err != nil {
		msg := err.Error()
		if msg == "" {
			msg = msgGenerateFailed
		}
		return c.JSON(http.StatusInternalServerError, messageResp{Message: truncate(msg, maxErrorMessage)})
	}

	return c.JSON(http.StatusOK, messageResp{Success: true, Message: msgGenerated})
}

type bulkResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	*certmail.Summary
}

// bulkGenerate runs every participant of an uploaded CSV through the
// pipeline and returns the summary.
func (s *Server) bulkGenerate(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return c.JSON(http.StatusRequestEntityTooLarge, messageResp{Message: fmt.Sprintf(msgTooLarge, s.uploadLimit)})
		}
		return c.JSON(http.StatusBadRequest, messageResp{Message: msgNoFile})
	}
	if !fileutil.HasExtension(fh.Filename, ".csv") {
		return c.JSON(http.StatusBadRequest, messageResp{Message: msgCSVOnly})
	}
	if fh.Size > s.uploadLimit {
		return c.JSON(http.StatusRequestEntityTooLarge, messageResp{Message: fmt.Sprintf(msgTooLarge, s.uploadLimit)})
	}

	records, err := s.readUpload(fh)
	if err != nil {
		s.logger.Error().Err(err).Msg("bulk parse error")
		return c.JSON(http.StatusBadRequest, messageResp{Message: "Failed to parse file: " + err.Error()})
	}
	if len(records) == 0 {
		return c.JSON(http.StatusBadRequest, messageResp{Message: msgNoParticipants})
	}

	summary, err := s.pipeline.Run(c.Request().Context(), records)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bulkResp{
		Success: true,
		Message: fmt.Sprintf("Processed %d participants.", len(records)),
		Summary: summary,
	})
}

// readUpload stages the upload on disk, parses it and deletes it.
func (s *Server) readUpload(fh *multipart.FileHeader) ([]certmail.Record, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(s.uploadDir, 0o750); err != nil {
		return nil, fmt.Errorf("staging upload: %w", err)
	}
	path := filepath.Join(s.uploadDir, "bulk-"+uuid.NewString()+".csv")

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600) // #nosec G304 -- generated name
	if err != nil {
		return nil, fmt.Errorf("staging upload: %w", err)
	}
	defer func() {
		if err := fileutil.Remove(path); err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("failed to delete upload")
		}
	}()

	_, err = io.Copy(dst, io.LimitReader(src, s.uploadLimit+1))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("staging upload: %w", err)
	}

	f, err := os.Open(path) // #nosec G304 -- generated name
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return certmail.ParseRecords(f)
}
