package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bapp/pkg/bapp"
	"bapp/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// bappAPI holds the collaborators behind the /api routes.
type bappAPI struct {
	attachments *bapp.AttachmentService
	exporter    *bapp.Exporter
	files       *storage.LocalStorage
	policy      bapp.Policy
	log         logrus.FieldLogger
}

// envelope is the response body of every /api route.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, bapp.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, bapp.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bapp.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func (a *bappAPI) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		a.log.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("[api.error]")
	}
	c.JSON(status, envelope{Success: false, Message: bapp.Message(err), Error: bapp.Detail(err)})
}

func idParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, bapp.NewError(bapp.ErrValidation, fmt.Sprintf("invalid %s", name), nil)
	}
	return uint(v), nil
}

// formID parses an optional numeric form field. Missing or malformed values
// become 0 and are rejected by the upload orchestrator.
func formID(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(strings.TrimSpace(c.PostForm(name)), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

// requester returns the authenticated user id and role set by jwtAuthMiddleware.
func requester(c *gin.Context) (uint, string, bool) {
	uid, ok := c.Get("user_id")
	if !ok {
		return 0, "", false
	}
	id, ok := uid.(uint)
	if !ok || id == 0 {
		return 0, "", false
	}
	return id, c.GetString("role"), true
}

func (a *bappAPI) uploadSignatureHandler(c *gin.Context) {
	a.upload(c, "signature", bapp.Classification(strings.TrimSpace(c.PostForm("fileType"))), "Signature uploaded successfully")
}

func (a *bappAPI) uploadDocumentHandler(c *gin.Context) {
	a.upload(c, "document", bapp.ClassDocument, "Document uploaded successfully")
}

func (a *bappAPI) upload(c *gin.Context, field string, class bapp.Classification, okMessage string) {
	att, err := a.receive(c, field, class)
	uploadsTotal.WithLabelValues(string(class), outcome(err)).Inc()
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, envelope{Success: true, Message: okMessage, Data: att})
}

// receive admits, stages and verifies the multipart file, then hands it to
// the orchestrator. A staged file that fails verification is removed here.
func (a *bappAPI) receive(c *gin.Context, field string, class bapp.Classification) (*bapp.Attachment, error) {
	uid, _, ok := requester(c)
	if !ok {
		return nil, bapp.NewError(bapp.ErrForbidden, "user not found", nil)
	}
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, bapp.NewError(bapp.ErrValidation, "file is required for upload", err)
	}
	if class == "" {
		return nil, bapp.NewError(bapp.ErrValidation, "bappId and fileType are required", nil)
	}
	declared := fh.Header.Get("Content-Type")
	if err := a.policy.Admit(class, fh.Filename, declared, fh.Size); err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	src, err := fh.Open()
	if err != nil {
		return nil, bapp.NewError(bapp.ErrStorage, "cannot read upload", err)
	}
	defer src.Close()
	sf, err := a.files.Stage(ctx, class, fh.Filename, declared, src, a.policy.Limit(class))
	if err != nil {
		return nil, err
	}

	sniffed, err := a.policy.Verify(class, sf.Path)
	if err != nil {
		a.discard(ctx, sf.Path)
		return nil, err
	}
	if class == bapp.ClassSignature {
		sf.ContentType = sniffed
		if _, err := storage.ShrinkImage(sf, storage.MaxSignatureWidth); err != nil {
			a.discard(ctx, sf.Path)
			return nil, err
		}
	} else if sf.ContentType == "" || sf.ContentType == "application/octet-stream" {
		sf.ContentType = sniffed
	}

	return a.attachments.Upload(ctx, bapp.UploadInput{
		ReportID:       formID(c, "bappId"),
		Classification: class,
		UploaderID:     uid,
		File:           sf,
	})
}

func (a *bappAPI) discard(ctx context.Context, path string) {
	if err := a.files.Remove(context.WithoutCancel(ctx), path); err != nil {
		a.log.WithFields(logrus.Fields{"path": path, "error": err.Error()}).Error("[upload.rollback]")
	}
}

func (a *bappAPI) listAttachmentsHandler(c *gin.Context) {
	id, err := idParam(c, "bappId")
	if err != nil {
		a.fail(c, err)
		return
	}
	atts, err := a.attachments.List(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err)
		return
	}
	if atts == nil {
		atts = []bapp.Attachment{}
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "Attachments fetched successfully", Data: atts})
}

func (a *bappAPI) deleteAttachmentHandler(c *gin.Context) {
	err := a.deleteAttachment(c)
	deletesTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "Attachment deleted successfully"})
}

func (a *bappAPI) deleteAttachment(c *gin.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	uid, role, ok := requester(c)
	if !ok {
		return bapp.NewError(bapp.ErrForbidden, "user not found", nil)
	}
	return a.attachments.Delete(c.Request.Context(), id, uid, role)
}

func (a *bappAPI) serveFileHandler(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		a.fail(c, err)
		return
	}
	ctx := c.Request.Context()
	served, err := a.attachments.FetchFileForServing(ctx, id)
	if err != nil {
		a.fail(c, err)
		return
	}
	rc, err := a.files.Open(ctx, served.Path)
	if err != nil {
		if !errors.Is(err, bapp.ErrNotFound) {
			err = bapp.NewError(bapp.ErrStorage, "error serving file", err)
		}
		a.fail(c, err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, -1, served.ContentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", served.FileName),
	})
}

func (a *bappAPI) downloadPDFHandler(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		exportsTotal.WithLabelValues(outcome(err)).Inc()
		a.fail(c, err)
		return
	}
	ctx := c.Request.Context()
	start := time.Now()
	x, err := a.exporter.Export(ctx, id)
	if err != nil {
		exportsTotal.WithLabelValues(outcome(err)).Inc()
		a.fail(c, err)
		return
	}
	exportDuration.Observe(time.Since(start).Seconds())

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", x.FileName))
	c.Header("Content-Length", strconv.FormatInt(x.Size(), 10))
	c.Status(http.StatusOK)
	n, err := x.StreamTo(ctx, c.Writer)
	exportBytes.Add(float64(n))
	exportsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		// headers are already out; the client sees a truncated body
		a.log.WithFields(logrus.Fields{
			"bapp_id": id,
			"bytes":   n,
			"error":   err.Error(),
		}).Warn("[export.stream]")
	}
}
