package handler

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	pkgerrors "supplier-pricing-backend/internal/errors"
	"supplier-pricing-backend/internal/export"
	"supplier-pricing-backend/internal/models"
	"supplier-pricing-backend/internal/services/bidding"
	"supplier-pricing-backend/internal/services/matching"
	"supplier-pricing-backend/internal/services/pricing"
	"supplier-pricing-backend/internal/tabular"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const SessionHeader = "X-Session-ID"

type PricingHandler struct {
	service   *pricing.Service
	maxUpload int64
}

func NewPricingHandler(s *pricing.Service, maxUploadBytes int64) *PricingHandler {
	return &PricingHandler{service: s, maxUpload: maxUploadBytes}
}

// Health reports liveness and the service counters.
func (h *PricingHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "stats": h.service.Stats()})
}

// BuildBidSheet aggregates the uploaded supplier files (form field "files").
func (h *PricingHandler) BuildBidSheet(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"), export.FormatJSON)
	if err != nil {
		respondError(c, err)
		return
	}
	form, err := h.multipart(c)
	if err != nil {
		respondError(c, err)
		return
	}
	markup, err := optionalMarkup(c.PostForm("markup"))
	if err != nil {
		respondError(c, err)
		return
	}
	sid := h.session(c)

	uploads, closeAll, err := openAll(form.File["files"])
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeAll()

	sheet, err := h.service.BuildBidSheet(c.Request.Context(), uploads, markup, sid)
	if err != nil {
		respondError(c, err)
		return
	}

	grid := sheet.Sheet()
	render(c, format, grid, func() (*excelize.File, error) { return export.BidWorkbook(grid) }, gin.H{
		"session_id": sid.String(),
		"summary":    bidding.Summary(sheet),
		"partners":   sheet.Partners,
		"sheet":      grid,
		"warnings":   warningMessages(sheet.Warnings),
	})
}

// BuildCatalog projects an uploaded bidding sheet (form field "file").
func (h *PricingHandler) BuildCatalog(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"), export.FormatJSON)
	if err != nil {
		respondError(c, err)
		return
	}
	form, err := h.multipart(c)
	if err != nil {
		respondError(c, err)
		return
	}
	markup, err := optionalMarkup(c.PostForm("markup"))
	if err != nil {
		respondError(c, err)
		return
	}
	sid := h.session(c)

	upload, closeFn, err := openOne(form, "file")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeFn()

	out, err := h.service.BuildCatalog(c.Request.Context(), upload, markup, sid)
	if err != nil {
		respondError(c, err)
		return
	}

	grid := out.Sheet()
	render(c, format, grid, func() (*excelize.File, error) { return export.CatalogWorkbook(grid) }, gin.H{
		"session_id":   sid.String(),
		"price_column": out.PriceColumn.Label(),
		"sheet":        grid,
	})
}

// QCColumns lists the headers of both QC sheets with suggested columns.
func (h *PricingHandler) QCColumns(c *gin.Context) {
	form, err := h.multipart(c)
	if err != nil {
		respondError(c, err)
		return
	}
	a, b, closeFn, err := openPair(form)
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeFn()

	cols, err := h.service.InspectQC(c.Request.Context(), a, b)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cols)
}

// QCReport reconciles sheet A against sheet B.
func (h *PricingHandler) QCReport(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"), export.FormatJSON)
	if err != nil {
		respondError(c, err)
		return
	}
	form, err := h.multipart(c)
	if err != nil {
		respondError(c, err)
		return
	}
	a, b, closeFn, err := openPair(form)
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeFn()

	opts := matching.Options{
		KeyColumnsA:  splitColumns(c.PostForm("key_columns_a")),
		KeyColumnsB:  splitColumns(c.PostForm("key_columns_b")),
		PriceColumnA: strings.TrimSpace(c.PostForm("price_column_a")),
		PriceColumnB: strings.TrimSpace(c.PostForm("price_column_b")),
	}
	report, err := h.service.RunQC(c.Request.Context(), a, b, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	render(c, format, report.Sheet(), func() (*excelize.File, error) { return export.QCWorkbook(report) }, gin.H{
		"summary":        report.Summary,
		"key_columns":    report.KeyColumns,
		"records":        report.Records,
		"duplicate_keys": report.DuplicateKeys,
		"sheet":          report.Sheet(),
	})
}

func (h *PricingHandler) multipart(c *gin.Context) (*multipart.Form, error) {
	if h.maxUpload > 0 {
		if c.Request.ContentLength > h.maxUpload {
			return nil, &http.MaxBytesError{Limit: h.maxUpload}
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	return form, nil
}

func (h *PricingHandler) session(c *gin.Context) uuid.UUID {
	sid := h.service.Session(c.PostForm("session_id"))
	c.Header(SessionHeader, sid.String())
	return sid
}

// render writes sheet in the requested format; JSON responses use body.
func render(c *gin.Context, format export.Format, sheet *tabular.Sheet, workbook func() (*excelize.File, error), body gin.H) {
	switch format {
	case export.FormatCSV:
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, sheet); err != nil {
			respondError(c, err)
			return
		}
		attachment(c, export.Filename(sheet.Title, format))
		c.Data(http.StatusOK, export.ContentTypeCSV, buf.Bytes())
	case export.FormatXLSX:
		f, err := workbook()
		if err != nil {
			respondError(c, err)
			return
		}
		defer f.Close()
		buf, err := f.WriteToBuffer()
		if err != nil {
			respondError(c, err)
			return
		}
		attachment(c, export.Filename(sheet.Title, format))
		c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
	default:
		c.JSON(http.StatusOK, body)
	}
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
}

// respondError maps the error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var maxBytes *http.MaxBytesError
	if se, ok := pkgerrors.AsSchemaError(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":           se.Error(),
			"file":            se.Source,
			"missing_columns": se.Missing,
		})
		return
	}
	var ve *pkgerrors.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.As(err, &maxBytes):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func optionalMarkup(raw string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := models.ParseMarkup("markup", raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func splitColumns(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func warningMessages(warnings []*pkgerrors.ParseError) []string {
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.Error())
	}
	return out
}

func openAll(files []*multipart.FileHeader) ([]pricing.Upload, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	if len(files) == 0 {
		return nil, closeAll, pkgerrors.NewValidationError("files", 0, "at least one supplier file is required")
	}

	uploads := make([]pricing.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		uploads = append(uploads, pricing.Upload{Name: fh.Filename, Body: f})
	}
	return uploads, closeAll, nil
}

func openOne(form *multipart.Form, field string) (pricing.Upload, func(), error) {
	files := form.File[field]
	if len(files) == 0 {
		return pricing.Upload{}, func() {}, pkgerrors.NewValidationError(field, nil, "file required")
	}
	uploads, closeFn, err := openAll(files[:1])
	if err != nil {
		return pricing.Upload{}, closeFn, err
	}
	return uploads[0], closeFn, nil
}

func openPair(form *multipart.Form) (pricing.Upload, pricing.Upload, func(), error) {
	a, closeA, err := openOne(form, "file_a")
	if err != nil {
		return pricing.Upload{}, pricing.Upload{}, func() {}, err
	}
	b, closeB, err := openOne(form, "file_b")
	if err != nil {
		closeA()
		return pricing.Upload{}, pricing.Upload{}, func() {}, err
	}
	return a, b, func() { closeA(); closeB() }, nil
}
