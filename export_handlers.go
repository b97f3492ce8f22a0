package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

var errUnknownFormat = errors.New("format must be one of: csv, json, text")

// renderedExport is one export file ready to download, mail or archive.
type renderedExport struct {
	Body        []byte
	ContentType string
	Ext         string
}

// buildExportOptions validates the range and flag query values.
func buildExportOptions(start, end, includeWater, includeSummary string) (exportOptions, error) {
	if err := validateDateRange(start, end, false); err != nil {
		return exportOptions{}, err
	}
	opts := exportOptions{Start: start, End: end}
	var err error
	if opts.IncludeWater, err = parseFlag(includeWater); err != nil {
		return exportOptions{}, fmt.Errorf("includeWater: %w", err)
	}
	if opts.IncludeSummary, err = parseFlag(includeSummary); err != nil {
		return exportOptions{}, fmt.Errorf("includeSummary: %w", err)
	}
	return opts, nil
}

func parseFlag(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.New("must be true or false")
	}
	return b, nil
}

// renderExport formats meals (and water, when opts ask for it) in the given
// format. The text report applies the range itself since it takes no options.
func renderExport(format string, meals []mealLog, water []waterLog, opts exportOptions, owner *reportOwner, now time.Time) (renderedExport, error) {
	switch format {
	case "csv":
		s, err := formatCSV(meals, water, opts)
		return renderedExport{Body: []byte(s), ContentType: "text/csv; charset=utf-8", Ext: "csv"}, err
	case "json":
		b, err := formatJSON(meals, water, opts, now)
		return renderedExport{Body: b, ContentType: "application/json", Ext: "json"}, err
	case "text":
		selected, _, err := selectExport(meals, nil, opts)
		if err != nil {
			return renderedExport{}, err
		}
		s, err := formatText(selected, owner, now)
		return renderedExport{Body: []byte(s), ContentType: "text/plain; charset=utf-8", Ext: "txt"}, err
	default:
		return renderedExport{}, errUnknownFormat
	}
}

// exportFilename is the download name, dated by today's key.
func exportFilename(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", prefix, todayKey(now), ext)
}

// exportStatus maps export errors to HTTP statuses.
func exportStatus(err error) int {
	switch {
	case errors.Is(err, errNothingToExport), errors.Is(err, errNoDataInRange):
		return http.StatusNotFound
	case errors.Is(err, errUnknownFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// exportInput is everything an export needs from the database.
type exportInput struct {
	meals   []mealLog
	water   []waterLog
	profile userProfile
}

// loadExportInput fetches the user's meals, profile, and water rows when
// includeWater is set. The range is applied by the formatters.
func (h *Handler) loadExportInput(c *gin.Context, includeWater bool) (exportInput, error) {
	userID := c.GetInt("user_id")
	var in exportInput
	var err error
	if in.meals, err = h.mealsInRange(c, userID, "", ""); err != nil {
		return in, fmt.Errorf("load meals: %w", err)
	}
	if includeWater {
		if in.water, err = h.waterInRange(c, userID, "", ""); err != nil {
			return in, fmt.Errorf("load water: %w", err)
		}
	}
	if in.profile, err = h.loadProfile(c, userID); err != nil {
		return in, fmt.Errorf("load profile: %w", err)
	}
	return in, nil
}

func (in exportInput) owner() *reportOwner {
	return &reportOwner{Name: in.profile.Name, CalorieTarget: in.profile.effectiveCalorieTarget()}
}

// exportMeals downloads the user's meal history.
// GET /api/export?format=csv|json|text&start=&end=&includeWater=&includeSummary=
func (h *Handler) exportMeals(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	opts, err := buildExportOptions(c.Query("start"), c.Query("end"), c.Query("includeWater"), c.Query("includeSummary"))
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	if format != "csv" && format != "json" && format != "text" {
		apiError(c, http.StatusBadRequest, errUnknownFormat.Error())
		return
	}

	in, err := h.loadExportInput(c, opts.IncludeWater)
	if err != nil {
		slog.ErrorContext(c, "export failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to load export data")
		return
	}
	now := h.clock()
	out, err := renderExport(format, in.meals, in.water, opts, in.owner(), now)
	if err != nil {
		apiError(c, exportStatus(err), err.Error())
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename("nutrition-export", out.Ext, now)))
	c.Data(http.StatusOK, out.ContentType, out.Body)
}

// exportWater downloads the user's water history as CSV.
// GET /api/export/water?start=&end=
func (h *Handler) exportWater(c *gin.Context) {
	start, end := c.Query("start"), c.Query("end")
	if err := validateDateRange(start, end, false); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	logs, err := h.waterInRange(c, c.GetInt("user_id"), start, end)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch water logs")
		return
	}
	out, err := formatWaterCSV(logs)
	if err != nil {
		apiError(c, exportStatus(err), err.Error())
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename("water-export", "csv", h.clock())))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(out))
}

// emailExportRequest is the body for POST /api/export/email. To defaults to
// the account's address.
type emailExportRequest struct {
	To           string `json:"to"           binding:"omitempty,email"`
	Start        string `json:"start"`
	End          string `json:"end"`
	IncludeWater bool   `json:"includeWater"`
}

// emailExport mails a report with the CSV export attached.
// POST /api/export/email.
func (h *Handler) emailExport(c *gin.Context) {
	if h.mailer == nil {
		apiError(c, http.StatusServiceUnavailable, "email export is not configured")
		return
	}
	var body emailExportRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}
	if err := validateDateRange(body.Start, body.End, false); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	opts := exportOptions{Start: body.Start, End: body.End, IncludeWater: body.IncludeWater, IncludeSummary: true}

	in, err := h.loadExportInput(c, opts.IncludeWater)
	if err != nil {
		slog.ErrorContext(c, "email export failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to load export data")
		return
	}
	meals, water, err := selectExport(in.meals, in.water, opts)
	if err != nil {
		apiError(c, exportStatus(err), err.Error())
		return
	}
	mailBody, err := formatMailBody(meals, water, in.owner())
	if err != nil {
		apiError(c, exportStatus(err), err.Error())
		return
	}
	now := h.clock()
	csv, err := renderExport("csv", in.meals, in.water, opts, nil, now)
	if err != nil {
		apiError(c, exportStatus(err), err.Error())
		return
	}

	to := body.To
	if to == "" {
		to = in.profile.Email
	}
	err = h.mailer.SendReport(c.Request.Context(), to, mailSubject(now), mailBody, mailAttachment{
		Filename:    exportFilename("nutrition-export", csv.Ext, now),
		ContentType: csv.ContentType,
		Data:        csv.Body,
	})
	if err != nil {
		slog.ErrorContext(c, "send report failed", "error", err)
		apiError(c, http.StatusBadGateway, "failed to send email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sentTo": to, "meals": len(meals)})
}

// archiveExportRequest is the body for POST /api/export/archive.
type archiveExportRequest struct {
	Format         string `json:"format"         binding:"omitempty,oneof=csv json text"`
	Start          string `json:"start"`
	End            string `json:"end"`
	IncludeWater   bool   `json:"includeWater"`
	IncludeSummary bool   `json:"includeSummary"`
}

// archiveExport renders an export and stores it in the archive bucket.
// POST /api/export/archive. Responds with the stored object's location.
func (h *Handler) archiveExport(c *gin.Context) {
	if h.archive == nil {
		apiError(c, http.StatusServiceUnavailable, "export archive is not configured")
		return
	}
	var body archiveExportRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}
	if err := validateDateRange(body.Start, body.End, false); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	if body.Format == "" {
		body.Format = "json"
	}
	opts := exportOptions{
		Start: body.Start, End: body.End,
		IncludeWater: body.IncludeWater, IncludeSummary: body.IncludeSummary,
	}

	in, err := h.loadExportInput(c, opts.IncludeWater)
	if err != nil {
		slog.ErrorContext(c, "archive export failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to load export data")
		return
	}
	now := h.clock()
	out, err := renderExport(body.Format, in.meals, in.water, opts, in.owner(), now)
	if err != nil {
		apiError(c, exportStatus(err), err.Error())
		return
	}

	key := archiveKey(h.archivePrefix, c.GetInt("user_id"), now, out.Ext)
	location, err := h.archive.Put(c.Request.Context(), key, out.Body, out.ContentType)
	if err != nil {
		slog.ErrorContext(c, "archive upload failed", "key", key, "error", err)
		apiError(c, http.StatusBadGateway, "failed to store export")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"location": location, "key": key, "bytes": len(out.Body)})
}
