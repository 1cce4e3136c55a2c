package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	custommw "github.com/hitesht-krishaweb/woo-weight-report/internal/admin/httpserver/middleware"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/i18n"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/navigation"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/pdf"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/report"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/session"
	reporttpl "github.com/hitesht-krishaweb/woo-weight-report/internal/admin/templates/report"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/platform/httpx"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/platform/observability"
)

// Report renders the weight report, or streams the PDF export when requested.
func (p *Pages) Report(w http.ResponseWriter, r *http.Request) {
	p.renderList(w, r, report.ModeStandard)
}

// Review renders the cancelled orders awaiting review.
func (p *Pages) Review(w http.ResponseWriter, r *http.Request) {
	p.renderList(w, r, report.ModeReview)
}

func (p *Pages) renderList(w http.ResponseWriter, r *http.Request, mode report.Mode) {
	ctx := r.Context()
	values := r.URL.Query()
	params := report.ParamsFromValues(values, mode, p.screenPageSize(ctx, mode))

	if params.Export {
		if mode == report.ModeStandard && p.exportPDF(ctx, w, params) {
			return
		}
		params.Export = false
	}

	errMsg := ""
	rep, err := p.aggregator.Generate(ctx, params)
	if err != nil {
		if errors.Is(err, report.ErrInvalidFilter) {
			errMsg = i18n.T(ctx, "report.invalid_filter", strings.TrimPrefix(err.Error(), report.ErrInvalidFilter.Error()+": "))
		} else {
			observability.FromContext(ctx).Error("report generation failed", zap.String("mode", string(mode)), zap.Error(err))
			errMsg = i18n.T(ctx, "error.generic")
		}
		rep = report.Report{
			Mode:       mode,
			Sort:       params.Sort(),
			Pagination: report.Pagination{Page: 1, PageSize: params.PageSize},
		}
	}

	data := reporttpl.BuildPageData(ctx, reporttpl.Input{
		BasePath:  custommw.BasePathFromContext(ctx),
		Path:      r.URL.Path,
		Values:    values,
		Params:    params,
		Report:    rep,
		CSRFToken: custommw.CSRFTokenFromContext(ctx),
		Error:     errMsg,
		Flashes:   takeFlashes(ctx),
	})
	templ.Handler(reporttpl.Index(data)).ServeHTTP(w, r)
}

// exportPDF writes the PDF export. It reports false when nothing was written,
// in which case the caller falls back to the interactive page.
func (p *Pages) exportPDF(ctx context.Context, w http.ResponseWriter, params report.Params) bool {
	logger := observability.FromContext(ctx)
	if p.renderer == nil {
		logger.Warn("pdf export requested but disabled")
		return false
	}

	rep, err := p.aggregator.Generate(ctx, params)
	if err != nil {
		logger.Error("pdf export: report generation failed", zap.Error(err))
		return false
	}

	created := p.now().In(p.loc)
	body, err := p.renderer.RenderBytes(reporttpl.BuildDocument(ctx, rep, created))
	if err != nil {
		logger.Error("pdf export: render failed", zap.Error(err))
		return false
	}

	w.Header().Set("Content-Type", pdf.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.FileName(created)))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Warn("pdf export: write failed", zap.Error(err))
	}
	logger.Info("pdf export generated", zap.Int("rows", len(rep.ExportRows())))
	return true
}

// ScreenOptions stores the per-page setting of scope.
func (p *Pages) ScreenOptions(scope string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := r.ParseForm(); err != nil {
			http.Error(w, i18n.T(ctx, "error.generic"), http.StatusBadRequest)
			return
		}
		value, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("value")))
		if err != nil {
			value = report.DefaultPageSize
		}

		stored, err := p.SaveScreenOption(ctx, scope, strings.TrimSpace(r.PostForm.Get("option")), value)
		if err != nil {
			observability.FromContext(ctx).Info("screen option rejected", zap.String("scope", scope), zap.Error(err))
			if custommw.WantsJSON(ctx) {
				httpx.WriteError(ctx, w, httpx.NewError("invalid_option", i18n.T(ctx, "error.generic"), http.StatusBadRequest))
				return
			}
			http.Error(w, i18n.T(ctx, "error.generic"), http.StatusBadRequest)
			return
		}

		if custommw.WantsJSON(ctx) {
			httpx.WriteSuccess(w, http.StatusOK, map[string]any{"option": r.PostForm.Get("option"), "value": stored})
			return
		}
		addFlash(ctx, "success", i18n.T(ctx, "screen.saved"))
		http.Redirect(w, r, navigation.Join(custommw.BasePathFromContext(ctx), "/"+scope), http.StatusSeeOther)
	}
}

func takeFlashes(ctx context.Context) []session.Flash {
	if sess, ok := custommw.SessionFromContext(ctx); ok && sess != nil {
		return sess.TakeFlashes()
	}
	return nil
}

func addFlash(ctx context.Context, kind, message string) {
	if sess, ok := custommw.SessionFromContext(ctx); ok && sess != nil {
		sess.AddFlash(kind, message)
	}
}
