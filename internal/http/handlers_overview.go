package http

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/chart"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

// overviewData backs the "Total Overview" metrics: the selected month summed
// across every year, and the selected year.
type overviewData struct {
	Month      int
	Year       int
	MonthName  string
	MonthTotal string
	YearTotal  string
	Error      string
}

func (s *Server) overview(r *http.Request, userID int64, params MonthParams) overviewData {
	data := overviewData{Month: params.Month, Year: params.Year}
	if err := core.ValidateMonth(params.Month); err != nil {
		data.Error, _ = userMessage(err)
		return data
	}
	data.MonthName = time.Month(params.Month).String()

	var month, year core.Money
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		month, err = s.expenses.TotalForMonth(ctx, userID, params.Month)
		return err
	})
	g.Go(func() error {
		var err error
		year, err = s.expenses.TotalForYear(ctx, userID, params.Year)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.LogError(r.Context(), "Overview totals failed", err, applog.OpRead,
			applog.NewFields().WithUser(userID))
		data.Error = "Error loading totals."
		return data
	}

	data.MonthTotal = month.Format(s.currency)
	data.YearTotal = year.Format(s.currency)
	return data
}

// handleOverview renders the overview partial for ?month=&year=.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	sess := currentUser(r)
	data := s.overview(r, sess.UserID, ParseMonthParams(r.URL.Query(), s.now()))
	status := http.StatusOK
	if data.Error != "" && core.ValidateMonth(data.Month) != nil {
		status = http.StatusUnprocessableEntity
	}
	s.renderPartial(w, r, status, "overview", data)
}

type categoryRow struct {
	Category core.Category
	Total    string
	Color    string
	Percent  int
}

type labelRow struct {
	Label string
	Total string
}

type yearRow struct {
	Year  int
	Total string
}

type chartsData struct {
	Categories []categoryRow
	Top        *categoryRow
	BarColor   string
	Months     []labelRow
	Years      []yearRow
	PieSize    int
	BarWidth   int
	BarHeight  int
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	sess := currentUser(r)
	dash, err := s.expenses.Dashboard(r.Context(), sess.UserID)
	if err != nil {
		s.internalError(w, r, "Dashboard failed", err, applog.OpRead)
		return
	}

	data := chartsData{
		BarColor:  chart.BarColor(),
		PieSize:   chart.PieSize,
		BarWidth:  chart.BarWidth,
		BarHeight: chart.BarHeight,
	}
	sum := core.SumCategories(dash.ByCategory)
	for _, c := range dash.ByCategory {
		data.Categories = append(data.Categories, categoryRow{
			Category: c.Category,
			Total:    c.Total.Format(s.currency),
			Color:    chart.CategoryColor(c.Category),
			Percent:  percent(c.Total.Cents, sum.Cents),
		})
	}
	if top, ok := core.MaxCategory(dash.ByCategory); ok {
		for i := range data.Categories {
			if data.Categories[i].Category == top.Category {
				data.Top = &data.Categories[i]
			}
		}
	}
	for _, m := range dash.ByMonth {
		data.Months = append(data.Months, labelRow{Label: m.Label.String(), Total: m.Total.Format(s.currency)})
	}
	for _, y := range dash.ByYear {
		data.Years = append(data.Years, yearRow{Year: y.Year, Total: y.Total.Format(s.currency)})
	}

	s.render(w, r, http.StatusOK, "charts", s.newPage(r, "Charts", ViewCharts, data))
}

// percent rounds part/whole to the nearest whole percent.
func percent(part, whole int64) int {
	if whole <= 0 {
		return 0
	}
	return int((part*100 + whole/2) / whole)
}

func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	sess := currentUser(r)
	totals, err := s.expenses.CategorySummary(r.Context(), sess.UserID)
	if err != nil {
		s.internalError(w, r, "Category summary failed", err, applog.OpRead)
		return
	}
	if len(totals) == 0 {
		NotFoundError("No category data available.").Write(w)
		return
	}
	s.writePNG(w, r, "category_chart.png", func(out io.Writer) error {
		return chart.CategoryPie(out, totals)
	})
}

func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	sess := currentUser(r)
	months, err := s.expenses.MonthlySummary(r.Context(), sess.UserID)
	if err != nil {
		s.internalError(w, r, "Monthly summary failed", err, applog.OpRead)
		return
	}
	if len(months) == 0 {
		NotFoundError("No monthly data available.").Write(w)
		return
	}
	s.writePNG(w, r, "monthly_chart.png", func(out io.Writer) error {
		return chart.MonthlyBars(out, months)
	})
}

func (s *Server) writePNG(w http.ResponseWriter, r *http.Request, filename string, draw func(io.Writer) error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		s.log.LogError(r.Context(), "Chart rendering failed", err, applog.OpRender,
			applog.NewFields().WithComponent(applog.ComponentChart))
		InternalServerError("Could not render chart.").Write(w)
		return
	}
	NewHTMXResponse().
		Header("Content-Type", "image/png").
		Header("Content-Disposition", `inline; filename="`+filename+`"`).
		Header("Cache-Control", "no-store").
		Body(buf.Bytes()).
		Write(w)
}
