package dashboard

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/reviewlens/internal/handlers"
	"github.com/spacesedan/reviewlens/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const fetchTimeout = 10 * time.Second

// Source is where the dashboard reads its numbers from, normally the API.
type Source interface {
	Stats(ctx context.Context) (models.StatsResponse, error)
	Ranking(ctx context.Context) (models.RankingResponse, error)
}

// Page is everything the template renders.
type Page struct {
	APIURL string
	// Warning replaces the whole page when stats could not be loaded.
	Warning string
	// RankingWarning replaces only the ranking tables.
	RankingWarning string
	Stats          models.StatsResponse
	Ranking        models.RankingResponse
	Pie            Pie
}

// Pie describes a two-slice donut drawn with stroke-dasharray on a circle of
// circumference 100.
type Pie struct {
	Empty            bool
	PositivePercent  float64
	NegativePercent  float64
	NegativeDashOffs float64
}

func newPie(stats models.StatsResponse) Pie {
	if stats.TotalCount == 0 {
		return Pie{Empty: true}
	}
	positive := float64(stats.PositiveCount) / float64(stats.TotalCount) * 100
	negative := 100 - positive
	return Pie{
		PositivePercent: positive,
		NegativePercent: negative,
		// slices start at 12 o'clock; the negative slice follows the positive one
		NegativeDashOffs: 25 - positive,
	}
}

var funcs = template.FuncMap{
	"percent": func(v float64) string {
		return fmt.Sprintf("%.1f%%", v*100)
	},
	"ratio": func(v float64) string {
		return fmt.Sprintf("%.1f%%", v)
	},
	"score": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"rank": func(i int) int {
		return i + 1
	},
	"round": func(v float64) float64 {
		return math.Round(v*100) / 100
	},
}

func parseTemplates() (*template.Template, error) {
	return template.New("dashboard").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

type Dashboard struct {
	source Source
	apiURL string
}

func New(source Source, apiURL string) *Dashboard {
	return &Dashboard{source: source, apiURL: apiURL}
}

// Load fetches stats and ranking. A failed fetch is reported as a warning on
// the page rather than an error response; stats that loaded are still shown
// when only the ranking fails.
func (d *Dashboard) Load(ctx context.Context) Page {
	page := Page{
		APIURL:  d.apiURL,
		Ranking: models.RankingResponse{BestReviews: []models.Review{}, WorstReviews: []models.Review{}},
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	stats, err := d.source.Stats(ctx)
	if err != nil {
		slog.Warn("[Dashboard] Failed to load stats", slog.String("error", err.Error()))
		page.Warning = fmt.Sprintf("Could not load analytics from the API server (%s). Is it running?", d.apiURL)
		return page
	}
	page.Stats = stats
	page.Pie = newPie(stats)

	ranking, err := d.source.Ranking(ctx)
	if err != nil {
		slog.Warn("[Dashboard] Failed to load ranking", slog.String("error", err.Error()))
		page.RankingWarning = fmt.Sprintf("Could not load the review ranking from the API server (%s).", d.apiURL)
		return page
	}
	page.Ranking = ranking
	return page
}

// SetupRouter serves the dashboard page at / and a health probe.
func SetupRouter(d *Dashboard) (*gin.Engine, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard templates: %w", err)
	}

	r := gin.New()
	r.Use(handlers.RequestLogger())
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(tmpl)

	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", d.Load(c.Request.Context()))
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r, nil
}
