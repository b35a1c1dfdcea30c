package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raktarhub/raktarhub-backend/api/controllers"
	"github.com/raktarhub/raktarhub-backend/api/middleware"
	"github.com/raktarhub/raktarhub-backend/internal/allocation"
	"github.com/raktarhub/raktarhub-backend/internal/catalog"
	"github.com/raktarhub/raktarhub-backend/internal/picking"
	"github.com/raktarhub/raktarhub-backend/internal/projects"
	"github.com/raktarhub/raktarhub-backend/internal/racks"
	"github.com/raktarhub/raktarhub-backend/internal/stock"
	"github.com/raktarhub/raktarhub-backend/pkg/config"
	"github.com/raktarhub/raktarhub-backend/pkg/db"
	"github.com/raktarhub/raktarhub-backend/pkg/logger"
	"github.com/raktarhub/raktarhub-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	catalogService catalog.Service,
	rackService racks.Service,
	stockService stock.Service,
	projectService projects.Service,
	allocationService allocation.Service,
	pickingService picking.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		var redisP redis.Pinger
		if redisClient != nil {
			redisP = redisClient
		}
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/parts", func(r chi.Router) {
			r.Post("/", controllers.PartsCreate(catalogService, logg))
			r.Get("/", controllers.PartsList(catalogService, logg))
			r.Get("/{partID}", controllers.PartsGet(catalogService, logg))
			r.Patch("/{partID}/price", controllers.PartsUpdatePrice(catalogService, logg))
		})

		r.Route("/racks", func(r chi.Router) {
			r.Post("/", controllers.RacksCreate(rackService, logg))
			r.Get("/", controllers.RacksList(rackService, logg))
		})

		r.Route("/stock", func(r chi.Router) {
			r.Post("/receive", controllers.StockReceive(stockService, logg))
			r.Get("/status", controllers.StockStatus(stockService, logg))
			r.Get("/shortages", controllers.StockShortages(stockService, logg))
		})

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", controllers.ProjectsCreate(projectService, logg))
			r.Get("/", controllers.ProjectsList(projectService, logg))

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", controllers.ProjectsGet(projectService, logg))
				r.Post("/parts", controllers.ProjectsAssignParts(projectService, logg))
				r.Get("/parts", controllers.ProjectsAssignedParts(projectService, logg))
				r.Patch("/estimate", controllers.ProjectsSetEstimate(projectService, logg))
				r.Post("/evaluate", controllers.ProjectsEvaluate(allocationService, logg))
				r.Post("/start", controllers.ProjectsStartFulfillment(projectService, logg))
				r.Get("/picking-plan", controllers.PickingPlan(pickingService, logg))
				r.Post("/fulfill", controllers.PickingFulfill(pickingService, logg))
				r.Post("/close", controllers.ProjectsClose(projectService, logg))
				r.Get("/status-log", controllers.ProjectsStatusLog(projectService, logg))
			})
		})
	})

	return r
}
