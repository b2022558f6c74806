package api

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/0xknxwledge/lvrctl/internal/objstore"
	"github.com/0xknxwledge/lvrctl/internal/processor"
)

// SetupRouter wires the query API: CORS, optional bearer auth, per-IP rate
// limiting, the precomputed-artifact endpoints, run progress, and the
// websocket progress stream.
func SetupRouter(store objstore.Store, proc *processor.Processor, wsHub *Hub) *gin.Engine {
	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := NewHandler(store, proc)

	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/stream", wsHub.Subscribe)
	}

	// Every artifact read decompresses and scans a Parquet file, unlike a
	// cheap in-memory lookup, so these endpoints get the same auth and
	// rate-limit treatment the teacher reserves for its RPC-backed routes.
	query := r.Group("/api/v1")
	query.Use(AuthMiddleware())
	query.Use(NewRateLimiter(60, 10).Middleware())
	{
		query.GET("/progress", handler.handleProgress)

		query.GET("/running_total", handler.artifactHandler("precomputed/running_totals/totals.parquet", true))
		query.GET("/daily_time_series", handler.artifactHandler("precomputed/running_totals/daily_time_series.parquet", true))

		query.GET("/pool_totals", handler.artifactHandler("precomputed/pool_metrics/totals.parquet", true))
		query.GET("/max_lvr", handler.artifactHandler("precomputed/pool_metrics/max_lvr.parquet", true))
		query.GET("/non_zero_proportion", handler.artifactHandler("precomputed/pool_metrics/non_zero.parquet", true))

		query.GET("/histogram", handler.artifactHandler("precomputed/distributions/histograms.parquet", true))
		query.GET("/percentile_band", handler.artifactHandler("precomputed/distributions/percentile_bands.parquet", true))
		query.GET("/boxplot_lvr", handler.artifactHandler("precomputed/distributions/quartile_plots.parquet", true))
		query.GET("/distribution_metrics", handler.artifactHandler("precomputed/distributions/metrics.parquet", true))

		query.GET("/cluster_proportions", handler.artifactHandler("precomputed/clusters/proportions.parquet", false))
		query.GET("/cluster_histogram", handler.artifactHandler("precomputed/clusters/histograms.parquet", false))
		query.GET("/cluster_monthly_totals", handler.artifactHandler("precomputed/clusters/monthly_totals.parquet", false))
		query.GET("/cluster_non_zero", handler.artifactHandler("precomputed/clusters/non_zero.parquet", false))

		query.GET("/ratios", handler.artifactHandler("precomputed/ratios/lvr_ratios.parquet", false))
	}

	return r
}
