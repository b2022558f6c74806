package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/0xknxwledge/lvrctl/internal/domain"
	"github.com/0xknxwledge/lvrctl/internal/objstore"
	"github.com/0xknxwledge/lvrctl/internal/processor"
)

// Handler serves the precomputed query-serving artifacts and run progress
// over HTTP.
type Handler struct {
	store objstore.Store
	proc  *processor.Processor
}

// NewHandler constructs a query handler against the given object store. proc
// may be nil if no ingestion run is active for this process (e.g. a
// serve-only deployment reading artifacts written by an earlier run).
func NewHandler(store objstore.Store, proc *processor.Processor) *Handler {
	return &Handler{store: store, proc: proc}
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "lvrctl",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleProgress(c *gin.Context) {
	if h.proc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no ingestion run is active on this instance"})
		return
	}
	c.JSON(http.StatusOK, h.proc.Progress())
}

// artifactHandler builds a gin handler that reads one precomputed artifact,
// optionally filtered by a pool_address and/or markout query parameter.
func (h *Handler) artifactHandler(path string, filterByPool bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := readArtifactRows(c.Request.Context(), h.store, path)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read precomputed artifact", "details": err.Error()})
			return
		}

		if filterByPool {
			if pool := c.Query("pool_address"); pool != "" {
				rows = filterRows(rows, "pool_address", string(domain.Norm(pool)))
			}
		} else if cluster := c.Query("cluster"); cluster != "" {
			rows = filterRows(rows, "cluster_name", cluster)
		}
		if markout := c.Query("markout"); markout != "" {
			rows = filterRows(rows, "markout_time", markout)
		}

		c.JSON(http.StatusOK, gin.H{"data": rows, "count": len(rows)})
	}
}
