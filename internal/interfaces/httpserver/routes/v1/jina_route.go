package v1

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"jan-server/services/jina-tools/internal/domain/jina"
	"jan-server/services/jina-tools/internal/interfaces/httpserver/middlewares"
	"jan-server/services/jina-tools/internal/interfaces/httpserver/responses"
	"jan-server/services/jina-tools/internal/utils/platformerrors"
)

// JinaRoute exposes the search and read operations as plain JSON endpoints.
type JinaRoute struct {
	service *jina.JinaService
}

func NewJinaRoute(service *jina.JinaService) *JinaRoute {
	return &JinaRoute{service: service}
}

func (route *JinaRoute) RegisterRouter(router *gin.RouterGroup) {
	router.GET("/search", route.Search)
	router.GET("/read", route.Read)
}

// Search
// @Summary Search the web
// @Description Runs a web search through Jina and returns normalized results. The body is always a normalized result; failures carry error and error_code.
// @Tags Jina API
// @Produce json
// @Param q query string true "Search query"
// @Param max_results query int false "Maximum number of results (default 10)"
// @Param include_content query bool false "Include page content in each result"
// @Success 200 {object} jina.SearchResponse "Search results"
// @Failure 400 {object} jina.Failure "Invalid query or max_results"
// @Failure 429 {object} jina.Failure "Upstream rate limit exceeded"
// @Failure 502 {object} jina.Failure "Upstream request failed"
// @Failure 503 {object} jina.Failure "JINA_API_KEY is not configured"
// @Failure 504 {object} jina.Failure "Upstream request timed out"
// @Router /v1/search [get]
func (route *JinaRoute) Search(reqCtx *gin.Context) {
	query := jina.NewSearchQuery(reqCtx.Query("q"))

	if raw, ok := reqCtx.GetQuery("max_results"); ok {
		query.MaxResults = parseMaxResults(raw)
	}

	includeContent, ok := parseBoolParam(reqCtx, "include_content", false)
	if !ok {
		return
	}
	query.IncludeContent = includeContent

	resp := route.service.Search(reqCtx.Request.Context(), query)
	writeResult(reqCtx, resp.Failure, resp)
}

// Read
// @Summary Read a web page
// @Description Extracts the main content of a web page through the Jina reader.
// @Tags Jina API
// @Produce json
// @Param url query string true "Target URL, must start with http:// or https://"
// @Param include_metadata query bool false "Include page metadata (default true)"
// @Success 200 {object} jina.ReadResponse "Page content"
// @Failure 400 {object} jina.Failure "Invalid url"
// @Failure 404 {object} jina.Failure "Target URL not found"
// @Failure 429 {object} jina.Failure "Upstream rate limit exceeded"
// @Failure 502 {object} jina.Failure "Upstream request failed"
// @Failure 503 {object} jina.Failure "JINA_API_KEY is not configured"
// @Failure 504 {object} jina.Failure "Upstream request timed out"
// @Router /v1/read [get]
func (route *JinaRoute) Read(reqCtx *gin.Context) {
	req := jina.NewReadRequest(reqCtx.Query("url"))

	includeMetadata, ok := parseBoolParam(reqCtx, "include_metadata", true)
	if !ok {
		return
	}
	req.IncludeMetadata = includeMetadata

	resp := route.service.ReadURL(reqCtx.Request.Context(), req)
	writeResult(reqCtx, resp.Failure, resp)
}

func parseBoolParam(reqCtx *gin.Context, name string, fallback bool) (bool, bool) {
	raw, present := reqCtx.GetQuery(name)
	if !present || strings.TrimSpace(raw) == "" {
		return fallback, true
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, name+" must be a boolean", "3c1f6f0e-5d1b-4b8e-9a55-0b7c2f4de812")
		return false, false
	}
	return value, true
}

func writeResult(reqCtx *gin.Context, failure *jina.Failure, body any) {
	status := responses.StatusForFailure(failure)
	if failure != nil {
		middlewares.SetErrorCode(reqCtx, string(failure.Code))
	}
	if status == http.StatusOK {
		reqCtx.JSON(status, body)
		return
	}
	reqCtx.AbortWithStatusJSON(status, body)
}

// parseMaxResults clamps integers beyond the int range. An unparseable value
// becomes 0 so the service reports it after the earlier checks.
func parseMaxResults(raw string) int {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err == nil {
		return n
	}
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(raw, "-") {
			return math.MinInt
		}
		return math.MaxInt
	}
	return 0
}
