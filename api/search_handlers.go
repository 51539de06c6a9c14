package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/promo-search-engine/services"
)

// SessionSearchRequest is the body of POST /sessions/:userID/search
type SessionSearchRequest struct {
	Query string `json:"query"`
}

// CatalogueSearchParams are the query parameters of GET /promotions/search
type CatalogueSearchParams struct {
	Query    string `form:"q"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Category string `form:"category"`
	Type     string `form:"type"`
}

// CatalogueMeta describes the page returned by GET /promotions/search
type CatalogueMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// CatalogueResponse is the body of GET /promotions/search
type CatalogueResponse struct {
	Success bool          `json:"success"`
	Data    interface{}   `json:"data"`
	Meta    CatalogueMeta `json:"meta"`
}

// SessionSearchHandler runs a query or page directive for one user.
// Request Body: SessionSearchRequest
func (api *API) SessionSearchHandler(c *gin.Context) {
	userID := c.Param("userID")
	if result := ValidateUserID(userID); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	var req SessionSearchRequest
	if result := ValidateJSONBinding(c, &req); result.HasErrors() {
		SendInvalidJSONError(c, result)
		return
	}
	if result := ValidateQuery(req.Query); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	page, err := api.searcher.Search(c.Request.Context(), userID, req.Query)
	if err != nil {
		SendSearchError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// CatalogueSearchHandler serves the stateless, filterable catalogue search.
func (api *API) CatalogueSearchHandler(c *gin.Context) {
	var params CatalogueSearchParams
	if result := ValidateQueryBinding(c, &params); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateQuery(params.Query); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	page, limit, result := ValidatePagination(params.Page, params.Limit, 0)
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	res := api.searcher.Catalogue(services.CatalogueQuery{
		Query:    params.Query,
		Category: params.Category,
		Type:     params.Type,
		Page:     page,
		Limit:    limit,
	})

	c.JSON(http.StatusOK, CatalogueResponse{
		Success: true,
		Data:    res.Records,
		Meta: CatalogueMeta{
			Total:      res.Total,
			Page:       res.Page,
			Limit:      res.Limit,
			TotalPages: res.TotalPages,
		},
	})
}
