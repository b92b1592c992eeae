package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/course-search-engine/config"
)

// CatalogResponse describes a catalog: its stored settings and the scoring
// configuration searches run with.
type CatalogResponse struct {
	config.CatalogSettings
	EffectiveScoring config.ScoringConfig `json:"effective_scoring"`
}

// CreateCatalogHandler handles the request to create a new catalog.
// Request Body: config.CatalogSettings
func (api *API) CreateCatalogHandler(c *gin.Context) {
	var settings config.CatalogSettings

	if result := ValidateJSONBinding(c, &settings); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateCatalogSettings(&settings); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	jobID, err := api.engine.CreateCatalogAsync(settings)
	if err != nil {
		SendEngineError(c, "create catalog", ErrorCodeJobExecutionFailed, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Catalog creation started for '" + settings.Name + "'",
		"job_id":  jobID,
	})
}

// ListCatalogsHandler lists all available catalogs.
func (api *API) ListCatalogsHandler(c *gin.Context) {
	names := api.engine.ListCatalogs()
	c.JSON(http.StatusOK, gin.H{"catalogs": names, "count": len(names)})
}

// GetCatalogHandler returns the settings and effective scoring of a catalog.
func (api *API) GetCatalogHandler(c *gin.Context) {
	catalogName := c.Param("catalogName")
	if result := ValidateCatalogName(catalogName); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	settings, err := api.engine.GetCatalogSettings(catalogName)
	if err != nil {
		SendEngineError(c, "get catalog", ErrorCodeInternalError, err)
		return
	}
	scoring, err := api.engine.GetEffectiveScoring(catalogName)
	if err != nil {
		SendEngineError(c, "get catalog", ErrorCodeInternalError, err)
		return
	}

	c.JSON(http.StatusOK, CatalogResponse{CatalogSettings: settings, EffectiveScoring: scoring})
}

// DeleteCatalogHandler handles deleting a catalog.
func (api *API) DeleteCatalogHandler(c *gin.Context) {
	catalogName := c.Param("catalogName")
	if result := ValidateCatalogName(catalogName); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	jobID, err := api.engine.DeleteCatalogAsync(catalogName)
	if err != nil {
		SendEngineError(c, "delete catalog", ErrorCodeJobExecutionFailed, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Catalog deletion started for '" + catalogName + "'",
		"job_id":  jobID,
	})
}

// UpdateScoringHandler replaces the scoring overrides of a catalog. An empty
// body object clears them. The new configuration is validated before it is
// installed, so a rejected update leaves the catalog untouched.
// Request Body: config.ScoringOverrides
func (api *API) UpdateScoringHandler(c *gin.Context) {
	catalogName := c.Param("catalogName")
	if result := ValidateCatalogName(catalogName); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	var overrides config.ScoringOverrides
	if result := ValidateJSONBinding(c, &overrides); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if err := api.engine.UpdateScoring(catalogName, &overrides); err != nil {
		SendEngineError(c, "update scoring", ErrorCodeInternalError, err)
		return
	}

	scoring, err := api.engine.GetEffectiveScoring(catalogName)
	if err != nil {
		SendEngineError(c, "update scoring", ErrorCodeInternalError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           "Scoring updated for catalog '" + catalogName + "'",
		"effective_scoring": scoring,
	})
}

// GetCatalogStatsHandler returns the course count and division histogram of a catalog.
func (api *API) GetCatalogStatsHandler(c *gin.Context) {
	catalogName := c.Param("catalogName")
	if result := ValidateCatalogName(catalogName); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	catalog, err := api.engine.GetCatalog(catalogName)
	if err != nil {
		SendEngineError(c, "get catalog stats", ErrorCodeInternalError, err)
		return
	}
	c.JSON(http.StatusOK, catalog.Stats())
}
