package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	vermillion "github.com/vermillionhq/vermillion"
	model2 "github.com/vermillionhq/vermillion/api/model"
	"github.com/vermillionhq/vermillion/model"
)

// GetProvidersHealth reports the live health snapshot of every registered
// provider.
func (a Api) GetProvidersHealth(c *gin.Context) {
	c.JSON(http.StatusOK, a.vermillion.Registry().AllHealth())
}

// UpdateProviderState lets an operator suspend a provider or reinstate it
// to healthy. Degradation is never set by hand.
func (a Api) UpdateProviderState(c *gin.Context) {
	providerID, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass it in the route /providers/:id/state"})
		return
	}

	var body model2.UpdateProviderState
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := body.ValidateUpdateProviderState(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	state := model.HealthState(body.State)
	if err := a.vermillion.Registry().UpdateHealth(providerID, vermillion.HealthDelta{State: &state}); err != nil {
		a.renderError(c, err)
		return
	}

	health, err := a.vermillion.Registry().GetHealth(providerID)
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, health)
}
