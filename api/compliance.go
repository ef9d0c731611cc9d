package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/vermillionhq/vermillion/api/model"
	"github.com/vermillionhq/vermillion/model"
)

func (a Api) GetComplianceProfile(c *gin.Context) {
	ownerID, passed := c.Params.Get("owner_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id is required. pass it in the route /compliance/:owner_id"})
		return
	}

	profile, err := a.vermillion.GetComplianceProfile(c.Request.Context(), ownerID)
	if err != nil {
		a.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (a Api) UpsertComplianceProfile(c *gin.Context) {
	ownerID, passed := c.Params.Get("owner_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id is required. pass it in the route /compliance/:owner_id"})
		return
	}

	var body model2.UpsertComplianceProfile
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := body.ValidateUpsertComplianceProfile(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	profile := model.ComplianceProfile{
		OwnerID:   ownerID,
		Tier:      body.Tier,
		Active:    body.Active,
		RiskScore: body.RiskScore,
		Country:   body.Country,
	}
	if err := a.vermillion.UpsertComplianceProfile(c.Request.Context(), profile); err != nil {
		a.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
