/*
Copyright 2026 Vermillion Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/vermillionhq/vermillion/api/model"
)

func (a Api) CreateWallet(c *gin.Context) {
	var newWallet model2.CreateWallet
	if err := c.ShouldBindJSON(&newWallet); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := newWallet.ValidateCreateWallet(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	wallet, err := a.vermillion.CreateWallet(c.Request.Context(), newWallet.ToWallet())
	if err != nil {
		a.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, wallet)
}

func (a Api) GetWallet(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /wallets/:id"})
		return
	}

	wallet, err := a.vermillion.GetWallet(c.Request.Context(), id)
	if err != nil {
		a.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

func (a Api) GetOwnerWallets(c *gin.Context) {
	ownerID, passed := c.Params.Get("owner_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id is required. pass it in the route /owners/:owner_id/wallets"})
		return
	}

	wallets, err := a.vermillion.GetWalletsByOwner(c.Request.Context(), ownerID)
	if err != nil {
		a.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallets)
}
