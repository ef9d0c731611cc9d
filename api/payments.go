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
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	model2 "github.com/vermillionhq/vermillion/api/model"
	"github.com/vermillionhq/vermillion/internal/apierror"
)

// InitiatePayment executes one orchestrated payment. The idempotency key
// is read from the Idempotency-Key header; requests without one are
// executed unconditionally.
func (a Api) InitiatePayment(c *gin.Context) {
	var newPayment model2.InitiatePayment
	if err := c.ShouldBindJSON(&newPayment); err != nil {
		logrus.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := newPayment.ValidateInitiatePayment(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")
	resp, err := a.vermillion.ExecutePayment(c.Request.Context(), newPayment.ToPaymentParams(idempotencyKey))
	if err != nil {
		a.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// InitiateTransfer moves funds between two internal wallets.
func (a Api) InitiateTransfer(c *gin.Context) {
	var newTransfer model2.InitiateTransfer
	if err := c.ShouldBindJSON(&newTransfer); err != nil {
		logrus.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := newTransfer.ValidateInitiateTransfer(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")
	resp, err := a.vermillion.ExecuteTransfer(c.Request.Context(), newTransfer.ToTransferParams(idempotencyKey))
	if err != nil {
		a.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetTransaction fetches one transaction by id.
func (a Api) GetTransaction(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /transactions/:id"})
		return
	}

	txn, err := a.vermillion.GetTransaction(c.Request.Context(), id)
	if err != nil {
		a.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, txn)
}

// GetTransactionEntries returns the ledger entry pair recorded for a
// transaction.
func (a Api) GetTransactionEntries(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /transactions/:id/entries"})
		return
	}

	entries, err := a.vermillion.GetMovementEntries(c.Request.Context(), id)
	if err != nil {
		a.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetUnreconciledTransactions lists transactions waiting on their ledger
// movement.
func (a Api) GetUnreconciledTransactions(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	txns, err := a.vermillion.GetUnreconciledTransactions(c.Request.Context(), limit)
	if err != nil {
		a.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, txns)
}

// renderError maps domain errors onto HTTP statuses and a uniform error
// body.
func (a Api) renderError(c *gin.Context, err error) {
	status := apierror.MapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logrus.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": apierror.CodeOf(err)})
}
