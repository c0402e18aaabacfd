// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package httpapi - REST gateway over the marketplace services
//
// thin translation layer: JSON bodies bind to the same argument
// records the JSON RPC uses, and error classes map to HTTP statuses
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/galleryd/fault"
	"github.com/bitmark-inc/galleryd/rpc"
)

const logName = "httpapi"

// HTTPConfiguration - configuration file data for the REST gateway
type HTTPConfiguration struct {
	Listen      string `hcl:"listen" json:"listen"`
	Certificate string `hcl:"certificate" json:"certificate"`
	PrivateKey  string `hcl:"private_key" json:"private_key"`
}

// Server - the gateway and its listen address
type Server struct {
	log           *logger.L
	router        *gin.Engine
	configuration *HTTPConfiguration
}

// NewServer - build the router over freshly created services
func NewServer(configuration *HTTPConfiguration) *Server {
	log := logger.New(logName)

	gin.SetMode(gin.ReleaseMode)

	return &Server{
		log:           log,
		router:        NewRouter(log),
		configuration: configuration,
	}
}

// NewRouter - register all routes
func NewRouter(log *logger.L) *gin.Engine {
	assetService := rpc.NewAsset(log)
	marketService := rpc.NewMarket(log)
	ownerService := rpc.NewOwner(log)
	accessService := rpc.NewAccess(log)

	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/assets", handleAssetCreate(assetService))
	r.GET("/assets/:assetId", handleAssetGet(assetService))
	r.POST("/assets/:assetId/deactivate", handleAssetDeactivate(assetService))
	r.POST("/assets/:assetId/purchase", handlePurchase(marketService))
	r.POST("/listings", handleListingCreate(marketService))
	r.GET("/listings", handleListingIndex(marketService))
	r.GET("/listings/:listingId", handleListingGet(marketService))
	r.DELETE("/listings/:listingId", handleListingCancel(marketService))
	r.POST("/listings/:listingId/purchase", handleListingBuy(marketService))
	r.POST("/withdraw", handleWithdraw(marketService))
	r.GET("/balances/:owner/:assetId", handleBalance(ownerService))
	r.GET("/proceeds/:identity", handlePayeeBalance(ownerService))
	r.POST("/access", handleAccess(accessService))

	return r
}

// Serve - run the gateway until the listener fails
func (s *Server) Serve() error {
	s.log.Infof("starting HTTP server: %s", s.configuration.Listen)
	if "" == s.configuration.Certificate {
		return s.router.Run(s.configuration.Listen)
	}
	return s.router.RunTLS(s.configuration.Listen, s.configuration.Certificate, s.configuration.PrivateKey)
}

// map a fault class to an HTTP status
//
// the body carries only the error text, so access denials stay as
// uninformative over HTTP as they are over RPC
func replyError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case err == fault.AccessDenied:
		status = http.StatusForbidden
	case err == fault.RateLimiting:
		status = http.StatusTooManyRequests
	case err == fault.KeyServiceFault:
		status = http.StatusInternalServerError
	case fault.IsErrNotFound(err):
		status = http.StatusNotFound
	case fault.IsErrExists(err):
		status = http.StatusConflict
	case fault.IsErrInvalid(err):
		status = http.StatusBadRequest
	case fault.IsErrProcess(err):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
